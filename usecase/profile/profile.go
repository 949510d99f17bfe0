package profile

import (
	"context"

	"go.uber.org/zap"

	"github.com/ridepool/client-go/api/rest"
	"github.com/ridepool/client-go/domain"
	"github.com/ridepool/client-go/usecase"
)

type UseCase struct {
	tokens usecase.TokenSource
	api    *rest.Client
	logger *zap.Logger
}

func New(tokens usecase.TokenSource, api *rest.Client, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tokens: tokens,
		api:    api,
		logger: logger,
	}
}

// Get fetches the authenticated user's profile.
func (uc *UseCase) Get(ctx context.Context) (*domain.User, error) {
	access, err := uc.tokens.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	var user domain.User
	if err := uc.api.Get(ctx, rest.PathUserData, &user, rest.WithBearer(access)); err != nil {
		return nil, err
	}
	return &user, nil
}
