package rides

import (
	"context"

	"go.uber.org/zap"

	"github.com/ridepool/client-go/api/rest"
	"github.com/ridepool/client-go/api/transport"
	"github.com/ridepool/client-go/domain"
	"github.com/ridepool/client-go/usecase"
)

// Action values accepted by Resolve.
const (
	ActionAccept = "accept"
	ActionReject = "reject"
)

// UseCase covers the full ride surface: listing, creation, and the
// join-request workflow. Errors from the backend propagate to the caller;
// only ride creation and join requests fall back to the offline buffer.
type UseCase struct {
	tokens usecase.TokenSource
	api    *rest.Client
	buffer usecase.OperationBuffer
	logger *zap.Logger
}

func New(tokens usecase.TokenSource, api *rest.Client, buffer usecase.OperationBuffer, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tokens: tokens,
		api:    api,
		buffer: buffer,
		logger: logger,
	}
}

// Upcoming lists rides still open for joining. The call works without a
// session; with one, the backend marks ownership and request state per ride.
func (uc *UseCase) Upcoming(ctx context.Context) ([]domain.Ride, error) {
	opts := uc.bearerIfAvailable(ctx)

	var rides []domain.Ride
	if err := uc.api.Get(ctx, rest.PathUpcomingRides, &rides, opts...); err != nil {
		return nil, err
	}
	return rides, nil
}

// Details fetches a single ride. Join requests are included only when the
// viewer owns the ride.
func (uc *UseCase) Details(ctx context.Context, rideID int64) (*domain.Ride, error) {
	opts := uc.bearerIfAvailable(ctx)

	var ride domain.Ride
	if err := uc.api.Get(ctx, rest.PathRideDetails(rideID), &ride, opts...); err != nil {
		if rest.IsStatus(err, 404) {
			return nil, domain.ErrRideNotFound
		}
		return nil, err
	}
	return &ride, nil
}

// Create publishes a new ride owned by the current user. On network failure
// the request is queued for replay instead of being lost.
func (uc *UseCase) Create(ctx context.Context, req transport.RideCreateRequest) (*domain.Ride, error) {
	access, err := uc.tokens.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	var ride domain.Ride
	err = uc.api.Post(ctx, rest.PathCreateRide, req, &ride, rest.WithBearer(access))
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNetwork) && uc.buffer != nil {
			if bufErr := uc.buffer.BufferRideCreate(ctx, req); bufErr == nil {
				uc.logger.Warn("ride creation queued for replay", zap.Error(err))
				return nil, domain.WrapError(domain.ErrCodeNetwork, "ride creation queued", err)
			}
		}
		return nil, err
	}
	return &ride, nil
}

// RequestJoin asks to join a ride. On network failure the request is queued
// for replay.
func (uc *UseCase) RequestJoin(ctx context.Context, rideID int64) (*domain.JoinRequest, error) {
	access, err := uc.tokens.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	var request domain.JoinRequest
	err = uc.api.Post(ctx, rest.PathJoinRide(rideID), nil, &request, rest.WithBearer(access))
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNetwork) && uc.buffer != nil {
			if bufErr := uc.buffer.BufferJoinRequest(ctx, rideID); bufErr == nil {
				uc.logger.Warn("join request queued for replay",
					zap.Int64("ride_id", rideID), zap.Error(err))
				return nil, domain.WrapError(domain.ErrCodeNetwork, "join request queued", err)
			}
		}
		return nil, err
	}
	return &request, nil
}

// RequestsForRide lists a ride's join requests; the backend rejects callers
// that do not own the ride.
func (uc *UseCase) RequestsForRide(ctx context.Context, rideID int64) ([]domain.JoinRequest, error) {
	access, err := uc.tokens.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	var requests []domain.JoinRequest
	if err := uc.api.Get(ctx, rest.PathRideRequests(rideID), &requests, rest.WithBearer(access)); err != nil {
		return nil, err
	}
	return requests, nil
}

// Resolve accepts or rejects a pending join request on a ride the current
// user owns.
func (uc *UseCase) Resolve(ctx context.Context, rideID, requestID int64, action string) error {
	if action != ActionAccept && action != ActionReject {
		return domain.WrapError(domain.ErrCodeInvalid, "action must be accept or reject", nil)
	}

	access, err := uc.tokens.AccessToken(ctx)
	if err != nil {
		return err
	}

	var resp transport.MessageResponse
	return uc.api.Put(ctx, rest.PathResolveRequest(rideID, requestID, action), nil, &resp, rest.WithBearer(access))
}

// UserRides returns rides the user created plus rides they were accepted
// into.
func (uc *UseCase) UserRides(ctx context.Context) (*transport.UserRidesResponse, error) {
	access, err := uc.tokens.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	var rides transport.UserRidesResponse
	if err := uc.api.Get(ctx, rest.PathUserRides, &rides, rest.WithBearer(access)); err != nil {
		return nil, err
	}
	return &rides, nil
}

// RequestHistory lists every join request the user has made, each with the
// ride it targets.
func (uc *UseCase) RequestHistory(ctx context.Context) ([]domain.JoinRequestWithRide, error) {
	access, err := uc.tokens.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	var requests []domain.JoinRequestWithRide
	if err := uc.api.Get(ctx, rest.PathRequestHistory, &requests, rest.WithBearer(access)); err != nil {
		return nil, err
	}
	return requests, nil
}

// bearerIfAvailable attaches a bearer header when a valid session exists,
// and silently omits it otherwise — the public endpoints accept both.
func (uc *UseCase) bearerIfAvailable(ctx context.Context) []rest.CallOption {
	access, err := uc.tokens.AccessToken(ctx)
	if err != nil {
		return nil
	}
	return []rest.CallOption{rest.WithBearer(access)}
}
