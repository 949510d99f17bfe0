package auth

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/ridepool/client-go/api/rest"
	"github.com/ridepool/client-go/api/transport"
	"github.com/ridepool/client-go/domain"
	"github.com/ridepool/client-go/internal/token"
	"github.com/ridepool/client-go/pkg/authstate"
	"github.com/ridepool/client-go/repository"
	"github.com/ridepool/client-go/usecase"
)

var _ usecase.TokenSource = (*UseCase)(nil)

// UseCase is the session lifecycle controller. It owns the authenticated
// flag: every mutation goes through Evaluate, Login, or Logout, and the
// result is published on the authstate hub after each of them.
//
// Session validity failures never surface as errors — a record that is
// absent, malformed, or unrefreshable degrades to "unauthenticated".
type UseCase struct {
	sessions repository.SessionRepository
	api      *rest.Client
	state    *authstate.Hub
	logger   *zap.Logger
	now      func() time.Time

	// flight coalesces overlapping Evaluate calls; writeMu serializes every
	// write to the singleton record so a refresh cannot interleave with a
	// login or logout and resurrect a stale token.
	flight  singleflight.Group
	writeMu sync.Mutex
}

// Option configures optional UseCase behavior.
type Option func(*UseCase)

// WithNow overrides the clock (primarily for testing).
func WithNow(now func() time.Time) Option {
	return func(uc *UseCase) {
		uc.now = now
	}
}

// New constructs the lifecycle controller.
func New(sessions repository.SessionRepository, api *rest.Client, state *authstate.Hub, logger *zap.Logger, options ...Option) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	uc := &UseCase{
		sessions: sessions,
		api:      api,
		state:    state,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range options {
		opt(uc)
	}
	return uc
}

// Evaluate answers "is the current user authenticated", transparently
// refreshing an expired access token. Overlapping calls are coalesced onto
// a single flight keyed by the storage key, so at most one refresh attempt
// runs at a time; every caller still publishes the shared result.
func (uc *UseCase) Evaluate(ctx context.Context) bool {
	result, _, _ := uc.flight.Do(repository.SessionKey, func() (interface{}, error) {
		return uc.evaluate(ctx), nil
	})
	ok, _ := result.(bool)
	uc.state.Publish(ok)
	return ok
}

func (uc *UseCase) evaluate(ctx context.Context) bool {
	record, err := uc.sessions.Load(ctx)
	if err != nil {
		if !domain.IsDomainError(err, domain.ErrCodeNotFound) {
			uc.logger.Warn("session load failed", zap.Error(err))
		}
		return false
	}
	if !record.Complete() {
		return false
	}

	claims, err := token.Decode(record.AccessToken)
	if err != nil {
		uc.logger.Debug("stored access token unreadable", zap.Error(err))
		return false
	}

	if !claims.Expired(uc.now()) {
		return true
	}

	uc.logger.Info("access token expired, refreshing")
	return uc.refresh(ctx, record)
}

// refresh exchanges the stored refresh token for a new access token and
// persists the updated record. On any failure the stale record is left in
// storage so a later Evaluate or RefreshNow can try again.
func (uc *UseCase) refresh(ctx context.Context, record *domain.Session) bool {
	uc.writeMu.Lock()
	defer uc.writeMu.Unlock()

	var resp transport.RefreshResponse
	err := uc.api.Post(ctx, rest.PathRefreshToken, transport.RefreshRequest{Refresh: record.RefreshToken}, &resp)
	if err != nil {
		uc.logger.Warn("token refresh failed", zap.Error(err))
		return false
	}
	if resp.Access == "" {
		uc.logger.Warn("token refresh returned no access token")
		return false
	}

	updated := record.WithAccessToken(resp.Access)
	if err := uc.sessions.Save(ctx, &updated); err != nil {
		uc.logger.Error("failed to persist refreshed session", zap.Error(err))
		return false
	}

	uc.logger.Info("access token refreshed")
	return true
}

// RefreshNow is the explicit retry contract: it forces a refresh attempt
// with the stored refresh token regardless of the access token's state,
// publishes the outcome, and reports it. Use it after a failed silent
// refresh instead of relying on re-invocation from the UI.
func (uc *UseCase) RefreshNow(ctx context.Context) bool {
	result, _, _ := uc.flight.Do(repository.SessionKey, func() (interface{}, error) {
		record, err := uc.sessions.Load(ctx)
		if err != nil || !record.Complete() {
			return false, nil
		}
		return uc.refresh(ctx, record), nil
	})
	ok, _ := result.(bool)
	uc.state.Publish(ok)
	return ok
}

// Login flips the flag to authenticated without re-evaluating the token.
// It trusts that the caller has just persisted a fresh session record.
func (uc *UseCase) Login() {
	uc.state.Publish(true)
}

// LoginWithPassword exchanges credentials for a session record, persists it,
// and marks the session authenticated.
func (uc *UseCase) LoginWithPassword(ctx context.Context, phoneNumber, password string) (*domain.Session, error) {
	var resp transport.LoginResponse
	err := uc.api.Post(ctx, rest.PathLogin, transport.LoginRequest{
		PhoneNumber: phoneNumber,
		Password:    password,
	}, &resp)
	if err != nil {
		return nil, err
	}

	session, err := resp.Session()
	if err != nil {
		return nil, err
	}

	uc.writeMu.Lock()
	err = uc.sessions.Save(ctx, session)
	uc.writeMu.Unlock()
	if err != nil {
		return nil, err
	}

	uc.Login()
	return session, nil
}

// Register creates an account and then logs in with the same credentials so
// the caller ends up with a stored session, mirroring LoginWithPassword.
func (uc *UseCase) Register(ctx context.Context, fullName, phoneNumber, password string) (*domain.Session, error) {
	var resp transport.RegisterResponse
	err := uc.api.Post(ctx, rest.PathRegister, transport.RegisterRequest{
		FullName:    fullName,
		PhoneNumber: phoneNumber,
		Password:    password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return uc.LoginWithPassword(ctx, phoneNumber, password)
}

// Logout clears the session store and publishes unauthenticated. This is
// the only operation that deletes the session record. The flag goes false
// even when the storage delete fails.
func (uc *UseCase) Logout(ctx context.Context) error {
	uc.writeMu.Lock()
	err := uc.sessions.Clear(ctx)
	uc.writeMu.Unlock()

	uc.state.Publish(false)
	if err != nil {
		uc.logger.Error("failed to clear session store", zap.Error(err))
		return err
	}
	return nil
}

// AccessToken implements usecase.TokenSource: it evaluates the session
// (refreshing if needed) and returns the current access token, or
// domain.ErrUnauthorized when no valid session exists.
func (uc *UseCase) AccessToken(ctx context.Context) (string, error) {
	if !uc.Evaluate(ctx) {
		return "", domain.ErrUnauthorized
	}
	record, err := uc.sessions.Load(ctx)
	if err != nil || !record.Complete() {
		return "", domain.ErrUnauthorized
	}
	return record.AccessToken, nil
}
