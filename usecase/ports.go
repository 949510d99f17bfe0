package usecase

import (
	"context"

	"github.com/ridepool/client-go/api/transport"
)

// TokenSource yields a fresh access token for authenticated calls. The auth
// use case implements it on top of the session lifecycle, so consumers get
// silent refresh for free.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// OperationBuffer abstracts the offline queue so the rides use case stays
// storage-agnostic. Implementations attempt the call immediately and fall
// back to durable buffering on network failure.
type OperationBuffer interface {
	BufferRideCreate(ctx context.Context, req transport.RideCreateRequest) error
	BufferJoinRequest(ctx context.Context, rideID int64) error
}
