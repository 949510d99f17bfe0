package repository

import (
	"context"

	"github.com/ridepool/client-go/domain"
)

// SessionKey is the singleton storage key under which the session record
// lives. Every backend persists exactly one record.
const SessionKey = "user"

// SessionRepository persists the device's single session record.
//
// Load returns domain.ErrSessionNotFound both when no record exists and when
// the stored payload cannot be deserialized; a corrupt record is
// indistinguishable from an absent one to callers. Clear is idempotent.
type SessionRepository interface {
	Load(ctx context.Context) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	Clear(ctx context.Context) error
}
