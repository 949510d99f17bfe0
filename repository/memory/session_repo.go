package memory

import (
	"context"
	"sync"

	"github.com/ridepool/client-go/domain"
	"github.com/ridepool/client-go/repository"
)

type sessionRepository struct {
	mu      sync.RWMutex
	session *domain.Session
}

// NewSessionRepository creates an in-memory session repository. Nothing
// survives process restart; intended for tests and ephemeral use.
func NewSessionRepository() repository.SessionRepository {
	return &sessionRepository{}
}

func (r *sessionRepository) Load(ctx context.Context) (*domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.session == nil {
		return nil, domain.ErrSessionNotFound
	}
	copied := *r.session
	return &copied, nil
}

func (r *sessionRepository) Save(ctx context.Context, session *domain.Session) error {
	if session == nil {
		return domain.ErrInvalidPayload
	}
	copied := *session
	r.mu.Lock()
	r.session = &copied
	r.mu.Unlock()
	return nil
}

func (r *sessionRepository) Clear(ctx context.Context) error {
	r.mu.Lock()
	r.session = nil
	r.mu.Unlock()
	return nil
}
