package file

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/ridepool/client-go/domain"
	"github.com/ridepool/client-go/repository"
)

type sessionRepository struct {
	path string
}

// NewSessionRepository creates a session repository backed by a single JSON
// file, the closest analogue to a mobile platform's key-value store. The
// parent directory is created on demand.
func NewSessionRepository(path string) repository.SessionRepository {
	if path == "" {
		path = filepath.Join(os.TempDir(), "ridepool", repository.SessionKey+".json")
	}
	return &sessionRepository{path: path}
}

func (r *sessionRepository) Load(ctx context.Context) (*domain.Session, error) {
	payload, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, domain.WrapError(domain.ErrCodeStorage, "read session file", err)
	}

	var session domain.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		// A corrupt file reads as no session.
		return nil, domain.ErrSessionNotFound
	}
	return &session, nil
}

func (r *sessionRepository) Save(ctx context.Context, session *domain.Session) error {
	if session == nil {
		return domain.ErrInvalidPayload
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return domain.WrapError(domain.ErrCodeStorage, "encode session", err)
	}

	if err := os.MkdirAll(filepath.Dir(r.path), 0o700); err != nil {
		return domain.WrapError(domain.ErrCodeStorage, "create session dir", err)
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o600); err != nil {
		return domain.WrapError(domain.ErrCodeStorage, "write session file", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return domain.WrapError(domain.ErrCodeStorage, "replace session file", err)
	}
	return nil
}

func (r *sessionRepository) Clear(ctx context.Context) error {
	if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
		return domain.WrapError(domain.ErrCodeStorage, "remove session file", err)
	}
	return nil
}
