package bolt

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	boltdb "go.etcd.io/bbolt"

	"github.com/ridepool/client-go/domain"
	"github.com/ridepool/client-go/repository"
)

var bucketSessions = []byte("sessions")

type sessionRepository struct {
	db *boltdb.DB
}

// Open initializes the Bolt file and ensures the session bucket exists.
func Open(path string) (repository.SessionRepository, func() error, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, err
	}
	db, err := boltdb.Open(path, 0o600, &boltdb.Options{Timeout: time.Second})
	if err != nil {
		return nil, nil, err
	}

	if err := db.Update(func(tx *boltdb.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSessions)
		return err
	}); err != nil {
		db.Close()
		return nil, nil, err
	}

	return &sessionRepository{db: db}, db.Close, nil
}

func (r *sessionRepository) Load(ctx context.Context) (*domain.Session, error) {
	var session *domain.Session
	err := r.db.View(func(tx *boltdb.Tx) error {
		payload := tx.Bucket(bucketSessions).Get([]byte(repository.SessionKey))
		if payload == nil {
			return nil
		}
		var decoded domain.Session
		if err := json.Unmarshal(payload, &decoded); err != nil {
			// Corrupt payload reads as no session.
			return nil
		}
		session = &decoded
		return nil
	})
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeStorage, "read session bucket", err)
	}
	if session == nil {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (r *sessionRepository) Save(ctx context.Context, session *domain.Session) error {
	if session == nil {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(session)
	if err != nil {
		return domain.WrapError(domain.ErrCodeStorage, "encode session", err)
	}
	err = r.db.Update(func(tx *boltdb.Tx) error {
		return tx.Bucket(bucketSessions).Put([]byte(repository.SessionKey), payload)
	})
	if err != nil {
		return domain.WrapError(domain.ErrCodeStorage, "write session bucket", err)
	}
	return nil
}

func (r *sessionRepository) Clear(ctx context.Context) error {
	err := r.db.Update(func(tx *boltdb.Tx) error {
		return tx.Bucket(bucketSessions).Delete([]byte(repository.SessionKey))
	})
	if err != nil {
		return domain.WrapError(domain.ErrCodeStorage, "delete session key", err)
	}
	return nil
}
