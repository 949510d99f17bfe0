package redis

import (
	"context"
	"encoding/json"
	"fmt"

	redislib "github.com/redis/go-redis/v9"

	"github.com/ridepool/client-go/domain"
	"github.com/ridepool/client-go/repository"
)

type sessionRepository struct {
	client *redislib.Client
	key    string
}

// NewSessionRepository creates a Redis-backed session repository for
// deployments where the SDK runs headless (bots, kiosks, integration rigs)
// and local disk is not an option. The record is stored without a TTL; the
// lifecycle controller owns expiry via the token itself.
func NewSessionRepository(client *redislib.Client, namespace string) repository.SessionRepository {
	if namespace == "" {
		namespace = "ridepool"
	}
	return &sessionRepository{
		client: client,
		key:    fmt.Sprintf("%s:%s", namespace, repository.SessionKey),
	}
}

func (r *sessionRepository) Load(ctx context.Context) (*domain.Session, error) {
	result, err := r.client.Get(ctx, r.key).Result()
	if err != nil {
		if err == redislib.Nil {
			return nil, domain.ErrSessionNotFound
		}
		return nil, domain.WrapError(domain.ErrCodeStorage, "read session key", err)
	}

	var session domain.Session
	if err := json.Unmarshal([]byte(result), &session); err != nil {
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
	if err := r.client.Set(ctx, r.key, payload, 0).Err(); err != nil {
		return domain.WrapError(domain.ErrCodeStorage, "write session key", err)
	}
	return nil
}

func (r *sessionRepository) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return domain.WrapError(domain.ErrCodeStorage, "delete session key", err)
	}
	return nil
}
