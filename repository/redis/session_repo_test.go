package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/ridepool/client-go/domain"
	"github.com/ridepool/client-go/repository"
)

func openRepo(t *testing.T) (repository.SessionRepository, *miniredis.Miniredis) {
	t.Helper()
	mini := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{Addr: mini.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewSessionRepository(client, "ridepool"), mini
}

func TestSaveLoadClear(t *testing.T) {
	repo, _ := openRepo(t)
	ctx := context.Background()

	saved := &domain.Session{AccessToken: "A1", RefreshToken: "R1", FullName: "Sam Rider"}
	require.NoError(t, repo.Save(ctx, saved))

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, saved, loaded)

	require.NoError(t, repo.Clear(ctx))
	_, err = repo.Load(ctx)
	require.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestLoadAbsent(t *testing.T) {
	repo, _ := openRepo(t)

	_, err := repo.Load(context.Background())
	require.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestCorruptValueReadsAsAbsent(t *testing.T) {
	repo, mini := openRepo(t)
	mini.Set("ridepool:user", "{broken")

	_, err := repo.Load(context.Background())
	require.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestClearIsIdempotent(t *testing.T) {
	repo, _ := openRepo(t)
	require.NoError(t, repo.Clear(context.Background()))
	require.NoError(t, repo.Clear(context.Background()))
}

func TestStorageErrorSurfaces(t *testing.T) {
	repo, mini := openRepo(t)
	mini.Close()

	err := repo.Save(context.Background(), &domain.Session{AccessToken: "A1", RefreshToken: "R1"})
	require.Error(t, err)
	require.True(t, domain.IsDomainError(err, domain.ErrCodeStorage))
}
