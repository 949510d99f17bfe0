package services_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ridepool/client-go/api/rest"
	"github.com/ridepool/client-go/api/transport"
	"github.com/ridepool/client-go/domain"
	"github.com/ridepool/client-go/internal/infrastructure/buffer"
	"github.com/ridepool/client-go/internal/services"
	"github.com/ridepool/client-go/usecase"
)

type stubHealth bool

func (s stubHealth) IsOnline() bool { return bool(s) }

type stubTokens struct {
	access string
	err    error
}

func (s stubTokens) AccessToken(ctx context.Context) (string, error) {
	return s.access, s.err
}

func openStore(t *testing.T) *buffer.Store {
	t.Helper()
	store, err := buffer.Open(filepath.Join(t.TempDir(), "queue.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func newProcessor(t *testing.T, store *buffer.Store, online bool, tokens usecase.TokenSource, backend http.Handler) *services.BufferProcessor {
	t.Helper()
	server := httptest.NewServer(backend)
	t.Cleanup(server.Close)
	client := rest.NewClient(server.URL, time.Second, nil)
	return services.NewBufferProcessor(store, stubHealth(online), tokens, client, nil, services.ProcessorConfig{
		Interval:   time.Minute,
		MaxRetries: 2,
	})
}

func enqueueRide(t *testing.T, bp *services.BufferProcessor, seats int) {
	t.Helper()
	payload, err := json.Marshal(transport.RideCreateRequest{TotalSeats: seats})
	require.NoError(t, err)
	require.NoError(t, bp.Enqueue(buffer.Item{Kind: buffer.OpRideCreate, Data: payload}))
}

func TestDrainReplaysAndPurges(t *testing.T) {
	var hits atomic.Int32
	store := openStore(t)
	bp := newProcessor(t, store, true, stubTokens{access: "TOKEN"}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		json.NewEncoder(w).Encode(domain.Ride{ID: 1})
	}))

	enqueueRide(t, bp, 3)
	enqueueRide(t, bp, 4)
	require.Equal(t, 2, bp.Size())

	require.NoError(t, bp.Drain(context.Background()))
	require.Equal(t, int32(2), hits.Load())
	require.Equal(t, 0, bp.Size())
}

func TestDrainSkipsWhileOffline(t *testing.T) {
	var hits atomic.Int32
	store := openStore(t)
	bp := newProcessor(t, store, false, stubTokens{access: "TOKEN"}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))

	enqueueRide(t, bp, 3)
	require.NoError(t, bp.Drain(context.Background()))
	require.Equal(t, int32(0), hits.Load())
	require.Equal(t, 1, bp.Size())
}

func TestDrainKeepsQueueWithoutSession(t *testing.T) {
	store := openStore(t)
	bp := newProcessor(t, store, true, stubTokens{err: domain.ErrUnauthorized}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))

	enqueueRide(t, bp, 3)
	require.NoError(t, bp.Drain(context.Background()))
	require.Equal(t, 1, bp.Size())
}

func TestDrainDropsBackendRejections(t *testing.T) {
	store := openStore(t)
	bp := newProcessor(t, store, true, stubTokens{access: "TOKEN"}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"ride is full"}`, http.StatusBadRequest)
	}))

	enqueueRide(t, bp, 3)
	require.NoError(t, bp.Drain(context.Background()))
	require.Equal(t, 0, bp.Size())
}

func TestDrainRetriesNetworkFailuresUpToCap(t *testing.T) {
	store := openStore(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()
	client := rest.NewClient(server.URL, time.Second, nil)
	bp := services.NewBufferProcessor(store, stubHealth(true), stubTokens{access: "TOKEN"}, client, nil, services.ProcessorConfig{
		Interval:   time.Minute,
		MaxRetries: 2,
	})

	enqueueRide(t, bp, 3)

	// first failure requeues with a bumped retry count
	require.NoError(t, bp.Drain(context.Background()))
	require.Equal(t, 1, bp.Size())

	// second failure reaches the cap and drops the item
	require.NoError(t, bp.Drain(context.Background()))
	require.Equal(t, 0, bp.Size())
}

func TestBridgeEnqueuesJoinRequests(t *testing.T) {
	var gotPath string
	store := openStore(t)
	bp := newProcessor(t, store, true, stubTokens{access: "TOKEN"}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
	}))

	bridge := services.NewBufferBridge(bp)
	require.NoError(t, bridge.BufferJoinRequest(context.Background(), 12))
	require.Equal(t, 1, bp.Size())

	require.NoError(t, bp.Drain(context.Background()))
	require.Equal(t, "/rides/12/request/", gotPath)
	require.Equal(t, 0, bp.Size())
}
