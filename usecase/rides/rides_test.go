package rides_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ridepool/client-go/api/rest"
	"github.com/ridepool/client-go/api/transport"
	"github.com/ridepool/client-go/domain"
	"github.com/ridepool/client-go/usecase/rides"
)

type staticTokens struct {
	access string
	err    error
}

func (s staticTokens) AccessToken(ctx context.Context) (string, error) {
	return s.access, s.err
}

type recordingBuffer struct {
	creates []transport.RideCreateRequest
	joins   []int64
}

func (b *recordingBuffer) BufferRideCreate(ctx context.Context, req transport.RideCreateRequest) error {
	b.creates = append(b.creates, req)
	return nil
}

func (b *recordingBuffer) BufferJoinRequest(ctx context.Context, rideID int64) error {
	b.joins = append(b.joins, rideID)
	return nil
}

func newClient(t *testing.T, handler http.Handler) *rest.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return rest.NewClient(server.URL, 2*time.Second, nil)
}

func TestUpcomingAttachesBearerWhenAuthenticated(t *testing.T) {
	var gotAuth string
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]domain.Ride{
			{ID: 1, SeatsAvailable: 2, Status: domain.RideUpcoming},
			{ID: 2, SeatsAvailable: 0, Status: domain.RideUpcoming},
		})
	}))

	uc := rides.New(staticTokens{access: "TOKEN"}, client, nil, nil)
	listed, err := uc.Upcoming(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 2)
	require.Equal(t, "Bearer TOKEN", gotAuth)
	require.True(t, listed[0].HasSeats())
	require.False(t, listed[1].HasSeats())
}

func TestUpcomingWorksUnauthenticated(t *testing.T) {
	var gotAuth string
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]domain.Ride{})
	}))

	uc := rides.New(staticTokens{err: domain.ErrUnauthorized}, client, nil, nil)
	_, err := uc.Upcoming(context.Background())
	require.NoError(t, err)
	require.Empty(t, gotAuth)
}

func TestDetailsNotFound(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"not found"}`, http.StatusNotFound)
	}))

	uc := rides.New(staticTokens{access: "TOKEN"}, client, nil, nil)
	_, err := uc.Details(context.Background(), 42)
	require.ErrorIs(t, err, domain.ErrRideNotFound)
}

func TestDetailsDecodesJoinRequests(t *testing.T) {
	var gotPath string
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode(domain.Ride{
			ID:          5,
			IsUserOwner: true,
			JoinRequests: []domain.JoinRequest{
				{ID: 9, RideID: 5, Status: domain.RequestPending},
			},
		})
	}))

	uc := rides.New(staticTokens{access: "TOKEN"}, client, nil, nil)
	ride, err := uc.Details(context.Background(), 5)
	require.NoError(t, err)
	require.Equal(t, "/rides/ride-details/5/", gotPath)
	require.True(t, ride.IsUserOwner)
	require.Len(t, ride.JoinRequests, 1)
	require.Equal(t, domain.RequestPending, ride.JoinRequests[0].Status)
}

func TestCreateRequiresSession(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))

	uc := rides.New(staticTokens{err: domain.ErrUnauthorized}, client, nil, nil)
	_, err := uc.Create(context.Background(), transport.RideCreateRequest{})
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestCreateBuffersOnNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()
	client := rest.NewClient(server.URL, time.Second, nil)

	buffer := &recordingBuffer{}
	uc := rides.New(staticTokens{access: "TOKEN"}, client, buffer, nil)

	req := transport.RideCreateRequest{TotalSeats: 3, TotalCost: 45}
	_, err := uc.Create(context.Background(), req)
	require.Error(t, err)
	require.True(t, domain.IsDomainError(err, domain.ErrCodeNetwork))
	require.Len(t, buffer.creates, 1)
	require.Equal(t, req, buffer.creates[0])
}

func TestCreateDoesNotBufferBackendRejection(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"departure in the past"}`, http.StatusBadRequest)
	}))

	buffer := &recordingBuffer{}
	uc := rides.New(staticTokens{access: "TOKEN"}, client, buffer, nil)

	_, err := uc.Create(context.Background(), transport.RideCreateRequest{})
	require.Error(t, err)
	require.True(t, rest.IsStatus(err, http.StatusBadRequest))
	require.Empty(t, buffer.creates)
}

func TestRequestJoinBuffersOnNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()
	client := rest.NewClient(server.URL, time.Second, nil)

	buffer := &recordingBuffer{}
	uc := rides.New(staticTokens{access: "TOKEN"}, client, buffer, nil)

	_, err := uc.RequestJoin(context.Background(), 7)
	require.Error(t, err)
	require.True(t, domain.IsDomainError(err, domain.ErrCodeNetwork))
	require.Equal(t, []int64{7}, buffer.joins)
}

func TestResolveValidatesAction(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))

	uc := rides.New(staticTokens{access: "TOKEN"}, client, nil, nil)
	err := uc.Resolve(context.Background(), 1, 2, "maybe")
	require.Error(t, err)
	require.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestResolveHitsActionEndpoint(t *testing.T) {
	var gotPath, gotMethod string
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotMethod = r.URL.Path, r.Method
		json.NewEncoder(w).Encode(map[string]string{"message": "request accepted"})
	}))

	uc := rides.New(staticTokens{access: "TOKEN"}, client, nil, nil)
	require.NoError(t, uc.Resolve(context.Background(), 3, 11, rides.ActionAccept))
	require.Equal(t, "/rides/3/requests/11/accept/", gotPath)
	require.Equal(t, http.MethodPut, gotMethod)
}

func TestUserRidesSplitsGroups(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(transport.UserRidesResponse{
			CreatedRides:  []domain.Ride{{ID: 1}},
			AcceptedRides: []domain.Ride{{ID: 2}, {ID: 3}},
		})
	}))

	uc := rides.New(staticTokens{access: "TOKEN"}, client, nil, nil)
	grouped, err := uc.UserRides(context.Background())
	require.NoError(t, err)
	require.Len(t, grouped.CreatedRides, 1)
	require.Len(t, grouped.AcceptedRides, 2)
}

func TestRequestHistory(t *testing.T) {
	var gotPath string
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode([]domain.JoinRequestWithRide{
			{ID: 4, Status: domain.RequestAccepted, Ride: domain.Ride{ID: 9}},
		})
	}))

	uc := rides.New(staticTokens{access: "TOKEN"}, client, nil, nil)
	history, err := uc.RequestHistory(context.Background())
	require.NoError(t, err)
	require.Equal(t, "/rides/requests/history/", gotPath)
	require.Len(t, history, 1)
	require.Equal(t, int64(9), history[0].Ride.ID)
}
