package monitor_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ridepool/client-go/api/rest"
	"github.com/ridepool/client-go/internal/infrastructure/monitor"
)

func TestMonitorDetectsOffline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	m := monitor.New(rest.NewClient(server.URL, time.Second, nil), 20*time.Millisecond, nil)
	m.Start()
	defer m.Stop()

	require.Eventually(t, func() bool { return !m.IsOnline() }, time.Second, 10*time.Millisecond)
	require.False(t, m.GetStatus().CheckedAt.IsZero())
}

func TestMonitorTreatsHTTPErrorsAsOnline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"throttled"}`, http.StatusTooManyRequests)
	}))
	t.Cleanup(server.Close)

	m := monitor.New(rest.NewClient(server.URL, time.Second, nil), 20*time.Millisecond, nil)
	m.Start()
	defer m.Stop()

	require.Eventually(t, func() bool {
		return m.IsOnline() && !m.GetStatus().CheckedAt.IsZero()
	}, time.Second, 10*time.Millisecond)
}
