package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ridepool/client-go/api/rest"
	"github.com/ridepool/client-go/domain"
)

// Status is a point-in-time view of backend reachability.
type Status struct {
	Online    bool      `json:"online"`
	CheckedAt time.Time `json:"checked_at"`
}

// Monitor probes the backend on a fixed interval so the offline buffer
// knows when replaying queued operations is worthwhile. Any response from
// the backend counts as online, HTTP errors included; only transport-level
// failures mean offline.
type Monitor struct {
	api      *rest.Client
	interval time.Duration
	logger   *zap.Logger

	mu     sync.RWMutex
	status Status
	stopCh chan struct{}
}

func New(api *rest.Client, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		api:      api,
		interval: interval,
		logger:   logger,
		status:   Status{Online: true},
		stopCh:   make(chan struct{}),
	}
}

func (m *Monitor) Start() {
	go m.loop()
}

func (m *Monitor) Stop() {
	close(m.stopCh)
}

// IsOnline reports the last observed reachability.
func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Online
}

// GetStatus returns the last probe result.
func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Monitor) loop() {
	m.check()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.check()
		case <-m.stopCh:
			return
		}
	}
}

func (m *Monitor) check() {
	ctx, cancel := context.WithTimeout(context.Background(), m.interval)
	defer cancel()

	err := m.api.Get(ctx, rest.PathUpcomingRides, nil)
	online := err == nil || !domain.IsDomainError(err, domain.ErrCodeNetwork)

	m.mu.Lock()
	wasOnline := m.status.Online
	m.status = Status{Online: online, CheckedAt: time.Now()}
	m.mu.Unlock()

	if online != wasOnline {
		m.logger.Info("backend reachability changed", zap.Bool("online", online))
	}
}
