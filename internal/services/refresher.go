package services

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// SessionEvaluator is the slice of the auth use case the refresher needs.
type SessionEvaluator interface {
	Evaluate(ctx context.Context) bool
}

// Refresher re-evaluates the session on a fixed interval so a token that
// expires mid-session flips the published auth state without waiting for
// the next user action.
type Refresher struct {
	sessions SessionEvaluator
	interval time.Duration
	logger   *zap.Logger
	stopCh   chan struct{}
}

func NewRefresher(sessions SessionEvaluator, interval time.Duration, logger *zap.Logger) *Refresher {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Refresher{
		sessions: sessions,
		interval: interval,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

func (r *Refresher) Start() {
	go r.loop()
}

func (r *Refresher) Stop() {
	close(r.stopCh)
}

func (r *Refresher) loop() {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), r.interval)
			ok := r.sessions.Evaluate(ctx)
			cancel()
			r.logger.Debug("periodic session evaluation", zap.Bool("authenticated", ok))
		case <-r.stopCh:
			return
		}
	}
}
