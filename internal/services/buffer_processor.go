package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/ridepool/client-go/api/rest"
	"github.com/ridepool/client-go/api/transport"
	"github.com/ridepool/client-go/domain"
	"github.com/ridepool/client-go/internal/infrastructure/buffer"
	"github.com/ridepool/client-go/usecase"
)

// ConnectionHealth abstracts the reachability monitor.
type ConnectionHealth interface {
	IsOnline() bool
}

// ProcessorConfig controls how frequently the queue is drained.
type ProcessorConfig struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
}

// BufferProcessor replays queued ride operations against the backend once
// connectivity returns. Backend rejections (non-2xx) drop the item — the
// ride may be full or gone by replay time, and retrying cannot fix that.
// Only transport failures earn a retry, up to the configured cap.
type BufferProcessor struct {
	store   *buffer.Store
	monitor ConnectionHealth
	tokens  usecase.TokenSource
	api     *rest.Client
	logger  *zap.Logger
	cron    *cron.Cron
	cfg     ProcessorConfig
}

func NewBufferProcessor(
	store *buffer.Store,
	monitor ConnectionHealth,
	tokens usecase.TokenSource,
	api *rest.Client,
	logger *zap.Logger,
	cfg ProcessorConfig,
) *BufferProcessor {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 20
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	bp := &BufferProcessor{
		store:   store,
		monitor: monitor,
		tokens:  tokens,
		api:     api,
		logger:  logger,
		cfg:     cfg,
		cron:    cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = bp.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := bp.Drain(ctx); err != nil {
			bp.logger.Error("queue drain failed", zap.Error(err))
		}
	})

	return bp
}

// Start launches the cron scheduler.
func (bp *BufferProcessor) Start() {
	if bp == nil || bp.cron == nil {
		return
	}
	bp.cron.Start()
	bp.logger.Info("offline queue processor started")
}

// Stop gracefully stops the scheduler.
func (bp *BufferProcessor) Stop(ctx context.Context) {
	if bp == nil || bp.cron == nil {
		return
	}
	stopCtx := bp.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	bp.logger.Info("offline queue processor stopped")
}

// Drain replays queued items synchronously.
func (bp *BufferProcessor) Drain(ctx context.Context) error {
	if bp == nil || bp.store == nil {
		return nil
	}
	if bp.monitor != nil && !bp.monitor.IsOnline() {
		bp.logger.Debug("skipping queue drain (offline)")
		return nil
	}

	items, err := bp.store.GetBatch(bp.cfg.BatchSize)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}

	access, err := bp.tokens.AccessToken(ctx)
	if err != nil {
		// Without a session the replays would all be rejected; keep the
		// queue intact until the user signs in again.
		bp.logger.Debug("skipping queue drain (no session)")
		return nil
	}

	for _, item := range items {
		err := bp.replay(ctx, item, access)
		if err == nil {
			if err := bp.store.Remove(item); err != nil {
				bp.logger.Warn("failed to purge replayed item", zap.Error(err))
			}
			continue
		}

		if !domain.IsDomainError(err, domain.ErrCodeNetwork) {
			bp.logger.Warn("dropping queued item (backend rejected it)",
				zap.String("item_id", item.ID),
				zap.String("kind", item.Kind),
				zap.Error(err))
			_ = bp.store.Remove(item)
			continue
		}

		item.Retries++
		if item.Retries >= bp.cfg.MaxRetries {
			bp.logger.Warn("dropping queued item (max retries reached)", zap.String("item_id", item.ID))
			_ = bp.store.Remove(item)
			continue
		}

		if err := bp.store.Remove(item); err != nil {
			bp.logger.Warn("failed to remove queued item", zap.Error(err))
		}
		if err := bp.store.Requeue(item); err != nil {
			bp.logger.Error("failed to requeue item", zap.Error(err))
		}
	}
	return nil
}

// Enqueue persists an operation for later replay.
func (bp *BufferProcessor) Enqueue(item buffer.Item) error {
	if bp == nil || bp.store == nil {
		return fmt.Errorf("queue processor not configured")
	}
	return bp.store.Enqueue(item)
}

// Size returns the number of queued items.
func (bp *BufferProcessor) Size() int {
	if bp == nil || bp.store == nil {
		return 0
	}
	size, err := bp.store.Size()
	if err != nil {
		return 0
	}
	return size
}

func (bp *BufferProcessor) replay(ctx context.Context, item buffer.Item, access string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	switch item.Kind {
	case buffer.OpRideCreate:
		var req transport.RideCreateRequest
		if err := json.Unmarshal(item.Data, &req); err != nil {
			return domain.WrapError(domain.ErrCodeInvalid, "decode queued ride", err)
		}
		return bp.api.Post(ctx, rest.PathCreateRide, req, nil, rest.WithBearer(access))

	case buffer.OpJoinRequest:
		var payload joinPayload
		if err := json.Unmarshal(item.Data, &payload); err != nil {
			return domain.WrapError(domain.ErrCodeInvalid, "decode queued join request", err)
		}
		return bp.api.Post(ctx, rest.PathJoinRide(payload.RideID), nil, nil, rest.WithBearer(access))

	default:
		return domain.WrapError(domain.ErrCodeInvalid, "unknown queued operation "+item.Kind, nil)
	}
}

type joinPayload struct {
	RideID int64 `json:"ride_id"`
}
