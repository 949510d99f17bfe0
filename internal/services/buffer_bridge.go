package services

import (
	"context"
	"encoding/json"

	"github.com/ridepool/client-go/api/transport"
	"github.com/ridepool/client-go/domain"
	"github.com/ridepool/client-go/internal/infrastructure/buffer"
	"github.com/ridepool/client-go/usecase"
)

// BufferBridge adapts the queue processor to the usecase.OperationBuffer
// port.
type BufferBridge struct {
	processor *BufferProcessor
}

func NewBufferBridge(processor *BufferProcessor) *BufferBridge {
	return &BufferBridge{processor: processor}
}

func (b *BufferBridge) BufferRideCreate(ctx context.Context, req transport.RideCreateRequest) error {
	if b.processor == nil {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return err
	}
	return b.processor.Enqueue(buffer.Item{
		Kind: buffer.OpRideCreate,
		Data: payload,
	})
}

func (b *BufferBridge) BufferJoinRequest(ctx context.Context, rideID int64) error {
	if b.processor == nil {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(joinPayload{RideID: rideID})
	if err != nil {
		return err
	}
	return b.processor.Enqueue(buffer.Item{
		Kind: buffer.OpJoinRequest,
		Data: payload,
	})
}

var _ usecase.OperationBuffer = (*BufferBridge)(nil)
