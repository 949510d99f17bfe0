package buffer

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Operation kinds the queue can hold.
const (
	OpRideCreate  = "ride_create"
	OpJoinRequest = "join_request"
)

// Item is a ride operation that could not reach the backend and should be
// replayed once connectivity returns.
type Item struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`
	Data      json.RawMessage `json:"data"`
	Retries   int             `json:"retries"`
	Timestamp time.Time       `json:"timestamp"`

	bucketKey []byte
}

func (i *Item) normalize() {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.Timestamp.IsZero() {
		i.Timestamp = time.Now()
	}
}
