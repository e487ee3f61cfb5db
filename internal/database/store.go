package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"walrus-backend/internal/models"
)

// Order is the created_at sort direction of a query
type Order int

const (
	Ascending Order = iota
	Descending
)

// QueryFilter selects readings from the log
type QueryFilter struct {
	DeviceID string     // empty matches every device
	Since    *time.Time // inclusive lower bound on created_at
	Order    Order
	Limit    int // 0 means no limit
}

// TelemetryStore is the append-only reading log.
// Readings with equal created_at come back in insertion order.
// Transport failures wrap models.ErrStorageUnavailable; no match is an empty slice.
type TelemetryStore interface {
	Append(ctx context.Context, reading *models.Reading) (*models.Reading, error)
	Query(ctx context.Context, filter QueryFilter) ([]*models.Reading, error)
	Ping(ctx context.Context) error
	Close() error
}

// newReadingID returns a time-ordered identifier, so sorting by (created_at, id)
// keeps insertion order among equal timestamps.
func newReadingID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
