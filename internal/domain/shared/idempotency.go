package shared

import (
	"context"
	"time"
)

// IdempotencyStore records keys that have already been claimed so that an operation
// (an e-Factura upload, an event delivery) runs at most once per TTL window.
type IdempotencyStore interface {
	// MarkProcessed claims key for ttl. It returns false when the key was already claimed.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)
	IsProcessed(ctx context.Context, key string) (bool, error)
	// Release drops a claim so the operation can be attempted again.
	Release(ctx context.Context, key string) error
	Close() error
}
