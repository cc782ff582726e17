// Package ttlstore holds short-lived keyed values such as idempotency records.
package ttlstore

import (
	"context"
	"time"
)

// Store is a byte store whose entries expire after a TTL.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// SetNX stores value only when key is absent and reports whether it did.
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
