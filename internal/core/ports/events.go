package ports

import (
	"context"

	"github.com/SscSPs/vault_ledger/internal/core/domain"
)

// EventPublisher is the fire-and-forget audit sink. Publish must not block
// the caller on delivery and never fails the originating operation.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event)
}
