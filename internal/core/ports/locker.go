package ports

import "context"

// Unlock releases every lock taken by one Locker.Lock call.
type Unlock func()

// Locker serializes operations that touch the same resources. Implementations
// acquire keys in sorted order and honour ctx cancellation; failing to obtain
// a lock yields apperrors.ErrConcurrencyConflict.
type Locker interface {
	Lock(ctx context.Context, keys ...string) (Unlock, error)
}

// Lock key builders.
func AccountKey(id string) string       { return "account:" + id }
func CounterpartyKey(id string) string  { return "counterparty:" + id }
func StockKey(id string) string         { return "stock:" + id }
func SaleKey(id string) string          { return "sale:" + id }
func PurchaseOrderKey(id string) string { return "purchase_order:" + id }
