package port

import (
	"context"

	"github.com/google/uuid"
)

// InventoryRepository is the stock ledger: the only component allowed to
// change product stock. Reserve and Restore are single-statement
// compare-and-set operations, never a read followed by a write.
type InventoryRepository interface {
	// Reserve atomically decrements stock by qty and returns the remaining
	// stock. Fails with domain.ErrNotFound for an unknown product and with
	// a domain.InsufficientStockError when stock < qty.
	Reserve(ctx context.Context, productID uuid.UUID, qty int32) (int32, error)

	// Restore atomically increments stock by qty and returns the new stock.
	Restore(ctx context.Context, productID uuid.UUID, qty int32) (int32, error)

	// SetStock overwrites the counter, for administrative corrections.
	SetStock(ctx context.Context, productID uuid.UUID, stock int32) error
}
