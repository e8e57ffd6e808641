package port

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shaddai/storefront/internal/domain"
)

type OrderRepository interface {
	InsertOrder(ctx context.Context, order domain.Order) error
	GetOrder(ctx context.Context, orderID uuid.UUID) (domain.Order, error)

	// GetOrderForUpdate locks the order row for the rest of the transaction.
	GetOrderForUpdate(ctx context.Context, orderID uuid.UUID) (domain.Order, error)

	// UpdateStatus moves the order from one status to another. It fails with
	// domain.ErrConflict when the order exists but is no longer in the
	// expected status.
	UpdateStatus(ctx context.Context, orderID uuid.UUID, from, to domain.OrderStatus) error

	ListOrders(ctx context.Context) ([]domain.Order, error)
	ListOrdersByOwner(ctx context.Context, ownerID string) ([]domain.Order, error)
	ListOrdersByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error)
	ListOrdersByDateRange(ctx context.Context, from, to time.Time) ([]domain.Order, error)
}
