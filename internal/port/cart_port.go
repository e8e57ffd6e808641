package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/shaddai/storefront/internal/domain"
)

type CartRepository interface {
	GetCart(ctx context.Context, ownerID string) (domain.Cart, error)
	GetItem(ctx context.Context, ownerID string, productID uuid.UUID) (domain.CartItem, bool, error)
	UpsertItem(ctx context.Context, ownerID string, item domain.CartItem) error
	SetQuantity(ctx context.Context, ownerID string, productID uuid.UUID, quantity int32) (bool, error)
	DeleteItem(ctx context.Context, ownerID string, productID uuid.UUID) (bool, error)
	Clear(ctx context.Context, ownerID string) error

	// LockOwner serializes cart mutations for one owner. Transaction-scoped:
	// the lock is released on commit or rollback, so it is only meaningful
	// on a repository bound to a transaction.
	LockOwner(ctx context.Context, ownerID string) error
}
