package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/shaddai/storefront/internal/domain"
)

// CatalogRepository reads product data out of the same store the inventory
// ledger guards; the stock it reports is the ledger's counter.
type CatalogRepository interface {
	CreateProduct(ctx context.Context, product domain.Product) (domain.Product, error)
	GetProduct(ctx context.Context, productID uuid.UUID) (domain.Product, error)
}
