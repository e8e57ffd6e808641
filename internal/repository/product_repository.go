package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaddai/storefront/internal/domain"
	"github.com/shaddai/storefront/internal/port"
)

// productRepository is the catalog view over the same products table the
// inventory ledger writes to.
type productRepository struct {
	db DBTX
}

func NewProduct(pool *pgxpool.Pool) port.CatalogRepository {
	return &productRepository{db: pool}
}

func NewProductWithTx(tx pgx.Tx) port.CatalogRepository {
	return &productRepository{db: tx}
}

func (r *productRepository) CreateProduct(ctx context.Context, product domain.Product) (domain.Product, error) {
	if !product.Price.IsPositive() {
		return domain.Product{}, fmt.Errorf("price[%s] must be positive: %w", product.Price, domain.ErrInvalidArgument)
	}
	if product.Stock < 0 {
		return domain.Product{}, fmt.Errorf("stock[%d] must not be negative: %w", product.Stock, domain.ErrInvalidArgument)
	}

	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}

	err := r.db.QueryRow(ctx,
		`INSERT INTO products (id, name, description, price_amount, price_currency, stock, active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at, updated_at`,
		product.ID, product.Name, product.Description,
		product.Price.Amount, product.Price.Currency.String(),
		product.Stock, product.Active).
		Scan(&product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return domain.Product{}, fmt.Errorf("insert product: %w", err)
	}

	return product, nil
}

func (r *productRepository) GetProduct(ctx context.Context, productID uuid.UUID) (domain.Product, error) {
	var (
		product       domain.Product
		priceCurrency string
	)
	err := r.db.QueryRow(ctx,
		`SELECT id, name, description, price_amount, price_currency, stock, active, created_at, updated_at
		 FROM products WHERE id = $1`,
		productID).
		Scan(&product.ID, &product.Name, &product.Description, &product.Price.Amount,
			&priceCurrency, &product.Stock, &product.Active, &product.CreatedAt, &product.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Product{}, fmt.Errorf("product[%s]: %w", productID, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("select product: %w", err)
	}

	product.Price.Currency, err = parseCurrency(priceCurrency)
	if err != nil {
		return domain.Product{}, err
	}

	return product, nil
}
