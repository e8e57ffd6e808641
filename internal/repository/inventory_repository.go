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

type inventoryRepository struct {
	db DBTX
}

func NewInventory(pool *pgxpool.Pool) port.InventoryRepository {
	return &inventoryRepository{db: pool}
}

func NewInventoryWithTx(tx pgx.Tx) port.InventoryRepository {
	return &inventoryRepository{db: tx}
}

// Reserve decrements in a single conditional statement so two concurrent
// reservations can never both observe sufficient stock for the last unit.
func (r *inventoryRepository) Reserve(ctx context.Context, productID uuid.UUID, qty int32) (int32, error) {
	if qty <= 0 {
		return 0, fmt.Errorf("quantity[%d] must be positive: %w", qty, domain.ErrInvalidArgument)
	}

	var remaining int32
	err := r.db.QueryRow(ctx,
		`UPDATE products SET stock = stock - $2, updated_at = now()
		 WHERE id = $1 AND stock >= $2
		 RETURNING stock`,
		productID, qty).Scan(&remaining)
	if err == nil {
		return remaining, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("reserve product[%s]: %w", productID, err)
	}

	// No row matched: either the product is unknown or stock is short.
	available, err := r.currentStock(ctx, productID)
	if err != nil {
		return 0, err
	}

	return 0, domain.InsufficientStockError{
		ProductID: productID,
		Requested: qty,
		Available: available,
	}
}

func (r *inventoryRepository) Restore(ctx context.Context, productID uuid.UUID, qty int32) (int32, error) {
	if qty <= 0 {
		return 0, fmt.Errorf("quantity[%d] must be positive: %w", qty, domain.ErrInvalidArgument)
	}

	var stock int32
	err := r.db.QueryRow(ctx,
		`UPDATE products SET stock = stock + $2, updated_at = now()
		 WHERE id = $1
		 RETURNING stock`,
		productID, qty).Scan(&stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("product[%s]: %w", productID, domain.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("restore product[%s]: %w", productID, err)
	}

	return stock, nil
}

func (r *inventoryRepository) SetStock(ctx context.Context, productID uuid.UUID, stock int32) error {
	if stock < 0 {
		return fmt.Errorf("stock[%d] must not be negative: %w", stock, domain.ErrInvalidArgument)
	}

	tag, err := r.db.Exec(ctx,
		`UPDATE products SET stock = $2, updated_at = now() WHERE id = $1`,
		productID, stock)
	if err != nil {
		return fmt.Errorf("set stock product[%s]: %w", productID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product[%s]: %w", productID, domain.ErrNotFound)
	}

	return nil
}

func (r *inventoryRepository) currentStock(ctx context.Context, productID uuid.UUID) (int32, error) {
	var stock int32
	err := r.db.QueryRow(ctx, `SELECT stock FROM products WHERE id = $1`, productID).Scan(&stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("product[%s]: %w", productID, domain.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("select stock product[%s]: %w", productID, err)
	}

	return stock, nil
}
