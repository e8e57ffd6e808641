package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaddai/storefront/internal/domain"
	"github.com/shaddai/storefront/internal/port"
	"golang.org/x/text/currency"
)

type cartRepository struct {
	db DBTX
}

func NewCart(pool *pgxpool.Pool) port.CartRepository {
	return &cartRepository{db: pool}
}

func NewCartWithTx(tx pgx.Tx) port.CartRepository {
	return &cartRepository{db: tx}
}

// GetCart assembles the owner's cart from its line rows. A cart has no row
// of its own, so UpdatedAt is the newest line's updated_at and an empty or
// cleared cart reports the zero time.
func (r *cartRepository) GetCart(ctx context.Context, ownerID string) (domain.Cart, error) {
	if ownerID == "" {
		return domain.Cart{}, fmt.Errorf("ownerID is empty")
	}

	rows, err := r.db.Query(ctx,
		`SELECT product_id, quantity, price_amount, price_currency, created_at, updated_at
		 FROM cart_items
		 WHERE owner_id = $1
		 ORDER BY created_at, product_id`,
		ownerID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("select cart_items: %w", err)
	}
	defer rows.Close()

	var (
		items     []domain.CartItem
		updatedAt time.Time
	)
	for rows.Next() {
		var (
			item          domain.CartItem
			priceCurrency string
			itemUpdatedAt time.Time
		)
		if err := rows.Scan(&item.ProductID, &item.Quantity, &item.Price.Amount,
			&priceCurrency, &item.CreatedAt, &itemUpdatedAt); err != nil {
			return domain.Cart{}, fmt.Errorf("scan cart item: %w", err)
		}

		item.Price.Currency, err = parseCurrency(priceCurrency)
		if err != nil {
			return domain.Cart{}, err
		}

		if itemUpdatedAt.After(updatedAt) {
			updatedAt = itemUpdatedAt
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return domain.Cart{}, fmt.Errorf("rows.Err: %w", err)
	}

	return domain.Cart{
		OwnerID:   ownerID,
		Items:     items,
		UpdatedAt: updatedAt,
	}, nil
}

func (r *cartRepository) GetItem(ctx context.Context, ownerID string, productID uuid.UUID) (domain.CartItem, bool, error) {
	if ownerID == "" {
		return domain.CartItem{}, false, fmt.Errorf("ownerID is empty")
	}

	var (
		item          domain.CartItem
		priceCurrency string
	)
	err := r.db.QueryRow(ctx,
		`SELECT product_id, quantity, price_amount, price_currency, created_at
		 FROM cart_items
		 WHERE owner_id = $1 AND product_id = $2`,
		ownerID, productID).
		Scan(&item.ProductID, &item.Quantity, &item.Price.Amount, &priceCurrency, &item.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.CartItem{}, false, nil
	}
	if err != nil {
		return domain.CartItem{}, false, fmt.Errorf("select cart item: %w", err)
	}

	item.Price.Currency, err = parseCurrency(priceCurrency)
	if err != nil {
		return domain.CartItem{}, false, err
	}

	return item, true, nil
}

// UpsertItem inserts the line or, if the product is already in the cart,
// overwrites its quantity. The price snapshot of an existing line is kept.
func (r *cartRepository) UpsertItem(ctx context.Context, ownerID string, item domain.CartItem) error {
	if ownerID == "" {
		return fmt.Errorf("ownerID is empty")
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO cart_items (owner_id, product_id, quantity, price_amount, price_currency)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (owner_id, product_id)
		 DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now()`,
		ownerID, item.ProductID, item.Quantity, item.Price.Amount, item.Price.Currency.String())
	if err != nil {
		return fmt.Errorf("upsert cart item: %w", err)
	}

	return nil
}

func (r *cartRepository) SetQuantity(ctx context.Context, ownerID string, productID uuid.UUID, quantity int32) (bool, error) {
	if ownerID == "" {
		return false, fmt.Errorf("ownerID is empty")
	}

	tag, err := r.db.Exec(ctx,
		`UPDATE cart_items SET quantity = $3, updated_at = now()
		 WHERE owner_id = $1 AND product_id = $2`,
		ownerID, productID, quantity)
	if err != nil {
		return false, fmt.Errorf("update cart item quantity: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *cartRepository) DeleteItem(ctx context.Context, ownerID string, productID uuid.UUID) (bool, error) {
	if ownerID == "" {
		return false, fmt.Errorf("ownerID is empty")
	}

	tag, err := r.db.Exec(ctx,
		`DELETE FROM cart_items WHERE owner_id = $1 AND product_id = $2`,
		ownerID, productID)
	if err != nil {
		return false, fmt.Errorf("delete cart item: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *cartRepository) Clear(ctx context.Context, ownerID string) error {
	if ownerID == "" {
		return fmt.Errorf("ownerID is empty")
	}

	if _, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE owner_id = $1`, ownerID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}

	return nil
}

// LockOwner takes a transaction-scoped advisory lock keyed on the owner, so
// mutations to the same cart run one at a time while carts of different
// owners stay independent.
func (r *cartRepository) LockOwner(ctx context.Context, ownerID string) error {
	if ownerID == "" {
		return fmt.Errorf("ownerID is empty")
	}

	if _, err := r.db.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, ownerID); err != nil {
		return fmt.Errorf("lock owner[%s]: %w", ownerID, err)
	}

	return nil
}

func parseCurrency(code string) (currency.Unit, error) {
	parsed, err := currency.ParseISO(code)
	if err != nil {
		return currency.Unit{}, fmt.Errorf("currency[%s] is not valid: %w", code, err)
	}
	return parsed, nil
}
