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
)

type orderRepository struct {
	db DBTX
}

func NewOrder(pool *pgxpool.Pool) port.OrderRepository {
	return &orderRepository{db: pool}
}

func NewOrderWithTx(tx pgx.Tx) port.OrderRepository {
	return &orderRepository{db: tx}
}

func (r *orderRepository) InsertOrder(ctx context.Context, order domain.Order) error {
	if order.ID == uuid.Nil {
		return fmt.Errorf("order ID is empty")
	}
	if order.OwnerID == "" {
		return fmt.Errorf("ownerID is empty")
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO orders (id, owner_id, total_amount, total_currency, status, shipping_address)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		order.ID, order.OwnerID, order.Total.Amount, order.Total.Currency.String(),
		order.Status.String(), order.ShippingAddress)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, item := range order.Items {
		_, err := r.db.Exec(ctx,
			`INSERT INTO order_items (order_id, product_id, quantity, price_amount, price_currency)
			 VALUES ($1, $2, $3, $4, $5)`,
			order.ID, item.ProductID, item.Quantity, item.Price.Amount, item.Price.Currency.String())
		if err != nil {
			return fmt.Errorf("insert order item[%s]: %w", item.ProductID, err)
		}
	}

	return nil
}

func (r *orderRepository) GetOrder(ctx context.Context, orderID uuid.UUID) (domain.Order, error) {
	return r.getOrder(ctx, orderID, false)
}

func (r *orderRepository) GetOrderForUpdate(ctx context.Context, orderID uuid.UUID) (domain.Order, error) {
	return r.getOrder(ctx, orderID, true)
}

func (r *orderRepository) getOrder(ctx context.Context, orderID uuid.UUID, forUpdate bool) (domain.Order, error) {
	query := `SELECT id, owner_id, total_amount, total_currency, status, shipping_address, created_at, updated_at
	          FROM orders WHERE id = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}

	order, err := r.scanOrder(r.db.QueryRow(ctx, query, orderID))
	if err != nil {
		return domain.Order{}, err
	}

	order.Items, err = r.getOrderItems(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}

	return order, nil
}

func (r *orderRepository) getOrderItems(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error) {
	rows, err := r.db.Query(ctx,
		`SELECT product_id, quantity, price_amount, price_currency
		 FROM order_items
		 WHERE order_id = $1
		 ORDER BY product_id`,
		orderID)
	if err != nil {
		return nil, fmt.Errorf("select order_items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var (
			item          domain.OrderItem
			priceCurrency string
		)
		if err := rows.Scan(&item.ProductID, &item.Quantity, &item.Price.Amount, &priceCurrency); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}

		item.Price.Currency, err = parseCurrency(priceCurrency)
		if err != nil {
			return nil, err
		}

		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	return items, nil
}

// UpdateStatus is guarded by the expected current status. Zero rows affected
// on an existing order means another caller moved it first.
func (r *orderRepository) UpdateStatus(ctx context.Context, orderID uuid.UUID, from, to domain.OrderStatus) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE orders SET status = $3, updated_at = now()
		 WHERE id = $1 AND status = $2`,
		orderID, from.String(), to.String())
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, orderID).Scan(&exists); err != nil {
		return fmt.Errorf("select order existence: %w", err)
	}
	if !exists {
		return fmt.Errorf("order[%s]: %w", orderID, domain.ErrNotFound)
	}

	return fmt.Errorf("order[%s] is not %s anymore: %w", orderID, from, domain.ErrConflict)
}

func (r *orderRepository) ListOrders(ctx context.Context) ([]domain.Order, error) {
	return r.listOrders(ctx,
		`SELECT id, owner_id, total_amount, total_currency, status, shipping_address, created_at, updated_at
		 FROM orders ORDER BY created_at DESC`)
}

func (r *orderRepository) ListOrdersByOwner(ctx context.Context, ownerID string) ([]domain.Order, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("ownerID is empty")
	}

	return r.listOrders(ctx,
		`SELECT id, owner_id, total_amount, total_currency, status, shipping_address, created_at, updated_at
		 FROM orders WHERE owner_id = $1 ORDER BY created_at DESC`,
		ownerID)
}

func (r *orderRepository) ListOrdersByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	return r.listOrders(ctx,
		`SELECT id, owner_id, total_amount, total_currency, status, shipping_address, created_at, updated_at
		 FROM orders WHERE status = $1 ORDER BY created_at DESC`,
		status.String())
}

func (r *orderRepository) ListOrdersByDateRange(ctx context.Context, from, to time.Time) ([]domain.Order, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("range end[%s] precedes start[%s]: %w", to, from, domain.ErrInvalidArgument)
	}

	return r.listOrders(ctx,
		`SELECT id, owner_id, total_amount, total_currency, status, shipping_address, created_at, updated_at
		 FROM orders WHERE created_at BETWEEN $1 AND $2 ORDER BY created_at DESC`,
		from, to)
}

func (r *orderRepository) listOrders(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, err := r.scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}
	rows.Close()

	for i := range orders {
		orders[i].Items, err = r.getOrderItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
	}

	return orders, nil
}

func (r *orderRepository) scanOrder(row pgx.Row) (domain.Order, error) {
	var (
		order         domain.Order
		totalCurrency string
		status        string
	)
	err := row.Scan(&order.ID, &order.OwnerID, &order.Total.Amount, &totalCurrency,
		&status, &order.ShippingAddress, &order.CreatedAt, &order.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, fmt.Errorf("order: %w", domain.ErrNotFound)
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("scan order: %w", err)
	}

	order.Total.Currency, err = parseCurrency(totalCurrency)
	if err != nil {
		return domain.Order{}, err
	}

	order.Status, err = domain.ParseOrderStatus(status)
	if err != nil {
		return domain.Order{}, err
	}

	return order, nil
}
