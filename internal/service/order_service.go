package service

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaddai/storefront/internal/domain"
	"github.com/shaddai/storefront/internal/port"
	"github.com/shaddai/storefront/internal/repository"
	"go.uber.org/zap"
)

// OrderService drives the cart-to-order transition and the order status
// lifecycle. Checkout and cancellation each run as one transaction, so
// stock reservation, order rows and the cart can never be observed
// half-applied.
type OrderService struct {
	pool   *pgxpool.Pool
	orders port.OrderRepository
	users  port.DirectoryRepository
	logger *zap.Logger
}

func NewOrderService(pool *pgxpool.Pool, logger *zap.Logger) *OrderService {
	return &OrderService{
		pool:   pool,
		orders: repository.NewOrder(pool),
		users:  repository.NewUser(pool),
		logger: logger,
	}
}

// Checkout converts the owner's cart into a PENDING order: it reserves
// stock for every line against the ledger, copies the lines with their
// snapshot prices, and drains the cart. The transaction aborts on the first
// line that cannot be reserved, which undoes every reservation already made.
func (s *OrderService) Checkout(ctx context.Context, ownerID, shippingAddress string) (domain.Order, error) {
	if ownerID == "" {
		return domain.Order{}, fmt.Errorf("ownerID is empty")
	}
	if strings.TrimSpace(shippingAddress) == "" {
		return domain.Order{}, fmt.Errorf("shipping address is blank: %w", domain.ErrInvalidArgument)
	}

	exists, err := s.users.UserExists(ctx, ownerID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("users.UserExists: %w", err)
	}
	if !exists {
		return domain.Order{}, fmt.Errorf("user[%s]: %w", ownerID, domain.ErrNotFound)
	}

	order, err := repository.WithTx(ctx, s.pool, func(tx pgx.Tx) (domain.Order, error) {
		carts := repository.NewCartWithTx(tx)
		inventory := repository.NewInventoryWithTx(tx)
		orders := repository.NewOrderWithTx(tx)

		if err := carts.LockOwner(ctx, ownerID); err != nil {
			return domain.Order{}, fmt.Errorf("carts.LockOwner: %w", err)
		}

		cart, err := carts.GetCart(ctx, ownerID)
		if err != nil {
			return domain.Order{}, fmt.Errorf("carts.GetCart: %w", err)
		}
		if len(cart.Items) == 0 {
			return domain.Order{}, fmt.Errorf("owner[%s]: %w", ownerID, domain.ErrEmptyCart)
		}

		// Reserve in one global order: two checkouts holding the same
		// products must take the row locks in the same direction, or
		// Postgres aborts one of them with a deadlock.
		lines := slices.Clone(cart.Items)
		slices.SortFunc(lines, func(a, b domain.CartItem) int {
			return bytes.Compare(a.ProductID[:], b.ProductID[:])
		})

		items := make([]domain.OrderItem, 0, len(lines))
		for _, line := range lines {
			if _, err := inventory.Reserve(ctx, line.ProductID, line.Quantity); err != nil {
				return domain.Order{}, fmt.Errorf("inventory.Reserve: %w", err)
			}

			items = append(items, domain.OrderItem{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				Price:     line.Price,
			})
		}

		total, err := cart.Total()
		if err != nil {
			return domain.Order{}, fmt.Errorf("cart.Total: %w", err)
		}

		order := domain.Order{
			ID:              uuid.New(),
			OwnerID:         ownerID,
			Items:           items,
			Total:           total,
			Status:          domain.OrderStatusPending,
			ShippingAddress: shippingAddress,
		}
		if err := orders.InsertOrder(ctx, order); err != nil {
			return domain.Order{}, fmt.Errorf("orders.InsertOrder: %w", err)
		}

		if err := carts.Clear(ctx, ownerID); err != nil {
			return domain.Order{}, fmt.Errorf("carts.Clear: %w", err)
		}

		return orders.GetOrder(ctx, order.ID)
	})
	if err != nil {
		return domain.Order{}, err
	}

	s.logger.Info("checkout completed",
		zap.String("owner_id", ownerID),
		zap.String("order_id", order.ID.String()),
		zap.String("total", order.Total.String()),
		zap.Int("lines", len(order.Items)))

	return order, nil
}

// Advance moves an order along the PENDING -> CONFIRMED -> SHIPPED ->
// DELIVERED path. Cancellation goes through Cancel, which also restores
// stock.
func (s *OrderService) Advance(ctx context.Context, orderID uuid.UUID, target domain.OrderStatus) (domain.Order, error) {
	if target == domain.OrderStatusCancelled {
		return domain.Order{}, fmt.Errorf("cancellation must go through Cancel: %w", domain.ErrInvalidTransition)
	}

	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("orders.GetOrder: %w", err)
	}

	if !order.Status.CanTransitionTo(target) {
		return domain.Order{}, fmt.Errorf("order[%s] %s -> %s: %w",
			orderID, order.Status, target, domain.ErrInvalidTransition)
	}

	if err := s.orders.UpdateStatus(ctx, orderID, order.Status, target); err != nil {
		return domain.Order{}, fmt.Errorf("orders.UpdateStatus: %w", err)
	}

	s.logger.Info("order advanced",
		zap.String("order_id", orderID.String()),
		zap.Stringer("from", order.Status),
		zap.Stringer("to", target))

	return s.orders.GetOrder(ctx, orderID)
}

// Cancel restores every reserved line to the ledger and marks the order
// CANCELLED, in one transaction. Only PENDING and CONFIRMED orders can be
// cancelled; a second cancel finds the order already CANCELLED and fails
// before touching stock, so nothing is ever credited twice.
func (s *OrderService) Cancel(ctx context.Context, orderID uuid.UUID) (domain.Order, error) {
	order, err := repository.WithTx(ctx, s.pool, func(tx pgx.Tx) (domain.Order, error) {
		orders := repository.NewOrderWithTx(tx)
		inventory := repository.NewInventoryWithTx(tx)

		order, err := orders.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return domain.Order{}, fmt.Errorf("orders.GetOrderForUpdate: %w", err)
		}

		if !order.Status.Cancellable() {
			return domain.Order{}, fmt.Errorf("order[%s] in status %s: %w",
				orderID, order.Status, domain.ErrInvalidTransition)
		}

		for _, item := range order.Items {
			if _, err := inventory.Restore(ctx, item.ProductID, item.Quantity); err != nil {
				return domain.Order{}, fmt.Errorf("inventory.Restore: %w", err)
			}
		}

		if err := orders.UpdateStatus(ctx, orderID, order.Status, domain.OrderStatusCancelled); err != nil {
			return domain.Order{}, fmt.Errorf("orders.UpdateStatus: %w", err)
		}

		return orders.GetOrder(ctx, orderID)
	})
	if err != nil {
		return domain.Order{}, err
	}

	s.logger.Info("order cancelled",
		zap.String("order_id", orderID.String()),
		zap.Int("restored_lines", len(order.Items)))

	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, orderID uuid.UUID) (domain.Order, error) {
	return s.orders.GetOrder(ctx, orderID)
}

func (s *OrderService) ListOrders(ctx context.Context) ([]domain.Order, error) {
	return s.orders.ListOrders(ctx)
}

func (s *OrderService) ListOrdersByOwner(ctx context.Context, ownerID string) ([]domain.Order, error) {
	return s.orders.ListOrdersByOwner(ctx, ownerID)
}

func (s *OrderService) ListOrdersByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	return s.orders.ListOrdersByStatus(ctx, status)
}

func (s *OrderService) ListOrdersByDateRange(ctx context.Context, from, to time.Time) ([]domain.Order, error) {
	return s.orders.ListOrdersByDateRange(ctx, from, to)
}

// recentOrdersWindow bounds ListRecentOrders to the last 30 days.
const recentOrdersWindow = 30 * 24 * time.Hour

func (s *OrderService) ListRecentOrders(ctx context.Context) ([]domain.Order, error) {
	now := time.Now()
	return s.orders.ListOrdersByDateRange(ctx, now.Add(-recentOrdersWindow), now)
}
