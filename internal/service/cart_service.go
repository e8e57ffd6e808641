package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaddai/storefront/internal/domain"
	"github.com/shaddai/storefront/internal/port"
	"github.com/shaddai/storefront/internal/repository"
	"go.uber.org/zap"
)

// CartService owns cart mutations. Every mutation runs in a transaction
// holding the owner's advisory lock, so two requests for the same user
// cannot interleave; carts of different users do not contend.
type CartService struct {
	pool   *pgxpool.Pool
	carts  port.CartRepository
	users  port.DirectoryRepository
	logger *zap.Logger
}

func NewCartService(pool *pgxpool.Pool, logger *zap.Logger) *CartService {
	return &CartService{
		pool:   pool,
		carts:  repository.NewCart(pool),
		users:  repository.NewUser(pool),
		logger: logger,
	}
}

// AddLine puts quantity units of a product into the owner's cart, creating
// the cart implicitly on first use. If the product is already in the cart
// the quantity is added to the existing line and availability is re-checked
// against the combined total; the line keeps its original price snapshot.
// Availability here is a plain read, the actual reservation happens at
// checkout.
func (s *CartService) AddLine(ctx context.Context, ownerID string, productID uuid.UUID, quantity int32) (domain.Cart, error) {
	if quantity <= 0 {
		return domain.Cart{}, fmt.Errorf("quantity[%d] must be positive: %w", quantity, domain.ErrInvalidArgument)
	}

	exists, err := s.users.UserExists(ctx, ownerID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("users.UserExists: %w", err)
	}
	if !exists {
		return domain.Cart{}, fmt.Errorf("user[%s]: %w", ownerID, domain.ErrNotFound)
	}

	cart, err := repository.WithTx(ctx, s.pool, func(tx pgx.Tx) (domain.Cart, error) {
		carts := repository.NewCartWithTx(tx)
		catalog := repository.NewProductWithTx(tx)

		if err := carts.LockOwner(ctx, ownerID); err != nil {
			return domain.Cart{}, fmt.Errorf("carts.LockOwner: %w", err)
		}

		product, err := catalog.GetProduct(ctx, productID)
		if err != nil {
			return domain.Cart{}, fmt.Errorf("catalog.GetProduct: %w", err)
		}
		if !product.Active {
			return domain.Cart{}, fmt.Errorf("product[%s] is not active: %w", productID, domain.ErrNotFound)
		}

		existing, found, err := s.cartLine(ctx, carts, ownerID, productID)
		if err != nil {
			return domain.Cart{}, err
		}

		newQuantity := quantity
		price := product.Price
		if found {
			newQuantity += existing.Quantity
			price = existing.Price
		}

		if newQuantity > product.Stock {
			return domain.Cart{}, domain.InsufficientStockError{
				ProductID: productID,
				Requested: newQuantity,
				Available: product.Stock,
			}
		}

		item := domain.CartItem{
			ProductID: productID,
			Quantity:  newQuantity,
			Price:     price,
		}
		if err := carts.UpsertItem(ctx, ownerID, item); err != nil {
			return domain.Cart{}, fmt.Errorf("carts.UpsertItem: %w", err)
		}

		return carts.GetCart(ctx, ownerID)
	})
	if err != nil {
		return domain.Cart{}, err
	}

	s.logger.Debug("cart line added",
		zap.String("owner_id", ownerID),
		zap.String("product_id", productID.String()),
		zap.Int32("quantity", quantity))

	return cart, nil
}

// SetLineQuantity overwrites a line's quantity, keeping its price snapshot.
// A non-positive quantity removes the line instead.
func (s *CartService) SetLineQuantity(ctx context.Context, ownerID string, productID uuid.UUID, quantity int32) (domain.Cart, error) {
	if quantity <= 0 {
		return s.RemoveLine(ctx, ownerID, productID)
	}

	return repository.WithTx(ctx, s.pool, func(tx pgx.Tx) (domain.Cart, error) {
		carts := repository.NewCartWithTx(tx)
		catalog := repository.NewProductWithTx(tx)

		if err := carts.LockOwner(ctx, ownerID); err != nil {
			return domain.Cart{}, fmt.Errorf("carts.LockOwner: %w", err)
		}

		product, err := catalog.GetProduct(ctx, productID)
		if err != nil {
			return domain.Cart{}, fmt.Errorf("catalog.GetProduct: %w", err)
		}

		if quantity > product.Stock {
			return domain.Cart{}, domain.InsufficientStockError{
				ProductID: productID,
				Requested: quantity,
				Available: product.Stock,
			}
		}

		updated, err := carts.SetQuantity(ctx, ownerID, productID, quantity)
		if err != nil {
			return domain.Cart{}, fmt.Errorf("carts.SetQuantity: %w", err)
		}
		if !updated {
			return domain.Cart{}, fmt.Errorf("cart line for product[%s]: %w", productID, domain.ErrNotFound)
		}

		return carts.GetCart(ctx, ownerID)
	})
}

// RemoveLine deletes a line. Removing a line that is not there is reported
// as NotFound rather than ignored, to surface client bugs.
func (s *CartService) RemoveLine(ctx context.Context, ownerID string, productID uuid.UUID) (domain.Cart, error) {
	return repository.WithTx(ctx, s.pool, func(tx pgx.Tx) (domain.Cart, error) {
		carts := repository.NewCartWithTx(tx)

		if err := carts.LockOwner(ctx, ownerID); err != nil {
			return domain.Cart{}, fmt.Errorf("carts.LockOwner: %w", err)
		}

		deleted, err := carts.DeleteItem(ctx, ownerID, productID)
		if err != nil {
			return domain.Cart{}, fmt.Errorf("carts.DeleteItem: %w", err)
		}
		if !deleted {
			return domain.Cart{}, fmt.Errorf("cart line for product[%s]: %w", productID, domain.ErrNotFound)
		}

		return carts.GetCart(ctx, ownerID)
	})
}

// Clear empties the cart. Clearing an already empty cart succeeds.
func (s *CartService) Clear(ctx context.Context, ownerID string) error {
	_, err := repository.WithTx(ctx, s.pool, func(tx pgx.Tx) (struct{}, error) {
		carts := repository.NewCartWithTx(tx)

		if err := carts.LockOwner(ctx, ownerID); err != nil {
			return struct{}{}, fmt.Errorf("carts.LockOwner: %w", err)
		}

		if err := carts.Clear(ctx, ownerID); err != nil {
			return struct{}{}, fmt.Errorf("carts.Clear: %w", err)
		}

		return struct{}{}, nil
	})
	return err
}

// Snapshot returns the current cart and its total. Pure read.
func (s *CartService) Snapshot(ctx context.Context, ownerID string) (domain.Cart, domain.Money, error) {
	cart, err := s.carts.GetCart(ctx, ownerID)
	if err != nil {
		return domain.Cart{}, domain.Money{}, fmt.Errorf("carts.GetCart: %w", err)
	}

	total, err := cart.Total()
	if err != nil {
		return domain.Cart{}, domain.Money{}, fmt.Errorf("cart.Total: %w", err)
	}

	return cart, total, nil
}

func (s *CartService) cartLine(ctx context.Context, carts port.CartRepository, ownerID string, productID uuid.UUID) (domain.CartItem, bool, error) {
	item, found, err := carts.GetItem(ctx, ownerID, productID)
	if err != nil {
		return domain.CartItem{}, false, fmt.Errorf("carts.GetItem: %w", err)
	}
	return item, found, nil
}
