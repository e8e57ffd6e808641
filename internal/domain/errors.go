package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidTransition = errors.New("invalid order status transition")
	ErrConflict          = errors.New("conflict")
)

// InsufficientStockError names the product that could not be reserved,
// so a caller rejecting a multi-line checkout can report which line failed.
type InsufficientStockError struct {
	ProductID uuid.UUID
	Requested int32
	Available int32
}

func (e InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

func (e InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
