package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// transitions is the single source of truth for the order state machine:
// PENDING -> CONFIRMED -> SHIPPED -> DELIVERED, with cancellation allowed
// from PENDING and CONFIRMED only.
var transitions = map[OrderStatus]map[OrderStatus]bool{
	OrderStatusPending: {
		OrderStatusConfirmed: true,
		OrderStatusCancelled: true,
	},
	OrderStatusConfirmed: {
		OrderStatusShipped:   true,
		OrderStatusCancelled: true,
	},
	OrderStatusShipped: {
		OrderStatusDelivered: true,
	},
}

func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	return transitions[s][target]
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// Cancellable reports whether stock restoration plus cancellation is still
// allowed from this status.
func (s OrderStatus) Cancellable() bool {
	return s.CanTransitionTo(OrderStatusCancelled)
}

func (s OrderStatus) String() string {
	return string(s)
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	switch status := OrderStatus(s); status {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return status, nil
	default:
		return "", fmt.Errorf("order status[%s]: %w", s, ErrInvalidArgument)
	}
}

type Order struct {
	ID              uuid.UUID
	OwnerID         string
	Items           []OrderItem
	Total           Money
	Status          OrderStatus
	ShippingAddress string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrderItem is a historical record copied from a cart line at checkout;
// it never changes after the order is created.
type OrderItem struct {
	ProductID uuid.UUID
	Quantity  int32
	Price     Money
}
