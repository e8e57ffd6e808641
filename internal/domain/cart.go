package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Cart struct {
	OwnerID string
	Items   []CartItem

	UpdatedAt time.Time
}

type CartItem struct {
	ProductID uuid.UUID
	Quantity  int32
	Price     Money // unit price snapshot taken when the line was created

	CreatedAt time.Time
}

// Total sums quantity times snapshot price over all lines.
// An empty cart has a zero total with no currency.
func (c Cart) Total() (Money, error) {
	if len(c.Items) == 0 {
		return Money{}, nil
	}

	total := c.Items[0].Price.MulInt(c.Items[0].Quantity)
	for _, item := range c.Items[1:] {
		sum, err := total.Add(item.Price.MulInt(item.Quantity))
		if err != nil {
			return Money{}, fmt.Errorf("total.Add: %w", err)
		}
		total = sum
	}

	return total, nil
}

// Item returns the line for the given product, if present.
func (c Cart) Item(productID uuid.UUID) (CartItem, bool) {
	for _, item := range c.Items {
		if item.ProductID == productID {
			return item, true
		}
	}
	return CartItem{}, false
}
