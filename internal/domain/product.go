package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product is the catalog view of an item. Stock is owned by the inventory
// ledger; nothing else mutates it.
type Product struct {
	ID          uuid.UUID
	Name        string
	Description string
	Price       Money
	Stock       int32
	Active      bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
