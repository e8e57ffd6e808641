package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

type Money struct {
	Amount   decimal.Decimal
	Currency currency.Unit
}

func (m Money) IsPositive() bool {
	return m.Amount.IsPositive()
}

// MulInt scales the amount by a whole quantity, keeping the currency.
func (m Money) MulInt(n int32) Money {
	return Money{
		Amount:   m.Amount.Mul(decimal.NewFromInt32(n)),
		Currency: m.Currency,
	}
}

// Add fails on a currency mismatch rather than guessing a conversion.
func (m Money) Add(other Money) (Money, error) {
	if m.Currency.String() != other.Currency.String() {
		return Money{}, fmt.Errorf("currency mismatch: %s vs %s", m.Currency, other.Currency)
	}

	return Money{
		Amount:   m.Amount.Add(other.Amount),
		Currency: m.Currency,
	}, nil
}

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Amount.String(), m.Currency)
}
