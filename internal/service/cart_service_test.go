package service_test

import (
	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/shaddai/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *serviceSuite) TestAddLine() {
	t := suite.T()
	ctx := t.Context()

	user := suite.createUser()
	product := suite.createProduct("10.00", 5)

	cart, err := suite.carts.AddLine(ctx, user.ID, product.ID, 2)
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	item := cart.Items[0]
	assert.Equal(t, product.ID, item.ProductID)
	assert.Equal(t, int32(2), item.Quantity)
	assert.True(t, item.Price.Amount.Equal(product.Price.Amount))
	assert.False(t, cart.UpdatedAt.IsZero())
}

func (suite *serviceSuite) TestAddLineValidation() {
	t := suite.T()
	ctx := t.Context()

	user := suite.createUser()
	product := suite.createProduct("10.00", 5)

	tests := []struct {
		name      string
		ownerID   string
		productID uuid.UUID
		quantity  int32
		wantError error
	}{
		{"zero quantity", user.ID, product.ID, 0, domain.ErrInvalidArgument},
		{"negative quantity", user.ID, product.ID, -1, domain.ErrInvalidArgument},
		{"unknown product", user.ID, uuid.MustParse(gofakeit.UUID()), 1, domain.ErrNotFound},
		{"unknown user", gofakeit.UUID(), product.ID, 1, domain.ErrNotFound},
		{"quantity above stock", user.ID, product.ID, 6, domain.ErrInsufficientStock},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			_, err := suite.carts.AddLine(ctx, tt.ownerID, tt.productID, tt.quantity)
			require.ErrorIs(suite.T(), err, tt.wantError)
		})
	}
}

func (suite *serviceSuite) TestAddLineInactiveProduct() {
	t := suite.T()
	ctx := t.Context()

	user := suite.createUser()
	product := suite.createProduct("10.00", 5)

	_, err := suite.pool.Exec(ctx, `UPDATE products SET active = FALSE WHERE id = $1`, product.ID)
	require.NoError(t, err)

	_, err = suite.carts.AddLine(ctx, user.ID, product.ID, 1)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

// Adding a product twice accumulates the quantity and re-checks
// availability against the combined total.
func (suite *serviceSuite) TestAddLineAccumulates() {
	t := suite.T()
	ctx := t.Context()

	user := suite.createUser()
	product := suite.createProduct("10.00", 3)

	_, err := suite.carts.AddLine(ctx, user.ID, product.ID, 2)
	require.NoError(t, err)

	_, err = suite.carts.AddLine(ctx, user.ID, product.ID, 2)

	var insufficient domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, product.ID, insufficient.ProductID)
	assert.Equal(t, int32(4), insufficient.Requested)
	assert.Equal(t, int32(3), insufficient.Available)

	cart, err := suite.carts.AddLine(ctx, user.ID, product.ID, 1)
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, int32(3), cart.Items[0].Quantity)
}

// The snapshot price is taken when the line is created; repeated adds and
// catalog price changes do not reprice it.
func (suite *serviceSuite) TestAddLineKeepsPriceSnapshot() {
	t := suite.T()
	ctx := t.Context()

	user := suite.createUser()
	product := suite.createProduct("10.00", 10)

	_, err := suite.carts.AddLine(ctx, user.ID, product.ID, 1)
	require.NoError(t, err)

	suite.setCatalogPrice(product.ID, "25.00")

	cart, err := suite.carts.AddLine(ctx, user.ID, product.ID, 1)
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.True(t, cart.Items[0].Price.Amount.Equal(decimal.RequireFromString("10.00")))
}

func (suite *serviceSuite) TestSetLineQuantity() {
	t := suite.T()
	ctx := t.Context()

	user := suite.createUser()
	product := suite.createProduct("4.00", 10)

	_, err := suite.carts.AddLine(ctx, user.ID, product.ID, 2)
	require.NoError(t, err)

	cart, err := suite.carts.SetLineQuantity(ctx, user.ID, product.ID, 7)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, int32(7), cart.Items[0].Quantity)

	// above stock
	_, err = suite.carts.SetLineQuantity(ctx, user.ID, product.ID, 11)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	// zero removes the line
	cart, err = suite.carts.SetLineQuantity(ctx, user.ID, product.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	// missing line
	_, err = suite.carts.SetLineQuantity(ctx, user.ID, product.ID, 1)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

// Removing the same line twice fails on the second call.
func (suite *serviceSuite) TestRemoveLineTwice() {
	t := suite.T()
	ctx := t.Context()

	user := suite.createUser()
	product := suite.createProduct("4.00", 10)

	_, err := suite.carts.AddLine(ctx, user.ID, product.ID, 2)
	require.NoError(t, err)

	cart, err := suite.carts.RemoveLine(ctx, user.ID, product.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	_, err = suite.carts.RemoveLine(ctx, user.ID, product.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func (suite *serviceSuite) TestClear() {
	t := suite.T()
	ctx := t.Context()

	user := suite.createUser()
	product := suite.createProduct("4.00", 10)

	_, err := suite.carts.AddLine(ctx, user.ID, product.ID, 2)
	require.NoError(t, err)

	require.NoError(t, suite.carts.Clear(ctx, user.ID))

	cart, total, err := suite.carts.Snapshot(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.True(t, total.Amount.IsZero())

	// clearing an empty (or never used) cart is fine
	require.NoError(t, suite.carts.Clear(ctx, user.ID))
	require.NoError(t, suite.carts.Clear(ctx, gofakeit.UUID()))
}

func (suite *serviceSuite) TestSnapshot() {
	t := suite.T()
	ctx := t.Context()

	user := suite.createUser()
	first := suite.createProduct("10.00", 10)
	second := suite.createProduct("2.50", 10)

	_, err := suite.carts.AddLine(ctx, user.ID, first.ID, 2)
	require.NoError(t, err)
	_, err = suite.carts.AddLine(ctx, user.ID, second.ID, 4)
	require.NoError(t, err)

	cart, total, err := suite.carts.Snapshot(ctx, user.ID)
	require.NoError(t, err)

	assert.Len(t, cart.Items, 2)
	assert.True(t, total.Amount.Equal(decimal.RequireFromString("30.00")),
		"got total %s", total.Amount)
}
