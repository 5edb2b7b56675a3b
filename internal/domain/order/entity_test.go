//go:build unit

package order_test

import (
	"testing"

	"commerce-core/internal/domain/order"
	"commerce-core/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrder(t *testing.T) {
	t.Run("basic success case", func(t *testing.T) {
		o, err := builder.NewOrderBuilder().BuildDomain()
		require.NoError(t, err)
		require.NotNil(t, o)

		assert.NotEqual(t, uuid.Nil, o.ID())
		assert.Equal(t, order.StatusPending, o.Status())
		assert.Equal(t, order.PaymentPending, o.PaymentStatus())
		assert.Len(t, o.Lines(), 1)
	})

	type testCase struct {
		name   string
		mutate func(*builder.OrderBuilder)
		errIs  error
	}

	cases := []testCase{
		{
			name:   "blank order number",
			mutate: func(b *builder.OrderBuilder) { b.WithOrderNumber("") },
			errIs:  order.ErrBlankOrderNumber,
		},
		{
			name:   "blank transaction id",
			mutate: func(b *builder.OrderBuilder) { b.WithTransactionID("") },
			errIs:  order.ErrBlankTransactionID,
		},
		{
			name:   "no owner",
			mutate: func(b *builder.OrderBuilder) { b.WithOwner(order.Owner{}) },
			errIs:  order.ErrOwnerUnset,
		},
		{
			name:   "invalid payment method",
			mutate: func(b *builder.OrderBuilder) { b.WithMethod(order.PaymentMethod("WIRE")) },
			errIs:  order.ErrInvalidPaymentMethod,
		},
		{
			name: "discount above total",
			mutate: func(b *builder.OrderBuilder) {
				b.WithAmounts(order.Breakdown{TotalCents: 100, DiscountCents: 200})
			},
			errIs: order.ErrDiscountExceedsTotal,
		},
		{
			name:   "no line items",
			mutate: func(b *builder.OrderBuilder) { b.WithLines() },
			errIs:  order.ErrEmptyLineItems,
		},
		{
			name: "zero quantity line",
			mutate: func(b *builder.OrderBuilder) {
				b.WithLines(order.LineItem{
					SKU:            order.SKU{ProductID: uuid.New()},
					ProductName:    "x",
					Quantity:       0,
					UnitPriceCents: 100,
				})
			},
			errIs: order.ErrInvalidQuantity,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := builder.NewOrderBuilder()
			tc.mutate(b)
			_, err := b.BuildDomain()
			assert.ErrorIs(t, err, tc.errIs)
		})
	}
}

func TestBreakdown(t *testing.T) {
	b := order.Breakdown{
		TotalCents:    20000,
		DiscountCents: 1500,
		ShippingCents: 6000,
		TaxCents:      500,
	}
	assert.Equal(t, int64(25000), b.FinalCents())
	assert.NoError(t, b.Validate())

	neg := order.Breakdown{TotalCents: -1}
	assert.ErrorIs(t, neg.Validate(), order.ErrNegativeAmount)
}

func TestLinesAreFrozen(t *testing.T) {
	line := order.LineItem{
		SKU:            order.SKU{ProductID: uuid.New()},
		ProductName:    "Leather Wallet",
		Quantity:       1,
		UnitPriceCents: 20000,
		TotalCents:     20000,
	}
	o, err := builder.NewOrderBuilder().WithLines(line).BuildDomain()
	require.NoError(t, err)

	// Mutating what Lines() returns must not leak into the order.
	got := o.Lines()
	got[0].ProductName = "Renamed After Purchase"
	got[0].UnitPriceCents = 1

	again := o.Lines()
	assert.Equal(t, "Leather Wallet", again[0].ProductName)
	assert.Equal(t, int64(20000), again[0].UnitPriceCents)
}

func TestOwner(t *testing.T) {
	userID := uuid.New()
	u := order.NewUserOwner(userID)
	require.NoError(t, u.Validate())
	assert.False(t, u.IsGuest())
	assert.Equal(t, userID, *u.UserID())

	g := order.NewGuestOwner("guest-abc")
	require.NoError(t, g.Validate())
	assert.True(t, g.IsGuest())
}

func TestDeriveInvoice(t *testing.T) {
	o, err := builder.NewOrderBuilder().BuildDomain()
	require.NoError(t, err)

	inv := order.DeriveInvoice(o)
	assert.Equal(t, o.ID(), inv.OrderID)
	assert.Equal(t, o.OrderNumber(), inv.OrderNumber)
	assert.Equal(t, order.InvoiceUnpaid, inv.Status)
	assert.Equal(t, o.Amounts().FinalCents(), inv.AmountCents)
}
