package builder

import (
	"time"

	"commerce-core/internal/domain/order"

	"github.com/google/uuid"
)

type OrderBuilder struct {
	orderNumber   string
	owner         order.Owner
	method        order.PaymentMethod
	transactionID string
	amounts       order.Breakdown
	lines         []order.LineItem
	shipping      order.Address
	billing       order.Address
	couponID      *uuid.UUID
	createdAt     time.Time
}

func NewOrderBuilder() *OrderBuilder {
	return &OrderBuilder{
		orderNumber:   "ORD-20260615-TESTTEST",
		owner:         order.NewUserOwner(uuid.New()),
		method:        order.MethodGateway,
		transactionID: "0123456789abcdef0123456789abcdef",
		amounts: order.Breakdown{
			TotalCents:    20000,
			DiscountCents: 1500,
			ShippingCents: 6000,
			TaxCents:      0,
		},
		lines: []order.LineItem{
			{
				SKU:            order.SKU{ProductID: uuid.New()},
				ProductName:    "Leather Wallet",
				SKUCode:        "LW-01",
				Quantity:       2,
				UnitPriceCents: 10000,
				TotalCents:     20000,
			},
		},
		shipping: order.Address{
			Name:     "Test Customer",
			Phone:    "+8801700000000",
			Email:    "customer@example.com",
			Line1:    "House 1, Road 1",
			City:     "Dhaka",
			Postcode: "1212",
			Country:  "Bangladesh",
		},
		billing: order.Address{
			Name:    "Test Customer",
			City:    "Dhaka",
			Country: "Bangladesh",
		},
		createdAt: time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC),
	}
}

func (b *OrderBuilder) WithOrderNumber(n string) *OrderBuilder {
	b.orderNumber = n
	return b
}

func (b *OrderBuilder) WithOwner(o order.Owner) *OrderBuilder {
	b.owner = o
	return b
}

func (b *OrderBuilder) WithMethod(m order.PaymentMethod) *OrderBuilder {
	b.method = m
	return b
}

func (b *OrderBuilder) WithTransactionID(id string) *OrderBuilder {
	b.transactionID = id
	return b
}

func (b *OrderBuilder) WithAmounts(a order.Breakdown) *OrderBuilder {
	b.amounts = a
	return b
}

func (b *OrderBuilder) WithLines(lines ...order.LineItem) *OrderBuilder {
	b.lines = lines
	return b
}

func (b *OrderBuilder) WithCouponID(id uuid.UUID) *OrderBuilder {
	b.couponID = &id
	return b
}

func (b *OrderBuilder) BuildDomain() (*order.Order, error) {
	return order.NewOrder(
		b.orderNumber,
		b.owner,
		b.method,
		b.transactionID,
		b.amounts,
		b.lines,
		b.shipping,
		b.billing,
		b.couponID,
		b.createdAt,
	)
}
