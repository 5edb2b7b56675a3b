package builder

import (
	"time"

	"commerce-core/internal/domain/order"
	reqdto "commerce-core/internal/handler/dto/request"
	"commerce-core/internal/usecase/commands"
	"commerce-core/internal/usecase/queries"

	"github.com/google/uuid"
)

// CheckoutBuilder produces request DTOs, command results, and query views
// for handler tests so each test only spells out what it cares about.
type CheckoutBuilder struct {
	orderID       uuid.UUID
	orderNumber   string
	transactionID string
	method        order.PaymentMethod
	status        order.Status
	paymentStatus order.PaymentStatus
	zoneID        uuid.UUID
	couponCode    *string
	createdAt     time.Time
}

func NewCheckoutBuilder() *CheckoutBuilder {
	return &CheckoutBuilder{
		orderID:       uuid.New(),
		orderNumber:   "ORD-20260615-TESTTEST",
		transactionID: "0123456789abcdef0123456789abcdef",
		method:        order.MethodCOD,
		status:        order.StatusPending,
		paymentStatus: order.PaymentPending,
		zoneID:        uuid.New(),
		createdAt:     time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC),
	}
}

func (b *CheckoutBuilder) WithOrderID(id uuid.UUID) *CheckoutBuilder {
	b.orderID = id
	return b
}

func (b *CheckoutBuilder) WithMethod(m order.PaymentMethod) *CheckoutBuilder {
	b.method = m
	return b
}

func (b *CheckoutBuilder) WithStatuses(s order.Status, p order.PaymentStatus) *CheckoutBuilder {
	b.status = s
	b.paymentStatus = p
	return b
}

func (b *CheckoutBuilder) WithCouponCode(code string) *CheckoutBuilder {
	b.couponCode = &code
	return b
}

func (b *CheckoutBuilder) BuildCreateRequestDTO() *reqdto.CreateOrderRequest {
	return &reqdto.CreateOrderRequest{
		PaymentMethod:  string(b.method),
		DeliveryZoneID: b.zoneID,
		CouponCode:     b.couponCode,
		ShippingAddress: reqdto.AddressPayload{
			Name:     "Test Customer",
			Phone:    "+8801700000000",
			Email:    "customer@example.com",
			Line1:    "House 1, Road 1",
			City:     "Dhaka",
			Postcode: "1212",
			Country:  "Bangladesh",
		},
	}
}

func (b *CheckoutBuilder) BuildCreateResult() *commands.CreateOrderResult {
	return &commands.CreateOrderResult{
		OrderID:       b.orderID,
		OrderNumber:   b.orderNumber,
		TransactionID: b.transactionID,
		Status:        b.status,
		PaymentStatus: b.paymentStatus,
		PaymentMethod: b.method,
		Amounts: order.Breakdown{
			TotalCents:    20000,
			DiscountCents: 0,
			ShippingCents: 6000,
			TaxCents:      0,
		},
	}
}

func (b *CheckoutBuilder) BuildView() *queries.OrderView {
	return &queries.OrderView{
		ID:            b.orderID,
		OrderNumber:   b.orderNumber,
		Status:        b.status,
		PaymentStatus: b.paymentStatus,
		PaymentMethod: b.method,
		TransactionID: b.transactionID,
		TotalCents:    20000,
		ShippingCents: 6000,
		FinalCents:    26000,
		Lines: []queries.OrderLineView{
			{
				ProductID:      uuid.New(),
				ProductName:    "Leather Wallet",
				SKUCode:        "LW-01",
				Quantity:       2,
				UnitPriceCents: 10000,
				TotalCents:     20000,
			},
		},
		ShippingAddress: order.Address{
			Name:     "Test Customer",
			Phone:    "+8801700000000",
			Line1:    "House 1, Road 1",
			City:     "Dhaka",
			Postcode: "1212",
			Country:  "Bangladesh",
		},
		BillingAddress: order.Address{
			Name:     "Test Customer",
			Phone:    "+8801700000000",
			Line1:    "House 1, Road 1",
			City:     "Dhaka",
			Postcode: "1212",
			Country:  "Bangladesh",
		},
		CreatedAt: b.createdAt,
	}
}

func (b *CheckoutBuilder) BuildSummaryView() queries.OrderSummaryView {
	return queries.OrderSummaryView{
		ID:            b.orderID,
		OrderNumber:   b.orderNumber,
		Status:        b.status,
		PaymentStatus: b.paymentStatus,
		PaymentMethod: b.method,
		FinalCents:    26000,
		LineCount:     1,
		CreatedAt:     b.createdAt,
	}
}

func (b *CheckoutBuilder) BuildReconcileResult(outcome order.PaymentStatus, replayed bool) *commands.ReconcileResult {
	return &commands.ReconcileResult{
		TransactionID: b.transactionID,
		OrderID:       b.orderID,
		OrderNumber:   b.orderNumber,
		PaymentStatus: outcome,
		Replayed:      replayed,
	}
}
