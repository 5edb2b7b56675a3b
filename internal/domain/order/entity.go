package order

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrBlankOrderNumber     = errors.New("order number cannot be blank")
	ErrBlankTransactionID   = errors.New("transaction id cannot be blank")
)

// Order is created once by the assembler. After persistence only status and
// paymentStatus change, and only through the reconciliation path.
type Order struct {
	id              uuid.UUID
	orderNumber     string
	owner           Owner
	status          Status
	paymentMethod   PaymentMethod
	paymentStatus   PaymentStatus
	transactionID   string
	amounts         Breakdown
	lines           []LineItem
	shippingAddress Address
	billingAddress  Address
	couponID        *uuid.UUID
	createdAt       time.Time
}

func NewOrder(
	orderNumber string,
	owner Owner,
	method PaymentMethod,
	transactionID string,
	amounts Breakdown,
	lines []LineItem,
	shippingAddress Address,
	billingAddress Address,
	couponID *uuid.UUID,
	createdAt time.Time,
) (*Order, error) {
	if orderNumber == "" {
		return nil, ErrBlankOrderNumber
	}
	if transactionID == "" {
		return nil, ErrBlankTransactionID
	}
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	if !method.Valid() {
		return nil, ErrInvalidPaymentMethod
	}
	if err := amounts.Validate(); err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrEmptyLineItems
	}
	for _, l := range lines {
		if err := l.Validate(); err != nil {
			return nil, err
		}
	}

	frozen := make([]LineItem, len(lines))
	copy(frozen, lines)

	return &Order{
		id:              uuid.New(),
		orderNumber:     orderNumber,
		owner:           owner,
		status:          StatusPending,
		paymentMethod:   method,
		paymentStatus:   PaymentPending,
		transactionID:   transactionID,
		amounts:         amounts,
		lines:           frozen,
		shippingAddress: shippingAddress,
		billingAddress:  billingAddress,
		couponID:        couponID,
		createdAt:       createdAt,
	}, nil
}

func (o *Order) ID() uuid.UUID                { return o.id }
func (o *Order) OrderNumber() string          { return o.orderNumber }
func (o *Order) Owner() Owner                 { return o.owner }
func (o *Order) Status() Status               { return o.status }
func (o *Order) PaymentMethod() PaymentMethod { return o.paymentMethod }
func (o *Order) PaymentStatus() PaymentStatus { return o.paymentStatus }
func (o *Order) TransactionID() string        { return o.transactionID }
func (o *Order) Amounts() Breakdown           { return o.amounts }
func (o *Order) ShippingAddress() Address     { return o.shippingAddress }
func (o *Order) BillingAddress() Address      { return o.billingAddress }
func (o *Order) CouponID() *uuid.UUID         { return o.couponID }
func (o *Order) CreatedAt() time.Time         { return o.createdAt }

// Lines returns a copy; the stored snapshots stay immutable.
func (o *Order) Lines() []LineItem {
	out := make([]LineItem, len(o.lines))
	copy(out, o.lines)
	return out
}
