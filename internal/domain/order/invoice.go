package order

import (
	"time"

	"github.com/google/uuid"
)

// Invoice is the 1:1 billing record derived from an order at assembly time.
// Its status moves only in lock-step with the order's payment status.
type Invoice struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	OrderNumber string
	Status      InvoiceStatus
	AmountCents int64
	IssuedAt    time.Time
}

func DeriveInvoice(o *Order) Invoice {
	return Invoice{
		ID:          uuid.New(),
		OrderID:     o.ID(),
		OrderNumber: o.OrderNumber(),
		Status:      InvoiceUnpaid,
		AmountCents: o.Amounts().FinalCents(),
		IssuedAt:    o.CreatedAt(),
	}
}
