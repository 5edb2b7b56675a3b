package response

import (
	"commerce-core/internal/usecase/commands"

	"github.com/google/uuid"
)

type ReconcileResponse struct {
	TransactionID string    `json:"transactionId"`
	OrderID       uuid.UUID `json:"orderId"`
	OrderNumber   string    `json:"orderNumber"`
	PaymentStatus string    `json:"paymentStatus"`
	Replayed      bool      `json:"replayed"`
}

func FromReconcileResult(r *commands.ReconcileResult) *ReconcileResponse {
	return &ReconcileResponse{
		TransactionID: r.TransactionID,
		OrderID:       r.OrderID,
		OrderNumber:   r.OrderNumber,
		PaymentStatus: string(r.PaymentStatus),
		Replayed:      r.Replayed,
	}
}
