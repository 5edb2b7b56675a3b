package repository

import (
	"context"

	"commerce-core/internal/domain/order"
	"commerce-core/internal/infra"
	"commerce-core/internal/infra/db"

	"github.com/google/uuid"
)

type InvoiceRepository struct {
	db db.DBTX
}

func NewInvoiceRepository(dbtx db.DBTX) *InvoiceRepository {
	return &InvoiceRepository{db: dbtx}
}

const createInvoiceSQL = `
INSERT INTO invoices (id, order_id, order_number, status, amount_cents, issued_at)
VALUES ($1, $2, $3, $4, $5, $6)`

func (r *InvoiceRepository) Create(ctx context.Context, dbtx db.DBTX, inv order.Invoice) error {
	_, err := dbtx.Exec(ctx, createInvoiceSQL,
		inv.ID, inv.OrderID, inv.OrderNumber, string(inv.Status), inv.AmountCents, inv.IssuedAt)
	if err != nil {
		return infra.WrapRepoErr("failed to create invoice", err)
	}
	return nil
}

func (r *InvoiceRepository) UpdateStatusByOrderID(ctx context.Context, dbtx db.DBTX, orderID uuid.UUID, status order.InvoiceStatus) error {
	_, err := dbtx.Exec(ctx,
		`UPDATE invoices SET status = $2 WHERE order_id = $1`, orderID, string(status))
	if err != nil {
		return infra.WrapRepoErr("failed to update invoice status", err)
	}
	return nil
}

func (r *InvoiceRepository) DeleteByOrderID(ctx context.Context, dbtx db.DBTX, orderID uuid.UUID) error {
	_, err := dbtx.Exec(ctx, `DELETE FROM invoices WHERE order_id = $1`, orderID)
	if err != nil {
		return infra.WrapRepoErr("failed to delete invoice", err)
	}
	return nil
}
