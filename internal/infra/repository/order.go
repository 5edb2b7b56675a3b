package repository

import (
	"context"

	"commerce-core/internal/domain/order"
	"commerce-core/internal/infra"
	"commerce-core/internal/infra/db"

	"github.com/google/uuid"
)

type OrderRepository struct {
	db db.DBTX
}

func NewOrderRepository(dbtx db.DBTX) *OrderRepository {
	return &OrderRepository{db: dbtx}
}

const createOrderSQL = `
INSERT INTO orders (
	id, order_number, user_id, guest_id, status, payment_method, payment_status,
	transaction_id, total_cents, discount_cents, shipping_cents, tax_cents, coupon_id,
	shipping_name, shipping_phone, shipping_email, shipping_line1, shipping_line2,
	shipping_city, shipping_postcode, shipping_country,
	billing_name, billing_phone, billing_email, billing_line1, billing_line2,
	billing_city, billing_postcode, billing_country,
	created_at
) VALUES (
	$1, $2, $3, $4, $5, $6, $7,
	$8, $9, $10, $11, $12, $13,
	$14, $15, $16, $17, $18, $19, $20, $21,
	$22, $23, $24, $25, $26, $27, $28, $29,
	$30
)`

const createOrderItemSQL = `
INSERT INTO order_items (
	id, order_id, product_id, variant_id, product_name, sku_code, size, color,
	quantity, unit_price_cents, total_cents
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

func (r *OrderRepository) Create(ctx context.Context, dbtx db.DBTX, o *order.Order) (uuid.UUID, error) {
	ship := o.ShippingAddress()
	bill := o.BillingAddress()
	amounts := o.Amounts()

	_, err := dbtx.Exec(ctx, createOrderSQL,
		o.ID(), o.OrderNumber(), o.Owner().UserID(), o.Owner().GuestID(),
		string(o.Status()), string(o.PaymentMethod()), string(o.PaymentStatus()),
		o.TransactionID(),
		amounts.TotalCents, amounts.DiscountCents, amounts.ShippingCents, amounts.TaxCents,
		o.CouponID(),
		ship.Name, ship.Phone, ship.Email, ship.Line1, ship.Line2, ship.City, ship.Postcode, ship.Country,
		bill.Name, bill.Phone, bill.Email, bill.Line1, bill.Line2, bill.City, bill.Postcode, bill.Country,
		o.CreatedAt(),
	)
	if err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to create order", err)
	}

	for _, line := range o.Lines() {
		_, err := dbtx.Exec(ctx, createOrderItemSQL,
			uuid.New(), o.ID(), line.SKU.ProductID, line.SKU.VariantID,
			line.ProductName, line.SKUCode, line.Size, line.Color,
			line.Quantity, line.UnitPriceCents, line.TotalCents,
		)
		if err != nil {
			return uuid.Nil, infra.WrapRepoErr("failed to create order item", err)
		}
	}

	return o.ID(), nil
}

func (r *OrderRepository) Delete(ctx context.Context, dbtx db.DBTX, orderID uuid.UUID) error {
	if _, err := dbtx.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, orderID); err != nil {
		return infra.WrapRepoErr("failed to delete order items", err)
	}
	if _, err := dbtx.Exec(ctx, `DELETE FROM orders WHERE id = $1`, orderID); err != nil {
		return infra.WrapRepoErr("failed to delete order", err)
	}
	return nil
}

const finalizePaymentSQL = `
UPDATE orders
SET payment_status = $2, status = $3, updated_at = now()
WHERE transaction_id = $1 AND payment_status = 'PENDING'`

// FinalizePayment is the exactly-once guard of reconciliation: the write
// applies only while the row is still PENDING, so of N concurrent signals
// exactly one observes rows affected = 1.
func (r *OrderRepository) FinalizePayment(ctx context.Context, dbtx db.DBTX, transactionID string, paymentStatus order.PaymentStatus, status order.Status) (bool, error) {
	tag, err := dbtx.Exec(ctx, finalizePaymentSQL, transactionID, string(paymentStatus), string(status))
	if err != nil {
		return false, infra.WrapRepoErr("failed to finalize payment", err)
	}
	return tag.RowsAffected() == 1, nil
}
