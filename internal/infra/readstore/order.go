package readstore

import (
	"context"

	"commerce-core/internal/domain/order"
	"commerce-core/internal/infra"
	"commerce-core/internal/infra/db"
	"commerce-core/internal/pkg/pgconv"
	"commerce-core/internal/usecase/queries"
	"commerce-core/internal/usecase/shared"

	"github.com/google/uuid"
)

type OrderReadStore struct {
	db db.DBTX
}

var _ queries.OrderReadStore = (*OrderReadStore)(nil)

func NewOrderReadStore(dbtx db.DBTX) *OrderReadStore {
	return &OrderReadStore{db: dbtx}
}

const orderByTransactionIDSQL = `
SELECT id, order_number, transaction_id, user_id, guest_id,
       status, payment_status, payment_method,
       total_cents - discount_cents + shipping_cents + tax_cents,
       shipping_email, shipping_phone
FROM orders
WHERE transaction_id = $1`

// FindByTransactionID is the reconciler's lookup: the transaction id is the
// only key the gateway echoes back.
func (s *OrderReadStore) FindByTransactionID(ctx context.Context, transactionID string) (*shared.OrderSnapshot, error) {
	var snap shared.OrderSnapshot
	err := s.db.QueryRow(ctx, orderByTransactionIDSQL, transactionID).Scan(
		&snap.ID, &snap.OrderNumber, &snap.TransactionID,
		&snap.OwnerUserID, &snap.OwnerGuestID,
		&snap.Status, &snap.PaymentStatus, &snap.PaymentMethod,
		&snap.FinalCents,
		&snap.CustomerEmail, &snap.CustomerPhone,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("order not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to load order by transaction id", err)
	}
	return &snap, nil
}

const orderViewSQL = `
SELECT id, order_number, status, payment_status, payment_method, transaction_id,
       total_cents, discount_cents, shipping_cents, tax_cents,
       shipping_name, shipping_phone, shipping_email, shipping_line1, shipping_line2,
       shipping_city, shipping_postcode, shipping_country,
       billing_name, billing_phone, billing_email, billing_line1, billing_line2,
       billing_city, billing_postcode, billing_country,
       created_at
FROM orders
WHERE `

const ownerScopeSQL = ` AND user_id IS NOT DISTINCT FROM $2 AND guest_id IS NOT DISTINCT FROM $3`

// Detail lookups are owner-scoped in the row predicate itself; a cross-owner
// id scans as no rows, never as somebody else's addresses.
func (s *OrderReadStore) OrderByID(ctx context.Context, id uuid.UUID, owner order.Owner) (*queries.OrderView, error) {
	return s.loadView(ctx, orderViewSQL+`id = $1`+ownerScopeSQL, id, owner.UserID(), owner.GuestID())
}

func (s *OrderReadStore) OrderByNumber(ctx context.Context, orderNumber string, owner order.Owner) (*queries.OrderView, error) {
	return s.loadView(ctx, orderViewSQL+`order_number = $1`+ownerScopeSQL, orderNumber, owner.UserID(), owner.GuestID())
}

func (s *OrderReadStore) loadView(ctx context.Context, sql string, args ...any) (*queries.OrderView, error) {
	var v queries.OrderView
	err := s.db.QueryRow(ctx, sql, args...).Scan(
		&v.ID, &v.OrderNumber, &v.Status, &v.PaymentStatus, &v.PaymentMethod, &v.TransactionID,
		&v.TotalCents, &v.DiscountCents, &v.ShippingCents, &v.TaxCents,
		&v.ShippingAddress.Name, &v.ShippingAddress.Phone, &v.ShippingAddress.Email,
		&v.ShippingAddress.Line1, &v.ShippingAddress.Line2,
		&v.ShippingAddress.City, &v.ShippingAddress.Postcode, &v.ShippingAddress.Country,
		&v.BillingAddress.Name, &v.BillingAddress.Phone, &v.BillingAddress.Email,
		&v.BillingAddress.Line1, &v.BillingAddress.Line2,
		&v.BillingAddress.City, &v.BillingAddress.Postcode, &v.BillingAddress.Country,
		&v.CreatedAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("order not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to load order", err)
	}
	v.FinalCents = v.TotalCents - v.DiscountCents + v.ShippingCents + v.TaxCents

	lines, err := s.loadLines(ctx, v.ID)
	if err != nil {
		return nil, err
	}
	v.Lines = lines

	invoice, err := s.loadInvoice(ctx, v.ID)
	if err != nil {
		return nil, err
	}
	v.Invoice = invoice

	return &v, nil
}

func (s *OrderReadStore) loadLines(ctx context.Context, orderID uuid.UUID) ([]queries.OrderLineView, error) {
	rows, err := s.db.Query(ctx, `
		SELECT product_id, variant_id, product_name, sku_code, size, color,
		       quantity, unit_price_cents, total_cents
		FROM order_items
		WHERE order_id = $1
		ORDER BY product_name`, orderID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load order items", err)
	}
	defer rows.Close()

	var lines []queries.OrderLineView
	for rows.Next() {
		var l queries.OrderLineView
		if err := rows.Scan(
			&l.ProductID, &l.VariantID, &l.ProductName, &l.SKUCode, &l.Size, &l.Color,
			&l.Quantity, &l.UnitPriceCents, &l.TotalCents,
		); err != nil {
			return nil, infra.WrapRepoErr("failed to scan order item", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read order items", err)
	}
	return lines, nil
}

func (s *OrderReadStore) loadInvoice(ctx context.Context, orderID uuid.UUID) (*queries.InvoiceView, error) {
	var inv queries.InvoiceView
	err := s.db.QueryRow(ctx, `
		SELECT id, status, amount_cents, issued_at
		FROM invoices
		WHERE order_id = $1`, orderID).Scan(&inv.ID, &inv.Status, &inv.AmountCents, &inv.IssuedAt)
	if err != nil {
		// an order may legitimately have no invoice (best-effort creation)
		if pgconv.IsNoRows(err) {
			return nil, nil
		}
		return nil, infra.WrapRepoErr("failed to load invoice", err)
	}
	return &inv, nil
}

const ordersByOwnerSQL = `
SELECT o.id, o.order_number, o.status, o.payment_status, o.payment_method,
       o.total_cents - o.discount_cents + o.shipping_cents + o.tax_cents,
       (SELECT COUNT(*) FROM order_items oi WHERE oi.order_id = o.id),
       o.created_at
FROM orders o
WHERE o.user_id IS NOT DISTINCT FROM $1 AND o.guest_id IS NOT DISTINCT FROM $2
ORDER BY o.created_at DESC
LIMIT $3 OFFSET $4`

func (s *OrderReadStore) OrdersByOwner(ctx context.Context, owner order.Owner, limit, offset int32) ([]queries.OrderSummaryView, error) {
	rows, err := s.db.Query(ctx, ordersByOwnerSQL, owner.UserID(), owner.GuestID(), limit, offset)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list orders", err)
	}
	defer rows.Close()

	var summaries []queries.OrderSummaryView
	for rows.Next() {
		var sv queries.OrderSummaryView
		if err := rows.Scan(
			&sv.ID, &sv.OrderNumber, &sv.Status, &sv.PaymentStatus, &sv.PaymentMethod,
			&sv.FinalCents, &sv.LineCount, &sv.CreatedAt,
		); err != nil {
			return nil, infra.WrapRepoErr("failed to scan order summary", err)
		}
		summaries = append(summaries, sv)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read order summaries", err)
	}
	return summaries, nil
}
