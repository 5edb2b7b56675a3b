package queries

import (
	"context"
	"time"

	"commerce-core/internal/domain/order"
	"commerce-core/internal/infra"
	"commerce-core/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrOrderNotFound = errs.New("order not found")

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// PageRequest is offset pagination for owner order history.
type PageRequest struct {
	Limit  int32
	Offset int32
}

func (p PageRequest) normalize() PageRequest {
	if p.Limit <= 0 {
		p.Limit = defaultPageSize
	}
	if p.Limit > maxPageSize {
		p.Limit = maxPageSize
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

type OrderLineView struct {
	ProductID      uuid.UUID
	VariantID      *uuid.UUID
	ProductName    string
	SKUCode        string
	Size           string
	Color          string
	Quantity       int32
	UnitPriceCents int64
	TotalCents     int64
}

type InvoiceView struct {
	ID          uuid.UUID
	Status      order.InvoiceStatus
	AmountCents int64
	IssuedAt    time.Time
}

type OrderView struct {
	ID              uuid.UUID
	OrderNumber     string
	Status          order.Status
	PaymentStatus   order.PaymentStatus
	PaymentMethod   order.PaymentMethod
	TransactionID   string
	TotalCents      int64
	DiscountCents   int64
	ShippingCents   int64
	TaxCents        int64
	FinalCents      int64
	Lines           []OrderLineView
	ShippingAddress order.Address
	BillingAddress  order.Address
	Invoice         *InvoiceView
	CreatedAt       time.Time
}

// OrderSummaryView is the list-row projection; lines and addresses are
// fetched only on the detail view.
type OrderSummaryView struct {
	ID            uuid.UUID
	OrderNumber   string
	Status        order.Status
	PaymentStatus order.PaymentStatus
	PaymentMethod order.PaymentMethod
	FinalCents    int64
	LineCount     int32
	CreatedAt     time.Time
}

// OrderReadStore is implemented by the infra read store on the pool
// connection; queries never open transactions. Every detail lookup carries
// the requesting owner: order ids and numbers are not secrets, so the key
// alone must never be enough to read an order.
type OrderReadStore interface {
	OrderByID(ctx context.Context, id uuid.UUID, owner order.Owner) (*OrderView, error)
	OrderByNumber(ctx context.Context, orderNumber string, owner order.Owner) (*OrderView, error)
	OrdersByOwner(ctx context.Context, owner order.Owner, limit, offset int32) ([]OrderSummaryView, error)
}

type OrderQueries interface {
	GetByID(ctx context.Context, id uuid.UUID, owner order.Owner) (*OrderView, error)
	GetByNumber(ctx context.Context, orderNumber string, owner order.Owner) (*OrderView, error)
	ListByOwner(ctx context.Context, owner order.Owner, page PageRequest) ([]OrderSummaryView, error)
}

type orderQueriesImpl struct {
	store OrderReadStore
}

func NewOrderQueries(store OrderReadStore) OrderQueries {
	return &orderQueriesImpl{store: store}
}

// GetByID resolves an order detail view. A cross-owner hit is reported as
// not-found, indistinguishable from a missing order.
func (q *orderQueriesImpl) GetByID(ctx context.Context, id uuid.UUID, owner order.Owner) (*OrderView, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	view, err := q.store.OrderByID(ctx, id, owner)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return view, nil
}

func (q *orderQueriesImpl) GetByNumber(ctx context.Context, orderNumber string, owner order.Owner) (*OrderView, error) {
	if orderNumber == "" {
		return nil, ErrOrderNotFound
	}
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	view, err := q.store.OrderByNumber(ctx, orderNumber, owner)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return view, nil
}

func (q *orderQueriesImpl) ListByOwner(ctx context.Context, owner order.Owner, page PageRequest) ([]OrderSummaryView, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	page = page.normalize()
	return q.store.OrdersByOwner(ctx, owner, page.Limit, page.Offset)
}
