package shared

import (
	"context"
	"time"

	"commerce-core/internal/domain/order"
	"commerce-core/internal/infra/db"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// Reads: Command-side reads for validation outside transactions
	Reads() CommandReads
}

type Tx interface {
	Orders() OrderRepository
	Invoices() InvoiceRepository
	Carts() CartRepository
	Notifications() NotificationRepository
	DB() db.DBTX
}

type CommandReads interface {
	CartByOwner(ctx context.Context, owner order.Owner) (*CartSnapshot, error)
	CouponByCode(ctx context.Context, code string) (*CouponSnapshot, error)
	CouponUses(ctx context.Context, couponID uuid.UUID, owner order.Owner) (int32, error)
	DeliveryChargeByZone(ctx context.Context, zoneID uuid.UUID) (int64, error)
	OrderByTransactionID(ctx context.Context, transactionID string) (*OrderSnapshot, error)
}

type OrderRepository interface {
	Create(ctx context.Context, dbtx db.DBTX, o *order.Order) (uuid.UUID, error)
	Delete(ctx context.Context, dbtx db.DBTX, orderID uuid.UUID) error
	// FinalizePayment flips the payment state machine with a conditional
	// write guarded on PENDING; false means another signal won the race.
	FinalizePayment(ctx context.Context, dbtx db.DBTX, transactionID string, paymentStatus order.PaymentStatus, status order.Status) (bool, error)
}

type InvoiceRepository interface {
	Create(ctx context.Context, dbtx db.DBTX, inv order.Invoice) error
	UpdateStatusByOrderID(ctx context.Context, dbtx db.DBTX, orderID uuid.UUID, status order.InvoiceStatus) error
	DeleteByOrderID(ctx context.Context, dbtx db.DBTX, orderID uuid.UUID) error
}

type CartRepository interface {
	DeleteByOwner(ctx context.Context, dbtx db.DBTX, owner order.Owner) error
}

type NotificationRepository interface {
	CreateJob(ctx context.Context, dbtx db.DBTX, kind, topic string, payload []byte, runAt time.Time) error
	ListPending(ctx context.Context, dbtx db.DBTX, limit int32) ([]NotificationJob, error)
	MarkSent(ctx context.Context, dbtx db.DBTX, jobID uuid.UUID) error
	MarkFailed(ctx context.Context, dbtx db.DBTX, jobID uuid.UUID) error
}
