//go:build unit

package commands

import (
	"context"
	"time"

	"commerce-core/internal/domain/order"
	"commerce-core/internal/infra/db"
	"commerce-core/internal/usecase/shared"

	"github.com/google/uuid"
)

// journal records side effects across fakes so tests can assert the exact
// ordering of saga compensations.
type journal struct {
	entries []string
}

func (j *journal) add(s string) {
	j.entries = append(j.entries, s)
}

type fakeLedger struct {
	j       *journal
	failSKU *uuid.UUID
	failErr error
}

func (f *fakeLedger) Reserve(ctx context.Context, sku order.SKU, quantity int32) error {
	if f.failSKU != nil && sku.ProductID == *f.failSKU {
		return f.failErr
	}
	f.j.add("reserve:" + sku.ProductID.String())
	return nil
}

func (f *fakeLedger) Restock(ctx context.Context, sku order.SKU, quantity int32) error {
	f.j.add("restock:" + sku.ProductID.String())
	return nil
}

type fakeRedeemer struct {
	j         *journal
	reject    bool
	redeemErr error
}

func (f *fakeRedeemer) Redeem(ctx context.Context, couponID uuid.UUID, owner order.Owner, limitTotal, limitPerUser int32) (bool, error) {
	if f.redeemErr != nil {
		return false, f.redeemErr
	}
	if f.reject {
		return false, nil
	}
	f.j.add("redeem")
	return true, nil
}

func (f *fakeRedeemer) Release(ctx context.Context, couponID uuid.UUID, owner order.Owner) error {
	f.j.add("release")
	return nil
}

type fakeGateway struct {
	session    *shared.GatewaySession
	initErr    error
	validation *shared.GatewayValidation
	valErr     error

	lastSessionReq *shared.GatewaySessionRequest
	lastValID      string
}

func (f *fakeGateway) InitiateSession(ctx context.Context, req shared.GatewaySessionRequest) (*shared.GatewaySession, error) {
	f.lastSessionReq = &req
	if f.initErr != nil {
		return nil, f.initErr
	}
	return f.session, nil
}

func (f *fakeGateway) ValidatePayment(ctx context.Context, valID string) (*shared.GatewayValidation, error) {
	f.lastValID = valID
	if f.valErr != nil {
		return nil, f.valErr
	}
	return f.validation, nil
}

type finalizeCall struct {
	transactionID string
	paymentStatus order.PaymentStatus
	status        order.Status
}

type fakeOrderRepo struct {
	j           *journal
	createErr   error
	created     []*order.Order
	deleted     []uuid.UUID
	finalizeWon bool
	finalizeErr error
	finalized   []finalizeCall
}

func (f *fakeOrderRepo) Create(ctx context.Context, dbtx db.DBTX, o *order.Order) (uuid.UUID, error) {
	if f.createErr != nil {
		return uuid.Nil, f.createErr
	}
	f.created = append(f.created, o)
	f.j.add("create-order")
	return o.ID(), nil
}

func (f *fakeOrderRepo) Delete(ctx context.Context, dbtx db.DBTX, orderID uuid.UUID) error {
	f.deleted = append(f.deleted, orderID)
	f.j.add("delete-order")
	return nil
}

func (f *fakeOrderRepo) FinalizePayment(ctx context.Context, dbtx db.DBTX, transactionID string, paymentStatus order.PaymentStatus, status order.Status) (bool, error) {
	if f.finalizeErr != nil {
		return false, f.finalizeErr
	}
	f.finalized = append(f.finalized, finalizeCall{transactionID, paymentStatus, status})
	return f.finalizeWon, nil
}

type invoiceStatusCall struct {
	orderID uuid.UUID
	status  order.InvoiceStatus
}

type fakeInvoiceRepo struct {
	j             *journal
	createErr     error
	created       []order.Invoice
	statusUpdates []invoiceStatusCall
	deletedBy     []uuid.UUID
}

func (f *fakeInvoiceRepo) Create(ctx context.Context, dbtx db.DBTX, inv order.Invoice) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, inv)
	return nil
}

func (f *fakeInvoiceRepo) UpdateStatusByOrderID(ctx context.Context, dbtx db.DBTX, orderID uuid.UUID, status order.InvoiceStatus) error {
	f.statusUpdates = append(f.statusUpdates, invoiceStatusCall{orderID, status})
	return nil
}

func (f *fakeInvoiceRepo) DeleteByOrderID(ctx context.Context, dbtx db.DBTX, orderID uuid.UUID) error {
	f.deletedBy = append(f.deletedBy, orderID)
	f.j.add("delete-invoice")
	return nil
}

type fakeCartRepo struct {
	deleteErr error
	deletions []order.Owner
}

func (f *fakeCartRepo) DeleteByOwner(ctx context.Context, dbtx db.DBTX, owner order.Owner) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletions = append(f.deletions, owner)
	return nil
}

type notificationJobCall struct {
	kind    string
	topic   string
	payload []byte
}

type fakeNotificationRepo struct {
	createErr error
	jobs      []notificationJobCall
}

func (f *fakeNotificationRepo) CreateJob(ctx context.Context, dbtx db.DBTX, kind, topic string, payload []byte, runAt time.Time) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.jobs = append(f.jobs, notificationJobCall{kind, topic, payload})
	return nil
}

func (f *fakeNotificationRepo) ListPending(ctx context.Context, dbtx db.DBTX, limit int32) ([]shared.NotificationJob, error) {
	return nil, nil
}

func (f *fakeNotificationRepo) MarkSent(ctx context.Context, dbtx db.DBTX, jobID uuid.UUID) error {
	return nil
}

func (f *fakeNotificationRepo) MarkFailed(ctx context.Context, dbtx db.DBTX, jobID uuid.UUID) error {
	return nil
}

type fakeReads struct {
	cart        *shared.CartSnapshot
	cartErr     error
	coupon      *shared.CouponSnapshot
	couponErr   error
	uses        int32
	usesErr     error
	delivery    int64
	deliveryErr error
	// orderSeq is consumed front to first; the last element answers all
	// remaining reads (lets a test change the row between two reads).
	orderSeq []*shared.OrderSnapshot
	orderErr error
}

func (f *fakeReads) CartByOwner(ctx context.Context, owner order.Owner) (*shared.CartSnapshot, error) {
	if f.cartErr != nil {
		return nil, f.cartErr
	}
	return f.cart, nil
}

func (f *fakeReads) CouponByCode(ctx context.Context, code string) (*shared.CouponSnapshot, error) {
	if f.couponErr != nil {
		return nil, f.couponErr
	}
	return f.coupon, nil
}

func (f *fakeReads) CouponUses(ctx context.Context, couponID uuid.UUID, owner order.Owner) (int32, error) {
	if f.usesErr != nil {
		return 0, f.usesErr
	}
	return f.uses, nil
}

func (f *fakeReads) DeliveryChargeByZone(ctx context.Context, zoneID uuid.UUID) (int64, error) {
	if f.deliveryErr != nil {
		return 0, f.deliveryErr
	}
	return f.delivery, nil
}

func (f *fakeReads) OrderByTransactionID(ctx context.Context, transactionID string) (*shared.OrderSnapshot, error) {
	if f.orderErr != nil {
		return nil, f.orderErr
	}
	if len(f.orderSeq) == 0 {
		return nil, nil
	}
	snap := f.orderSeq[0]
	if len(f.orderSeq) > 1 {
		f.orderSeq = f.orderSeq[1:]
	}
	return snap, nil
}

type fakeTx struct {
	orders        *fakeOrderRepo
	invoices      *fakeInvoiceRepo
	carts         *fakeCartRepo
	notifications *fakeNotificationRepo
}

func (t *fakeTx) Orders() shared.OrderRepository               { return t.orders }
func (t *fakeTx) Invoices() shared.InvoiceRepository           { return t.invoices }
func (t *fakeTx) Carts() shared.CartRepository                 { return t.carts }
func (t *fakeTx) Notifications() shared.NotificationRepository { return t.notifications }
func (t *fakeTx) DB() db.DBTX                                  { return nil }

type fakeUoW struct {
	tx    *fakeTx
	reads *fakeReads
}

func (u *fakeUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return fn(ctx, u.tx)
}

func (u *fakeUoW) Reads() shared.CommandReads {
	return u.reads
}
