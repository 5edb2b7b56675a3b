//go:build unit

package notifier

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"commerce-core/internal/infra/db"
	"commerce-core/internal/pkg/errs"
	"commerce-core/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEmail struct {
	err  error
	sent []string
}

func (s *stubEmail) Send(ctx context.Context, to, subject, body string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, to)
	return nil
}

type stubSMS struct {
	err  error
	sent []string
}

func (s *stubSMS) Send(ctx context.Context, phone, text string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, phone)
	return nil
}

type stubNotificationRepo struct {
	pending []shared.NotificationJob
	sent    []uuid.UUID
	failed  []uuid.UUID
}

func (s *stubNotificationRepo) CreateJob(ctx context.Context, dbtx db.DBTX, kind, topic string, payload []byte, runAt time.Time) error {
	return nil
}

func (s *stubNotificationRepo) ListPending(ctx context.Context, dbtx db.DBTX, limit int32) ([]shared.NotificationJob, error) {
	return s.pending, nil
}

func (s *stubNotificationRepo) MarkSent(ctx context.Context, dbtx db.DBTX, jobID uuid.UUID) error {
	s.sent = append(s.sent, jobID)
	return nil
}

func (s *stubNotificationRepo) MarkFailed(ctx context.Context, dbtx db.DBTX, jobID uuid.UUID) error {
	s.failed = append(s.failed, jobID)
	return nil
}

type stubTx struct {
	notifications *stubNotificationRepo
}

func (t *stubTx) Orders() shared.OrderRepository               { return nil }
func (t *stubTx) Invoices() shared.InvoiceRepository           { return nil }
func (t *stubTx) Carts() shared.CartRepository                 { return nil }
func (t *stubTx) Notifications() shared.NotificationRepository { return t.notifications }
func (t *stubTx) DB() db.DBTX                                  { return nil }

type stubUoW struct {
	tx *stubTx
}

func (u *stubUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return fn(ctx, u.tx)
}

func (u *stubUoW) Reads() shared.CommandReads { return nil }

func noticeJob(t *testing.T) shared.NotificationJob {
	t.Helper()
	payload, err := json.Marshal(paymentNoticePayload{
		OrderNumber:   "ORD-20260315-K7KQ2M8Z",
		TransactionID: "a3f1c6d02b9e47f1a3f1c6d02b9e47f1",
		PaymentStatus: "COMPLETED",
		AmountCents:   24500,
		Email:         "anika@example.com",
		Phone:         "+8801700000000",
	})
	require.NoError(t, err)
	return shared.NotificationJob{ID: uuid.New(), Kind: "payment_result", Payload: payload}
}

func TestDispatchBatch_EmailDelivery(t *testing.T) {
	repo := &stubNotificationRepo{pending: []shared.NotificationJob{noticeJob(t)}}
	email := &stubEmail{}
	sms := &stubSMS{}
	d := NewDispatcher(&stubUoW{tx: &stubTx{notifications: repo}}, email, sms, time.Second)

	require.NoError(t, d.dispatchBatch(t.Context()))

	assert.Equal(t, []string{"anika@example.com"}, email.sent)
	assert.Empty(t, sms.sent)
	assert.Len(t, repo.sent, 1)
	assert.Empty(t, repo.failed)
}

func TestDispatchBatch_FallsBackToSMS(t *testing.T) {
	repo := &stubNotificationRepo{pending: []shared.NotificationJob{noticeJob(t)}}
	email := &stubEmail{err: errs.New("smtp unreachable")}
	sms := &stubSMS{}
	d := NewDispatcher(&stubUoW{tx: &stubTx{notifications: repo}}, email, sms, time.Second)

	require.NoError(t, d.dispatchBatch(t.Context()))

	assert.Equal(t, []string{"+8801700000000"}, sms.sent)
	assert.Len(t, repo.sent, 1)
	assert.Empty(t, repo.failed)
}

func TestDispatchBatch_BothChannelsDownMarksFailed(t *testing.T) {
	job := noticeJob(t)
	repo := &stubNotificationRepo{pending: []shared.NotificationJob{job}}
	email := &stubEmail{err: errs.New("smtp unreachable")}
	sms := &stubSMS{err: errs.New("provider 503")}
	d := NewDispatcher(&stubUoW{tx: &stubTx{notifications: repo}}, email, sms, time.Second)

	require.NoError(t, d.dispatchBatch(t.Context()))

	assert.Empty(t, repo.sent)
	assert.Equal(t, []uuid.UUID{job.ID}, repo.failed)
}

func TestDispatchBatch_MalformedPayloadMarksFailed(t *testing.T) {
	job := shared.NotificationJob{ID: uuid.New(), Kind: "payment_result", Payload: []byte("{")}
	repo := &stubNotificationRepo{pending: []shared.NotificationJob{job}}
	d := NewDispatcher(&stubUoW{tx: &stubTx{notifications: repo}}, &stubEmail{}, &stubSMS{}, time.Second)

	require.NoError(t, d.dispatchBatch(t.Context()))
	assert.Equal(t, []uuid.UUID{job.ID}, repo.failed)
}

func TestRenderNotice(t *testing.T) {
	subject, body := renderNotice(paymentNoticePayload{
		OrderNumber:   "ORD-20260315-K7KQ2M8Z",
		PaymentStatus: "COMPLETED",
		AmountCents:   24500,
	})
	assert.Contains(t, subject, "ORD-20260315-K7KQ2M8Z")
	assert.Contains(t, body, "245.00")

	subject, _ = renderNotice(paymentNoticePayload{OrderNumber: "X", PaymentStatus: "CANCELLED"})
	assert.Contains(t, subject, "cancelled")
}
