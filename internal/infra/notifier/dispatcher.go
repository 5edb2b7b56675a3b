// Package notifier drains the notification outbox. Delivery is best-effort
// by design: a dead SMTP server delays notices, never payments.
package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"commerce-core/internal/usecase/shared"
)

const dispatchBatchSize = 20

type EmailChannel interface {
	Send(ctx context.Context, to, subject, body string) error
}

type SMSChannel interface {
	Send(ctx context.Context, phone, text string) error
}

type Dispatcher struct {
	uow      shared.UnitOfWork
	email    EmailChannel
	sms      SMSChannel
	interval time.Duration
}

func NewDispatcher(uow shared.UnitOfWork, email EmailChannel, sms SMSChannel, interval time.Duration) *Dispatcher {
	return &Dispatcher{uow: uow, email: email, sms: sms, interval: interval}
}

// Run polls until the context is cancelled. Each batch is claimed with
// SKIP LOCKED inside one transaction, so multiple dispatchers never deliver
// the same job twice.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := d.dispatchBatch(ctx); err != nil {
				slog.Error("notification dispatch batch failed", "error", err.Error())
			}
		}
	}
}

func (d *Dispatcher) dispatchBatch(ctx context.Context) error {
	return d.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		jobs, err := tx.Notifications().ListPending(ctx, tx.DB(), dispatchBatchSize)
		if err != nil {
			return err
		}

		for _, job := range jobs {
			if err := d.deliver(ctx, job); err != nil {
				slog.Warn("notification delivery failed",
					"job_id", job.ID.String(),
					"kind", job.Kind,
					"attempt", job.Attempts+1,
					"error", err.Error())
				if err := tx.Notifications().MarkFailed(ctx, tx.DB(), job.ID); err != nil {
					return err
				}
				continue
			}
			if err := tx.Notifications().MarkSent(ctx, tx.DB(), job.ID); err != nil {
				return err
			}
		}
		return nil
	})
}

type paymentNoticePayload struct {
	OrderNumber   string `json:"order_number"`
	TransactionID string `json:"transaction_id"`
	PaymentStatus string `json:"payment_status"`
	AmountCents   int64  `json:"amount_cents"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
}

// deliver tries email first and falls back to SMS; the job succeeds when
// either channel accepts it.
func (d *Dispatcher) deliver(ctx context.Context, job shared.NotificationJob) error {
	var notice paymentNoticePayload
	if err := json.Unmarshal(job.Payload, &notice); err != nil {
		return err
	}

	subject, body := renderNotice(notice)

	emailErr := d.email.Send(ctx, notice.Email, subject, body)
	if emailErr == nil {
		return nil
	}

	slog.Warn("email delivery failed, falling back to sms",
		"job_id", job.ID.String(),
		"error", emailErr.Error())

	if smsErr := d.sms.Send(ctx, notice.Phone, body); smsErr != nil {
		return smsErr
	}
	return nil
}

func renderNotice(n paymentNoticePayload) (subject, body string) {
	amount := fmt.Sprintf("%d.%02d", n.AmountCents/100, n.AmountCents%100)
	switch n.PaymentStatus {
	case "COMPLETED":
		subject = fmt.Sprintf("Payment received for order %s", n.OrderNumber)
		body = fmt.Sprintf("We received your payment of %s for order %s. Your order is confirmed.", amount, n.OrderNumber)
	case "CANCELLED":
		subject = fmt.Sprintf("Payment cancelled for order %s", n.OrderNumber)
		body = fmt.Sprintf("The payment for order %s was cancelled. The order has been closed.", n.OrderNumber)
	default:
		subject = fmt.Sprintf("Payment failed for order %s", n.OrderNumber)
		body = fmt.Sprintf("The payment of %s for order %s did not go through. Please try again.", amount, n.OrderNumber)
	}
	return subject, body
}
