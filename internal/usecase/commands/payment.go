package commands

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"commerce-core/internal/domain/order"
	"commerce-core/internal/domain/payment"
	"commerce-core/internal/infra"
	"commerce-core/internal/pkg/clock"
	"commerce-core/internal/pkg/errs"
	"commerce-core/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrOrderNotFound           = errs.New("order not found")
	ErrReconciliationConflict  = errs.New("conflicting payment signals")
	ErrGatewayValidationFailed = errs.New("gateway validation rejected")
)

// ReconcileResult reports one applied (or replayed) payment signal.
type ReconcileResult struct {
	TransactionID string
	OrderID       uuid.UUID
	OrderNumber   string
	Outcome       payment.Outcome
	PaymentStatus order.PaymentStatus
	// Replayed means the order was already in the signalled terminal state;
	// nothing was written and no notification was sent.
	Replayed bool
}

// PaymentCommands reconciles gateway completion signals. The three browser
// redirects and the server-to-server notification all converge here; any of
// them may arrive first, repeatedly, or not at all.
type PaymentCommands interface {
	ConfirmPayment(ctx context.Context, transactionID, valID string) (*ReconcileResult, error)
	FailPayment(ctx context.Context, transactionID, valID string) (*ReconcileResult, error)
	CancelPayment(ctx context.Context, transactionID, valID string) (*ReconcileResult, error)
	HandleIPN(ctx context.Context, transactionID, valID, status string) (*ReconcileResult, error)
}

type paymentCommandsImpl struct {
	uow     shared.UnitOfWork
	gateway PaymentGateway
	clock   clock.Clock
}

func NewPaymentCommands(uow shared.UnitOfWork, gateway PaymentGateway, clk clock.Clock) PaymentCommands {
	return &paymentCommandsImpl{uow: uow, gateway: gateway, clock: clk}
}

// ConfirmPayment handles a success signal. The redirect parameters are
// attacker-influenceable, so the signal counts only after the gateway's
// validation endpoint confirms the val_id, the transaction id, and the
// amount. A validation answer of anything but VALID/VALIDATED is applied as
// a failure.
func (c *paymentCommandsImpl) ConfirmPayment(ctx context.Context, transactionID, valID string) (*ReconcileResult, error) {
	snap, err := c.loadOrder(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	validation, err := c.validate(ctx, valID)
	if err != nil {
		return nil, err
	}

	outcome, err := c.checkValidation(snap, validation)
	if err != nil {
		return nil, err
	}

	return c.apply(ctx, snap, outcome)
}

// FailPayment handles a failure signal. Like the success redirect, the
// parameters arrive through the shopper's browser, so the signal counts only
// after the gateway itself reports the transaction FAILED; anyone who merely
// knows a transaction id cannot push a pending payment into a terminal state.
func (c *paymentCommandsImpl) FailPayment(ctx context.Context, transactionID, valID string) (*ReconcileResult, error) {
	snap, err := c.loadOrder(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if err := c.checkTerminalSignal(ctx, snap, valID, "FAILED"); err != nil {
		return nil, err
	}
	return c.apply(ctx, snap, payment.OutcomeFailed)
}

func (c *paymentCommandsImpl) CancelPayment(ctx context.Context, transactionID, valID string) (*ReconcileResult, error) {
	snap, err := c.loadOrder(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if err := c.checkTerminalSignal(ctx, snap, valID, "CANCELLED"); err != nil {
		return nil, err
	}
	return c.apply(ctx, snap, payment.OutcomeCancelled)
}

// HandleIPN is the out-of-band server-to-server notification. It may arrive
// before, after, or instead of the browser redirect; a VALID status is
// re-validated exactly like the success redirect.
func (c *paymentCommandsImpl) HandleIPN(ctx context.Context, transactionID, valID, status string) (*ReconcileResult, error) {
	switch status {
	case "VALID", "VALIDATED":
		return c.ConfirmPayment(ctx, transactionID, valID)
	case "FAILED":
		return c.FailPayment(ctx, transactionID, valID)
	case "CANCELLED":
		return c.CancelPayment(ctx, transactionID, valID)
	default:
		return nil, errs.Wrapf(ErrGatewayValidationFailed, "unrecognized ipn status %q", status)
	}
}

func (c *paymentCommandsImpl) loadOrder(ctx context.Context, transactionID string) (*shared.OrderSnapshot, error) {
	if transactionID == "" {
		return nil, ErrOrderNotFound
	}
	snap, err := c.uow.Reads().OrderByTransactionID(ctx, transactionID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return snap, nil
}

func (c *paymentCommandsImpl) validate(ctx context.Context, valID string) (*shared.GatewayValidation, error) {
	if valID == "" {
		return nil, errs.Wrap(ErrGatewayValidationFailed, "missing validation id")
	}
	v, err := c.gateway.ValidatePayment(ctx, valID)
	if err != nil {
		return nil, errs.Mark(err, ErrGatewayUnavailable)
	}
	return v, nil
}

// checkTerminalSignal verifies a fail or cancel redirect against the gateway:
// the validation endpoint must know the val_id, report exactly the signalled
// terminal status, and name the same transaction.
func (c *paymentCommandsImpl) checkTerminalSignal(ctx context.Context, snap *shared.OrderSnapshot, valID, wantStatus string) error {
	v, err := c.validate(ctx, valID)
	if err != nil {
		return err
	}
	if v.Status != wantStatus {
		return errs.Wrapf(ErrGatewayValidationFailed,
			"gateway reports status %q for a %s signal", v.Status, wantStatus)
	}
	if v.TransactionID != snap.TransactionID {
		return errs.Wrapf(ErrGatewayValidationFailed,
			"validated transaction %q does not match order transaction %q",
			v.TransactionID, snap.TransactionID)
	}
	return nil
}

func (c *paymentCommandsImpl) checkValidation(snap *shared.OrderSnapshot, v *shared.GatewayValidation) (payment.Outcome, error) {
	switch v.Status {
	case "VALID", "VALIDATED":
	default:
		return payment.OutcomeFailed, nil
	}

	if v.TransactionID != snap.TransactionID {
		return "", errs.Wrapf(ErrGatewayValidationFailed,
			"validated transaction %q does not match order transaction %q",
			v.TransactionID, snap.TransactionID)
	}
	if v.AmountCents != snap.FinalCents {
		return "", errs.Wrapf(ErrGatewayValidationFailed,
			"validated amount %d does not match order amount %d",
			v.AmountCents, snap.FinalCents)
	}
	return payment.OutcomeValid, nil
}

// apply feeds the validated outcome through the state machine and, on a first
// transition, finalizes order + invoice in one transaction. The order row
// write is conditional on the payment still being PENDING, so two racing
// signals resolve to one winner and one replay.
func (c *paymentCommandsImpl) apply(ctx context.Context, snap *shared.OrderSnapshot, outcome payment.Outcome) (*ReconcileResult, error) {
	decision, err := payment.Transition(snap.PaymentStatus, outcome)
	if err != nil {
		if errors.Is(err, payment.ErrConflict) {
			slog.Warn("conflicting payment signal rejected",
				"transaction_id", snap.TransactionID,
				"current", string(snap.PaymentStatus),
				"signalled", string(outcome))
			return nil, errs.Mark(err, ErrReconciliationConflict)
		}
		return nil, errs.Mark(err, ErrDomainValidation)
	}

	result := &ReconcileResult{
		TransactionID: snap.TransactionID,
		OrderID:       snap.ID,
		OrderNumber:   snap.OrderNumber,
		Outcome:       outcome,
		PaymentStatus: decision.Next,
		Replayed:      decision.Replay,
	}
	if decision.Replay {
		return result, nil
	}

	var won bool
	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		won, err = tx.Orders().FinalizePayment(ctx, tx.DB(), snap.TransactionID, decision.Next, payment.OrderStatusFor(decision.Next))
		if err != nil {
			return err
		}
		if !won {
			return nil
		}
		if err := tx.Invoices().UpdateStatusByOrderID(ctx, tx.DB(), snap.ID, payment.InvoiceStatusFor(decision.Next)); err != nil {
			return err
		}
		if outcome == payment.OutcomeValid {
			// The cart survived session init for retries; a confirmed
			// payment finally consumes it.
			if err := tx.Carts().DeleteByOwner(ctx, tx.DB(), snap.Owner()); err != nil {
				return err
			}
		}
		return c.enqueueNotification(ctx, tx, snap, decision.Next)
	})
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	if !won {
		return c.resolveRace(ctx, snap.TransactionID, outcome)
	}
	return result, nil
}

// resolveRace re-reads after losing the conditional write and re-runs the
// transition against the winner's state: same outcome is a replay, a
// different one is a conflict.
func (c *paymentCommandsImpl) resolveRace(ctx context.Context, transactionID string, outcome payment.Outcome) (*ReconcileResult, error) {
	snap, err := c.loadOrder(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	decision, err := payment.Transition(snap.PaymentStatus, outcome)
	if err != nil {
		return nil, errs.Mark(err, ErrReconciliationConflict)
	}
	if !decision.Replay {
		// Lost the write yet the row still looks transitionable; treat as
		// conflict rather than looping.
		return nil, errs.Wrapf(ErrReconciliationConflict, "lost finalize race for transaction %q", transactionID)
	}

	return &ReconcileResult{
		TransactionID: snap.TransactionID,
		OrderID:       snap.ID,
		OrderNumber:   snap.OrderNumber,
		Outcome:       outcome,
		PaymentStatus: snap.PaymentStatus,
		Replayed:      true,
	}, nil
}

type paymentNotice struct {
	OrderNumber   string `json:"order_number"`
	TransactionID string `json:"transaction_id"`
	PaymentStatus string `json:"payment_status"`
	AmountCents   int64  `json:"amount_cents"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
}

// enqueueNotification records the customer notice in the same transaction as
// the finalization; the dispatcher delivers it asynchronously and delivery
// failures never affect reconciliation.
func (c *paymentCommandsImpl) enqueueNotification(ctx context.Context, tx shared.Tx, snap *shared.OrderSnapshot, next order.PaymentStatus) error {
	payload, err := json.Marshal(paymentNotice{
		OrderNumber:   snap.OrderNumber,
		TransactionID: snap.TransactionID,
		PaymentStatus: string(next),
		AmountCents:   snap.FinalCents,
		Email:         snap.CustomerEmail,
		Phone:         snap.CustomerPhone,
	})
	if err != nil {
		return err
	}
	return tx.Notifications().CreateJob(ctx, tx.DB(), "payment_result", snap.OrderNumber, payload, c.clock.Now())
}
