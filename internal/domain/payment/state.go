// Package payment holds the reconciliation state machine. The transition
// function is pure: every entry point (browser redirect or out-of-band
// notification) validates with the gateway first, then feeds the validated
// outcome through Transition. Arrival order between entry points carries no
// meaning, so the machine is commutative and idempotent by construction.
package payment

import (
	"errors"

	"commerce-core/internal/domain/order"
)

var (
	// ErrConflict marks an attempt to move an already-terminal order to a
	// different terminal state. Logged and rejected, never overwritten.
	ErrConflict = errors.New("conflicting terminal payment state")

	ErrUnknownOutcome = errors.New("unknown payment outcome")
	ErrUnknownState   = errors.New("unknown payment state")
)

// Outcome is a gateway-validated completion signal.
type Outcome string

const (
	OutcomeValid     Outcome = "VALID"
	OutcomeFailed    Outcome = "FAILED"
	OutcomeCancelled Outcome = "CANCELLED"
)

// Terminal maps a validated outcome to its terminal payment status.
func (o Outcome) Terminal() (order.PaymentStatus, error) {
	switch o {
	case OutcomeValid:
		return order.PaymentCompleted, nil
	case OutcomeFailed:
		return order.PaymentFailed, nil
	case OutcomeCancelled:
		return order.PaymentCancelled, nil
	default:
		return "", ErrUnknownOutcome
	}
}

// Decision is the result of a transition attempt.
type Decision struct {
	Next order.PaymentStatus
	// Replay is true when the order already reached the same terminal state:
	// the caller must treat the signal as a success no-op (no side effects,
	// no second notification).
	Replay bool
}

// Transition computes the next payment state for a validated outcome.
//
//	PENDING  + outcome          -> terminal(outcome)
//	terminal + same outcome     -> replay no-op
//	terminal + other outcome    -> ErrConflict
func Transition(current order.PaymentStatus, outcome Outcome) (Decision, error) {
	target, err := outcome.Terminal()
	if err != nil {
		return Decision{}, err
	}

	switch {
	case current == order.PaymentPending:
		return Decision{Next: target}, nil
	case current == target:
		return Decision{Next: current, Replay: true}, nil
	case current.IsTerminal():
		return Decision{}, ErrConflict
	default:
		return Decision{}, ErrUnknownState
	}
}

// OrderStatusFor returns the order-level status that accompanies a terminal
// payment status.
func OrderStatusFor(ps order.PaymentStatus) order.Status {
	switch ps {
	case order.PaymentCompleted:
		return order.StatusConfirmed
	case order.PaymentFailed, order.PaymentCancelled:
		return order.StatusCancelled
	default:
		return order.StatusPending
	}
}

// InvoiceStatusFor returns the invoice status that accompanies a terminal
// payment status; invoices move only in lock-step with the order.
func InvoiceStatusFor(ps order.PaymentStatus) order.InvoiceStatus {
	if ps == order.PaymentCompleted {
		return order.InvoicePaid
	}
	return order.InvoiceCancelled
}
