//go:build unit

package payment_test

import (
	"testing"

	"commerce-core/internal/domain/order"
	"commerce-core/internal/domain/payment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition(t *testing.T) {
	type testCase struct {
		name       string
		current    order.PaymentStatus
		outcome    payment.Outcome
		wantNext   order.PaymentStatus
		wantReplay bool
		wantErr    error
	}

	cases := []testCase{
		{
			name:     "pending to completed",
			current:  order.PaymentPending,
			outcome:  payment.OutcomeValid,
			wantNext: order.PaymentCompleted,
		},
		{
			name:     "pending to failed",
			current:  order.PaymentPending,
			outcome:  payment.OutcomeFailed,
			wantNext: order.PaymentFailed,
		},
		{
			name:     "pending to cancelled",
			current:  order.PaymentPending,
			outcome:  payment.OutcomeCancelled,
			wantNext: order.PaymentCancelled,
		},
		{
			name:       "completed replayed with valid is a no-op",
			current:    order.PaymentCompleted,
			outcome:    payment.OutcomeValid,
			wantNext:   order.PaymentCompleted,
			wantReplay: true,
		},
		{
			name:       "cancelled replayed with cancelled is a no-op",
			current:    order.PaymentCancelled,
			outcome:    payment.OutcomeCancelled,
			wantNext:   order.PaymentCancelled,
			wantReplay: true,
		},
		{
			name:    "completed then failed conflicts",
			current: order.PaymentCompleted,
			outcome: payment.OutcomeFailed,
			wantErr: payment.ErrConflict,
		},
		{
			name:    "cancelled then valid conflicts",
			current: order.PaymentCancelled,
			outcome: payment.OutcomeValid,
			wantErr: payment.ErrConflict,
		},
		{
			name:    "failed then valid conflicts",
			current: order.PaymentFailed,
			outcome: payment.OutcomeValid,
			wantErr: payment.ErrConflict,
		},
		{
			name:    "unknown outcome rejected",
			current: order.PaymentPending,
			outcome: payment.Outcome("REVERSED"),
			wantErr: payment.ErrUnknownOutcome,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			decision, err := payment.Transition(tc.current, tc.outcome)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantNext, decision.Next)
			assert.Equal(t, tc.wantReplay, decision.Replay)
		})
	}
}

func TestTransitionIsCommutative(t *testing.T) {
	// Redirect and IPN carry the same validated outcome; whichever lands
	// second must observe a replay, never a second transition.
	first, err := payment.Transition(order.PaymentPending, payment.OutcomeValid)
	require.NoError(t, err)
	require.False(t, first.Replay)

	second, err := payment.Transition(first.Next, payment.OutcomeValid)
	require.NoError(t, err)
	assert.True(t, second.Replay)
	assert.Equal(t, first.Next, second.Next)
}

func TestStatusMappings(t *testing.T) {
	assert.Equal(t, order.StatusConfirmed, payment.OrderStatusFor(order.PaymentCompleted))
	assert.Equal(t, order.StatusCancelled, payment.OrderStatusFor(order.PaymentFailed))
	assert.Equal(t, order.StatusCancelled, payment.OrderStatusFor(order.PaymentCancelled))

	assert.Equal(t, order.InvoicePaid, payment.InvoiceStatusFor(order.PaymentCompleted))
	assert.Equal(t, order.InvoiceCancelled, payment.InvoiceStatusFor(order.PaymentFailed))
	assert.Equal(t, order.InvoiceCancelled, payment.InvoiceStatusFor(order.PaymentCancelled))
}
