package commands

import (
	"context"
	"log/slog"

	"commerce-core/internal/pkg/errs"
)

// Compensation is one inverse action recorded during order assembly.
// Compensations replace database transactions for the cross-entity parts of
// checkout: stock and coupon counters are mutated by individual conditional
// writes, so a failing step must undo the ones that already committed.
type Compensation struct {
	Label string
	Run   func(ctx context.Context) error
}

// Saga accumulates compensations in execution order and runs them in
// reverse when the attempt fails.
type Saga struct {
	comps []Compensation
}

func NewSaga() *Saga {
	return &Saga{}
}

func (s *Saga) Add(label string, run func(ctx context.Context) error) {
	s.comps = append(s.comps, Compensation{Label: label, Run: run})
}

func (s *Saga) Len() int {
	return len(s.comps)
}

// Compensate runs all recorded compensations in reverse order. A failing
// compensation is logged and does not stop the remaining ones; the joined
// error is returned for the caller's log line.
func (s *Saga) Compensate(ctx context.Context) error {
	var failed error
	for i := len(s.comps) - 1; i >= 0; i-- {
		c := s.comps[i]
		if err := c.Run(ctx); err != nil {
			slog.Error("compensation failed",
				"label", c.Label,
				"error", err.Error())
			failed = errs.Mark(err, ErrCompensationFailed)
		}
	}
	s.comps = nil
	return failed
}
