//go:build unit

package commands

import (
	"context"
	"testing"

	"commerce-core/internal/pkg/errs"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cockroachdb/errors"
)

func TestSaga_CompensateRunsInReverseOrder(t *testing.T) {
	saga := NewSaga()
	var journal []string

	for _, label := range []string{"first", "second", "third"} {
		label := label
		saga.Add(label, func(ctx context.Context) error {
			journal = append(journal, label)
			return nil
		})
	}
	require.Equal(t, 3, saga.Len())

	err := saga.Compensate(context.Background())
	require.NoError(t, err)

	want := []string{"third", "second", "first"}
	assert.Empty(t, cmp.Diff(want, journal))
}

func TestSaga_CompensateContinuesPastFailure(t *testing.T) {
	saga := NewSaga()
	var journal []string

	saga.Add("first", func(ctx context.Context) error {
		journal = append(journal, "first")
		return nil
	})
	saga.Add("second", func(ctx context.Context) error {
		journal = append(journal, "second")
		return errs.New("boom")
	})
	saga.Add("third", func(ctx context.Context) error {
		journal = append(journal, "third")
		return nil
	})

	err := saga.Compensate(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCompensationFailed))

	// the failing step does not stop the remaining compensations
	want := []string{"third", "second", "first"}
	assert.Empty(t, cmp.Diff(want, journal))
}

func TestSaga_CompensateIsOneShot(t *testing.T) {
	saga := NewSaga()
	runs := 0
	saga.Add("only", func(ctx context.Context) error {
		runs++
		return nil
	})

	require.NoError(t, saga.Compensate(context.Background()))
	require.NoError(t, saga.Compensate(context.Background()))
	assert.Equal(t, 1, runs)
	assert.Equal(t, 0, saga.Len())
}

func TestSaga_EmptyCompensateIsNoop(t *testing.T) {
	saga := NewSaga()
	assert.NoError(t, saga.Compensate(context.Background()))
}
