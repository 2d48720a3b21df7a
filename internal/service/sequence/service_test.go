package sequence

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/brightside-counseling/claims-api/internal/model"
)

type fakeSequenceRepo struct {
	values map[model.CounterName]int64
	err    error
}

func (f *fakeSequenceRepo) Next(_ context.Context, counter model.CounterName) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	v := f.values[counter]
	next := v + 1
	if next == pow10(counter.Width())-1 {
		next = 0
	}
	f.values[counter] = next
	return v, nil
}

func pow10(n int) int64 {
	v := int64(1)
	for i := 0; i < n; i++ {
		v *= 10
	}
	return v
}

func TestAllocateZeroPadsToCounterWidth(t *testing.T) {
	repo := &fakeSequenceRepo{values: map[model.CounterName]int64{
		model.CounterInterchangeCtlNo: 7,
		model.CounterProviderCtlNo:    12345,
		model.CounterClaimNo:          42,
	}}
	svc := NewService(repo, nil, zerolog.Nop())

	got, err := svc.Allocate(context.Background(), model.CounterInterchangeCtlNo)
	assert.NoError(t, err)
	assert.Equal(t, "000000007", got)

	got, err = svc.Allocate(context.Background(), model.CounterProviderCtlNo)
	assert.NoError(t, err)
	assert.Equal(t, "00012345", got)

	got, err = svc.Allocate(context.Background(), model.CounterClaimNo)
	assert.NoError(t, err)
	assert.Equal(t, "000000000000042", got)
}

func TestAllocateSequentialAndContiguous(t *testing.T) {
	repo := &fakeSequenceRepo{values: map[model.CounterName]int64{model.CounterProviderCtlNo: 0}}
	svc := NewService(repo, nil, zerolog.Nop())

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		got, err := svc.Allocate(context.Background(), model.CounterProviderCtlNo)
		assert.NoError(t, err)
		assert.False(t, seen[got], "duplicate control number %s", got)
		seen[got] = true
	}
	assert.Len(t, seen, 50)
}

func TestAllocateWrapsBeforeWidthOverflow(t *testing.T) {
	// The 9-digit counter hands out 999999998 and then wraps to zero, so no
	// value ever needs a tenth digit.
	repo := &fakeSequenceRepo{values: map[model.CounterName]int64{model.CounterInterchangeCtlNo: 999999998}}
	svc := NewService(repo, nil, zerolog.Nop())

	got, err := svc.Allocate(context.Background(), model.CounterInterchangeCtlNo)
	assert.NoError(t, err)
	assert.Equal(t, "999999998", got)

	got, err = svc.Allocate(context.Background(), model.CounterInterchangeCtlNo)
	assert.NoError(t, err)
	assert.Equal(t, "000000000", got)
}

func TestAllocatePropagatesMissingCounterRow(t *testing.T) {
	repo := &fakeSequenceRepo{err: model.ErrCounterRowMissing}
	svc := NewService(repo, nil, zerolog.Nop())

	_, err := svc.Allocate(context.Background(), model.CounterClaimNo)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrCounterRowMissing))
}
