package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeCompleter struct {
	batches []int
	err     error
	calls   int
}

func (f *fakeCompleter) CompleteEnded(_ context.Context, batchSize int) (int, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	if len(f.batches) == 0 {
		return 0, nil
	}
	n := f.batches[0]
	f.batches = f.batches[1:]
	return n, nil
}

func TestCompleteEndedDrainsFullBatches(t *testing.T) {
	c := &fakeCompleter{batches: []int{completionBatchSize, completionBatchSize, 3}}
	job := NewReservationCompletionJob(c, time.Minute)

	total := job.completeEnded(context.Background())

	assert.Equal(t, 2*completionBatchSize+3, total)
	assert.Equal(t, 3, c.calls)
}

func TestCompleteEndedStopsOnError(t *testing.T) {
	c := &fakeCompleter{err: errors.New("db down")}
	job := NewReservationCompletionJob(c, time.Minute)

	assert.Equal(t, 0, job.completeEnded(context.Background()))
	assert.Equal(t, 1, c.calls)
}

func TestCompleteEndedHonoursCancellation(t *testing.T) {
	c := &fakeCompleter{batches: []int{completionBatchSize}}
	job := NewReservationCompletionJob(c, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Equal(t, 0, job.completeEnded(ctx))
	assert.Equal(t, 0, c.calls)
}

func TestDefaultInterval(t *testing.T) {
	job := NewReservationCompletionJob(&fakeCompleter{}, 0)
	assert.Equal(t, 5*time.Minute, job.interval)
}
