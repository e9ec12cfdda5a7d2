package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const completionBatchSize = 200

// Completer marks ended reservations as terminee and reports how many changed.
type Completer interface {
	CompleteEnded(ctx context.Context, batchSize int) (int, error)
}

// ReservationCompletionJob closes confirmed reservations once their end time has passed
type ReservationCompletionJob struct {
	completer Completer
	interval  time.Duration
	ticker    *time.Ticker
	done      chan struct{}
	running   sync.Mutex
}

func NewReservationCompletionJob(completer Completer, interval time.Duration) *ReservationCompletionJob {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &ReservationCompletionJob{
		completer: completer,
		interval:  interval,
		done:      make(chan struct{}),
	}
}

// Start runs a first pass immediately, then one per interval until Stop or ctx is done.
func (j *ReservationCompletionJob) Start(ctx context.Context) {
	slog.Info("Starting reservation completion job", "check_interval", j.interval.String())

	j.ticker = time.NewTicker(j.interval)

	go j.run(ctx)

	go func() {
		for {
			select {
			case <-j.ticker.C:
				go j.run(ctx)
			case <-ctx.Done():
				j.ticker.Stop()
				return
			case <-j.done:
				slog.Info("Reservation completion job stopped")
				return
			}
		}
	}()
}

func (j *ReservationCompletionJob) Stop() {
	if j.ticker != nil {
		j.ticker.Stop()
	}
	close(j.done)
}

// run skips the tick when the previous pass is still working.
func (j *ReservationCompletionJob) run(ctx context.Context) {
	if !j.running.TryLock() {
		slog.Debug("Previous completion pass still running, skipping")
		return
	}
	defer j.running.Unlock()

	j.completeEnded(ctx)
}

// completeEnded drains ended reservations batch by batch.
func (j *ReservationCompletionJob) completeEnded(ctx context.Context) int {
	total := 0
	for ctx.Err() == nil {
		n, err := j.completer.CompleteEnded(ctx, completionBatchSize)
		if err != nil {
			slog.Error("Failed to complete ended reservations", "error", err)
			break
		}
		total += n
		if n < completionBatchSize {
			break
		}
	}

	if total > 0 {
		slog.Info("Completed ended reservations", "count", total)
	} else {
		slog.Debug("No ended reservations found")
	}
	return total
}
