package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lberes/taskdock/internal/core/ports"
)

const notifyTimeout = 30 * time.Second

// TimeoutMonitor is a one-shot watchdog: armed by Start, it waits the full
// wall-clock limit and fires exactly one notification unless Stop is called
// first. Start is idempotent; Stop is safe before Start, after Start, and
// after the notification has fired.
type TimeoutMonitor struct {
	log      zerolog.Logger
	notifier ports.Notifier
	jobID    string
	limit    time.Duration
	started  time.Time

	startOnce sync.Once
	stopOnce  sync.Once
	stop      chan struct{}
	done      chan struct{}
}

func NewTimeoutMonitor(log zerolog.Logger, notifier ports.Notifier, jobID string, limit time.Duration) *TimeoutMonitor {
	return &TimeoutMonitor{
		log:      log,
		notifier: notifier,
		jobID:    jobID,
		limit:    limit,
		started:  time.Now(),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start arms the watchdog. Subsequent calls are no-ops.
func (t *TimeoutMonitor) Start() {
	t.startOnce.Do(func() {
		go t.run()
	})
}

// Stop disarms the watchdog. Whoever drives the job to a terminal state is
// responsible for calling Stop so a stale notification cannot fire later.
func (t *TimeoutMonitor) Stop() {
	t.stopOnce.Do(func() {
		close(t.stop)
	})
}

func (t *TimeoutMonitor) run() {
	defer close(t.done)

	timer := time.NewTimer(t.limit)
	defer timer.Stop()

	select {
	case <-t.stop:
		return
	case <-timer.C:
		t.notify()
	}
}

func (t *TimeoutMonitor) notify() {
	elapsed := t.Elapsed()
	minutes := int(elapsed.Minutes())
	seconds := int(elapsed.Seconds()) % 60
	message := fmt.Sprintf("Time limit reached: job %s has been running for %dm %ds (limit %d minutes). The agent is still running and may need attention.",
		t.jobID, minutes, seconds, int(t.limit.Minutes()))

	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	if t.notifier == nil {
		t.log.Warn().Str("job_id", t.jobID).Dur("elapsed", elapsed).Msg("job time limit reached")
		return
	}
	if err := t.notifier.NotifyProgress(ctx, message); err != nil {
		t.log.Warn().Str("job_id", t.jobID).Err(err).Msg("timeout notification failed")
		return
	}
	t.log.Info().Str("job_id", t.jobID).Dur("elapsed", elapsed).Msg("timeout notification sent")
}

// Elapsed is the time since the monitor was constructed.
func (t *TimeoutMonitor) Elapsed() time.Duration {
	return time.Since(t.started)
}

// Remaining is the time left before the limit, negative once exceeded.
func (t *TimeoutMonitor) Remaining() time.Duration {
	return t.limit - t.Elapsed()
}
