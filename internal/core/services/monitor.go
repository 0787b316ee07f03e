package services

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultPollInterval = 10 * time.Second
	defaultPrimeDelay   = 2 * time.Second
)

// Supervisor owns the per-job background watchers. Each watcher polls its
// container until the job reaches a terminal state, then exits. Watchers
// hold explicit handles so shutdown can drain them instead of orphaning
// background work.
type Supervisor struct {
	log      zerolog.Logger
	manager  *Manager
	interval time.Duration
	prime    time.Duration

	mu     sync.Mutex
	active map[string]struct{}
	wg     sync.WaitGroup
}

func NewSupervisor(log zerolog.Logger, manager *Manager, interval, primeDelay time.Duration) *Supervisor {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if primeDelay <= 0 {
		primeDelay = defaultPrimeDelay
	}
	return &Supervisor{
		log:      log,
		manager:  manager,
		interval: interval,
		prime:    primeDelay,
		active:   map[string]struct{}{},
	}
}

// Watch starts the background watcher for a freshly launched container.
// A second Watch for the same job while the first is still running is a
// no-op: there is one monitor per job.
func (s *Supervisor) Watch(ctx context.Context, jobID, containerID string) {
	s.mu.Lock()
	if _, ok := s.active[jobID]; ok {
		s.mu.Unlock()
		return
	}
	s.active[jobID] = struct{}{}
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			delete(s.active, jobID)
			s.mu.Unlock()
		}()
		s.run(ctx, jobID, containerID)
	}()
}

// Wait blocks until every watcher has exited.
func (s *Supervisor) Wait() {
	s.wg.Wait()
}

func (s *Supervisor) run(ctx context.Context, jobID, containerID string) {
	// Short-delay primer: catches containers that exit near-instantly
	// before the first full poll. The observation is discarded; the next
	// poll cycle performs the transition.
	select {
	case <-ctx.Done():
		return
	case <-time.After(s.prime):
		ictx, cancel := context.WithTimeout(ctx, s.manager.cfg.InspectTimeout)
		if state, err := s.manager.runtime.Inspect(ictx, containerID); err == nil {
			s.log.Debug().Str("job_id", jobID).Str("state", state.Status).Msg("primer check")
		}
		cancel()
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			job, ok := s.manager.Get(jobID)
			if !ok {
				s.log.Warn().Str("job_id", jobID).Msg("monitored job disappeared, watcher exiting")
				return
			}
			if job.Status.Terminal() {
				return
			}
			if s.manager.observeContainer(ctx, jobID, containerID, job.Status) {
				return
			}
		}
	}
}
