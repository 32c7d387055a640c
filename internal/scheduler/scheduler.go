// Package scheduler runs a task on a fixed interval until it is stopped or
// the task fails.
package scheduler

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

var ErrAlreadyRunning = errors.New("scheduler already running")

// Task is one run of the scheduled work
type Task func(ctx context.Context) error

// Scheduler owns the ticker of a single periodic task. There is no retry:
// the first failed run stops the loop.
type Scheduler struct {
	name     string
	clock    clock.Clock
	interval time.Duration
	task     Task

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	lastErr error
}

// New creates a stopped scheduler. A nil clk means the wall clock.
func New(name string, clk clock.Clock, interval time.Duration, task Task) *Scheduler {
	if clk == nil {
		clk = clock.New()
	}
	return &Scheduler{
		name:     name,
		clock:    clk,
		interval: interval,
		task:     task,
	}
}

// Start begins ticking. The first run happens one interval after Start.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.lastErr = nil

	ticker := s.clock.Ticker(s.interval)
	go s.loop(ctx, ticker, s.done)
	return nil
}

func (s *Scheduler) loop(ctx context.Context, ticker *clock.Ticker, done chan struct{}) {
	var err error
	defer func() {
		ticker.Stop()
		s.release(done, err)
		close(done)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err = s.task(ctx); err != nil {
				if ctx.Err() != nil {
					err = nil
					return
				}
				log.Printf("Warning: %s refresh failed, stopping: %v", s.name, err)
				return
			}
		}
	}
}

// release clears the running state if it still belongs to the loop that
// owns done
func (s *Scheduler) release(done chan struct{}, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != done {
		return
	}
	s.lastErr = err
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Stop cancels the loop and waits for it to exit. Stopping a stopped
// scheduler is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether the loop is active
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// Done is closed when the current loop exits. It is nil before the first Start.
func (s *Scheduler) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// Err returns the error that stopped the last loop, if any
func (s *Scheduler) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}
