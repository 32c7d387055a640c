package livestatus

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/easyrail/easyrail_core/internal/cache"
	"github.com/easyrail/easyrail_core/internal/scheduler"
)

var ErrTooManyWatches = errors.New("too many trains are being watched")

// Fetcher returns the raw backend answer for a train run
type Fetcher interface {
	LiveStatus(ctx context.Context, number, date string) ([]byte, error)
}

// SnapshotStore keeps the latest summary of each run
type SnapshotStore interface {
	GetJSON(ctx context.Context, key string, v interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error
}

// Options configures a Service
type Options struct {
	Interval   time.Duration
	TTL        time.Duration
	MaxWatches int
	Clock      clock.Clock
}

// Service fetches summaries and refreshes watched runs on an interval
type Service struct {
	fetcher Fetcher
	store   SnapshotStore
	opts    Options

	base   context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	watches map[string]*scheduler.Scheduler
}

func NewService(fetcher Fetcher, store SnapshotStore, opts Options) *Service {
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Minute
	}
	base, cancel := context.WithCancel(context.Background())
	return &Service{
		fetcher: fetcher,
		store:   store,
		opts:    opts,
		base:    base,
		cancel:  cancel,
		watches: make(map[string]*scheduler.Scheduler),
	}
}

// SnapshotKey generates the cache key of a run's summary
func SnapshotKey(number, date string) string {
	return cache.FeedKey("live", number, date)
}

// Fetch asks the backend for the run and stores the new summary
func (s *Service) Fetch(ctx context.Context, number, date string) (Summary, error) {
	body, err := s.fetcher.LiveStatus(ctx, number, date)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to fetch live status: %w", err)
	}

	rows, err := Decode(body)
	if err != nil {
		return Summary{}, err
	}

	summary, err := Summarize(number, date, rows)
	if err != nil {
		return Summary{}, err
	}
	summary.UpdatedAt = s.opts.Clock.Now()

	if err := s.store.SetJSON(ctx, SnapshotKey(number, date), summary, s.opts.TTL); err != nil {
		log.Printf("Warning: failed to store live status of %s: %v", number, err)
	}
	return summary, nil
}

// Get returns the stored summary of the run, fetching it when there is none
func (s *Service) Get(ctx context.Context, number, date string) (Summary, error) {
	var summary Summary
	found, err := s.store.GetJSON(ctx, SnapshotKey(number, date), &summary)
	if err != nil {
		log.Printf("Warning: failed to read live status of %s: %v", number, err)
	}
	if found {
		return summary, nil
	}
	return s.Fetch(ctx, number, date)
}

// Watch fetches the run now and then keeps refreshing it every interval
// until Unwatch or the first failed refresh. Watching a run twice is a no-op.
func (s *Service) Watch(ctx context.Context, number, date string) (Summary, error) {
	key := SnapshotKey(number, date)

	s.mu.Lock()
	s.prune()
	_, watching := s.watches[key]
	full := s.full()
	s.mu.Unlock()

	if !watching && full {
		return Summary{}, ErrTooManyWatches
	}

	summary, err := s.Fetch(ctx, number, date)
	if err != nil || watching {
		return summary, err
	}

	task := func(ctx context.Context) error {
		_, err := s.Fetch(ctx, number, date)
		return err
	}
	sched := scheduler.New("live status "+number+" "+date, s.opts.Clock, s.opts.Interval, task)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.watches[key]; exists {
		return summary, nil
	}
	// other runs may have been added while this one was fetched
	s.prune()
	if s.full() {
		return Summary{}, ErrTooManyWatches
	}
	if err := sched.Start(s.base); err != nil {
		return summary, err
	}
	s.watches[key] = sched
	log.Printf("Watching live status of %s on %s", number, date)
	return summary, nil
}

// Unwatch stops refreshing the run. It reports whether a watch was active.
func (s *Service) Unwatch(number, date string) bool {
	key := SnapshotKey(number, date)

	s.mu.Lock()
	sched, ok := s.watches[key]
	delete(s.watches, key)
	s.mu.Unlock()

	if !ok {
		return false
	}
	running := sched.Running()
	sched.Stop()
	return running
}

// Watching reports whether the run is being refreshed
func (s *Service) Watching(number, date string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sched, ok := s.watches[SnapshotKey(number, date)]
	return ok && sched.Running()
}

// WatchCount is the number of active watches
func (s *Service) WatchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prune()
	return len(s.watches)
}

// Close stops every watch
func (s *Service) Close() {
	s.cancel()

	s.mu.Lock()
	watches := s.watches
	s.watches = make(map[string]*scheduler.Scheduler)
	s.mu.Unlock()

	for _, sched := range watches {
		sched.Stop()
	}
}

// full reports whether the watch limit is reached, the caller holds mu
func (s *Service) full() bool {
	return s.opts.MaxWatches > 0 && len(s.watches) >= s.opts.MaxWatches
}

// prune drops watches whose refresh failed, the caller holds mu
func (s *Service) prune() {
	for key, sched := range s.watches {
		if !sched.Running() {
			delete(s.watches, key)
		}
	}
}
