package mutate

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"flooring-cli/internal/model"
)

// SyncFailedToast is shown when a full reload fails; local state is kept.
const SyncFailedToast = "Sync failed: Please check your Google Script connection"

// Scheduler runs a full resync after delay. Scheduled resyncs are neither
// debounced nor cancelled: each one eventually runs.
type Scheduler interface {
	Schedule(delay time.Duration)
}

// Fetch loads all six collections concurrently. It is all-or-nothing: the first
// failure cancels the rest and no partial snapshot is returned.
func Fetch(ctx context.Context, f Fetcher, now time.Time) (model.Snapshot, error) {
	var snap model.Snapshot
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		snap.Reports, err = f.FetchReports(ctx)
		return err
	})
	g.Go(func() (err error) {
		snap.DeletedReports, err = f.FetchDeletedReports(ctx)
		return err
	})
	g.Go(func() (err error) {
		snap.Foremen, err = f.FetchForemen(ctx)
		return err
	})
	g.Go(func() (err error) {
		snap.PTPs, err = f.FetchPTPs(ctx)
		return err
	})
	g.Go(func() (err error) {
		snap.DeletedPTPs, err = f.FetchDeletedPTPs(ctx)
		return err
	})
	g.Go(func() (err error) {
		snap.AuditLogs, err = f.FetchAuditLogs(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.Snapshot{}, err
	}
	snap.FetchedAt = now
	return snap, nil
}

// BeginResync marks the state as syncing.
func BeginResync(s State) State {
	s.Syncing = true
	return s
}

// Fetch loads a snapshot from the controller's store.
func (c *Controller) Fetch(ctx context.Context) (model.Snapshot, error) {
	return Fetch(ctx, c.Store, c.now())
}

// FinishResync applies a fetched snapshot, or keeps s and shows the sync failure toast.
func (c *Controller) FinishResync(s State, snap model.Snapshot, err error) (State, error) {
	c.Metrics.Resync(err)
	s.Syncing = false
	if err != nil {
		c.logger().Warn("resync failed", "err", err)
		return s.withToast(SyncFailedToast), err
	}
	return s.ApplySnapshot(snap), nil
}

// Resync replaces every local collection with the backend's.
func (c *Controller) Resync(ctx context.Context, s State) (State, error) {
	snap, err := c.Fetch(ctx)
	return c.FinishResync(s, snap, err)
}

// TimerScheduler fires resyncs on real timers. Fired timers are counted and
// signalled on C so the goroutine that owns State can run them; a timer never
// blocks when nobody drains.
type TimerScheduler struct {
	C chan struct{}

	mu      sync.Mutex
	pending int
	fired   int
}

func NewTimerScheduler() *TimerScheduler {
	return &TimerScheduler{C: make(chan struct{}, 1)}
}

func (t *TimerScheduler) Schedule(delay time.Duration) {
	t.mu.Lock()
	t.pending++
	t.mu.Unlock()
	time.AfterFunc(delay, func() {
		t.mu.Lock()
		t.fired++
		t.mu.Unlock()
		select {
		case t.C <- struct{}{}:
		default:
		}
	})
}

// Pending is the number of scheduled resyncs that have not been drained yet.
func (t *TimerScheduler) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending
}

// Fired is the number of resyncs whose timer has gone off but that were not
// drained yet.
func (t *TimerScheduler) Fired() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fired
}

// take consumes one fired resync, if any.
func (t *TimerScheduler) take() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.fired == 0 {
		return false
	}
	t.fired--
	t.pending--
	return true
}

// Drain waits for every scheduled resync and calls fn for each as it fires. fn
// may schedule more; Drain returns once none are pending or ctx is done.
func (t *TimerScheduler) Drain(ctx context.Context, fn func(context.Context)) error {
	for t.Pending() > 0 {
		if t.take() {
			fn(ctx)
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	return nil
}

// QueueScheduler records requested delays for a host that runs its own timers.
type QueueScheduler struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (q *QueueScheduler) Schedule(delay time.Duration) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.delays = append(q.delays, delay)
}

// Take returns and clears the queued delays.
func (q *QueueScheduler) Take() []time.Duration {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.delays
	q.delays = nil
	return out
}
