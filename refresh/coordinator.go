// Package refresh runs a loader on a timer for one time-range parameter, keeping the
// last good result on screen while later batches fail and discarding results that
// belong to a parameter the owner has since moved away from.
package refresh

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	cerrors "github.com/jrsteele09/secops-console/internal/errors"
)

const DefaultInterval = 30 * time.Second

// Loader fetches one batch for the given number of hours. It must return promptly once
// ctx is cancelled.
type Loader[T any] func(ctx context.Context, hours int) (T, error)

// State is what the owning view renders.
//
// Before the first successful batch HasData is false; if that batch failed Err is set
// and Data is the zero value. After a success Data always holds the newest successful
// batch and Err, when set, describes the latest failure.
type State[T any] struct {
	Hours      int
	Data       T
	HasData    bool
	Err        error
	Loading    bool
	UpdatedAt  time.Time
	Generation uint64 // bumped on every time-range change
}

// Coordinator owns one pending timer slot and the batches started for the current
// time range.
type Coordinator[T any] struct {
	load     Loader[T]
	interval time.Duration
	clock    clock.Clock
	onUpdate func(State[T])

	stateMu sync.RWMutex
	state   State[T]

	hoursCh   chan int
	refreshCh chan struct{}
	results   chan batchResult[T]

	lifeMu  sync.Mutex
	started bool
	stopped bool
	cancel  context.CancelFunc
	done    chan struct{}
	batches sync.WaitGroup
}

// Option defines a function type to modify the Coordinator instance.
type Option[T any] func(*Coordinator[T])

// WithInterval sets the delay between the end of a scheduled batch and the next one
func WithInterval[T any](d time.Duration) Option[T] {
	return func(c *Coordinator[T]) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithClock sets the clock timers are created from (primarily for testing)
func WithClock[T any](clk clock.Clock) Option[T] {
	return func(c *Coordinator[T]) {
		c.clock = clk
	}
}

// WithOnUpdate registers a callback invoked, from the coordinator goroutine, after
// every state change.
func WithOnUpdate[T any](fn func(State[T])) Option[T] {
	return func(c *Coordinator[T]) {
		c.onUpdate = fn
	}
}

func New[T any](load Loader[T], options ...Option[T]) *Coordinator[T] {
	c := &Coordinator[T]{
		load:      load,
		interval:  DefaultInterval,
		clock:     clock.New(),
		hoursCh:   make(chan int),
		refreshCh: make(chan struct{}),
		results:   make(chan batchResult[T]),
		done:      make(chan struct{}),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Start runs the first batch for hours immediately and keeps refreshing until ctx is
// cancelled or Stop is called.
func (c *Coordinator[T]) Start(ctx context.Context, hours int) error {
	if hours <= 0 {
		return cerrors.ErrInvalidTimeRange
	}

	c.lifeMu.Lock()
	defer c.lifeMu.Unlock()
	if c.stopped {
		return cerrors.ErrCoordinatorStopped
	}
	if c.started {
		return cerrors.ErrCoordinatorStarted
	}
	c.started = true

	loopCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	go c.run(loopCtx, hours)
	return nil
}

// SetHours switches the time range. The pending timer is cancelled, batches in flight
// for the old range are abandoned and a batch for the new range starts at once.
// Setting the current value again does nothing.
func (c *Coordinator[T]) SetHours(hours int) error {
	if hours <= 0 {
		return cerrors.ErrInvalidTimeRange
	}
	if err := c.running(); err != nil {
		return err
	}
	select {
	case c.hoursCh <- hours:
		return nil
	case <-c.done:
		return cerrors.ErrCoordinatorStopped
	}
}

// RefreshNow starts an extra batch for the current time range. The timer schedule is
// left as it is.
func (c *Coordinator[T]) RefreshNow() error {
	if err := c.running(); err != nil {
		return err
	}
	select {
	case c.refreshCh <- struct{}{}:
		return nil
	case <-c.done:
		return cerrors.ErrCoordinatorStopped
	}
}

// Stop cancels the timer and every batch in flight and waits for them to return.
// It is safe to call more than once, and before Start.
func (c *Coordinator[T]) Stop() {
	c.lifeMu.Lock()
	if c.stopped {
		c.lifeMu.Unlock()
		<-c.doneIfStarted()
		return
	}
	c.stopped = true
	started := c.started
	if started {
		c.cancel()
	}
	c.lifeMu.Unlock()

	if started {
		<-c.done
	}
}

// State returns a copy of the current state.
func (c *Coordinator[T]) State() State[T] {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.state
}

func (c *Coordinator[T]) running() error {
	c.lifeMu.Lock()
	defer c.lifeMu.Unlock()
	if c.stopped {
		return cerrors.ErrCoordinatorStopped
	}
	if !c.started {
		return cerrors.ErrCoordinatorNotRunning
	}
	return nil
}

func (c *Coordinator[T]) doneIfStarted() <-chan struct{} {
	if c.started {
		return c.done
	}
	closed := make(chan struct{})
	close(closed)
	return closed
}

func (c *Coordinator[T]) update(fn func(s *State[T])) {
	c.stateMu.Lock()
	fn(&c.state)
	snapshot := c.state
	c.stateMu.Unlock()

	if c.onUpdate != nil {
		c.onUpdate(snapshot)
	}
}
