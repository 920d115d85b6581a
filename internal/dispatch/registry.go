package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"dispatch/internal/core/domain/model/kernel"
)

var (
	// ErrDispatchAlreadyRunning is returned when a search for the order is
	// already in progress.
	ErrDispatchAlreadyRunning = errors.New("dispatch already running for order")

	// ErrDispatchNotFound is returned when no search is running for the order.
	ErrDispatchNotFound = errors.New("no running dispatch for order")
)

// Registry runs and tracks one dispatch task per order.
// At most one task exists per order id at any time, so attempts for an
// order never overlap even if a start request repeats.
type Registry struct {
	attempter    Attempter
	outcomes     Outcomes
	tickInterval time.Duration
	deadline     time.Duration
	logger       *slog.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	tasks   map[kernel.UUID]*task
	stopped bool
}

// NewRegistry creates a task registry.
// tickInterval paces the matching attempts of every task; deadline bounds
// how long a search may run before it times out.
func NewRegistry(
	attempter Attempter,
	outcomes Outcomes,
	tickInterval time.Duration,
	deadline time.Duration,
	logger *slog.Logger,
) *Registry {
	ctx, cancel := context.WithCancel(context.Background())

	return &Registry{
		attempter:    attempter,
		outcomes:     outcomes,
		tickInterval: tickInterval,
		deadline:     deadline,
		logger:       logger.With("component", "dispatch_registry"),
		ctx:          ctx,
		cancel:       cancel,
		tasks:        make(map[kernel.UUID]*task),
	}
}

// StartDispatch begins a courier search for the order.
// Returns ErrDispatchAlreadyRunning when a search for this order is already
// in progress. The search runs until assignment, deadline, cancellation, or
// StopAll.
func (r *Registry) StartDispatch(orderID kernel.UUID, pickup kernel.GeoLocation) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	if err := pickup.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopped {
		return context.Canceled
	}
	if _, running := r.tasks[orderID]; running {
		return ErrDispatchAlreadyRunning
	}

	t := &task{
		orderID:      orderID,
		pickup:       pickup,
		tickInterval: r.tickInterval,
		deadline:     r.deadline,
		cancel:       make(chan struct{}),
		attempter:    r.attempter,
		outcomes:     r.outcomes,
		logger:       r.logger,
	}
	r.tasks[orderID] = t

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer r.remove(orderID, t)

		r.logger.InfoContext(r.ctx, "dispatch started", "order_id", orderID.String())
		t.run(r.ctx)
		r.logger.InfoContext(r.ctx, "dispatch finished", "order_id", orderID.String())
	}()

	return nil
}

// CancelDispatch stops the search for the order.
// The running task observes the cancellation before its next attempt and
// reports OnCancelled. Returns ErrDispatchNotFound when no search is
// running, which callers treat as the search having already ended.
func (r *Registry) CancelDispatch(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	t, running := r.tasks[orderID]
	if !running {
		return ErrDispatchNotFound
	}

	// Removing the entry here makes a repeated cancel return
	// ErrDispatchNotFound instead of closing the channel twice.
	delete(r.tasks, orderID)
	close(t.cancel)

	return nil
}

// IsRunning reports whether a search for the order is in progress.
func (r *Registry) IsRunning(orderID kernel.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, running := r.tasks[orderID]
	return running
}

// Len returns the number of running searches.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.tasks)
}

// StopAll stops every running task and waits for them to finish.
// Stopped tasks report no outcome: on restart the recovery sweep re-enqueues
// orders that are still waiting for a courier.
func (r *Registry) StopAll() {
	r.mu.Lock()
	r.stopped = true
	r.mu.Unlock()

	r.cancel()
	r.wg.Wait()
}

// remove drops the task's entry when the task still owns it. After a cancel
// the entry is already gone, and a restart may have installed a new task
// under the same order id; an exiting goroutine must never evict that one.
func (r *Registry) remove(orderID kernel.UUID, t *task) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.tasks[orderID] == t {
		delete(r.tasks, orderID)
	}
}
