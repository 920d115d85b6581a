package dispatch_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/dispatch"
)

const (
	testTick     = 5 * time.Millisecond
	testDeadline = 40 * time.Millisecond
	waitFor      = 2 * time.Second
	pollEvery    = time.Millisecond
)

// outcomeRecorder counts terminal outcome callbacks per order.
type outcomeRecorder struct {
	mu        sync.Mutex
	assigned  map[kernel.UUID]kernel.UUID
	timedOut  map[kernel.UUID]int
	cancelled map[kernel.UUID]int
}

func newOutcomeRecorder() *outcomeRecorder {
	return &outcomeRecorder{
		assigned:  make(map[kernel.UUID]kernel.UUID),
		timedOut:  make(map[kernel.UUID]int),
		cancelled: make(map[kernel.UUID]int),
	}
}

func (r *outcomeRecorder) OnAssigned(_ context.Context, orderID kernel.UUID, courierID kernel.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assigned[orderID] = courierID
}

func (r *outcomeRecorder) OnTimedOut(_ context.Context, orderID kernel.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timedOut[orderID]++
}

func (r *outcomeRecorder) OnCancelled(_ context.Context, orderID kernel.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelled[orderID]++
}

func (r *outcomeRecorder) assignedTo(orderID kernel.UUID) (kernel.UUID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	courierID, ok := r.assigned[orderID]
	return courierID, ok
}

func (r *outcomeRecorder) timedOutCount(orderID kernel.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.timedOut[orderID]
}

func (r *outcomeRecorder) cancelledCount(orderID kernel.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancelled[orderID]
}

func (r *outcomeRecorder) total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.assigned)
	for _, c := range r.timedOut {
		n += c
	}
	for _, c := range r.cancelled {
		n += c
	}
	return n
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testPickup(t *testing.T) kernel.GeoLocation {
	t.Helper()
	pickup, err := kernel.NewGeoLocation(40.0, -75.0)
	require.NoError(t, err)
	return pickup
}

func TestRegistry_AssignsAfterRetries(t *testing.T) {
	orderID := kernel.NewUUID()
	courierID := kernel.NewUUID()

	// First two attempts find nobody, the third one assigns.
	var attempts atomic.Int32
	attempter := dispatch.AttempterFunc(func(
		_ context.Context, _ kernel.UUID, _ kernel.GeoLocation,
	) (commands.AttemptResult, error) {
		if attempts.Add(1) < 3 {
			return commands.AttemptResult{Outcome: commands.AttemptOutcomeNoCandidates}, nil
		}
		return commands.AttemptResult{Outcome: commands.AttemptOutcomeAssigned, CourierID: courierID}, nil
	})

	recorder := newOutcomeRecorder()
	registry := dispatch.NewRegistry(attempter, recorder, testTick, time.Minute, testLogger())
	defer registry.StopAll()

	require.NoError(t, registry.StartDispatch(orderID, testPickup(t)))

	require.Eventually(t, func() bool {
		_, ok := recorder.assignedTo(orderID)
		return ok
	}, waitFor, pollEvery)

	got, _ := recorder.assignedTo(orderID)
	assert.True(t, got.IsEqual(courierID))
	assert.GreaterOrEqual(t, attempts.Load(), int32(3))

	require.Eventually(t, func() bool {
		return !registry.IsRunning(orderID)
	}, waitFor, pollEvery)
	assert.Equal(t, 1, recorder.total())
}

func TestRegistry_TimesOutWhenNobodyEligible(t *testing.T) {
	orderID := kernel.NewUUID()

	attempter := dispatch.AttempterFunc(func(
		_ context.Context, _ kernel.UUID, _ kernel.GeoLocation,
	) (commands.AttemptResult, error) {
		return commands.AttemptResult{Outcome: commands.AttemptOutcomeNoCandidates}, nil
	})

	recorder := newOutcomeRecorder()
	registry := dispatch.NewRegistry(attempter, recorder, testTick, testDeadline, testLogger())
	defer registry.StopAll()

	require.NoError(t, registry.StartDispatch(orderID, testPickup(t)))

	require.Eventually(t, func() bool {
		return recorder.timedOutCount(orderID) > 0
	}, waitFor, pollEvery)

	require.Eventually(t, func() bool {
		return !registry.IsRunning(orderID)
	}, waitFor, pollEvery)

	// Exactly one terminal outcome per task.
	assert.Equal(t, 1, recorder.timedOutCount(orderID))
	assert.Equal(t, 1, recorder.total())
}

func TestRegistry_ConflictLostRetriesUntilDeadline(t *testing.T) {
	orderID := kernel.NewUUID()

	var attempts atomic.Int32
	attempter := dispatch.AttempterFunc(func(
		_ context.Context, _ kernel.UUID, _ kernel.GeoLocation,
	) (commands.AttemptResult, error) {
		attempts.Add(1)
		return commands.AttemptResult{Outcome: commands.AttemptOutcomeConflictLost}, nil
	})

	recorder := newOutcomeRecorder()
	registry := dispatch.NewRegistry(attempter, recorder, testTick, testDeadline, testLogger())
	defer registry.StopAll()

	require.NoError(t, registry.StartDispatch(orderID, testPickup(t)))

	require.Eventually(t, func() bool {
		return recorder.timedOutCount(orderID) == 1
	}, waitFor, pollEvery)

	assert.Greater(t, attempts.Load(), int32(1), "a lost race should be retried on later ticks")
}

func TestRegistry_AttemptErrorsAreNoOpTicks(t *testing.T) {
	orderID := kernel.NewUUID()

	var attempts atomic.Int32
	attempter := dispatch.AttempterFunc(func(
		_ context.Context, _ kernel.UUID, _ kernel.GeoLocation,
	) (commands.AttemptResult, error) {
		attempts.Add(1)
		return commands.AttemptResult{}, errors.New("database error")
	})

	recorder := newOutcomeRecorder()
	registry := dispatch.NewRegistry(attempter, recorder, testTick, testDeadline, testLogger())
	defer registry.StopAll()

	require.NoError(t, registry.StartDispatch(orderID, testPickup(t)))

	require.Eventually(t, func() bool {
		return recorder.timedOutCount(orderID) == 1
	}, waitFor, pollEvery)

	assert.Greater(t, attempts.Load(), int32(1), "errors must not end the search")
	assert.Equal(t, 1, recorder.total())
}

func TestRegistry_CancelStopsSearch(t *testing.T) {
	orderID := kernel.NewUUID()

	var attempts atomic.Int32
	attempter := dispatch.AttempterFunc(func(
		_ context.Context, _ kernel.UUID, _ kernel.GeoLocation,
	) (commands.AttemptResult, error) {
		attempts.Add(1)
		return commands.AttemptResult{Outcome: commands.AttemptOutcomeNoCandidates}, nil
	})

	recorder := newOutcomeRecorder()
	registry := dispatch.NewRegistry(attempter, recorder, testTick, time.Minute, testLogger())
	defer registry.StopAll()

	require.NoError(t, registry.StartDispatch(orderID, testPickup(t)))
	require.NoError(t, registry.CancelDispatch(orderID))

	require.Eventually(t, func() bool {
		return recorder.cancelledCount(orderID) == 1
	}, waitFor, pollEvery)

	require.Eventually(t, func() bool {
		return !registry.IsRunning(orderID)
	}, waitFor, pollEvery)

	// Once the cancellation is reported, no further attempt may run.
	settled := attempts.Load()
	time.Sleep(5 * testTick)
	assert.Equal(t, settled, attempts.Load(), "attempts must stop after cancellation")

	assert.Equal(t, 0, recorder.timedOutCount(orderID))
	assert.Equal(t, 1, recorder.total())
}

// gatedCancelRecorder holds the cancelled task inside its outcome callback
// until the gate opens, keeping the old goroutine alive on demand.
type gatedCancelRecorder struct {
	*outcomeRecorder
	gate chan struct{}
}

func (r *gatedCancelRecorder) OnCancelled(ctx context.Context, orderID kernel.UUID) {
	select {
	case <-r.gate:
	case <-ctx.Done():
	}
	r.outcomeRecorder.OnCancelled(ctx, orderID)
}

func TestRegistry_RestartAfterCancelKeepsNewSearch(t *testing.T) {
	orderID := kernel.NewUUID()

	var attempts atomic.Int32
	attempter := dispatch.AttempterFunc(func(
		_ context.Context, _ kernel.UUID, _ kernel.GeoLocation,
	) (commands.AttemptResult, error) {
		attempts.Add(1)
		return commands.AttemptResult{Outcome: commands.AttemptOutcomeNoCandidates}, nil
	})

	recorder := &gatedCancelRecorder{outcomeRecorder: newOutcomeRecorder(), gate: make(chan struct{})}
	registry := dispatch.NewRegistry(attempter, recorder, testTick, time.Minute, testLogger())
	defer registry.StopAll()

	pickup := testPickup(t)
	require.NoError(t, registry.StartDispatch(orderID, pickup))
	require.NoError(t, registry.CancelDispatch(orderID))

	// The cancelled task is still draining its outcome while the search
	// restarts under the same order id.
	require.NoError(t, registry.StartDispatch(orderID, pickup))
	require.True(t, registry.IsRunning(orderID))

	close(recorder.gate)
	require.Eventually(t, func() bool {
		return recorder.cancelledCount(orderID) == 1
	}, waitFor, pollEvery)

	// Give the exited goroutine a couple of ticks to run its cleanup, then
	// make sure the restarted search is still tracked.
	settled := attempts.Load() + 2
	require.Eventually(t, func() bool {
		return attempts.Load() >= settled
	}, waitFor, pollEvery)

	assert.True(t, registry.IsRunning(orderID))
	assert.Equal(t, 1, registry.Len())
	require.ErrorIs(t, registry.StartDispatch(orderID, pickup), dispatch.ErrDispatchAlreadyRunning)
}

func TestRegistry_CancelUnknownOrder(t *testing.T) {
	registry := dispatch.NewRegistry(
		dispatch.AttempterFunc(func(
			_ context.Context, _ kernel.UUID, _ kernel.GeoLocation,
		) (commands.AttemptResult, error) {
			return commands.AttemptResult{Outcome: commands.AttemptOutcomeNoCandidates}, nil
		}),
		newOutcomeRecorder(), testTick, time.Minute, testLogger(),
	)
	defer registry.StopAll()

	err := registry.CancelDispatch(kernel.NewUUID())

	require.ErrorIs(t, err, dispatch.ErrDispatchNotFound)
}

func TestRegistry_SecondCancelReportsNotFound(t *testing.T) {
	orderID := kernel.NewUUID()

	attempter := dispatch.AttempterFunc(func(
		_ context.Context, _ kernel.UUID, _ kernel.GeoLocation,
	) (commands.AttemptResult, error) {
		return commands.AttemptResult{Outcome: commands.AttemptOutcomeNoCandidates}, nil
	})

	recorder := newOutcomeRecorder()
	registry := dispatch.NewRegistry(attempter, recorder, testTick, time.Minute, testLogger())
	defer registry.StopAll()

	require.NoError(t, registry.StartDispatch(orderID, testPickup(t)))
	require.NoError(t, registry.CancelDispatch(orderID))

	err := registry.CancelDispatch(orderID)

	require.ErrorIs(t, err, dispatch.ErrDispatchNotFound)
	require.Eventually(t, func() bool {
		return recorder.cancelledCount(orderID) == 1
	}, waitFor, pollEvery)
}

func TestRegistry_DuplicateStartRejected(t *testing.T) {
	orderID := kernel.NewUUID()

	attempter := dispatch.AttempterFunc(func(
		_ context.Context, _ kernel.UUID, _ kernel.GeoLocation,
	) (commands.AttemptResult, error) {
		return commands.AttemptResult{Outcome: commands.AttemptOutcomeNoCandidates}, nil
	})

	registry := dispatch.NewRegistry(attempter, newOutcomeRecorder(), testTick, time.Minute, testLogger())
	defer registry.StopAll()

	pickup := testPickup(t)
	require.NoError(t, registry.StartDispatch(orderID, pickup))

	err := registry.StartDispatch(orderID, pickup)

	require.ErrorIs(t, err, dispatch.ErrDispatchAlreadyRunning)
	assert.Equal(t, 1, registry.Len())
}

func TestRegistry_AttemptsNeverOverlap(t *testing.T) {
	orderID := kernel.NewUUID()

	// Each attempt outlives several ticks; the loop must still run them
	// one at a time.
	var inFlight atomic.Int32
	var maxInFlight atomic.Int32
	attempter := dispatch.AttempterFunc(func(
		_ context.Context, _ kernel.UUID, _ kernel.GeoLocation,
	) (commands.AttemptResult, error) {
		current := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			observed := maxInFlight.Load()
			if current <= observed || maxInFlight.CompareAndSwap(observed, current) {
				break
			}
		}
		time.Sleep(4 * testTick)
		return commands.AttemptResult{Outcome: commands.AttemptOutcomeNoCandidates}, nil
	})

	recorder := newOutcomeRecorder()
	registry := dispatch.NewRegistry(attempter, recorder, testTick, testDeadline, testLogger())
	defer registry.StopAll()

	require.NoError(t, registry.StartDispatch(orderID, testPickup(t)))

	require.Eventually(t, func() bool {
		return recorder.timedOutCount(orderID) == 1
	}, waitFor, pollEvery)

	assert.Equal(t, int32(1), maxInFlight.Load())
}

func TestRegistry_StopAllReportsNoOutcome(t *testing.T) {
	attempter := dispatch.AttempterFunc(func(
		_ context.Context, _ kernel.UUID, _ kernel.GeoLocation,
	) (commands.AttemptResult, error) {
		return commands.AttemptResult{Outcome: commands.AttemptOutcomeNoCandidates}, nil
	})

	recorder := newOutcomeRecorder()
	registry := dispatch.NewRegistry(attempter, recorder, testTick, time.Minute, testLogger())

	for range 5 {
		require.NoError(t, registry.StartDispatch(kernel.NewUUID(), testPickup(t)))
	}
	require.Equal(t, 5, registry.Len())

	registry.StopAll()

	assert.Equal(t, 0, registry.Len())
	assert.Equal(t, 0, recorder.total(), "shutdown must not trigger compensation")
}

func TestRegistry_StartAfterStopRejected(t *testing.T) {
	registry := dispatch.NewRegistry(
		dispatch.AttempterFunc(func(
			_ context.Context, _ kernel.UUID, _ kernel.GeoLocation,
		) (commands.AttemptResult, error) {
			return commands.AttemptResult{Outcome: commands.AttemptOutcomeNoCandidates}, nil
		}),
		newOutcomeRecorder(), testTick, time.Minute, testLogger(),
	)
	registry.StopAll()

	err := registry.StartDispatch(kernel.NewUUID(), testPickup(t))

	require.Error(t, err)
}

func TestRegistry_InvalidStartArguments(t *testing.T) {
	registry := dispatch.NewRegistry(
		dispatch.AttempterFunc(func(
			_ context.Context, _ kernel.UUID, _ kernel.GeoLocation,
		) (commands.AttemptResult, error) {
			return commands.AttemptResult{}, nil
		}),
		newOutcomeRecorder(), testTick, time.Minute, testLogger(),
	)
	defer registry.StopAll()

	require.Error(t, registry.StartDispatch(kernel.UUID{}, testPickup(t)))
	require.Error(t, registry.StartDispatch(kernel.NewUUID(), kernel.GeoLocation{}))
	require.Error(t, registry.CancelDispatch(kernel.UUID{}))
}
