package dispatch

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/kernel"
)

// Attempter performs one matching attempt for an order.
// Implemented by DispatchAttemptCommandHandler through an adapter in the
// composition root.
type Attempter interface {
	Attempt(ctx context.Context, orderID kernel.UUID, pickup kernel.GeoLocation) (commands.AttemptResult, error)
}

// AttempterFunc adapts a function to the Attempter interface.
type AttempterFunc func(ctx context.Context, orderID kernel.UUID, pickup kernel.GeoLocation) (commands.AttemptResult, error)

// Attempt calls f.
func (f AttempterFunc) Attempt(
	ctx context.Context,
	orderID kernel.UUID,
	pickup kernel.GeoLocation,
) (commands.AttemptResult, error) {
	return f(ctx, orderID, pickup)
}

// Outcomes receives the terminal result of a dispatch search.
// Exactly one method is invoked per task, exactly once. Implementations own
// their error handling; a compensation failure must not crash the scheduler.
type Outcomes interface {
	// OnAssigned fires when a matching attempt claimed the order for a courier.
	OnAssigned(ctx context.Context, orderID kernel.UUID, courierID kernel.UUID)

	// OnTimedOut fires when the search deadline expired with no assignment.
	OnTimedOut(ctx context.Context, orderID kernel.UUID)

	// OnCancelled fires when the search was cancelled explicitly.
	OnCancelled(ctx context.Context, orderID kernel.UUID)
}

// task is one running dispatch search. It owns the polling loop for a single
// order: attempts are strictly sequential, and the task ends on the first
// terminal event (assignment, deadline, cancellation, or scheduler shutdown).
type task struct {
	orderID      kernel.UUID
	pickup       kernel.GeoLocation
	tickInterval time.Duration
	deadline     time.Duration

	cancel chan struct{}

	attempter Attempter
	outcomes  Outcomes
	logger    *slog.Logger
}

// run drives the polling loop until a terminal event.
// A ctx cancellation means the scheduler itself is shutting down: the task
// stops silently, without reporting an outcome, so the order can be picked
// up again by the recovery sweep after restart.
func (t *task) run(ctx context.Context) {
	ticker := time.NewTicker(t.tickInterval)
	defer ticker.Stop()

	deadline := time.NewTimer(t.deadline)
	defer deadline.Stop()

	// First attempt fires immediately; the ticker paces the rest.
	if t.attempt(ctx) {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.cancel:
			t.outcomes.OnCancelled(ctx, t.orderID)
			return
		case <-deadline.C:
			t.outcomes.OnTimedOut(ctx, t.orderID)
			return
		case <-ticker.C:
			// A cancel or deadline racing the tick wins: no attempt may
			// start after either has fired.
			select {
			case <-ctx.Done():
				return
			case <-t.cancel:
				t.outcomes.OnCancelled(ctx, t.orderID)
				return
			case <-deadline.C:
				t.outcomes.OnTimedOut(ctx, t.orderID)
				return
			default:
			}

			if t.attempt(ctx) {
				return
			}
		}
	}
}

// attempt performs one matching attempt and reports whether the task is done.
// Attempt errors are logged and treated as a no-op tick: the search keeps
// going until a terminal event.
func (t *task) attempt(ctx context.Context) bool {
	result, err := t.attempter.Attempt(ctx, t.orderID, t.pickup)
	if err != nil {
		t.logger.ErrorContext(ctx, "matching attempt failed",
			"order_id", t.orderID.String(), "error", err)
		return false
	}

	switch result.Outcome {
	case commands.AttemptOutcomeAssigned:
		t.outcomes.OnAssigned(ctx, t.orderID, result.CourierID)
		return true
	case commands.AttemptOutcomeNoCandidates:
		t.logger.DebugContext(ctx, "no eligible couriers",
			"order_id", t.orderID.String())
	case commands.AttemptOutcomeConflictLost:
		t.logger.DebugContext(ctx, "lost assignment race, will retry",
			"order_id", t.orderID.String())
	case commands.AttemptOutcomeUnknown:
		t.logger.WarnContext(ctx, "attempt reported no outcome",
			"order_id", t.orderID.String())
	}

	return false
}
