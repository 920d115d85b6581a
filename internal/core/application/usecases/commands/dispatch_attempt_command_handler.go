package commands

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"
)

// AttemptOutcome classifies the result of a single matching attempt.
type AttemptOutcome int

const (
	// AttemptOutcomeUnknown is the zero value and never a valid result.
	AttemptOutcomeUnknown AttemptOutcome = iota

	// AttemptOutcomeAssigned means this attempt claimed the order for a courier.
	AttemptOutcomeAssigned

	// AttemptOutcomeNoCandidates means no eligible courier existed at attempt time.
	AttemptOutcomeNoCandidates

	// AttemptOutcomeConflictLost means a candidate was selected but the
	// conditional claim did not take effect: another writer assigned the
	// order first, the order reached a terminal status, or the selected
	// courier stopped being eligible before the claim committed.
	AttemptOutcomeConflictLost
)

// AttemptResult is the outcome of one matching attempt. CourierID is set
// only when Outcome is AttemptOutcomeAssigned.
type AttemptResult struct {
	Outcome   AttemptOutcome
	CourierID kernel.UUID
}

// DispatchAttemptCommandHandler performs one courier matching attempt.
// Reads the candidate set, selects the nearest eligible courier, and claims
// the order through a conditional write so that concurrent attempts for the
// same order can never both succeed.
//
// The handler never retries on its own. A ConflictLost or NoCandidates
// result is reported back to the caller (the per-order scheduler task),
// which decides whether to try again on its next tick.
type DispatchAttemptCommandHandler struct {
	uowFactory      UoWFactory
	freshnessWindow time.Duration
}

// NewDispatchAttemptCommandHandler creates a handler for matching attempts.
// freshnessWindow bounds how old a courier location ping may be for the
// courier to count as a candidate.
func NewDispatchAttemptCommandHandler(
	uowFactory UoWFactory,
	freshnessWindow time.Duration,
) DispatchAttemptCommandHandler {
	return DispatchAttemptCommandHandler{
		uowFactory:      uowFactory,
		freshnessWindow: freshnessWindow,
	}
}

// Handle processes one matching attempt.
//
// Happy path: load available couriers, filter to the ones eligible right
// now, pick the nearest to the pickup point, conditionally claim the order,
// re-check the winner's eligibility inside the same transaction, commit.
// On success exactly one row changed; on every other outcome nothing did.
func (h DispatchAttemptCommandHandler) Handle(
	ctx context.Context,
	command DispatchAttemptCommand,
) (AttemptResult, error) {
	if err := command.Validate(); err != nil {
		return AttemptResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return AttemptResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	courierRepo := uow.CourierRepository()
	ordersRepo := uow.OrderRepository()

	available, err := courierRepo.GetAllAvailable(ctx)
	if err != nil {
		return AttemptResult{}, err
	}

	now := time.Now()
	candidates := make([]*courier.Courier, 0, len(available))
	for _, candidate := range available {
		if candidate.IsEligible(now, h.freshnessWindow) {
			candidates = append(candidates, candidate)
		}
	}

	if len(candidates) == 0 {
		return AttemptResult{Outcome: AttemptOutcomeNoCandidates}, nil
	}

	nearest, err := services.NewNearestCourierSelector().SelectNearest(command.Pickup(), candidates)
	if errors.Is(err, services.ErrNoCourierAvailable) {
		return AttemptResult{Outcome: AttemptOutcomeNoCandidates}, nil
	}
	if err != nil {
		return AttemptResult{}, err
	}

	claimed, err := ordersRepo.TryAssignCourier(ctx, command.OrderID(), nearest.ID())
	if err != nil {
		return AttemptResult{}, err
	}
	if !claimed {
		return AttemptResult{Outcome: AttemptOutcomeConflictLost}, nil
	}

	// The candidate set was read before the claim. Re-read the winner and
	// confirm it can keep the assignment, so the commit cannot hand the
	// order to a courier that picked up other work in between. The claim
	// itself is part of the winner's read state by now, which is why this
	// is not a plain IsEligible check.
	winner, err := courierRepo.Get(ctx, nearest.ID())
	if err != nil {
		return AttemptResult{}, err
	}
	if !winner.CanKeepAssignment(now, h.freshnessWindow) {
		return AttemptResult{Outcome: AttemptOutcomeConflictLost}, nil
	}

	if err = uow.Commit(ctx); err != nil {
		return AttemptResult{}, err
	}

	return AttemptResult{Outcome: AttemptOutcomeAssigned, CourierID: nearest.ID()}, nil
}
