package services

import (
	"errors"
	"math"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
)

// ErrNoCourierAvailable is returned when no candidate courier can be selected
// for a dispatch attempt. This occurs when the candidate list is empty or none
// of the candidates has a known location.
var ErrNoCourierAvailable = errors.New("no courier available")

// NearestCourierSelector is a domain service that picks the single best
// assignment candidate for a pickup point by great-circle distance.
//
// Selection rules:
//   - The candidate with the minimum distance to the pickup wins
//   - Ties are broken deterministically: the first-listed candidate at the
//     minimal distance wins. The min-scan uses a strict less-than comparison,
//     so a later candidate at an equal distance never displaces an earlier
//     one. This ordering is a tested contract, not an accident of iteration.
//   - An empty candidate list yields ErrNoCourierAvailable
//
// Example usage:
//
//	selector := services.NewNearestCourierSelector()
//	nearest, err := selector.SelectNearest(pickup, candidates)
//	if errors.Is(err, services.ErrNoCourierAvailable) {
//	    // No candidates this tick; retry on the next one
//	    return
//	}
type NearestCourierSelector struct{}

// NewNearestCourierSelector creates a new NearestCourierSelector instance.
func NewNearestCourierSelector() NearestCourierSelector {
	return NearestCourierSelector{}
}

// SelectNearest returns the candidate closest to the pickup location.
//
// Parameters:
//   - pickup: The pickup location (must be a constructed GeoLocation)
//   - candidates: Slice of couriers to consider; order matters for tie-breaks
//
// Returns:
//   - *courier.Courier: The nearest candidate
//   - error: ErrNoCourierAvailable if no candidate qualifies, or a validation
//     error if an input is improperly constructed
func (s NearestCourierSelector) SelectNearest(
	pickup kernel.GeoLocation,
	candidates []*courier.Courier,
) (*courier.Courier, error) {
	if err := pickup.Validate(); err != nil {
		return nil, err
	}

	var (
		bestCourier  *courier.Courier
		bestDistance = math.MaxFloat64
	)

	for _, c := range candidates {
		if err := c.Validate(); err != nil {
			return nil, err
		}

		if c.Location() == nil {
			continue
		}

		distance, err := c.DistanceTo(pickup)
		if err != nil {
			return nil, err
		}

		// strict < keeps the first candidate on equal distances
		if distance < bestDistance {
			bestDistance = distance
			bestCourier = c
		}
	}

	if bestCourier == nil {
		return nil, ErrNoCourierAvailable
	}

	return bestCourier, nil
}
