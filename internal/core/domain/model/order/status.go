package order

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// Status represents the lifecycle state of an order.
// It implements a state machine with defined transitions to ensure
// orders follow the correct business workflow.
//
// State transitions:
//
//	Placed ──> Preparing ──> ReadyForPickup ──> Delivering ──> Delivered
//	   │           │               │
//	   │           │               ├──> RejectedByShipper (dispatch timed out)
//	   └───────────┴───────────────┴──> RejectedByRestaurant
//
// Delivered, RejectedByRestaurant, and RejectedByShipper are terminal states
// with no further transitions.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Placed is the initial status when an order is paid and placed.
	Placed

	// Preparing indicates the restaurant accepted the order and is preparing it.
	Preparing

	// ReadyForPickup indicates the order is ready and waiting for a courier.
	// Courier assignment happens while the order is in this status.
	ReadyForPickup

	// Delivering indicates the assigned courier picked the order up.
	Delivering

	// Delivered indicates the order reached the customer. Terminal.
	Delivered

	// RejectedByRestaurant indicates the restaurant declined the order. Terminal.
	RejectedByRestaurant

	// RejectedByShipper indicates no courier could be found before the dispatch
	// deadline expired. Terminal.
	RejectedByShipper
)

// getStatusStrings returns a map of Status values to their string representations.
func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:              "Unknown",
		Placed:               "Placed",
		Preparing:            "Preparing",
		ReadyForPickup:       "ReadyForPickup",
		Delivering:           "Delivering",
		Delivered:            "Delivered",
		RejectedByRestaurant: "RejectedByRestaurant",
		RejectedByShipper:    "RejectedByShipper",
	}
}

// getValidStatusStrings returns a map of only valid Status values.
func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status]string{
		Placed:               "Placed",
		Preparing:            "Preparing",
		ReadyForPickup:       "ReadyForPickup",
		Delivering:           "Delivering",
		Delivered:            "Delivered",
		RejectedByRestaurant: "RejectedByRestaurant",
		RejectedByShipper:    "RejectedByShipper",
	}
}

// TerminalStatuses returns every status from which no further transition occurs.
// Persistence adapters use this set for conditional updates that must only
// touch orders still in flight.
func TerminalStatuses() []Status {
	return []Status{Delivered, RejectedByRestaurant, RejectedByShipper}
}

// Validate checks if the Status value is valid.
// Unknown (0) and out-of-range values are invalid.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the human-readable name of the status.
// Implements the fmt.Stringer interface and is safe to call on any Status
// value, including invalid ones.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// IsTerminal reports whether the status is a final state.
// Terminal statuses: Delivered, RejectedByRestaurant, RejectedByShipper.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == RejectedByRestaurant || s == RejectedByShipper
}

// ValidateAssignCourier checks if the status allows courier assignment without
// performing any transition. Assignment is permitted from any non-terminal
// valid status; it never changes the status itself.
//
// This method provides assignability validation without side effects,
// useful for pre-validation before the conditional assignment write.
func (s Status) ValidateAssignCourier() error {
	if err := s.Validate(); err != nil {
		return err
	}
	if s.IsTerminal() {
		return errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to assign a courier", s.String()),
		)
	}
	return nil
}

// ValidateCanHaveCourier validates the consistency between order status and
// courier assignment.
//
// Business rules:
//   - Placed, Preparing, RejectedByRestaurant, and RejectedByShipper orders
//     must not have a courier assigned
//   - Delivering and Delivered orders must have a courier assigned
//   - ReadyForPickup orders may or may not have a courier (assignment happens
//     while the order waits for pickup)
func (s Status) ValidateCanHaveCourier(courier bool) error {
	if courier && s != ReadyForPickup && s != Delivering && s != Delivered {
		return errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to have a courier", s.String()),
		)
	}

	if !courier && (s == Delivering || s == Delivered) {
		return errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to have no courier", s.String()),
		)
	}

	return nil
}

// StartPreparing transitions the status to Preparing.
//
// Valid transitions:
//   - Placed -> Preparing (restaurant accepted the order)
func (s Status) StartPreparing() (Status, error) {
	if s != Placed {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to start preparing", s.String()),
		)
	}

	return Preparing, nil
}

// MarkReadyForPickup transitions the status to ReadyForPickup.
//
// Valid transitions:
//   - Preparing -> ReadyForPickup (restaurant finished the order)
func (s Status) MarkReadyForPickup() (Status, error) {
	if s != Preparing {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to mark ready for pickup", s.String()),
		)
	}

	return ReadyForPickup, nil
}

// StartDelivery transitions the status to Delivering.
//
// Valid transitions:
//   - ReadyForPickup -> Delivering (assigned courier picked the order up)
//
// Any other prior status is rejected, including Delivering itself.
func (s Status) StartDelivery() (Status, error) {
	if s != ReadyForPickup {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to start delivery", s.String()),
		)
	}

	return Delivering, nil
}

// Complete transitions the status to Delivered.
//
// Valid transitions:
//   - Delivering -> Delivered (courier handed the order over)
//
// Delivered is a final state with no further transitions possible.
func (s Status) Complete() (Status, error) {
	if s != Delivering {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to complete", s.String()),
		)
	}

	return Delivered, nil
}

// RejectByRestaurant transitions the status to RejectedByRestaurant.
//
// Valid transitions:
//   - Placed, Preparing, ReadyForPickup -> RejectedByRestaurant
//
// Orders already out for delivery or in a terminal state cannot be rejected.
func (s Status) RejectByRestaurant() (Status, error) {
	if s != Placed && s != Preparing && s != ReadyForPickup {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to reject by restaurant", s.String()),
		)
	}

	return RejectedByRestaurant, nil
}

// RejectByShipper transitions the status to RejectedByShipper.
// Used when the dispatch search exhausts its deadline without an assignment.
//
// Valid transitions:
//   - Placed, Preparing, ReadyForPickup -> RejectedByShipper
func (s Status) RejectByShipper() (Status, error) {
	if s != Placed && s != Preparing && s != ReadyForPickup {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to reject by shipper", s.String()),
		)
	}

	return RejectedByShipper, nil
}
