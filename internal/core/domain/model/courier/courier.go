package courier

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"
)

var (
	// ErrCourierIsNotConstructed is returned when a Courier instance was not
	// created through the NewCourier or RestoreCourier factory methods.
	ErrCourierIsNotConstructed = errors.New("Courier must be created via NewCourier or RestoreCourier constructor")

	// ErrNoKnownLocation is returned when a distance computation is requested
	// for a courier that has never reported a location.
	ErrNoKnownLocation = errors.New("courier has no known location")
)

// Courier represents a delivery agent considered for dispatch.
//
// A courier becomes an assignment candidate only when it is *eligible*:
// approved by the admin panel, with a location ping fresh within the
// configured window, and with no in-flight order. Eligibility is a pure
// function of the courier's state and the evaluation time, so it can be
// re-checked cheaply after the conditional assignment write.
type Courier struct {
	// id is the unique identifier for the courier
	id kernel.UUID

	// name is the courier's display name
	name string

	// approved reports whether the admin panel approved this courier
	approved bool

	// location is the last reported position (nil if never reported)
	location *kernel.GeoLocation

	// lastPingAt is when the location was last reported
	lastPingAt time.Time

	// activeOrderStatuses holds the statuses of orders currently assigned
	// to this courier
	activeOrderStatuses []order.Status

	// isConstructed ensures the courier was created via a constructor
	isConstructed bool
}

// NewCourier creates a new Courier with no known location and no assigned
// orders. The courier is not an assignment candidate until it reports a
// location ping.
func NewCourier(id kernel.UUID, name string, approved bool) (*Courier, error) {
	courier := &Courier{
		approved:      approved,
		isConstructed: true,
	}

	if err := errors.Join(
		courier.setID(id),
		courier.setName(name),
	); err != nil {
		return nil, err
	}

	return courier, nil
}

// RestoreCourier reconstructs a Courier from persisted state: approval flag,
// the optional last location ping, and the statuses of currently assigned
// orders. This is the reconstruction path used by repositories.
func RestoreCourier(
	id kernel.UUID,
	name string,
	approved bool,
	location *kernel.GeoLocation,
	lastPingAt time.Time,
	activeOrderStatuses []order.Status,
) (*Courier, error) {
	courier, err := NewCourier(id, name, approved)
	if err != nil {
		return nil, err
	}

	if location != nil {
		if err = location.Validate(); err != nil {
			return nil, err
		}
		courier.location = location
		courier.lastPingAt = lastPingAt
	}

	for _, status := range activeOrderStatuses {
		if err = status.Validate(); err != nil {
			return nil, err
		}
	}
	courier.activeOrderStatuses = activeOrderStatuses

	return courier, nil
}

// Validate ensures the Courier instance was properly constructed.
func (c *Courier) Validate() error {
	if c == nil || !c.isConstructed {
		return ErrCourierIsNotConstructed
	}

	return nil
}

// IsEqual compares two couriers by their unique identifiers.
func (c *Courier) IsEqual(other *Courier) bool {
	return other != nil && c.id.IsEqual(other.id)
}

// ID returns the courier's unique identifier.
func (c *Courier) ID() kernel.UUID {
	return c.id
}

// Name returns the courier's display name.
func (c *Courier) Name() string {
	return c.name
}

// IsApproved reports whether the courier passed admin approval.
func (c *Courier) IsApproved() bool {
	return c.approved
}

// Location returns the courier's last known location.
// Returns nil if the courier never reported a position.
func (c *Courier) Location() *kernel.GeoLocation {
	return c.location
}

// LastPingAt returns when the courier last reported its location.
// The zero time means the courier never reported.
func (c *Courier) LastPingAt() time.Time {
	return c.lastPingAt
}

// RecordPing stores a fresh location report.
func (c *Courier) RecordPing(location kernel.GeoLocation, at time.Time) error {
	if err := location.Validate(); err != nil {
		return err
	}

	c.location = &location
	c.lastPingAt = at
	return nil
}

// HasOrderInFlight reports whether any order currently assigned to this
// courier is still in a non-terminal status.
func (c *Courier) HasOrderInFlight() bool {
	for _, status := range c.activeOrderStatuses {
		if !status.IsTerminal() {
			return true
		}
	}
	return false
}

// IsEligible reports whether the courier qualifies as an assignment candidate
// at the given time:
//   - approved by the admin panel
//   - has a known location
//   - the location ping is no older than freshnessWindow
//   - no in-flight order
func (c *Courier) IsEligible(now time.Time, freshnessWindow time.Duration) bool {
	if !c.approved || c.location == nil {
		return false
	}

	if now.Sub(c.lastPingAt) > freshnessWindow {
		return false
	}

	return !c.HasOrderInFlight()
}

// CanKeepAssignment reports whether a courier that was just assigned an
// order still qualifies to hold it: approved, fresh ping, and no in-flight
// order besides the one just assigned. Unlike IsEligible it tolerates a
// single in-flight order, because the assignment under scrutiny is already
// part of the courier's read state.
func (c *Courier) CanKeepAssignment(now time.Time, freshnessWindow time.Duration) bool {
	if !c.approved || c.location == nil {
		return false
	}

	if now.Sub(c.lastPingAt) > freshnessWindow {
		return false
	}

	inFlight := 0
	for _, status := range c.activeOrderStatuses {
		if !status.IsTerminal() {
			inFlight++
		}
	}
	return inFlight <= 1
}

// DistanceTo calculates the great-circle distance in meters from the
// courier's last known location to the given pickup point.
// Returns ErrNoKnownLocation if the courier never reported a position.
func (c *Courier) DistanceTo(pickup kernel.GeoLocation) (float64, error) {
	if c.location == nil {
		return 0, ErrNoKnownLocation
	}

	return c.location.DistanceTo(pickup)
}

// setID validates and sets the courier's unique identifier.
func (c *Courier) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.id = id
	return nil
}

// setName validates and sets the courier's display name.
func (c *Courier) setName(name string) error {
	if name == "" {
		return errs.NewValueIsRequiredError("name")
	}
	c.name = name
	return nil
}
