package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrReportCourierLocationCommandIsNotConstructed = errors.New(
	"ReportCourierLocationCommand must be created via NewReportCourierLocationCommand constructor",
)

// ReportCourierLocationCommand records a courier location ping.
// Pings feed the candidate set for matching attempts: a courier with no
// fresh ping is never considered for assignment.
type ReportCourierLocationCommand struct {
	courierID kernel.UUID
	location  kernel.GeoLocation

	guard guard.ConstructorGuard
}

// NewReportCourierLocationCommand creates a location ping command.
func NewReportCourierLocationCommand(
	courierID kernel.UUID,
	location kernel.GeoLocation,
) (ReportCourierLocationCommand, error) {
	if err := courierID.Validate(); err != nil {
		return ReportCourierLocationCommand{}, err
	}
	if err := location.Validate(); err != nil {
		return ReportCourierLocationCommand{}, err
	}

	return ReportCourierLocationCommand{
		courierID: courierID,
		location:  location,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// CourierID returns the identifier of the reporting courier.
func (c *ReportCourierLocationCommand) CourierID() kernel.UUID {
	return c.courierID
}

// Location returns the reported position.
func (c *ReportCourierLocationCommand) Location() kernel.GeoLocation {
	return c.location
}

// Validate ensures the command was created through the constructor.
// Returns ErrReportCourierLocationCommandIsNotConstructed if validation fails.
func (c *ReportCourierLocationCommand) Validate() error {
	return c.guard.Validate(
		ErrReportCourierLocationCommandIsNotConstructed,
	)
}
