package commands

import (
	"errors"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrRegisterCourierCommandIsNotConstructed = errors.New(
	"RegisterCourierCommand must be created via NewRegisterCourierCommand constructor",
)

// RegisterCourierCommand adds a courier to the dispatch pool.
// A freshly registered courier becomes an assignment candidate once it is
// approved and reports a location ping.
type RegisterCourierCommand struct {
	name     string
	approved bool

	guard guard.ConstructorGuard
}

// NewRegisterCourierCommand creates a courier registration command.
func NewRegisterCourierCommand(name string, approved bool) (RegisterCourierCommand, error) {
	if name == "" {
		return RegisterCourierCommand{}, errs.NewValueIsRequiredError("name")
	}

	return RegisterCourierCommand{
		name:     name,
		approved: approved,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

// Name returns the courier's display name.
func (c *RegisterCourierCommand) Name() string {
	return c.name
}

// Approved reports whether the courier is registered pre-approved.
func (c *RegisterCourierCommand) Approved() bool {
	return c.approved
}

// Validate ensures the command was created through the constructor.
// Returns ErrRegisterCourierCommandIsNotConstructed if validation fails.
func (c *RegisterCourierCommand) Validate() error {
	return c.guard.Validate(
		ErrRegisterCourierCommandIsNotConstructed,
	)
}
