package commands_test

import (
	"testing"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDispatchAttemptCommand(t *testing.T) {
	orderID := kernel.NewUUID()
	pickup, err := kernel.NewGeoLocation(40.0, -75.0)
	require.NoError(t, err)

	cmd, err := commands.NewDispatchAttemptCommand(orderID, pickup)

	require.NoError(t, err)
	require.NoError(t, cmd.Validate())
	assert.True(t, cmd.OrderID().IsEqual(orderID))
	equal, err := cmd.Pickup().IsEqual(pickup)
	require.NoError(t, err)
	assert.True(t, equal)
}

func TestNewDispatchAttemptCommand_InvalidOrderID(t *testing.T) {
	pickup, err := kernel.NewGeoLocation(40.0, -75.0)
	require.NoError(t, err)

	_, err = commands.NewDispatchAttemptCommand(kernel.UUID{}, pickup)

	require.Error(t, err)
}

func TestNewDispatchAttemptCommand_InvalidPickup(t *testing.T) {
	_, err := commands.NewDispatchAttemptCommand(kernel.NewUUID(), kernel.GeoLocation{})

	require.Error(t, err)
}

func TestDispatchAttemptCommand_Validate_NotConstructed(t *testing.T) {
	cmd := commands.DispatchAttemptCommand{}

	err := cmd.Validate()

	require.Error(t, err)
	require.ErrorIs(t, err, commands.ErrDispatchAttemptCommandIsNotConstructed)
}
