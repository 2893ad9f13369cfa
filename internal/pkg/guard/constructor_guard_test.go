package guard_test

import (
	"errors"
	"sync"
	"testing"

	"parking/internal/pkg/guard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorGuard_Validate(t *testing.T) {
	t.Run("properly_constructed_guard_returns_nil", func(t *testing.T) {
		// Given
		g := guard.NewConstructorGuard()

		// Then
		require.NoError(t, g.Validate(errors.New("not constructed")))
		require.NoError(t, g.Validate(nil))
	})

	t.Run("zero_value_guard_returns_custom_error", func(t *testing.T) {
		// Given
		var g guard.ConstructorGuard
		expectedError := errors.New("command not constructed")

		// When
		err := g.Validate(expectedError)

		// Then
		require.Error(t, err)
		assert.Equal(t, expectedError, err)
	})

	t.Run("zero_value_guard_returns_default_error_when_nil", func(t *testing.T) {
		// Given
		var g guard.ConstructorGuard

		// When
		err := g.Validate(nil)

		// Then
		assert.Equal(t, guard.ErrDefaultConstructorGuard, err)
		assert.Equal(t, "object must be created via its constructor", err.Error())
	})
}

func TestConstructorGuard_EmbeddedInCommand(t *testing.T) {
	errCommandNotConstructed := errors.New("ExitVehicleCommand must be created via constructor")

	type exitVehicleCommand struct {
		plate string
		guard guard.ConstructorGuard
	}

	newCommand := func(plate string) exitVehicleCommand {
		return exitVehicleCommand{plate: plate, guard: guard.NewConstructorGuard()}
	}
	validate := func(c exitVehicleCommand) error {
		return c.guard.Validate(errCommandNotConstructed)
	}

	require.NoError(t, validate(newCommand("AB123")))
	require.ErrorIs(t, validate(exitVehicleCommand{plate: "AB123"}), errCommandNotConstructed)
}

func TestConstructorGuard_Concurrency(t *testing.T) {
	g := guard.NewConstructorGuard()
	validationError := errors.New("not constructed")

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, g.Validate(validationError))
		}()
	}
	wg.Wait()
}
