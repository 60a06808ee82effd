package growbox

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFoundError(t *testing.T) {
	err := NewRelayNotFoundError(3)
	assert.Equal(t, "relay 3 not found", err.Error())
	assert.True(t, IsNotFound(err))
	assert.True(t, IsNotFound(fmt.Errorf("wrapped: %w", err)))
	assert.False(t, IsNotFound(errors.New("relay 3 not found")))
	assert.False(t, IsNotFound(nil))
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("invalid force value %d", 7)
	assert.Equal(t, "invalid force value 7", err.Error())
	assert.True(t, IsValidation(err))
	assert.False(t, IsValidation(NewRelayNotFoundError(1)))
}

func TestBankErrorsAreTyped(t *testing.T) {
	bank := NewRelayBank(1, nil)
	assert.True(t, IsNotFound(bank.SetForce(5, StateOn)))
	assert.True(t, IsValidation(bank.SetForce(0, 9)))
	assert.True(t, IsNotFound(bank.SetLabel(5, "x")))
}
