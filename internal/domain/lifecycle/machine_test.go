package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFireFromPending(t *testing.T) {
	tests := []struct {
		name    string
		trigger Trigger
		want    State
	}{
		{"sign", TriggerSign, StateSigned},
		{"reject", TriggerReject, StateRejected},
		{"assign keeps pending", TriggerAssign, StatePending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := Fire(StatePending, tt.trigger)
			require.NoError(t, err)
			assert.Equal(t, tt.want, next)
		})
	}
}

func TestTerminalStatesPermitNothing(t *testing.T) {
	for _, state := range []State{StateSigned, StateRejected} {
		assert.True(t, state.IsTerminal())
		assert.Empty(t, PermittedTriggers(state))

		for _, trigger := range []Trigger{TriggerAssign, TriggerSign, TriggerReject} {
			assert.False(t, CanFire(state, trigger))

			next, err := Fire(state, trigger)
			assert.ErrorIs(t, err, ErrInvalidTransition)
			assert.Equal(t, state, next, "failed Fire must not move the state")
		}
	}
}

func TestFireRejectsUnknownState(t *testing.T) {
	_, err := Fire(State("ARCHIVED"), TriggerSign)
	assert.ErrorIs(t, err, ErrInvalidState)
}
