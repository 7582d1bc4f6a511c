package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMachine_HappyPath(t *testing.T) {
	m := NewMachine(StateWelcome)

	require.NoError(t, m.Fire(TriggerOpenSession))
	assert.Equal(t, StateAwaitingInvoice, m.State())

	require.NoError(t, m.Fire(TriggerAttachResult))
	assert.Equal(t, StateChatting, m.State())
}

func TestMachine_InvalidTransitions(t *testing.T) {
	tests := []struct {
		name    string
		initial State
		trigger Trigger
	}{
		{"attach before session opens", StateWelcome, TriggerAttachResult},
		{"reopen an active session", StateAwaitingInvoice, TriggerOpenSession},
		{"attach a second result", StateChatting, TriggerAttachResult},
		{"reopen after chatting", StateChatting, TriggerOpenSession},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMachine(tt.initial)

			assert.False(t, m.CanFire(tt.trigger))
			err := m.Fire(tt.trigger)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidTransition)
			assert.Equal(t, tt.initial, m.State(), "failed fire must not move the machine")
		})
	}
}

func TestMachine_PermittedTriggers(t *testing.T) {
	assert.Equal(t, []Trigger{TriggerOpenSession}, NewMachine(StateWelcome).PermittedTriggers())
	assert.Equal(t, []Trigger{TriggerAttachResult}, NewMachine(StateAwaitingInvoice).PermittedTriggers())
	assert.Empty(t, NewMachine(StateChatting).PermittedTriggers())
}

func TestMachine_PanicsOnUnknownInitialState(t *testing.T) {
	assert.Panics(t, func() { NewMachine(State("archived")) })
}

func TestStateForSession(t *testing.T) {
	assert.Equal(t, StateChatting, StateForSession(true))
	assert.Equal(t, StateAwaitingInvoice, StateForSession(false))
}

func TestStateIsTerminal(t *testing.T) {
	assert.False(t, StateWelcome.IsTerminal())
	assert.False(t, StateAwaitingInvoice.IsTerminal())
	assert.True(t, StateChatting.IsTerminal())
}
