package session

import (
	"fmt"
	"sync"
)

// transitions is the full table for the upload/chat progression. There is
// deliberately no edge out of chatting: a session holds at most one live
// invoice context.
var transitions = map[State]map[Trigger]State{
	StateWelcome: {
		TriggerOpenSession: StateAwaitingInvoice,
	},
	StateAwaitingInvoice: {
		TriggerAttachResult: StateChatting,
	},
}

// Machine tracks one session's progression and validates transitions. It
// is safe for use from concurrent request handlers, though the service
// layer serializes operations per session anyway.
type Machine struct {
	mu    sync.Mutex
	state State
}

// NewMachine creates a machine in the given initial state. It panics on an
// unknown state; callers construct machines from trusted stored values.
func NewMachine(initial State) *Machine {
	if !initial.IsValid() {
		panic(fmt.Sprintf("invalid initial session state: %s", initial))
	}
	return &Machine{state: initial}
}

// State returns the current state
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// CanFire returns true if the trigger is permitted in the current state
func (m *Machine) CanFire(trigger Trigger) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := transitions[m.state][trigger]
	return ok
}

// Fire attempts the trigger, moving to the new state if permitted
func (m *Machine) Fire(trigger Trigger) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next, ok := transitions[m.state][trigger]
	if !ok {
		return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, trigger, m.state)
	}
	m.state = next
	return nil
}

// PermittedTriggers returns the triggers that can fire in the current state
func (m *Machine) PermittedTriggers() []Trigger {
	m.mu.Lock()
	defer m.mu.Unlock()

	var permitted []Trigger
	for trigger := range transitions[m.state] {
		permitted = append(permitted, trigger)
	}
	return permitted
}

// StateForSession derives a session's state from whether it has a result
// attached. Sessions persist only their result linkage; state is derived,
// not stored.
func StateForSession(hasResult bool) State {
	if hasResult {
		return StateChatting
	}
	return StateAwaitingInvoice
}
