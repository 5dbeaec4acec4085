package statemachine

import (
	"sync"
)

// Machine holds the current state and notifies its Subject on every change.
type Machine struct {
	mu      sync.RWMutex
	current State
	subject *Subject
}

// NewMachine returns a Machine in the Initial state bound to subject.
func NewMachine(subject *Subject) *Machine {
	if subject == nil {
		subject = NewSubject(nil)
	}
	return &Machine{current: Initial, subject: subject}
}

// Current returns the current state.
func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// SetState assigns state and notifies listeners exactly once, including when
// state equals the current value. Listener failures are isolated and logged
// by the Subject; the assignment itself cannot fail.
func (m *Machine) SetState(state State) {
	m.mu.Lock()
	m.current = state
	m.mu.Unlock()

	_ = m.subject.Notify(state)
}

// Subject returns the hub this machine notifies.
func (m *Machine) Subject() *Subject {
	return m.subject
}
