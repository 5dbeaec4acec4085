package statemachine

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"github.com/ironsheep/artcreator/internal/logging"
)

// Listener receives state change notifications.
//
// Listeners are identified by equality, so implementations must be
// comparable; pointer receivers are the usual choice.
type Listener interface {
	StateChanged(state State) error
}

// Subject is an ordered registry of listeners.
type Subject struct {
	mu        sync.Mutex
	listeners []Listener
	logger    *slog.Logger
}

// NewSubject returns an empty Subject. A nil logger discards failure logs.
func NewSubject(logger *slog.Logger) *Subject {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Subject{logger: logger}
}

// Attach appends l unless it is already attached. Listeners whose dynamic
// type cannot be compared are refused and logged, since they could never be
// found again by Detach.
func (s *Subject) Attach(l Listener) {
	if l == nil {
		return
	}
	if !reflect.TypeOf(l).Comparable() {
		s.logger.Warn("state listener refused: type is not comparable",
			"listener", fmt.Sprintf("%T", l))
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.listeners {
		if sameListener(existing, l) {
			return
		}
	}
	s.listeners = append(s.listeners, l)
}

// Detach removes l. Detaching an absent or incomparable listener does
// nothing.
func (s *Subject) Detach(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.listeners {
		if sameListener(existing, l) {
			// Copy rather than shift in place so snapshots held by an
			// in-flight Notify stay intact.
			next := make([]Listener, 0, len(s.listeners)-1)
			next = append(next, s.listeners[:i]...)
			next = append(next, s.listeners[i+1:]...)
			s.listeners = next
			return
		}
	}
}

// Len returns the number of attached listeners.
func (s *Subject) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners)
}

// Notify delivers state to every listener attached at the time of the call,
// in attachment order. A listener that fails or panics does not stop
// delivery to the rest; all failures are logged and returned joined.
func (s *Subject) Notify(state State) error {
	s.mu.Lock()
	snapshot := s.listeners
	s.mu.Unlock()

	var errs []error
	for _, l := range snapshot {
		if err := deliver(l, state); err != nil {
			s.logger.Warn("state listener failed",
				"state", state.String(),
				"listener", fmt.Sprintf("%T", l),
				"error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// sameListener compares by ==. A comparable type can still hold an
// incomparable value in an interface field; such pairs never match.
func sameListener(a, b Listener) (same bool) {
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return a == b
}

func deliver(l Listener, state State) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("listener %T panicked: %v", l, r)
		}
	}()
	return l.StateChanged(state)
}
