package workflow

import (
	"errors"
	"fmt"

	"github.com/ironsheep/artcreator/internal/statemachine"
)

// Sentinel errors for workflow operations. Transform failures match
// imaging.ErrInvalidOperation and template failures are returned unchanged
// from the generator.
var (
	ErrInvalidState = errors.New("operation not allowed in current state")
	ErrImport       = errors.New("image import failed")
)

// StateError reports an operation attempted in a state that forbids it.
type StateError struct {
	Op     string
	State  statemachine.State
	Reason string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s not allowed in state %s: %s", e.Op, e.State, e.Reason)
}

// Is matches ErrInvalidState.
func (e *StateError) Is(target error) bool {
	return target == ErrInvalidState
}

// ImportError wraps a load failure. The cause keeps its own identity, so
// errors.Is also matches imaging.ErrNotFound or imaging.ErrDecode.
type ImportError struct {
	Path string
	Err  error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("could not import image %s: %v", e.Path, e.Err)
}

func (e *ImportError) Unwrap() error { return e.Err }

// Is matches ErrImport.
func (e *ImportError) Is(target error) bool {
	return target == ErrImport
}
