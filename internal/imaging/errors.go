package imaging

import (
	"errors"
	"fmt"
)

// Sentinel errors for transform and load failures.
var (
	ErrInvalidOperation = errors.New("invalid operation")
	ErrNotFound         = errors.New("image not found")
	ErrDecode           = errors.New("unsupported image format")
)

// OperationError reports an operation string that could not be parsed or
// applied.
type OperationError struct {
	// Spec is the operation string as supplied by the caller.
	Spec string

	// Reason describes what was wrong with it.
	Reason string
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("invalid operation %q: %s", e.Spec, e.Reason)
}

// Is matches ErrInvalidOperation.
func (e *OperationError) Is(target error) bool {
	return target == ErrInvalidOperation
}

// NotFoundError reports a path that could not be read.
type NotFoundError struct {
	Path string
	Err  error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("failed to read image %s: %v", e.Path, e.Err)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// Is matches ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// DecodeError reports bytes that did not decode to a supported format.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode image %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Is matches ErrDecode.
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}
