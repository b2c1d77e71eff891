package sandbox

import "errors"

var (
	// ErrInvalidGesture covers self joins, zero-length segments and joints
	// committed without a second entity. The gesture is dropped.
	ErrInvalidGesture = errors.New("invalid gesture")
	// ErrDanglingReference means an operation named an entity that is no
	// longer registered. It is handled like ErrInvalidGesture.
	ErrDanglingReference = errors.New("dangling entity reference")
	// ErrEngineAllocation means the physics engine could not provide a
	// body, shape or constraint. It always reaches the caller.
	ErrEngineAllocation = errors.New("engine allocation failed")
)

// recoverable reports whether err only invalidates the current gesture.
func recoverable(err error) bool {
	if err == nil || errors.Is(err, ErrEngineAllocation) {
		return false
	}
	return errors.Is(err, ErrInvalidGesture) || errors.Is(err, ErrDanglingReference)
}
