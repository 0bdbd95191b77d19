package component

import (
	"errors"
	"fmt"
)

var (
	// ErrPropertyNotFound is returned when an instance has no property of the
	// requested name.
	ErrPropertyNotFound = errors.New("component: property not found")
	// ErrInvalidOption reports an option group of an unexpected shape.
	ErrInvalidOption = errors.New("component: invalid option")
	// ErrInvalidComponentName is reported (as a warning) for names that are
	// reserved or do not match the component name pattern.
	ErrInvalidComponentName = errors.New("component: invalid component name")
	// ErrNoEvaluator is returned when an expression engine is not available.
	ErrNoEvaluator = errors.New("component: evaluator not configured")
	// ErrNoSetter is returned when assigning a computed property without a
	// setter.
	ErrNoSetter = errors.New("component: computed property has no setter")
)

// MergeError reports a failure merging one option group.
type MergeError struct {
	Key string
	Err error
}

func (e *MergeError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("component: merge option %q: %v", e.Key, e.Err)
}

func (e *MergeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func invalidOption(want string, got any) error {
	return fmt.Errorf("%w: expected %s, got %T", ErrInvalidOption, want, got)
}
