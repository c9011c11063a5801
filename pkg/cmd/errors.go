package cmd

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidUnit   = errors.New("invalid unit")
	ErrDuplicateUnit = errors.New("duplicate unit")

	// ErrNotStarted is returned when an Await is cleared or refreshed before
	// its timer was armed.
	ErrNotStarted = errors.New("await: timer not started")
	// ErrAlreadyStarted is returned when an Await is armed twice.
	ErrAlreadyStarted = errors.New("await: timer already started")
	// ErrAwaitCleared is returned when a cleared Await is refreshed.
	ErrAwaitCleared = errors.New("await: already cleared")
	// ErrNoTarget is returned when an Await has neither an explicit nor a
	// default channel and user.
	ErrNoTarget = errors.New("await: channel and user are required")
)

// InputKind tags the reason an InputError was raised.
type InputKind string

const (
	KindArguments  InputKind = "arguments"
	KindRestricted InputKind = "restricted"
	KindGuild      InputKind = "guild"
	KindDisabled   InputKind = "disabled"
)

// InputError is a problem with what the user typed or who typed it. It is
// always rendered back to the user.
type InputError struct {
	Kind InputKind
	Unit string
	Hint string
}

func (e *InputError) Error() string {
	if e.Hint == "" {
		return fmt.Sprintf("%s: %s", e.Unit, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %s", e.Unit, e.Kind, e.Hint)
}

// NewInputError builds an InputError with a default hint for kind.
func NewInputError(kind InputKind, unit string) *InputError {
	e := &InputError{Kind: kind, Unit: unit}
	switch kind {
	case KindArguments:
		e.Hint = "Missing or invalid arguments."
	case KindRestricted:
		e.Hint = "You are not allowed to use this."
	case KindGuild:
		e.Hint = "This can only be used in a server."
	case KindDisabled:
		e.Hint = "This is disabled here."
	}
	return e
}

// AsInputError unwraps err into an InputError.
func AsInputError(err error) (*InputError, bool) {
	var ie *InputError
	if errors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}

// IsKind reports whether err is an InputError of the given kind.
func IsKind(err error, kind InputKind) bool {
	ie, ok := AsInputError(err)
	return ok && ie.Kind == kind
}
