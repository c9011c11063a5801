package handler

import (
	"errors"
	"fmt"
	"runtime/debug"
)

var (
	// ErrNilAction is returned when a resolved unit has no action.
	ErrNilAction = errors.New("unit has no action")
	// ErrNoReactionHandler is returned when a response asks for an interface
	// but no ReactionHandler was attached to the core.
	ErrNoReactionHandler = errors.New("response has an interface but no reaction handler is attached")
	// ErrBadFile is returned for a file payload without data.
	ErrBadFile = errors.New("file payload has no data")
)

// ResponseKind tags why a single delivery failed.
type ResponseKind string

const (
	KindInvalidChannel ResponseKind = "invalid-channel"
	KindChannelType    ResponseKind = "channel-type"
	KindPermission     ResponseKind = "permission"
	KindIgnored        ResponseKind = "ignored"
)

// ResponseError is a recoverable failure of one delivery. It is stored in the
// Delivery it belongs to and never returned from Handle.
type ResponseError struct {
	Kind      ResponseKind
	ChannelID string
	Err       error
}

func (e *ResponseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("response to %s: %s", e.ChannelID, e.Kind)
	}
	return fmt.Sprintf("response to %s: %s: %v", e.ChannelID, e.Kind, e.Err)
}

func (e *ResponseError) Unwrap() error { return e.Err }

// IsResponseKind reports whether err is a ResponseError of kind.
func IsResponseKind(err error, kind ResponseKind) bool {
	var re *ResponseError
	return errors.As(err, &re) && re.Kind == kind
}

// IgnoredError wraps a provider error whose code is configured as ignored.
type IgnoredError struct {
	Code int
	Err  error
}

func (e *IgnoredError) Error() string {
	return fmt.Sprintf("ignored provider error %d: %v", e.Code, e.Err)
}

func (e *IgnoredError) Unwrap() error { return e.Err }

// PanicError is returned from Handle when a unit, replacer or trigger
// panicked while the event was dispatched.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic during dispatch: %v", e.Value)
}

// recoverEvent stores a recovered panic in *err. It must be deferred directly.
func (c *Core) recoverEvent(err *error) {
	r := recover()
	if r == nil {
		return
	}
	pe := &PanicError{Value: r, Stack: debug.Stack()}
	c.log.Error().Bytes("stack", pe.Stack).Msgf("recovered: %v", r)
	*err = pe
}
