package applist

import "errors"

var (
	// ErrUnknownApp is returned when an event must target an existing app and doesn't.
	ErrUnknownApp = errors.New("unknown app")
	// ErrUnknownEvent is returned for event values Apply has no rule for.
	ErrUnknownEvent = errors.New("unknown event")
	// ErrInvalidEvent is returned for events whose payload is incomplete.
	ErrInvalidEvent = errors.New("invalid event")
)
