package app

import "errors"

var (
	// ErrUnknownUser means the referenced counterpart is not registered.
	ErrUnknownUser = errors.New("unknown user")
	// ErrInvalidTransition means the event does not match the current call
	// state. Stale and duplicate client messages land here; they are
	// dropped and logged, never escalated.
	ErrInvalidTransition = errors.New("invalid call transition")
	// ErrUserBusy means a party is already in a call.
	ErrUserBusy = errors.New("user busy")
)
