package arena

import "errors"

var (
	// ErrStartRejected is returned when a match is started with fewer than two tanks
	ErrStartRejected = errors.New("need at least 2 tanks to start")
	// ErrArenaFull is returned when registering past the tank limit
	ErrArenaFull = errors.New("arena is full")
	// ErrUnknownTank is returned for lookups of tanks that are not registered
	ErrUnknownTank = errors.New("unknown tank")
	// ErrInvalidTransition signals a corrupted round lifecycle
	ErrInvalidTransition = errors.New("invalid match state transition")

	// ErrThinkTimeout marks a brain that missed the tick deadline
	ErrThinkTimeout = errors.New("think timed out")
	// ErrThinkRuntime marks a brain that failed or panicked
	ErrThinkRuntime = errors.New("think failed")
	// ErrThinkBusy marks a brain whose previous invocation has not returned yet
	ErrThinkBusy = errors.New("think still running")
)
