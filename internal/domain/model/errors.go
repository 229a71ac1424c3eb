package model

import "errors"

// Sentinel error kinds shared across the domain packages. Callers match them
// with errors.Is; producers wrap them with context.
var (
	// ErrNotFound reports an unknown team or player key.
	ErrNotFound = errors.New("not found")
	// ErrConfiguration reports a catalog that cannot support the requested mode.
	ErrConfiguration = errors.New("configuration error")
	// ErrSessionClosed reports a guess submitted after the session ended.
	ErrSessionClosed = errors.New("session closed")
)
