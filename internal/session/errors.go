package session

import "errors"

// Error sentinels for the session command surface.
var (
	// ErrUnsupportedSource is returned by Load when the source variant is
	// not a supported kind. The session stays usable for subsequent loads.
	ErrUnsupportedSource = errors.New("unsupported source kind")

	// ErrSessionClosed is returned to any command submitted after Release
	// has begun.
	ErrSessionClosed = errors.New("session closed")
)
