package artifact

import "errors"

var (
	// ErrArtifactNotFound is returned when no stored artifact matches the
	// handle.
	ErrArtifactNotFound = errors.New("artifact not found")

	// ErrInvalidHandle is returned when a handle does not have the
	// mem://<kind>/<id> shape.
	ErrInvalidHandle = errors.New("invalid artifact handle")
)
