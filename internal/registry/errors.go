package registry

import "errors"

var (
	// ErrSourceNotFound is returned when the requested source id is not
	// registered.
	ErrSourceNotFound = errors.New("source not found")
)
