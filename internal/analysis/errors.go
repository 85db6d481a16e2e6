package analysis

import "errors"

var (
	// ErrUnknownAnalysisType is returned when the requested analysis type
	// has no registered strategy.
	ErrUnknownAnalysisType = errors.New("unknown analysis type")
)
