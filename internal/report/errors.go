package report

import "errors"

var (
	// ErrUnknownReportType is returned when no narrative template exists
	// for the requested report type.
	ErrUnknownReportType = errors.New("unknown report type")

	// ErrUnknownReportFormat is returned when no encoder exists for the
	// requested output format.
	ErrUnknownReportFormat = errors.New("unknown report format")
)
