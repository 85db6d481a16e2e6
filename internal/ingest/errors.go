package ingest

import "errors"

var (
	// ErrUnsupportedFormat is returned when the file-name extension does not
	// map to a known parser.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrInvalidJSON is returned when a .json file does not parse.
	ErrInvalidJSON = errors.New("invalid JSON content")

	// ErrInsufficientRows is returned when a .csv file lacks a header row
	// plus at least one data row.
	ErrInsufficientRows = errors.New("CSV file must have a header row and at least one data row")

	// ErrInvalidXML is returned when a .xml file does not parse.
	ErrInvalidXML = errors.New("invalid XML content")
)
