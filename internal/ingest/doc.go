// Package ingest normalizes uploaded file content into records. Parsers
// exist for JSON, CSV, XML, and plain-text files; the format is selected by
// file-name extension.
package ingest
