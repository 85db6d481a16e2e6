package dashboard

import "errors"

// ErrFileTooLarge is returned when an ingested file exceeds the configured
// maximum upload size. The file is skipped, not truncated: a silently
// truncated file would surface as a confusing parse error downstream.
var ErrFileTooLarge = errors.New("file exceeds maximum upload size")
