package report

import "errors"

// Sentinel error kinds for report sinks.
var (
	ErrUnknownFormat = errors.New("unknown report format")
	ErrWriteFailed   = errors.New("report write failed")
)
