package bellboard

import "errors"

// Sentinel kinds for record source failures. Callers use errors.Is.
var (
	ErrRequest          = errors.New("bellboard request failed")
	ErrUnexpectedStatus = errors.New("bellboard unexpected status")
	ErrDecode           = errors.New("bellboard response decode failed")
	ErrUnsupportedQuery = errors.New("bellboard unsupported query")
)
