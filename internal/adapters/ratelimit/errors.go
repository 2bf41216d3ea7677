package ratelimit

import "errors"

// Sentinel kinds for limiter construction errors.
var (
	ErrUnknownMode  = errors.New("unknown rate limit mode")
	ErrInvalidLimit = errors.New("invalid rate limit")
)
