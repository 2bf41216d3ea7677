package model

import "errors"

// Sentinel kinds for model errors.
var (
	ErrInvalidYearRange = errors.New("invalid year range")
	ErrUnknownColumn    = errors.New("unknown column")
)
