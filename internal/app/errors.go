package service

import "errors"

// ErrSinkFailed wraps any failure to emit the report.
var ErrSinkFailed = errors.New("report sink failed")
