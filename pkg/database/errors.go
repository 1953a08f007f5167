package database

import "errors"

// ErrTimeout indicates a bounded operation exceeded its query timeout.
// The operation may be retried unchanged.
var ErrTimeout = errors.New("database operation timed out")
