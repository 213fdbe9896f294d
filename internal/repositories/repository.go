package repositories

import "errors"

// ErrNotFound is returned when no row exists for the requested key.
var ErrNotFound = errors.New("record not found")
