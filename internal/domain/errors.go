package domain

import "errors"

// ErrNotFound is returned by product stores when a row is missing or inactive.
var ErrNotFound = errors.New("not found")
