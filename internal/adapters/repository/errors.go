package repository

import "errors"

// Sentinel kinds for session store errors.
var (
	ErrNotFound = errors.New("session not found")
	ErrCapacity = errors.New("session capacity reached")
	ErrClosed   = errors.New("session store closed")
)
