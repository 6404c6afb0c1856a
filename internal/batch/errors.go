package batch

import "errors"

var (
	// ErrMissingFile is returned when no trial file was given.
	ErrMissingFile = errors.New("no trial file given")
	// ErrLoadTrials is returned when the trial file cannot be read or parsed.
	ErrLoadTrials = errors.New("failed to load trials")
	// ErrInvalidRecord is returned for a trial entry with missing or malformed fields.
	ErrInvalidRecord = errors.New("invalid trial record")
)
