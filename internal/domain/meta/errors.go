package meta

import "errors"

// Sentinel kinds for trial validation. These allow errors.Is from callers.
var (
	ErrInvalidSampleSize = errors.New("invalid sample size, must be > 0")
	ErrInvalidPValue     = errors.New("invalid p-value, must be 0 < p < 1")
	ErrInvalidEffectSize = errors.New("invalid effect size, must be a finite number")
)
