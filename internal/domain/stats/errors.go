package stats

import "errors"

// Sentinel kinds for chi-square and incomplete gamma failures.
var (
	ErrInvalidStatistic        = errors.New("invalid chi-square statistic, must be >= 0")
	ErrInvalidDegreesOfFreedom = errors.New("degrees of freedom must be 1 or greater")
	ErrConvergenceFailure      = errors.New("incomplete gamma series did not converge")
)
