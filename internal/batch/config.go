package batch

import (
	"io"

	"github.com/okian/fisher/internal/domain/meta"
)

// Config holds configuration for a batch run.
type Config struct {
	File          string    // YAML or JSON trial file
	Digits        int       // Decimals in the printed results
	MaxIterations int       // Incomplete gamma series bound
	Verbose       bool      // Log every accepted trial
	Out           io.Writer // Destination of the report, stdout when nil
}

// Record is one entry of the trials list in a trial file.
type Record struct {
	SampleSize *float64 `koanf:"sample_size"`
	EffectSize *float64 `koanf:"effect_size"`
	PValue     *float64 `koanf:"p_value"`
}

// Rejection describes a trial that was skipped.
type Rejection struct {
	Index int // zero-based position in the file
	Err   error
}

// Report is the outcome of a batch run.
type Report struct {
	Summary  meta.Summary
	Accepted int
	Rejected []Rejection
}
