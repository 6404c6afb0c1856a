package batch

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/fisher/pkg/logger"
)

// SetupLogging initializes the global logger on stderr so the report on
// stdout stays machine readable.
func SetupLogging(verbose bool) error {
	if err := logger.Init(logger.WithWriter(os.Stderr)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	level := "warn"
	if verbose {
		level = "debug"
	}
	return logger.SetLevelString(level)
}

// ShowHelp prints usage information for metacalc.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `metacalc
========

Combines trial results with Fisher's method and prints the sample-size
weighted effect size and the combined p-value.

Usage:
  metacalc -file trials.yaml [options]

Options:
  -file string
        YAML or JSON file with a "trials" list (required)
  -digits int
        Decimals in the printed results (default 3)
  -max-iterations int
        Upper bound on incomplete gamma series terms (default 5000)
  -verbose
        Log every trial, not only rejected ones
  -help
        Show this help message

Trial file:
  trials:
    - {sample_size: 120, effect_size: 0.35, p_value: 0.04}
    - {sample_size: 80,  effect_size: 0.20, p_value: 0.15}
`)
}
