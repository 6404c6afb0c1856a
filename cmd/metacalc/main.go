package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/fisher/internal/batch"
	"github.com/okian/fisher/internal/domain/stats"
)

const defaultDigits = 3

func main() {
	var (
		file          = flag.String("file", "", "YAML or JSON file with a trials list")
		digits        = flag.Int("digits", defaultDigits, "Decimals in the printed results")
		maxIterations = flag.Int("max-iterations", stats.DefaultMaxIterations, "Upper bound on incomplete gamma series terms")
		verbose       = flag.Bool("verbose", false, "Enable verbose logging")
		help          = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		batch.ShowHelp(os.Stdout)
		return
	}

	if err := batch.SetupLogging(*verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := &batch.Config{
		File:          *file,
		Digits:        *digits,
		MaxIterations: *maxIterations,
		Verbose:       *verbose,
	}
	if _, err := batch.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("metacalc: " + err.Error() + "\n")
		stop()
		os.Exit(1)
	}
}
