package batch

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/okian/fisher/internal/domain/meta"
	"github.com/okian/fisher/internal/domain/stats"
	"github.com/okian/fisher/pkg/logger"
)

// Run loads the trial file, accumulates every valid trial in file order
// and prints the summary. Invalid trials are logged and skipped.
func Run(ctx context.Context, cfg *Config) (*Report, error) {
	log := logger.Named("batch")

	records, err := LoadTrials(cfg.File)
	if err != nil {
		return nil, err
	}
	log.Debug(ctx, "trial file loaded", logger.String("file", cfg.File), logger.Int("records", len(records)))

	var calcOpts []stats.Option
	if cfg.MaxIterations > 0 {
		calcOpts = append(calcOpts, stats.WithMaxIterations(cfg.MaxIterations))
	}
	analysis := meta.New(stats.NewCalculator(calcOpts...))

	report := &Report{}
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := addRecord(analysis, rec); err != nil {
			log.Warn(ctx, "trial rejected", logger.Int("index", i), logger.Error(err))
			report.Rejected = append(report.Rejected, Rejection{Index: i, Err: err})
			continue
		}
		report.Accepted++
		if cfg.Verbose {
			log.Debug(ctx, "trial accepted", logger.Int("index", i), logger.Int("trials", analysis.Count()))
		}
	}

	report.Summary = analysis.Summary(cfg.Digits)
	if report.Summary.PValueErr != nil {
		log.Warn(ctx, "combined p-value unavailable", logger.Error(report.Summary.PValueErr))
	}

	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}
	if err := WriteReport(out, report); err != nil {
		return nil, err
	}
	return report, nil
}

func addRecord(a *meta.Analysis, rec Record) error {
	n, es, p, err := rec.Trial()
	if err != nil {
		return err
	}
	return a.AddTrial(n, es, p)
}

// WriteReport prints the three result fields.
func WriteReport(w io.Writer, r *Report) error {
	s := r.Summary
	pv := s.PValueDisplay
	if s.PValueErr != nil && s.Trials > 0 {
		pv = "error: " + s.PValueErr.Error()
	}
	_, err := fmt.Fprintf(w, "# trials:    %d\neffect size: %s\np-value:     %s\n",
		s.Trials, orNA(s.EffectSizeDisplay), orNA(pv))
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func orNA(s string) string {
	if s == "" {
		return "n/a"
	}
	return s
}
