// Package meta accumulates trial observations and combines them into a
// sample-size-weighted effect size and a Fisher combined p-value.
package meta

import (
	"fmt"
	"math"

	"github.com/okian/fisher/internal/domain/format"
	"github.com/okian/fisher/internal/domain/stats"
	"gonum.org/v1/gonum/stat"
)

// Trial is one accepted observation.
type Trial struct {
	SampleSize int
	EffectSize float64
	PValue     float64
}

// Validate reports whether t may be accepted into a trial set.
func (t Trial) Validate() error {
	if t.SampleSize < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidSampleSize, t.SampleSize)
	}
	if !(t.PValue > 0 && t.PValue < 1) {
		return fmt.Errorf("%w: got %g", ErrInvalidPValue, t.PValue)
	}
	if math.IsNaN(t.EffectSize) || math.IsInf(t.EffectSize, 0) {
		return fmt.Errorf("%w: got %g", ErrInvalidEffectSize, t.EffectSize)
	}
	return nil
}

// Analysis owns a set of trials. The zero value is not usable; call New.
//
// Analysis is not safe for concurrent use. Hosts serving several callers
// must serialize access to an instance.
type Analysis struct {
	trials []Trial
	calc   *stats.Calculator
}

// New creates an empty Analysis. A nil calculator selects the defaults.
func New(calc *stats.Calculator) *Analysis {
	if calc == nil {
		calc = stats.NewCalculator()
	}
	return &Analysis{calc: calc}
}

// AddTrial validates and appends a trial. On error the set is unchanged.
func (a *Analysis) AddTrial(sampleSize int, effectSize, pValue float64) error {
	t := Trial{SampleSize: sampleSize, EffectSize: effectSize, PValue: pValue}
	if err := t.Validate(); err != nil {
		return err
	}
	a.trials = append(a.trials, t)
	return nil
}

// Clear removes every trial.
func (a *Analysis) Clear() {
	a.trials = nil
}

// Count returns the number of accepted trials.
func (a *Analysis) Count() int { return len(a.trials) }

// Trials returns a copy of the accepted trials in insertion order.
func (a *Analysis) Trials() []Trial {
	out := make([]Trial, len(a.trials))
	copy(out, a.trials)
	return out
}

// WeightedEffectSize returns Σ(nᵢ·esᵢ) / Σ(nᵢ). It is NaN for an empty set.
func (a *Analysis) WeightedEffectSize() float64 {
	if len(a.trials) == 0 {
		return math.NaN()
	}
	x := make([]float64, len(a.trials))
	w := make([]float64, len(a.trials))
	for i, t := range a.trials {
		x[i] = t.EffectSize
		w[i] = float64(t.SampleSize)
	}
	return stat.Mean(x, w)
}

// ChiSquareSum returns Σ -2·ln(pᵢ), Fisher's statistic.
func (a *Analysis) ChiSquareSum() float64 {
	var sum float64
	for _, t := range a.trials {
		sum += -2 * math.Log(t.PValue)
	}
	return sum
}

// CombinedPValue combines all p-values with Fisher's method using
// 2·count degrees of freedom. An empty set fails with
// stats.ErrInvalidDegreesOfFreedom.
func (a *Analysis) CombinedPValue() (float64, error) {
	return a.calc.PValue(2*len(a.trials), a.ChiSquareSum())
}

// Summary is the displayable state of an Analysis.
type Summary struct {
	Trials            int
	EffectSize        float64 // NaN when there are no trials
	PValue            float64 // NaN when PValueErr is set
	PValueErr         error
	EffectSizeDisplay string
	PValueDisplay     string
}

// Summary computes both aggregates and formats them with digits decimals.
// Empty sets produce empty display strings.
func (a *Analysis) Summary(digits int) Summary {
	s := Summary{
		Trials:     a.Count(),
		EffectSize: a.WeightedEffectSize(),
		PValue:     math.NaN(),
	}
	if s.Trials == 0 {
		return s
	}
	s.EffectSizeDisplay = format.Number(s.EffectSize, digits)
	p, err := a.CombinedPValue()
	if err != nil {
		s.PValueErr = err
		return s
	}
	s.PValue = p
	s.PValueDisplay = format.Number(p, digits)
	return s
}
