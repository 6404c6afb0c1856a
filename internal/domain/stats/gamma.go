// Package stats computes chi-square tail probabilities for Fisher's method.
package stats

import (
	"fmt"
	"math"
)

// DefaultMaxIterations bounds the incomplete gamma series.
const DefaultMaxIterations = 5000

// Calculator evaluates the incomplete gamma series and chi-square p-values.
// A Calculator holds no mutable state and is safe for concurrent use.
type Calculator struct {
	maxIterations int
	observe       func(iterations int, err error)
}

// NewCalculator creates a Calculator with configuration options.
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{
		maxIterations: DefaultMaxIterations,
		observe:       func(int, error) {},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var defaultCalculator = NewCalculator() //nolint:gochecknoglobals // stateless default

// MaxIterations reports the configured series bound.
func (c *Calculator) MaxIterations() int { return c.maxIterations }

// LogIncompleteGamma returns ln γ(s, z), the natural log of the lower
// incomplete gamma function. Negative z yields 0.
func (c *Calculator) LogIncompleteGamma(s, z float64) (float64, error) {
	if z < 0 {
		return 0, nil
	}
	sc := math.Log(z)*s - z - math.Log(s)
	k, err := c.series(s, z)
	if err != nil {
		return 0, err
	}
	return math.Log(k) + sc, nil
}

// series sums 1 + z/(s+1) + z²/((s+1)(s+2)) + ... until a term no longer
// moves the sum by more than machine epsilon.
func (c *Calculator) series(s, z float64) (float64, error) {
	sum, term, t := 1.0, 1.0, s
	for i := 1; i <= c.maxIterations; i++ {
		t++
		term *= z / t
		candidate := sum + term
		if math.IsInf(candidate, 0) || math.IsNaN(candidate) {
			err := fmt.Errorf("%w: sum overflowed after %d terms (s=%g, z=%g)", ErrConvergenceFailure, i, s, z)
			c.observe(i, err)
			return 0, err
		}
		if candidate-sum <= epsilon {
			c.observe(i, nil)
			return sum, nil
		}
		sum = candidate
	}
	err := fmt.Errorf("%w: no convergence within %d terms (s=%g, z=%g)", ErrConvergenceFailure, c.maxIterations, s, z)
	c.observe(c.maxIterations, err)
	return 0, err
}

// epsilon is the difference between 1 and the next representable float64.
const epsilon = 0x1p-52

// LogIncompleteGamma evaluates ln γ(s, z) with the default series bound.
func LogIncompleteGamma(s, z float64) (float64, error) {
	return defaultCalculator.LogIncompleteGamma(s, z)
}
