package stats

import "math"

// PValue returns the right-tail probability of a chi-square distribution
// with dof degrees of freedom at chiSquareSum.
func (c *Calculator) PValue(dof int, chiSquareSum float64) (float64, error) {
	if chiSquareSum < 0 || math.IsNaN(chiSquareSum) {
		return 0, ErrInvalidStatistic
	}
	if dof < 1 {
		return 0, ErrInvalidDegreesOfFreedom
	}

	k := float64(dof) / 2
	x := chiSquareSum / 2

	// Exact for two degrees of freedom.
	if dof == 2 {
		return math.Exp(-x), nil
	}

	lig, err := c.LogIncompleteGamma(k, x)
	if err != nil {
		return 0, err
	}
	lg, _ := math.Lgamma(k)
	return clamp01(1 - math.Exp(lig-lg)), nil
}

// PValue evaluates the chi-square survival function with the default
// calculator.
func PValue(dof int, chiSquareSum float64) (float64, error) {
	return defaultCalculator.PValue(dof, chiSquareSum)
}

func clamp01(p float64) float64 {
	return math.Max(0, math.Min(1, p))
}
