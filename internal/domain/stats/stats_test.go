package stats_test

import (
	"errors"
	"math"
	"testing"

	"github.com/okian/fisher/internal/domain/stats"
	. "github.com/smartystreets/goconvey/convey"
	"gonum.org/v1/gonum/stat/distuv"
)

const tolerance = 1e-9

func TestPValue(t *testing.T) {
	Convey("Given the default calculator", t, func() {
		Convey("When the statistic is zero at two degrees of freedom", func() {
			p, err := stats.PValue(2, 0)

			Convey("Then the p-value is exactly one", func() {
				So(err, ShouldBeNil)
				So(p, ShouldEqual, 1.0)
			})
		})

		Convey("When the statistic is zero at four degrees of freedom", func() {
			p, err := stats.PValue(4, 0)

			Convey("Then the series branch also yields one", func() {
				So(err, ShouldBeNil)
				So(p, ShouldAlmostEqual, 1.0, tolerance)
			})
		})

		Convey("When degrees of freedom are below one", func() {
			_, err := stats.PValue(0, 3.2)

			Convey("Then it fails with an invalid degrees of freedom error", func() {
				So(errors.Is(err, stats.ErrInvalidDegreesOfFreedom), ShouldBeTrue)
			})
		})

		Convey("When the statistic is negative", func() {
			_, err := stats.PValue(2, -1)

			Convey("Then it fails with an invalid statistic error", func() {
				So(errors.Is(err, stats.ErrInvalidStatistic), ShouldBeTrue)
			})
		})

		Convey("When the statistic is negative and dof is invalid", func() {
			_, err := stats.PValue(0, -1)

			Convey("Then the statistic is checked first", func() {
				So(errors.Is(err, stats.ErrInvalidStatistic), ShouldBeTrue)
			})
		})

		Convey("When two degrees of freedom use the closed form", func() {
			cv := -2 * math.Log(0.05)
			p, err := stats.PValue(2, cv)

			Convey("Then the single p-value is recovered", func() {
				So(err, ShouldBeNil)
				So(p, ShouldAlmostEqual, 0.05, tolerance)
			})
		})

		Convey("When four degrees of freedom are evaluated", func() {
			x := math.Log(4)
			p, err := stats.PValue(4, 2*x)

			Convey("Then it matches the exponential closed form", func() {
				So(err, ShouldBeNil)
				So(p, ShouldAlmostEqual, math.Exp(-x)*(1+x), tolerance)
				So(p, ShouldAlmostEqual, 0.5966, 1e-4)
			})
		})

		Convey("When compared with gonum's chi-square survival function", func() {
			Convey("Then both agree across degrees of freedom and statistics", func() {
				for dof := 1; dof <= 40; dof++ {
					dist := distuv.ChiSquared{K: float64(dof)}
					for _, cv := range []float64{0.01, 0.5, 1, 2.7, 7.5, 15, 42, 120} {
						p, err := stats.PValue(dof, cv)
						So(err, ShouldBeNil)
						So(p, ShouldAlmostEqual, dist.Survival(cv), tolerance)
					}
				}
			})
		})

		Convey("When the statistic is huge relative to the degrees of freedom", func() {
			_, err := stats.PValue(4, 5000)

			Convey("Then it fails instead of looping forever", func() {
				So(errors.Is(err, stats.ErrConvergenceFailure), ShouldBeTrue)
			})
		})
	})
}

func TestLogIncompleteGamma(t *testing.T) {
	Convey("Given the incomplete gamma series", t, func() {
		Convey("When z is negative", func() {
			v, err := stats.LogIncompleteGamma(2, -1)

			Convey("Then the sentinel zero is returned", func() {
				So(err, ShouldBeNil)
				So(v, ShouldEqual, 0.0)
			})
		})

		Convey("When s is one", func() {
			// γ(1, z) = 1 - e^{-z}
			v, err := stats.LogIncompleteGamma(1, 2)

			Convey("Then it matches the closed form", func() {
				So(err, ShouldBeNil)
				So(v, ShouldAlmostEqual, math.Log(1-math.Exp(-2)), tolerance)
			})
		})

		Convey("When s is two", func() {
			// γ(2, z) = 1 - e^{-z}(1 + z)
			v, err := stats.LogIncompleteGamma(2, 3)

			Convey("Then it matches the closed form", func() {
				So(err, ShouldBeNil)
				So(v, ShouldAlmostEqual, math.Log(1-math.Exp(-3)*4), tolerance)
			})
		})

		Convey("When the iteration budget is too small", func() {
			c := stats.NewCalculator(stats.WithMaxIterations(3))
			_, err := c.LogIncompleteGamma(1.5, 50)

			Convey("Then it fails with a convergence error", func() {
				So(errors.Is(err, stats.ErrConvergenceFailure), ShouldBeTrue)
			})
		})

		Convey("When an observer is configured", func() {
			var calls, last int
			var lastErr error
			c := stats.NewCalculator(stats.WithObserver(func(n int, err error) {
				calls++
				last = n
				lastErr = err
			}))
			_, err := c.PValue(6, 4)

			Convey("Then it sees the number of evaluated terms", func() {
				So(err, ShouldBeNil)
				So(calls, ShouldEqual, 1)
				So(last, ShouldBeGreaterThan, 1)
				So(last, ShouldBeLessThan, stats.DefaultMaxIterations)
				So(lastErr, ShouldBeNil)
			})
		})

		Convey("When an invalid option value is supplied", func() {
			c := stats.NewCalculator(stats.WithMaxIterations(-5), stats.WithObserver(nil))

			Convey("Then the defaults are kept", func() {
				So(c.MaxIterations(), ShouldEqual, stats.DefaultMaxIterations)
				_, err := c.PValue(3, 1)
				So(err, ShouldBeNil)
			})
		})
	})
}
