package stats

// Option applies a configuration option to the Calculator.
type Option func(*Calculator)

// WithMaxIterations caps the number of incomplete gamma series terms.
func WithMaxIterations(n int) Option {
	return func(c *Calculator) {
		if n > 0 {
			c.maxIterations = n
		}
	}
}

// WithObserver sets a hook that receives the number of series terms
// evaluated by every incomplete gamma computation.
func WithObserver(fn func(iterations int, err error)) Option {
	return func(c *Calculator) {
		if fn != nil {
			c.observe = fn
		}
	}
}
