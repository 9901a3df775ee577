package rating

import "github.com/okian/courtside/internal/domain/normalize"

// Option applies a configuration option to the Calculator.
type Option func(*Calculator)

// WithNormalizer sets the normalizer used for every term.
func WithNormalizer(n *normalize.Normalizer) Option {
	return func(c *Calculator) {
		if n != nil {
			c.norm = n
		}
	}
}
