package normalize

// Option applies a configuration option to the Normalizer.
type Option func(*Normalizer)

// WithWinsorBounds sets the quantile range used for clipping outliers.
// Invalid ranges are ignored.
func WithWinsorBounds(low, high float64) Option {
	return func(n *Normalizer) {
		if low >= 0 && high <= 1 && low < high {
			n.low = low
			n.high = high
		}
	}
}

// WithClip sets the absolute bound applied to standardized scores.
func WithClip(clip float64) Option {
	return func(n *Normalizer) {
		if clip > 0 {
			n.clip = clip
		}
	}
}

// WithConfidenceCap sets the confidence level at which shrinkage stops.
func WithConfidenceCap(c float64) Option {
	return func(n *Normalizer) {
		if c > 0 {
			n.cap = c
		}
	}
}
