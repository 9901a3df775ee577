// Package normalize implements the robust statistical transforms used by
// every rating: winsorized z-scores, percentile-to-scale mapping, and
// group-local standardization with confidence shrinkage.
//
// All functions are pure. Undefined inputs stay undefined; degenerate
// distributions yield neutral scores instead of errors.
package normalize

import (
	"math"
	"sort"

	"github.com/okian/courtside/internal/domain/model"
)

// Default normalization constants.
const (
	DefaultWinsorLow     = 0.02
	DefaultWinsorHigh    = 0.98
	DefaultClip          = 3.0
	DefaultConfidenceCap = 24.0

	ratingMin   = 1
	ratingMax   = 99
	ratingSpan  = 98.0
	hazenOffset = 0.5
)

// Normalizer holds the tunable bounds of the transforms.
type Normalizer struct {
	low  float64
	high float64
	clip float64
	cap  float64
}

// New creates a Normalizer with defaults overridden by opts.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		low:  DefaultWinsorLow,
		high: DefaultWinsorHigh,
		clip: DefaultClip,
		cap:  DefaultConfidenceCap,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// ConfidenceCap returns the confidence level at which shrinkage stops.
func (n *Normalizer) ConfidenceCap() float64 { return n.cap }

// Winsorize clips every defined value to the [low, high] quantile range of
// the defined values.
func (n *Normalizer) Winsorize(values []model.Value) []model.Value {
	return Winsorize(values, n.low, n.high)
}

// ZScore winsorizes, standardizes with the population standard deviation,
// and clips to [-clip, clip]. When the defined values have no spread every
// defined subject scores 0.
func (n *Normalizer) ZScore(values []model.Value) []model.Value {
	x := n.Winsorize(values)
	out := make([]model.Value, len(x))
	defined := model.Defined(x)
	if len(defined) == 0 {
		return out
	}

	scale := magnitude(defined)
	mu, sd := meanStd(defined, scale)
	if sd == 0 || math.IsNaN(sd) || constant(defined) {
		for i, v := range x {
			if v.Valid {
				out[i] = model.Some(0)
			}
		}
		return out
	}

	for i, v := range x {
		if !v.Valid {
			continue
		}
		out[i] = model.Some(clamp((v.Float/scale-mu)/sd, -n.clip, n.clip))
	}
	return out
}

// Winsorize clips each defined value to the [lo, hi] quantiles of the
// defined values. Quantiles interpolate linearly between order statistics.
func Winsorize(values []model.Value, lo, hi float64) []model.Value {
	out := make([]model.Value, len(values))
	copy(out, values)

	sorted := model.Defined(values)
	if len(sorted) == 0 {
		return out
	}
	sort.Float64s(sorted)
	qlo, qhi := Quantile(sorted, lo), Quantile(sorted, hi)

	for i, v := range out {
		if v.Valid {
			out[i] = model.Some(clamp(v.Float, qlo, qhi))
		}
	}
	return out
}

// Quantile returns the q-th quantile of an ascending slice using linear
// interpolation between the closest ranks. q is clamped to [0, 1].
func Quantile(sorted []float64, q float64) float64 {
	switch len(sorted) {
	case 0:
		return math.NaN()
	case 1:
		return sorted[0]
	}
	q = clamp(q, 0, 1)
	pos := q * float64(len(sorted)-1)
	below := math.Floor(pos)
	i := int(below)
	if i >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - below
	a, b := sorted[i], sorted[i+1]
	if d := b - a; !math.IsInf(d, 0) {
		return a + d*frac
	}
	return a*(1-frac) + b*frac
}

// RobustZScore applies the default Normalizer.
func RobustZScore(values []model.Value) []model.Value {
	return defaultNormalizer.ZScore(values)
}

// PercentileRating ranks the defined values (ties share their average rank),
// converts rank r of n to the percentile (r-0.5)/n, and maps percentile p to
// round(1+98p) clipped to [1, 99]. Undefined inputs take no rank and receive
// an undefined rating.
func PercentileRating(values []model.Value) []model.Rating {
	out := make([]model.Rating, len(values))

	idx := make([]int, 0, len(values))
	for i, v := range values {
		if v.Valid {
			idx = append(idx, i)
		}
	}
	n := len(idx)
	if n == 0 {
		return out
	}

	sort.SliceStable(idx, func(a, b int) bool {
		return values[idx[a]].Float < values[idx[b]].Float
	})

	for start := 0; start < n; {
		end := start
		for end+1 < n && values[idx[end+1]].Float == values[idx[start]].Float {
			end++
		}
		// 1-based ranks start+1 .. end+1 share their mean.
		rank := float64(start+end)/2 + 1
		pct := (rank - hazenOffset) / float64(n)
		r := int(math.RoundToEven(1 + ratingSpan*pct))
		r = min(max(r, ratingMin), ratingMax)
		for k := start; k <= end; k++ {
			out[idx[k]] = model.Rating{Int: r, Valid: true}
		}
		start = end + 1
	}
	return out
}

var defaultNormalizer = New()

// largeMagnitude is where summing squares could leave float64 range.
const largeMagnitude = 1e150

// magnitude returns the divisor meanStd works in: 1 for ordinary data, the
// largest absolute value when values are large enough to overflow a sum.
func magnitude(xs []float64) float64 {
	var m float64
	for _, x := range xs {
		m = math.Max(m, math.Abs(x))
	}
	if m < largeMagnitude {
		return 1
	}
	return m
}

// meanStd returns the population mean and standard deviation of xs/scale.
func meanStd(xs []float64, scale float64) (float64, float64) {
	var sum float64
	for _, x := range xs {
		sum += x / scale
	}
	mu := sum / float64(len(xs))
	var ss float64
	for _, x := range xs {
		d := x/scale - mu
		ss += d * d
	}
	return mu, math.Sqrt(ss / float64(len(xs)))
}

func constant(xs []float64) bool {
	for _, x := range xs[1:] {
		if x != xs[0] {
			return false
		}
	}
	return true
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
