// Package rating composes normalized metrics into pillar scores and an
// overall score per subject, and maps both onto the 1-99 scale.
package rating

import (
	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/internal/domain/normalize"
)

// Subject is one rated entity.
type Subject struct {
	ID            string
	Role          Role
	RoleDefaulted bool
	// Confidence drives shrinkage; undefined counts as zero.
	Confidence model.Value
	Row        model.Row
}

// Score pairs a continuous composite score with its 1-99 rating.
type Score struct {
	Z      model.Value
	Rating model.Rating
}

// SubjectRating is the calculator output for one subject.
type SubjectRating struct {
	Subject Subject
	Pillars map[PillarKey]Score
	Overall Score
}

// Result is the output of one calculator run, aligned to input order.
type Result struct {
	Profile   string
	Keys      []PillarKey
	Subjects  []SubjectRating
	Defaulted int
}

// Calculator evaluates rating profiles.
type Calculator struct {
	norm *normalize.Normalizer
}

// NewCalculator creates a Calculator.
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{norm: normalize.New()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compute rates every subject under profile p. Missing terms contribute
// nothing to their pillar; a pillar with no defined term is undefined and
// so is its rating. The overall score is the role-weighted sum of the
// defined pillar scores and is undefined when the profile has no weights
// for the subject's role or every pillar is undefined.
func (c *Calculator) Compute(p Profile, subjects []Subject) Result {
	res := Result{
		Profile:  p.Name,
		Keys:     p.Keys(),
		Subjects: make([]SubjectRating, len(subjects)),
	}

	groups := make([]string, len(subjects))
	confidence := make([]model.Value, len(subjects))
	for i, s := range subjects {
		groups[i] = s.Role.String()
		confidence[i] = s.Confidence
		res.Subjects[i] = SubjectRating{Subject: s, Pillars: make(map[PillarKey]Score, len(p.Pillars))}
		if s.RoleDefaulted {
			res.Defaulted++
		}
	}

	pillarZ := make(map[PillarKey][]model.Value, len(p.Pillars))
	for _, pl := range p.Pillars {
		z := c.pillar(pl, subjects, groups, confidence)
		pillarZ[pl.Key] = z
		ratings := normalize.PercentileRating(z)
		for i := range subjects {
			res.Subjects[i].Pillars[pl.Key] = Score{Z: z[i], Rating: ratings[i]}
		}
	}

	if len(p.Overall) == 0 {
		return res
	}

	overall := make([]model.Value, len(subjects))
	for i, s := range subjects {
		weights, ok := p.Overall[s.Role]
		if !ok {
			continue
		}
		var sum float64
		var defined bool
		for _, key := range res.Keys {
			w, ok := weights[key]
			z := pillarZ[key][i]
			if !ok || !z.Valid {
				continue
			}
			sum += w * z.Float
			defined = true
		}
		if defined {
			overall[i] = model.Some(sum)
		}
	}
	ratings := normalize.PercentileRating(overall)
	for i := range subjects {
		res.Subjects[i].Overall = Score{Z: overall[i], Rating: ratings[i]}
	}
	return res
}

func (c *Calculator) pillar(pl Pillar, subjects []Subject, groups []string, confidence []model.Value) []model.Value {
	termZ := make([][]model.Value, len(pl.Terms))
	for t, term := range pl.Terms {
		raw := make([]model.Value, len(subjects))
		for i, s := range subjects {
			raw[i] = term.Source(s.Row)
		}
		if term.Scope == Group {
			termZ[t] = c.norm.GroupedZScore(raw, groups, confidence)
		} else {
			termZ[t] = c.norm.ZScore(raw)
		}
	}

	out := make([]model.Value, len(subjects))
	for i, s := range subjects {
		var sum float64
		var n int
		for t, term := range pl.Terms {
			z := termZ[t][i]
			if !z.Valid || !term.appliesTo(s.Role) {
				continue
			}
			v := z.Float
			if term.Negate {
				v = -v
			}
			if pl.Combine == Mean {
				sum += v
			} else {
				sum += term.weight(s.Role) * v
			}
			n++
		}
		if n == 0 {
			continue
		}
		if pl.Combine == Mean {
			sum /= float64(n)
		}
		out[i] = model.Some(sum)
	}

	if pl.Shrink {
		return c.norm.Shrink(out, confidence)
	}
	return out
}
