package rating

import (
	"fmt"

	"github.com/okian/courtside/internal/domain/model"
)

// PillarKey names one composite skill dimension.
type PillarKey string

// Metric extracts one raw input from a subject row.
type Metric func(model.Row) model.Value

// Field reads a numeric column by name.
func Field(name string) Metric {
	return func(r model.Row) model.Value { return r.Float(name) }
}

// Scope selects the population a term is standardized against.
type Scope int

const (
	// League standardizes across every subject.
	League Scope = iota
	// Group standardizes within the subject's role and applies confidence shrinkage.
	Group
)

// Combine selects how a pillar folds its term scores.
type Combine int

const (
	// WeightedSum adds weight*z for every defined term.
	WeightedSum Combine = iota
	// Mean averages the defined term scores, ignoring weights.
	Mean
)

// Term is one normalized input of a pillar.
type Term struct {
	Name   string
	Source Metric
	Weight float64
	// RoleWeights overrides Weight for specific roles.
	RoleWeights map[Role]float64
	// Only restricts the term to these roles when non-empty.
	Only   []Role
	Scope  Scope
	Negate bool
}

func (t Term) weight(r Role) float64 {
	if w, ok := t.RoleWeights[r]; ok {
		return w
	}
	return t.Weight
}

func (t Term) appliesTo(r Role) bool {
	if len(t.Only) == 0 {
		return true
	}
	for _, o := range t.Only {
		if o == r {
			return true
		}
	}
	return false
}

// Pillar is a linear combination of normalized terms.
type Pillar struct {
	Key     PillarKey
	Terms   []Term
	Combine Combine
	// Shrink scales the combined score by the subject's confidence weight.
	Shrink bool
}

// Profile is the full set of pillars and the per-role overall weights for
// one subject kind. A profile without overall weights rates pillars only.
type Profile struct {
	Name    string
	Pillars []Pillar
	Overall map[Role]map[PillarKey]float64
}

// Keys returns the pillar keys in declaration order.
func (p Profile) Keys() []PillarKey {
	keys := make([]PillarKey, len(p.Pillars))
	for i, pl := range p.Pillars {
		keys[i] = pl.Key
	}
	return keys
}

// Validate reports structural problems: empty pillars, missing metric
// sources, and overall weights that reference unknown pillars.
func (p Profile) Validate() error {
	if len(p.Pillars) == 0 {
		return fmt.Errorf("%w: %s has no pillars", ErrInvalidProfile, p.Name)
	}
	known := make(map[PillarKey]struct{}, len(p.Pillars))
	for _, pl := range p.Pillars {
		if len(pl.Terms) == 0 {
			return fmt.Errorf("%w: pillar %s has no terms", ErrInvalidProfile, pl.Key)
		}
		for _, t := range pl.Terms {
			if t.Source == nil {
				return fmt.Errorf("%w: term %s in pillar %s has no source", ErrInvalidProfile, t.Name, pl.Key)
			}
		}
		known[pl.Key] = struct{}{}
	}
	for role, weights := range p.Overall {
		for k := range weights {
			if _, ok := known[k]; !ok {
				return fmt.Errorf("%w: overall weights for %s reference %s", ErrInvalidProfile, role, k)
			}
		}
	}
	return nil
}
