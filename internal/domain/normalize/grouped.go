package normalize

import "github.com/okian/courtside/internal/domain/model"

// GroupedZScore standardizes values separately within each group key and
// recombines the results in input order. When confidence is non-nil each
// defined score is multiplied by min(confidence, cap)/cap, with undefined or
// negative confidence counting as zero.
func (n *Normalizer) GroupedZScore(values []model.Value, groups []string, confidence []model.Value) []model.Value {
	out := make([]model.Value, len(values))

	partitions := make(map[string][]int)
	order := make([]string, 0)
	for i := range values {
		key := ""
		if i < len(groups) {
			key = groups[i]
		}
		if _, ok := partitions[key]; !ok {
			order = append(order, key)
		}
		partitions[key] = append(partitions[key], i)
	}

	for _, key := range order {
		members := partitions[key]
		subset := make([]model.Value, len(members))
		for j, i := range members {
			subset[j] = values[i]
		}
		for j, z := range n.ZScore(subset) {
			out[members[j]] = z
		}
	}

	if confidence == nil {
		return out
	}
	return n.Shrink(out, confidence)
}

// Shrink scales each defined score by its confidence weight.
func (n *Normalizer) Shrink(scores []model.Value, confidence []model.Value) []model.Value {
	out := make([]model.Value, len(scores))
	for i, z := range scores {
		if !z.Valid {
			continue
		}
		var c model.Value
		if i < len(confidence) {
			c = confidence[i]
		}
		w := n.weight(c)
		if w == 0 {
			out[i] = model.Some(0)
			continue
		}
		out[i] = model.Some(z.Float * w)
	}
	return out
}

func (n *Normalizer) weight(c model.Value) float64 {
	if !c.Valid || c.Float <= 0 {
		return 0
	}
	return min(c.Float, n.cap) / n.cap
}

// GroupedZScore applies the default Normalizer.
func GroupedZScore(values []model.Value, groups []string, confidence []model.Value) []model.Value {
	return defaultNormalizer.GroupedZScore(values, groups, confidence)
}
