package elo

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithParams replaces every replay constant.
func WithParams(p Params) Option {
	return func(e *Engine) { e.params = p }
}

// WithBase sets the rating assigned to unseen teams.
func WithBase(base float64) Option {
	return func(e *Engine) { e.params.Base = base }
}

// WithK sets the update volatility.
func WithK(k float64) Option {
	return func(e *Engine) {
		if k > 0 {
			e.params.K = k
		}
	}
}

// WithHomeAdvantage sets the rating bonus for the home side.
func WithHomeAdvantage(h float64) Option {
	return func(e *Engine) { e.params.HomeAdvantage = h }
}

// WithAllowedTeams restricts replay to the given team ids.
func WithAllowedTeams(ids []int64) Option {
	return func(e *Engine) {
		if len(ids) == 0 {
			e.allowed = nil
			return
		}
		e.allowed = make(map[int64]struct{}, len(ids))
		for _, id := range ids {
			e.allowed[id] = struct{}{}
		}
	}
}
