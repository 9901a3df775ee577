package repository

// Option applies a configuration option to the TreapStore.
type Option func(*TreapStore)

// WithKind labels the board in metrics.
func WithKind(kind string) Option {
	return func(s *TreapStore) {
		if kind != "" {
			s.kind = kind
		}
	}
}

// WithSeed fixes the priority generator so tree shape is reproducible.
func WithSeed(seed uint64) Option {
	return func(s *TreapStore) {
		s.seed = seed
	}
}
