package api

// Option configures a Server.
type Option func(*Server)

// WithMaxLimit caps ?limit on board endpoints.
func WithMaxLimit(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxLimit = n
		}
	}
}

// WithRefreshRate limits POST /refresh to perMinute accepted requests.
// Zero disables the limit.
func WithRefreshRate(perMinute float64) Option {
	return func(s *Server) {
		if perMinute >= 0 {
			s.refreshRate = perMinute
		}
	}
}
