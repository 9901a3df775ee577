package archive

import "github.com/okian/courtside/pkg/logger"

// Option configures an Archive.
type Option func(*Archive)

// WithLogger sets a custom logger for the archive.
func WithLogger(l logger.Logger) Option {
	return func(a *Archive) {
		if l != nil {
			a.logger = l
		}
	}
}
