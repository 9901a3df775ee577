package worker

import "errors"

// ErrStopTimeout is returned when workers do not stop in time.
var ErrStopTimeout = errors.New("worker stop timeout")
