package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrRateLimited  = errors.New("refresh rate limit exceeded")
	ErrBackpressure = errors.New("refresh queue full")
)
