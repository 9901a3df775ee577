package repository

import "errors"

// Sentinel kinds for board errors.
var (
	ErrNotFound     = errors.New("subject not found")
	ErrInvalidLimit = errors.New("invalid leaderboard limit")
)
