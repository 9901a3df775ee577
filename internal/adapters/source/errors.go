package source

import "errors"

var (
	// ErrTableNotFound is returned when a season table file does not exist.
	ErrTableNotFound = errors.New("table not found")
	// ErrDecode is returned when a table cannot be parsed.
	ErrDecode = errors.New("decode table")
	// ErrInvalidSeason is returned for a malformed season or season type.
	ErrInvalidSeason = errors.New("invalid season")
)
