package rating

import "errors"

var (
	// ErrUnknownRole is returned when a position tag maps to no role.
	ErrUnknownRole = errors.New("unknown role")
	// ErrInvalidProfile is returned by Profile.Validate.
	ErrInvalidProfile = errors.New("invalid rating profile")
)
