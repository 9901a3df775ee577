package rating

import (
	"fmt"
	"strings"
)

// Role is the discriminant that selects group partitions and weight vectors.
type Role int

const (
	RoleUnknown Role = iota
	Guard
	Forward
	Center
	Team
)

// String implements fmt.Stringer.
func (r Role) String() string {
	switch r {
	case Guard:
		return "G"
	case Forward:
		return "F"
	case Center:
		return "C"
	case Team:
		return "T"
	default:
		return "?"
	}
}

// ParseRole maps a position string to a Role by its first letter, so
// "G-F" is a Guard and "C-F" a Center.
func ParseRole(position string) (Role, error) {
	p := strings.ToUpper(strings.TrimSpace(position))
	if p == "" {
		return RoleUnknown, fmt.Errorf("%w: empty position", ErrUnknownRole)
	}
	switch p[0] {
	case 'G':
		return Guard, nil
	case 'F':
		return Forward, nil
	case 'C':
		return Center, nil
	}
	return RoleUnknown, fmt.Errorf("%w: %q", ErrUnknownRole, position)
}
