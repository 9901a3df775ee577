package service

import (
	"errors"

	"github.com/okian/courtside/internal/adapters/repository"
)

var (
	// ErrNotStarted is returned when jobs are submitted before Start.
	ErrNotStarted = errors.New("service not started")
	// ErrNotFound is returned for unknown players and teams.
	ErrNotFound = repository.ErrNotFound
)
