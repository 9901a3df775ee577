package service

import (
	"github.com/okian/courtside/internal/domain/elo"
	"github.com/okian/courtside/internal/domain/rating"
	"github.com/okian/courtside/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of refresh workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of pending refresh jobs.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many job ids are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithArchive records every refresh in a.
func WithArchive(a RunArchive) Option {
	return func(s *Service) {
		s.archive = a
	}
}

// WithSeason sets the season refreshed when a job does not name one.
func WithSeason(season, seasonType string) Option {
	return func(s *Service) {
		if season != "" {
			s.season = season
		}
		if seasonType != "" {
			s.seasonType = seasonType
		}
	}
}

// WithQualification sets the minimum minutes per game and games played for
// a player to be rated.
func WithQualification(minMinutes, minGames float64) Option {
	return func(s *Service) {
		s.minMinutes = minMinutes
		s.minGames = minGames
	}
}

// WithFallbackRole sets the role used for unparseable positions.
func WithFallbackRole(r rating.Role) Option {
	return func(s *Service) {
		if r != rating.RoleUnknown {
			s.fallbackRole = r
		}
	}
}

// WithAllowedTeams restricts team ratings and the replay to ids.
func WithAllowedTeams(ids []int64) Option {
	return func(s *Service) {
		if len(ids) == 0 {
			s.allowedTeams = nil
			return
		}
		s.allowedTeams = make(map[int64]struct{}, len(ids))
		for _, id := range ids {
			s.allowedTeams[id] = struct{}{}
		}
		s.engine = elo.NewEngine(elo.WithParams(s.engine.Params()), elo.WithAllowedTeams(ids))
	}
}

// WithCalculator replaces the rating calculator.
func WithCalculator(c *rating.Calculator) Option {
	return func(s *Service) {
		if c != nil {
			s.calc = c
		}
	}
}

// WithEngine replaces the Elo replay engine. Apply before WithAllowedTeams
// to keep both.
func WithEngine(e *elo.Engine) Option {
	return func(s *Service) {
		if e != nil {
			s.engine = e
		}
	}
}
