// Package service wires the rating core to its sources, boards, queue and
// archive, and implements the dependencies required by the HTTP API.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okian/courtside/internal/adapters/archive"
	jobqueue "github.com/okian/courtside/internal/adapters/mq/queue"
	workerpool "github.com/okian/courtside/internal/adapters/mq/worker"
	"github.com/okian/courtside/internal/adapters/repository"
	"github.com/okian/courtside/internal/adapters/source"
	"github.com/okian/courtside/internal/domain/dedupe"
	"github.com/okian/courtside/internal/domain/elo"
	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/internal/domain/rating"
	"github.com/okian/courtside/internal/domain/types"
	"github.com/okian/courtside/pkg/logger"
	"github.com/okian/courtside/pkg/metrics"
)

// RunArchive persists completed refreshes.
type RunArchive interface {
	Save(ctx context.Context, r archive.Run) error
}

// Report describes one completed refresh.
type Report struct {
	Run     archive.Run
	Players types.PlayersPayload
	Teams   types.TeamsPayload
	Audit   elo.Audit
}

// published is the read side swapped in after every refresh.
type published struct {
	report  Report
	players map[string]types.Player
	teams   map[string]types.Team
}

// Service implements the API dependencies for the ratings system.
type Service struct {
	mu sync.RWMutex

	// Core components
	source  source.StatsSource
	archive RunArchive
	players repository.Store
	teams   repository.Store
	deduper dedupe.Deduper
	queue   *jobqueue.InMemoryQueue
	pool    *workerpool.Pool
	calc    *rating.Calculator
	engine  *elo.Engine

	// Configuration
	workerCount  int
	queueSize    int
	dedupeSize   int
	season       string
	seasonType   string
	minMinutes   float64
	minGames     float64
	fallbackRole rating.Role
	allowedTeams map[int64]struct{}

	// State
	started bool
	current atomic.Pointer[published]
	refresh sync.Mutex // one refresh at a time

	logger logger.Logger
}

// New constructs a Service reading from src.
func New(src source.StatsSource, opts ...Option) *Service {
	s := &Service{
		source:       src,
		players:      repository.NewTreapStore(repository.WithKind(string(types.KindPlayers))),
		teams:        repository.NewTreapStore(repository.WithKind(string(types.KindTeams))),
		calc:         rating.NewCalculator(),
		engine:       elo.NewEngine(),
		workerCount:  runtime.NumCPU(),
		queueSize:    64,
		dedupeSize:   4096,
		seasonType:   "Regular Season",
		minMinutes:   12,
		minGames:     5,
		fallbackRole: rating.Center,
		logger:       logger.Get().Named("service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start creates the job queue and worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting ratings service...")

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = jobqueue.NewInMemoryQueue(jobqueue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.workerCount, s.queue, s, workerpool.WithLogger(s.logger.Named("worker")))
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "ratings service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.String("season", s.season),
		logger.String("seasonType", s.seasonType),
	)
	return nil
}

// Stop closes the queue and waits for in-flight refreshes.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping ratings service...")

	var err error
	if s.pool != nil {
		err = s.pool.Shutdown(ctx)
	}
	s.started = false
	s.logger.Info(ctx, "ratings service stopped")
	return err
}

// Enqueue submits a refresh job. Missing ids and seasons are filled in. A
// job whose id was already accepted is reported as a duplicate and not
// queued again.
func (s *Service) Enqueue(ctx context.Context, job model.Job) (model.Job, bool, error) {
	s.mu.RLock()
	started, deduper, queue := s.started, s.deduper, s.queue
	s.mu.RUnlock()
	if !started {
		return job, false, ErrNotStarted
	}

	job = s.complete(job)
	if deduper.SeenAndRecord(ctx, job.ID) {
		metrics.RecordJobDuplicate()
		s.logger.Debug(ctx, "duplicate refresh job", logger.String("job_id", job.ID))
		return job, true, nil
	}

	if err := queue.Enqueue(ctx, job); err != nil {
		deduper.Unrecord(ctx, job.ID)
		return job, false, fmt.Errorf("enqueue job %s: %w", job.ID, err)
	}
	s.logger.Info(ctx, "refresh job queued",
		logger.String("job_id", job.ID),
		logger.String("season", job.Season),
		logger.String("reason", job.Reason),
	)
	return job, false, nil
}

// Process implements the worker runner.
func (s *Service) Process(ctx context.Context, job model.Job) error {
	_, err := s.Refresh(ctx, job)
	return err
}

// Refresh recomputes player ratings, team ratings and the Elo replay for
// the job's season, publishes them, and archives the run.
func (s *Service) Refresh(ctx context.Context, job model.Job) (Report, error) {
	s.refresh.Lock()
	defer s.refresh.Unlock()

	job = s.complete(job)
	started := time.Now()
	log := s.logger.Named("refresh")

	var (
		playerRes rating.Result
		teamRes   rating.Result
		replay    elo.Result
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.source.PlayerRows(gctx, job.Season, job.SeasonType)
		if err != nil {
			return fmt.Errorf("load players: %w", err)
		}
		qualified := rating.Qualify(rows, s.minMinutes, s.minGames)
		playerRes = s.calc.Compute(rating.PlayerProfile(), rating.PlayerSubjects(qualified, s.fallbackRole))
		return nil
	})
	g.Go(func() error {
		rows, err := s.source.TeamRows(gctx, job.Season, job.SeasonType)
		if err != nil {
			return fmt.Errorf("load teams: %w", err)
		}
		teamRes = s.calc.Compute(rating.TeamProfile(), rating.TeamSubjects(rating.FilterTeams(rows, s.allowedTeams)))
		return nil
	})
	g.Go(func() error {
		rows, err := s.source.GameRows(gctx, job.Season, job.SeasonType)
		if errors.Is(err, source.ErrTableNotFound) {
			log.Warn(gctx, "no game log, teams stay at base rating", logger.String("season", job.Season))
			rows = nil
		} else if err != nil {
			return fmt.Errorf("load games: %w", err)
		}
		replay = s.engine.Replay(rows)
		return nil
	})
	if err := g.Wait(); err != nil {
		metrics.RecordRefresh("failed", time.Since(started).Seconds())
		metrics.RecordErrorByComponent("service", "refresh")
		return Report{}, err
	}

	finished := time.Now().UTC()
	pub := s.assemble(job, playerRes, teamRes, replay, finished)
	pub.report.Run.StartedAt = started.UTC()

	if err := s.publish(ctx, pub); err != nil {
		metrics.RecordRefresh("failed", time.Since(started).Seconds())
		return Report{}, err
	}

	a := replay.Audit
	metrics.UpdateSubjectsRated(string(types.KindPlayers), len(pub.players))
	metrics.UpdateSubjectsRated(string(types.KindTeams), len(pub.teams))
	metrics.UpdateRolesDefaulted(playerRes.Defaulted)
	metrics.UpdateEloAudit(a.Processed, a.SkippedIncomplete, a.SkippedNoScore, a.SkippedBadDate, a.HomeAwayInferred)
	metrics.RecordRefresh("ok", time.Since(started).Seconds())

	log.Info(ctx, "ratings refreshed",
		logger.String("job_id", job.ID),
		logger.String("season", job.Season),
		logger.String("seasonType", job.SeasonType),
		logger.Int("players", len(pub.report.Players.Players)),
		logger.Int("teams", len(pub.report.Teams.Teams)),
		logger.Int("roles_defaulted", playerRes.Defaulted),
		logger.Int("game_rows", a.Rows),
		logger.Int("games_processed", a.Processed),
		logger.Int("games_skipped", a.Skipped()),
		logger.Duration("took", time.Since(started)),
	)
	if a.HomeAwayInferred > 0 {
		log.Warn(ctx, "home/away resolved by team id fallback", logger.Int("games", a.HomeAwayInferred))
	}
	if a.Skipped() > 0 {
		log.Warn(ctx, "games skipped during replay",
			logger.Int("incomplete", a.SkippedIncomplete),
			logger.Int("no_score", a.SkippedNoScore),
			logger.Int("bad_date", a.SkippedBadDate),
		)
	}

	report := pub.report
	s.store(ctx, &report)
	return report, nil
}

// assemble merges the three pipelines into published profiles.
func (s *Service) assemble(job model.Job, playerRes, teamRes rating.Result, replay elo.Result, at time.Time) *published {
	pub := &published{
		players: make(map[string]types.Player, len(playerRes.Subjects)),
		teams:   make(map[string]types.Team, len(teamRes.Subjects)),
	}
	updated := at.Format(time.RFC3339)

	players := make([]types.Player, 0, len(playerRes.Subjects))
	for _, sr := range playerRes.Subjects {
		p := types.NewPlayer(sr)
		players = append(players, p)
		if id := p.ID(); id != "" {
			pub.players[id] = p
		}
	}
	sort.SliceStable(players, func(i, j int) bool {
		a, b := players[i].Ratings.Overall, players[j].Ratings.Overall
		if (a == nil) != (b == nil) {
			return a != nil
		}
		if a != nil && *a != *b {
			return *a > *b
		}
		return players[i].Identity.Name < players[j].Identity.Name
	})

	teams := make([]types.Team, 0, len(teamRes.Subjects))
	for _, sr := range teamRes.Subjects {
		t := types.NewTeam(sr, replay)
		teams = append(teams, t)
		if id := t.ID(); id != "" {
			pub.teams[id] = t
		}
	}
	sort.SliceStable(teams, func(i, j int) bool {
		if teams[i].Elo.Current != teams[j].Elo.Current {
			return teams[i].Elo.Current > teams[j].Elo.Current
		}
		return teams[i].Name < teams[j].Name
	})

	a := replay.Audit
	pub.report = Report{
		Run: archive.Run{
			ID:               job.ID,
			Season:           job.Season,
			SeasonType:       job.SeasonType,
			Reason:           job.Reason,
			FinishedAt:       at,
			Players:          len(players),
			Teams:            len(teams),
			GamesProcessed:   a.Processed,
			GamesSkipped:     a.Skipped(),
			HomeAwayInferred: a.HomeAwayInferred,
			RolesDefaulted:   playerRes.Defaulted,
		},
		Players: types.PlayersPayload{Season: job.Season, SeasonType: job.SeasonType, LastUpdated: updated, Players: players},
		Teams:   types.TeamsPayload{Season: job.Season, SeasonType: job.SeasonType, LastUpdated: updated, Teams: teams},
		Audit:   a,
	}
	return pub
}

// publish swaps the boards and the profile snapshot. Players without an
// overall rating stay off the board.
func (s *Service) publish(ctx context.Context, pub *published) error {
	playerEntries := make([]repository.Entry, 0, len(pub.players))
	for id, p := range pub.players {
		if p.Ratings.Overall == nil {
			continue
		}
		playerEntries = append(playerEntries, repository.Entry{ID: id, Name: p.Identity.Name, Score: p.OverallScore()})
	}
	teamEntries := make([]repository.Entry, 0, len(pub.teams))
	for id, t := range pub.teams {
		teamEntries = append(teamEntries, repository.Entry{ID: id, Name: t.Name, Score: t.Elo.Current})
	}

	if err := s.players.Replace(ctx, playerEntries); err != nil {
		return fmt.Errorf("publish players: %w", err)
	}
	if err := s.teams.Replace(ctx, teamEntries); err != nil {
		return fmt.Errorf("publish teams: %w", err)
	}
	s.current.Store(pub)
	return nil
}

// store archives a run. Archive failures are logged, not returned: the
// ratings are already published.
func (s *Service) store(ctx context.Context, r *Report) {
	if s.archive == nil {
		return
	}
	var err error
	if r.Run.PlayersPayload, err = json.Marshal(r.Players); err != nil {
		s.logger.Error(ctx, "failed to encode players payload", logger.Error(err))
		return
	}
	if r.Run.TeamsPayload, err = json.Marshal(r.Teams); err != nil {
		s.logger.Error(ctx, "failed to encode teams payload", logger.Error(err))
		return
	}
	if err := s.archive.Save(ctx, r.Run); err != nil {
		metrics.RecordErrorByComponent("service", "archive")
		s.logger.Error(ctx, "failed to archive run", logger.String("run_id", r.Run.ID), logger.Error(err))
	}
}

func (s *Service) complete(job model.Job) model.Job {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Season == "" {
		job.Season = s.season
	}
	if job.SeasonType == "" {
		job.SeasonType = s.seasonType
	}
	if job.Requested.IsZero() {
		job.Requested = time.Now()
	}
	return job
}

// TopPlayers returns the top n players by overall rating.
func (s *Service) TopPlayers(ctx context.Context, n int) ([]types.Entry, error) {
	return top(ctx, s.players, n)
}

// TopTeams returns the top n teams by Elo.
func (s *Service) TopTeams(ctx context.Context, n int) ([]types.Entry, error) {
	return top(ctx, s.teams, n)
}

// Player returns a player's profile and board rank. Rank is 0 for players
// without an overall rating.
func (s *Service) Player(ctx context.Context, id string) (types.Player, int, error) {
	pub := s.current.Load()
	if pub == nil {
		return types.Player{}, 0, fmt.Errorf("player %s: %w", id, ErrNotFound)
	}
	p, ok := pub.players[id]
	if !ok {
		return types.Player{}, 0, fmt.Errorf("player %s: %w", id, ErrNotFound)
	}
	e, err := s.players.Rank(ctx, id)
	if err != nil {
		return p, 0, nil
	}
	return p, e.Rank, nil
}

// Team returns a team's profile and Elo rank.
func (s *Service) Team(ctx context.Context, id string) (types.Team, int, error) {
	pub := s.current.Load()
	if pub == nil {
		return types.Team{}, 0, fmt.Errorf("team %s: %w", id, ErrNotFound)
	}
	t, ok := pub.teams[id]
	if !ok {
		return types.Team{}, 0, fmt.Errorf("team %s: %w", id, ErrNotFound)
	}
	e, err := s.teams.Rank(ctx, id)
	if err != nil {
		return t, 0, nil
	}
	return t, e.Rank, nil
}

// Latest returns the most recent published report.
func (s *Service) Latest() (Report, bool) {
	pub := s.current.Load()
	if pub == nil {
		return Report{}, false
	}
	return pub.report, true
}

// Stats returns service statistics for monitoring.
func (s *Service) Stats(ctx context.Context) map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
		"season":      s.season,
		"seasonType":  s.seasonType,
		"players":     s.players.Count(ctx),
		"teams":       s.teams.Count(ctx),
	}
	if s.started {
		queueLen := s.queue.Len(ctx)
		stats["queueLength"] = queueLen
		stats["dedupeEntries"] = s.deduper.Size()
		metrics.UpdateQueueSize(queueLen)
	}
	if pub := s.current.Load(); pub != nil {
		r := pub.report
		stats["lastRun"] = map[string]any{
			"id":               r.Run.ID,
			"season":           r.Run.Season,
			"seasonType":       r.Run.SeasonType,
			"reason":           r.Run.Reason,
			"finishedAt":       r.Run.FinishedAt.Format(time.RFC3339),
			"gameRows":         r.Audit.Rows,
			"gamesProcessed":   r.Audit.Processed,
			"gamesSkipped":     r.Audit.Skipped(),
			"homeAwayInferred": r.Audit.HomeAwayInferred,
			"rolesDefaulted":   r.Run.RolesDefaulted,
		}
	}
	return stats
}

func top(ctx context.Context, store repository.Store, n int) ([]types.Entry, error) {
	entries, err := store.TopN(ctx, n)
	if err != nil {
		return nil, err
	}
	out := make([]types.Entry, len(entries))
	for i, e := range entries {
		out[i] = types.Entry{Rank: e.Rank, SubjectID: e.ID, Name: e.Name, Score: e.Score}
	}
	return out, nil
}
