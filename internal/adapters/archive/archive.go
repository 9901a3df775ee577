// Package archive keeps a history of refresh runs and their published
// payloads in SQLite.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/courtside/pkg/logger"
	"github.com/okian/courtside/pkg/metrics"

	_ "modernc.org/sqlite" // SQLite driver
)

const defaultListLimit = 20

// Run is one completed refresh.
type Run struct {
	ID               string          `json:"id"`
	Season           string          `json:"season"`
	SeasonType       string          `json:"seasonType"`
	Reason           string          `json:"reason"`
	StartedAt        time.Time       `json:"startedAt"`
	FinishedAt       time.Time       `json:"finishedAt"`
	Players          int             `json:"players"`
	Teams            int             `json:"teams"`
	GamesProcessed   int             `json:"gamesProcessed"`
	GamesSkipped     int             `json:"gamesSkipped"`
	HomeAwayInferred int             `json:"homeAwayInferred"`
	RolesDefaulted   int             `json:"rolesDefaulted"`
	PlayersPayload   json.RawMessage `json:"playersPayload,omitempty"`
	TeamsPayload     json.RawMessage `json:"teamsPayload,omitempty"`
}

// Archive stores runs in a SQLite database.
type Archive struct {
	db     *sql.DB
	logger logger.Logger
}

// Open opens (creating if needed) the database at path and migrates it.
// ":memory:" gives a throwaway archive.
func Open(path string, opts ...Option) (*Archive, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps ":memory:" databases consistent and serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := migrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	a := &Archive{db: db, logger: logger.Get().Named("archive")}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Close closes the database.
func (a *Archive) Close() error {
	return a.db.Close()
}

// Save records a run. A run id is the job's idempotency key, so saving an
// id again (the key was resubmitted after leaving the dedupe window)
// replaces the earlier row with the newer result.
func (a *Archive) Save(ctx context.Context, r Run) error {
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO runs (
			id, season, season_type, reason, started_at, finished_at,
			players, teams, games_processed, games_skipped, home_away_inferred, roles_defaulted,
			players_json, teams_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			season = excluded.season,
			season_type = excluded.season_type,
			reason = excluded.reason,
			started_at = excluded.started_at,
			finished_at = excluded.finished_at,
			players = excluded.players,
			teams = excluded.teams,
			games_processed = excluded.games_processed,
			games_skipped = excluded.games_skipped,
			home_away_inferred = excluded.home_away_inferred,
			roles_defaulted = excluded.roles_defaulted,
			players_json = excluded.players_json,
			teams_json = excluded.teams_json`,
		r.ID, r.Season, r.SeasonType, r.Reason, r.StartedAt.UnixMilli(), r.FinishedAt.UnixMilli(),
		r.Players, r.Teams, r.GamesProcessed, r.GamesSkipped, r.HomeAwayInferred, r.RolesDefaulted,
		[]byte(r.PlayersPayload), []byte(r.TeamsPayload),
	)
	if err != nil {
		metrics.RecordArchiveSave("error")
		return fmt.Errorf("failed to save run %s: %w", r.ID, err)
	}
	metrics.RecordArchiveSave("ok")
	a.logger.Debug(ctx, "run archived", logger.String("run_id", r.ID), logger.String("season", r.Season))
	return nil
}

// Latest returns the most recent run for a season, payloads included.
func (a *Archive) Latest(ctx context.Context, season, seasonType string) (Run, error) {
	row := a.db.QueryRowContext(ctx, `
		SELECT id, season, season_type, reason, started_at, finished_at,
			players, teams, games_processed, games_skipped, home_away_inferred, roles_defaulted,
			players_json, teams_json
		FROM runs
		WHERE season = ? AND season_type = ?
		ORDER BY finished_at DESC, rowid DESC
		LIMIT 1`, season, seasonType)

	var (
		r                 Run
		started, finished int64
		playersJ, teamsJ  []byte
	)
	err := row.Scan(&r.ID, &r.Season, &r.SeasonType, &r.Reason, &started, &finished,
		&r.Players, &r.Teams, &r.GamesProcessed, &r.GamesSkipped, &r.HomeAwayInferred, &r.RolesDefaulted,
		&playersJ, &teamsJ)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%s %s: %w", season, seasonType, ErrNoRuns)
	}
	if err != nil {
		return Run{}, fmt.Errorf("failed to load latest run: %w", err)
	}
	r.StartedAt = time.UnixMilli(started).UTC()
	r.FinishedAt = time.UnixMilli(finished).UTC()
	if len(playersJ) > 0 {
		r.PlayersPayload = json.RawMessage(playersJ)
	}
	if len(teamsJ) > 0 {
		r.TeamsPayload = json.RawMessage(teamsJ)
	}
	return r, nil
}

// List returns run metadata, newest first, without payloads.
func (a *Archive) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := a.db.QueryContext(ctx, `
		SELECT id, season, season_type, reason, started_at, finished_at,
			players, teams, games_processed, games_skipped, home_away_inferred, roles_defaulted
		FROM runs
		ORDER BY finished_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Run
	for rows.Next() {
		var (
			r                 Run
			started, finished int64
		)
		if err := rows.Scan(&r.ID, &r.Season, &r.SeasonType, &r.Reason, &started, &finished,
			&r.Players, &r.Teams, &r.GamesProcessed, &r.GamesSkipped, &r.HomeAwayInferred, &r.RolesDefaulted); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.StartedAt = time.UnixMilli(started).UTC()
		r.FinishedAt = time.UnixMilli(finished).UTC()
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return out, nil
}
