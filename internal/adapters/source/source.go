// Package source loads the per-season stat tables the rating pipeline
// consumes.
package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/okian/courtside/internal/domain/model"
)

// Table names as they appear on disk.
const (
	TablePlayers = "players"
	TableTeams   = "teams"
	TableGames   = "gamelog"
)

// StatsSource returns already-shaped rows for one season.
type StatsSource interface {
	PlayerRows(ctx context.Context, season, seasonType string) ([]model.Row, error)
	TeamRows(ctx context.Context, season, seasonType string) ([]model.Row, error)
	GameRows(ctx context.Context, season, seasonType string) ([]model.Row, error)
}

// FileSource reads JSON tables from <dir>/<season>/<season type slug>/<table>.json.
type FileSource struct {
	dir string
}

// NewFileSource creates a source rooted at dir.
func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir}
}

// Dir returns the data directory.
func (s *FileSource) Dir() string { return s.dir }

// PlayerRows loads the player table.
func (s *FileSource) PlayerRows(ctx context.Context, season, seasonType string) ([]model.Row, error) {
	return s.load(ctx, season, seasonType, TablePlayers)
}

// TeamRows loads the team table.
func (s *FileSource) TeamRows(ctx context.Context, season, seasonType string) ([]model.Row, error) {
	return s.load(ctx, season, seasonType, TableTeams)
}

// GameRows loads the per-team game log. A missing log is ErrTableNotFound.
func (s *FileSource) GameRows(ctx context.Context, season, seasonType string) ([]model.Row, error) {
	return s.load(ctx, season, seasonType, TableGames)
}

// Path returns where a table for the given season is expected.
func (s *FileSource) Path(season, seasonType, table string) string {
	return filepath.Join(s.dir, season, Slug(seasonType), table+".json")
}

func (s *FileSource) load(ctx context.Context, season, seasonType, table string) ([]model.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := ValidateSeason(season, seasonType); err != nil {
		return nil, err
	}
	path := s.Path(season, seasonType, table)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrTableNotFound)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	rows, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

var (
	seasonPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)
	slugPattern   = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
)

// ValidateSeason rejects seasons not shaped like "2024-25" and season types
// whose slug is not plain words, so neither can leave the data directory.
func ValidateSeason(season, seasonType string) error {
	if err := CheckSeason(season); err != nil {
		return err
	}
	return CheckSeasonType(seasonType)
}

// CheckSeason validates a season such as "2024-25".
func CheckSeason(season string) error {
	if !seasonPattern.MatchString(season) {
		return fmt.Errorf("season %q: %w", season, ErrInvalidSeason)
	}
	return nil
}

// CheckSeasonType validates a season type such as "Regular Season".
func CheckSeasonType(seasonType string) error {
	if !slugPattern.MatchString(Slug(seasonType)) {
		return fmt.Errorf("season type %q: %w", seasonType, ErrInvalidSeason)
	}
	return nil
}

// Slug turns a season type such as "Regular Season" into "regular-season".
func Slug(seasonType string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(seasonType)), " ", "-")
}

// resultSet is the stats API tabular shape.
type resultSet struct {
	Headers []string `json:"headers"`
	RowSet  [][]any  `json:"rowSet"`
}

// Decode parses either an array of objects or a {headers,rowSet} table.
// Numbers are kept as json.Number so identifiers keep full precision.
func Decode(data []byte) ([]model.Row, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty document: %w", ErrDecode)
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	switch trimmed[0] {
	case '[':
		var objs []map[string]any
		if err := dec.Decode(&objs); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		rows := make([]model.Row, len(objs))
		for i, o := range objs {
			rows[i] = model.Row(o)
		}
		return rows, nil
	case '{':
		var rs resultSet
		if err := dec.Decode(&rs); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		if len(rs.Headers) == 0 {
			return nil, fmt.Errorf("missing headers: %w", ErrDecode)
		}
		rows := make([]model.Row, 0, len(rs.RowSet))
		for i, cells := range rs.RowSet {
			if len(cells) != len(rs.Headers) {
				return nil, fmt.Errorf("row %d has %d cells, want %d: %w", i, len(cells), len(rs.Headers), ErrDecode)
			}
			r := make(model.Row, len(cells))
			for j, h := range rs.Headers {
				r[h] = cells[j]
			}
			rows = append(rows, r)
		}
		return rows, nil
	default:
		return nil, fmt.Errorf("unexpected document start %q: %w", trimmed[0], ErrDecode)
	}
}
