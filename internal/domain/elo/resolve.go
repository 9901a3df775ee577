package elo

import (
	"sort"
	"strings"
	"time"

	"github.com/okian/courtside/internal/domain/model"
)

// Game log columns.
const (
	ColGameID   = "GAME_ID"
	ColGameDate = "GAME_DATE"
	ColTeamID   = "TEAM_ID"
	ColTeamName = "TEAM_NAME"
	ColTeamAbbr = "TEAM_ABBREVIATION"
	ColMatchup  = "MATCHUP"

	awayMarker = "@"
)

// ScoreColumns are tried in order for a team's points.
var ScoreColumns = []string{"PTS", "PTS_TEAM", "PTS_GAME"}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"Jan 02, 2006",
	"Jan 2, 2006",
}

// Audit counts what happened to the input so callers can reconcile rows
// against emitted records.
type Audit struct {
	Rows              int
	Filtered          int
	Unkeyed           int
	Games             int
	Processed         int
	SkippedIncomplete int
	SkippedNoScore    int
	SkippedBadDate    int
	HomeAwayInferred  int
}

// Skipped returns the number of games that did not update ratings.
func (a Audit) Skipped() int {
	return a.SkippedIncomplete + a.SkippedNoScore + a.SkippedBadDate
}

// ParseDate accepts calendar dates and timestamps and returns the UTC
// calendar date.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// Resolve groups per-team game rows into matchups sorted by (date, game
// id). Rows for teams outside allowed are dropped first; a nil allowed set
// keeps every team. Games that cannot be resolved are counted in the audit
// and left out.
func Resolve(rows []model.Row, allowed map[int64]struct{}) ([]Matchup, Audit) {
	audit := Audit{Rows: len(rows)}

	type teamRow struct {
		id  int64
		row model.Row
	}
	groups := make(map[string][]teamRow)
	order := make([]string, 0)

	for _, r := range rows {
		gid, ok := r.String(ColGameID)
		gid = strings.TrimSpace(gid)
		tid, tok := r.Int(ColTeamID)
		if !ok || gid == "" || !tok {
			audit.Unkeyed++
			continue
		}
		if allowed != nil {
			if _, ok := allowed[tid]; !ok {
				audit.Filtered++
				continue
			}
		}
		if _, seen := groups[gid]; !seen {
			order = append(order, gid)
		}
		groups[gid] = append(groups[gid], teamRow{id: tid, row: r})
	}
	audit.Games = len(groups)

	out := make([]Matchup, 0, len(groups))
	for _, gid := range order {
		g := groups[gid]
		sort.SliceStable(g, func(i, j int) bool { return g[i].id < g[j].id })
		// Repeated rows for one team keep the first; a game needs two teams.
		uniq := g[:0]
		for _, tr := range g {
			if len(uniq) > 0 && uniq[len(uniq)-1].id == tr.id {
				continue
			}
			uniq = append(uniq, tr)
		}
		g = uniq
		if len(g) < 2 {
			audit.SkippedIncomplete++
			continue
		}

		homeIdx, awayIdx, inferred := 0, 1, true
		firstHome, firstAway := -1, -1
		for i, tr := range g {
			m, _ := tr.row.String(ColMatchup)
			if strings.Contains(m, awayMarker) {
				if firstAway < 0 {
					firstAway = i
				}
			} else if firstHome < 0 {
				firstHome = i
			}
		}
		if firstHome >= 0 && firstAway >= 0 {
			homeIdx, awayIdx, inferred = firstHome, firstAway, false
		}
		home, away := g[homeIdx], g[awayIdx]

		hs := home.row.FirstFloat(ScoreColumns...)
		as := away.row.FirstFloat(ScoreColumns...)
		if !hs.Valid || !as.Valid {
			audit.SkippedNoScore++
			continue
		}

		date, ok := gameDate(home.row, away.row)
		if !ok {
			audit.SkippedBadDate++
			continue
		}

		if inferred {
			audit.HomeAwayInferred++
		}
		out = append(out, Matchup{
			GameID:   gid,
			Date:     date,
			Home:     side(home.id, home.row, hs.Float),
			Away:     side(away.id, away.row, as.Float),
			Inferred: inferred,
		})
	}

	SortMatchups(out)
	return out, audit
}

// SortMatchups orders games by date, then lexically by game id.
func SortMatchups(ms []Matchup) {
	sort.SliceStable(ms, func(i, j int) bool {
		if !ms[i].Date.Equal(ms[j].Date) {
			return ms[i].Date.Before(ms[j].Date)
		}
		return ms[i].GameID < ms[j].GameID
	})
}

func gameDate(home, away model.Row) (time.Time, bool) {
	for _, r := range []model.Row{home, away} {
		if s, ok := r.String(ColGameDate); ok {
			if t, ok := ParseDate(s); ok {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

func side(id int64, r model.Row, score float64) Side {
	name, _ := r.String(ColTeamName)
	abbr, _ := r.String(ColTeamAbbr)
	return Side{TeamID: id, Name: name, Abbreviation: abbr, Score: score}
}
