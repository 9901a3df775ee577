package elo

import (
	"sort"

	"github.com/okian/courtside/internal/domain/model"
)

// Result is the outcome of one replay.
type Result struct {
	State   State
	History map[int64][]HistoryPoint
	Games   map[int64][]GameRecord
	Audit   Audit
}

// Rating returns the team's final rating.
func (r Result) Rating(team int64) float64 { return r.State.Rating(team) }

// Engine replays game logs with fixed parameters.
type Engine struct {
	params  Params
	allowed map[int64]struct{}
}

// NewEngine creates an Engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{params: DefaultParams()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Params returns the engine constants.
func (e *Engine) Params() Params { return e.params }

// Replay resolves rows into matchups and folds them in order.
func (e *Engine) Replay(rows []model.Row) Result {
	matchups, audit := Resolve(rows, e.allowed)
	res := e.Run(matchups)
	audit.Processed = res.Audit.Processed
	res.Audit = audit
	return res
}

// Run folds already resolved matchups through Step in (date, game id)
// order. The input slice is not modified.
func (e *Engine) Run(matchups []Matchup) Result {
	ordered := make([]Matchup, len(matchups))
	copy(ordered, matchups)
	SortMatchups(ordered)

	res := Result{
		State:   NewState(e.params.Base),
		History: map[int64][]HistoryPoint{},
		Games:   map[int64][]GameRecord{},
	}
	for _, m := range ordered {
		var home, away GameRecord
		res.State, home, away = Step(e.params, res.State, m)
		for _, rec := range []GameRecord{home, away} {
			res.Games[rec.TeamID] = append(res.Games[rec.TeamID], rec)
			res.History[rec.TeamID] = append(res.History[rec.TeamID], HistoryPoint{Date: rec.Date, Elo: rec.EloAfter})
		}
		if m.Inferred {
			res.Audit.HomeAwayInferred++
		}
		res.Audit.Processed++
	}

	for id := range res.Games {
		games := res.Games[id]
		sort.SliceStable(games, func(i, j int) bool { return games[i].Date.Before(games[j].Date) })
		hist := res.History[id]
		sort.SliceStable(hist, func(i, j int) bool { return hist[i].Date.Before(hist[j].Date) })
	}
	return res
}
