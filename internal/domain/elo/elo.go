// Package elo replays a season's games in chronological order and derives
// team Elo ratings, per-team rating history, and per-team game logs.
package elo

import (
	"maps"
	"math"
	"time"
)

// Default replay constants.
const (
	DefaultBase          = 1500.0
	DefaultK             = 20.0
	DefaultHomeAdvantage = 70.0

	movScale = 2.2
	movDamp  = 0.001
)

// Params are the replay constants.
type Params struct {
	Base          float64
	K             float64
	HomeAdvantage float64
}

// DefaultParams returns base 1500, K 20 and a 70 point home advantage.
func DefaultParams() Params {
	return Params{Base: DefaultBase, K: DefaultK, HomeAdvantage: DefaultHomeAdvantage}
}

// Outcome is a game result from one team's perspective.
type Outcome string

const (
	Win  Outcome = "W"
	Loss Outcome = "L"
	Tie  Outcome = "T"
)

// Side is one participant of a resolved game.
type Side struct {
	TeamID       int64
	Name         string
	Abbreviation string
	Score        float64
}

// Matchup is a fully resolved game ready to be applied to a State.
type Matchup struct {
	GameID string
	Date   time.Time
	Home   Side
	Away   Side
	// Inferred marks a home/away assignment taken from the team id
	// ordering because the matchup markers were missing or ambiguous.
	Inferred bool
}

// GameRecord is one team's view of one processed game. Records are never
// modified after creation.
type GameRecord struct {
	GameID               string
	Date                 time.Time
	TeamID               int64
	TeamName             string
	TeamAbbreviation     string
	Home                 bool
	OpponentID           int64
	OpponentName         string
	OpponentAbbreviation string
	TeamScore            float64
	OpponentScore        float64
	Margin               float64
	Result               Outcome
	EloBefore            float64
	EloAfter             float64
	EloChange            float64
	HomeAwayInferred     bool
}

// HistoryPoint is a team's rating after one game.
type HistoryPoint struct {
	Date time.Time
	Elo  float64
}

// State holds one rating per team. Teams not yet seen rate at the base.
// A State is never mutated once returned; Step yields a new one.
type State struct {
	base    float64
	ratings map[int64]float64
}

// NewState returns an empty State with the given base rating.
func NewState(base float64) State {
	return State{base: base, ratings: map[int64]float64{}}
}

// Rating returns the team's current rating.
func (s State) Rating(team int64) float64 {
	if r, ok := s.ratings[team]; ok {
		return r
	}
	return s.base
}

// Ratings returns a copy of every rated team.
func (s State) Ratings() map[int64]float64 {
	return maps.Clone(s.ratings)
}

// Len returns the number of rated teams.
func (s State) Len() int { return len(s.ratings) }

// Expected returns the home win probability with the home advantage folded
// into the rating difference.
func Expected(rHome, rAway, homeAdvantage float64) float64 {
	diff := rHome + homeAdvantage - rAway
	return 1 / (1 + math.Pow(10, -diff/400))
}

// MarginMultiplier scales the update by ln(1+margin), damped as the gap
// between the two ratings grows.
func MarginMultiplier(margin, ratingGap float64) float64 {
	return math.Log1p(math.Abs(margin)) * (movScale / (math.Abs(ratingGap)*movDamp + movScale))
}

// Step applies one game to s and returns the next state with the home and
// away records. The away delta is the exact negation of the home delta.
func Step(p Params, s State, m Matchup) (State, GameRecord, GameRecord) {
	rHome, rAway := s.Rating(m.Home.TeamID), s.Rating(m.Away.TeamID)

	expected := Expected(rHome, rAway, p.HomeAdvantage)
	mult := MarginMultiplier(m.Home.Score-m.Away.Score, rHome-rAway)

	actual := 0.5
	switch {
	case m.Home.Score > m.Away.Score:
		actual = 1
	case m.Home.Score < m.Away.Score:
		actual = 0
	}

	delta := p.K * mult * (actual - expected)

	next := State{base: s.base, ratings: maps.Clone(s.ratings)}
	if next.ratings == nil {
		next.ratings = map[int64]float64{}
	}
	next.ratings[m.Home.TeamID] = rHome + delta
	next.ratings[m.Away.TeamID] = rAway - delta

	home := record(m, m.Home, m.Away, true, rHome, delta)
	away := record(m, m.Away, m.Home, false, rAway, -delta)
	return next, home, away
}

func record(m Matchup, team, opp Side, home bool, before, delta float64) GameRecord {
	margin := team.Score - opp.Score
	result := Tie
	switch {
	case margin > 0:
		result = Win
	case margin < 0:
		result = Loss
	}
	return GameRecord{
		GameID:               m.GameID,
		Date:                 m.Date,
		TeamID:               team.TeamID,
		TeamName:             team.Name,
		TeamAbbreviation:     team.Abbreviation,
		Home:                 home,
		OpponentID:           opp.TeamID,
		OpponentName:         opp.Name,
		OpponentAbbreviation: opp.Abbreviation,
		TeamScore:            team.Score,
		OpponentScore:        opp.Score,
		Margin:               margin,
		Result:               result,
		EloBefore:            before,
		EloAfter:             before + delta,
		EloChange:            delta,
		HomeAwayInferred:     m.Inferred,
	}
}
