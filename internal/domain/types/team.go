package types

import (
	"strconv"

	"github.com/okian/courtside/internal/domain/elo"
	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/internal/domain/rating"
)

// EloPoint is one point of a team's rating history.
type EloPoint struct {
	Date string  `json:"date"`
	Elo  float64 `json:"elo"`
}

// Elo is a team's current rating and history.
type Elo struct {
	Current float64    `json:"current"`
	History []EloPoint `json:"history"`
}

// Game is one entry of a team's game log.
type Game struct {
	GameID               string   `json:"gameId"`
	Date                 string   `json:"date"`
	Home                 bool     `json:"home"`
	OpponentTeamID       int64    `json:"opponentTeamId"`
	OpponentTeamName     string   `json:"opponentTeamName"`
	OpponentAbbreviation string   `json:"opponentAbbreviation"`
	TeamScore            *float64 `json:"teamScore"`
	OpponentScore        *float64 `json:"opponentScore"`
	Margin               *float64 `json:"margin"`
	Result               string   `json:"result"`
	EloBefore            float64  `json:"eloBefore"`
	EloAfter             float64  `json:"eloAfter"`
	EloChange            float64  `json:"eloChange"`
	HomeAwayInferred     bool     `json:"homeAwayInferred,omitempty"`
}

// Team is the published team profile.
type Team struct {
	TeamID          *int64              `json:"teamId"`
	Name            string              `json:"name"`
	Abbreviation    string              `json:"abbreviation"`
	Conference      *string             `json:"conference"`
	Seed            *int64              `json:"seed"`
	Record          *string             `json:"record"`
	CategoryRatings map[string]*int     `json:"categoryRatings"`
	TeamStats       map[string]*float64 `json:"teamStats"`
	Elo             Elo                 `json:"elo"`
	Games           []Game              `json:"games"`
}

// TeamsPayload is the teams document.
type TeamsPayload struct {
	Season      string `json:"season"`
	SeasonType  string `json:"seasonType"`
	LastUpdated string `json:"lastUpdated"`
	Teams       []Team `json:"teams"`
}

var teamStatFields = []struct{ key, column string }{
	{"offRating", "OFF_RATING_Per100"},
	{"offRatingRank", "OFF_RATING_RANK_Per100"},
	{"defRating", "DEF_RATING_Per100"},
	{"defRatingRank", "DEF_RATING_RANK_Per100"},
	{"netRating", "NET_RATING_Per100"},
	{"netRatingRank", "NET_RATING_RANK_Per100"},
	{"threesPerGame", "FG3M_PerGame"},
	{"threesPerGameRank", "FG3M_RANK_PerGame"},
	{"turnoversPerGame", "TOV_PerGame"},
	{"turnoversPerGameRank", "TOV_RANK_PerGame"},
	{"plusMinus", "PLUS_MINUS_PerGame"},
	{"plusMinusRank", "PLUS_MINUS_RANK_PerGame"},
	{"fgPct", "FG_PCT_PerGame"},
	{"fgPctRank", "FG_PCT_RANK_PerGame"},
	{"fg3Pct", "FG3_PCT_PerGame"},
	{"fg3PctRank", "FG3_PCT_RANK_PerGame"},
	{"ftPct", "FT_PCT_PerGame"},
	{"ftPctRank", "FT_PCT_RANK_PerGame"},
}

// NewTeam builds the published profile of one rated team, merging in the
// replay result. Teams without games sit at the replay base rating.
func NewTeam(sr rating.SubjectRating, replay elo.Result) Team {
	r := sr.Subject.Row
	t := Team{
		TeamID:          intPtr(r, rating.ColTeamID),
		Name:            text(r, "TEAM_NAME"),
		Abbreviation:    text(r, "TEAM_ABBREVIATION"),
		Conference:      optText(r, "Conference"),
		Seed:            intPtr(r, "PlayoffRank"),
		Record:          optText(r, "Record"),
		CategoryRatings: make(map[string]*int, len(sr.Pillars)),
		TeamStats:       make(map[string]*float64, len(teamStatFields)),
		Elo:             Elo{History: []EloPoint{}},
		Games:           []Game{},
	}
	for k, s := range sr.Pillars {
		t.CategoryRatings[string(k)] = s.Rating.Ptr()
	}
	for _, f := range teamStatFields {
		t.TeamStats[f.key] = r.Float(f.column).Ptr()
	}

	var id int64
	if t.TeamID != nil {
		id = *t.TeamID
	}
	t.Elo.Current = Round1(replay.Rating(id))
	for _, h := range replay.History[id] {
		t.Elo.History = append(t.Elo.History, EloPoint{Date: ISODate(h.Date), Elo: Round1(h.Elo)})
	}
	for _, g := range replay.Games[id] {
		t.Games = append(t.Games, NewGame(g))
	}
	return t
}

// NewGame converts a replay record, rounding ratings to one decimal.
func NewGame(g elo.GameRecord) Game {
	return Game{
		GameID:               g.GameID,
		Date:                 ISODate(g.Date),
		Home:                 g.Home,
		OpponentTeamID:       g.OpponentID,
		OpponentTeamName:     g.OpponentName,
		OpponentAbbreviation: g.OpponentAbbreviation,
		TeamScore:            model.Some(g.TeamScore).Ptr(),
		OpponentScore:        model.Some(g.OpponentScore).Ptr(),
		Margin:               model.Some(g.Margin).Ptr(),
		Result:               string(g.Result),
		EloBefore:            Round1(g.EloBefore),
		EloAfter:             Round1(g.EloAfter),
		EloChange:            Round1(g.EloChange),
		HomeAwayInferred:     g.HomeAwayInferred,
	}
}

// ID returns the team id as text.
func (t Team) ID() string {
	if t.TeamID == nil {
		return ""
	}
	return formatInt(*t.TeamID)
}

func optText(r model.Row, key string) *string {
	s := text(r, key)
	if s == "" {
		return nil
	}
	return &s
}

func formatInt(i int64) string { return strconv.FormatInt(i, 10) }
