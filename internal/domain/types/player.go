package types

import (
	"strings"

	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/internal/domain/rating"
)

// PlayerIdentity describes who a player is.
type PlayerIdentity struct {
	PlayerID         *int64 `json:"playerId"`
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	Name             string `json:"name"`
	TeamID           *int64 `json:"teamId"`
	TeamCity         string `json:"teamCity"`
	Team             string `json:"team"`
	TeamAbbreviation string `json:"teamAbbreviation"`
	Jersey           string `json:"jersey"`
	Position         string `json:"position"`
	Height           string `json:"height"`
	Weight           string `json:"weight"`
}

// PlayerRatings holds the per-pillar and overall 1-99 ratings.
type PlayerRatings struct {
	PerCategory   map[string]*int `json:"perCategory"`
	Overall       *int            `json:"overall"`
	RoleDefaulted bool            `json:"roleDefaulted,omitempty"`
}

// PlayerStats holds raw per-game and advanced numbers.
type PlayerStats struct {
	PerGame  map[string]*float64 `json:"perGame"`
	Advanced map[string]*float64 `json:"advanced"`
}

// Player is the published player profile.
type Player struct {
	Identity PlayerIdentity `json:"identity"`
	Ratings  PlayerRatings  `json:"ratings"`
	Stats    PlayerStats    `json:"stats"`
}

// PlayersPayload is the players document.
type PlayersPayload struct {
	Season      string   `json:"season"`
	SeasonType  string   `json:"seasonType"`
	LastUpdated string   `json:"lastUpdated"`
	Players     []Player `json:"players"`
}

var perGameFields = []struct{ key, column string }{
	{"gp", "GP"},
	{"min", "MIN"},
	{"pts", "PTS"},
	{"ast", "AST"},
	{"reb", "REB"},
	{"stl", "STL"},
	{"blk", "BLK"},
	{"fgm", "FGM"},
	{"fga", "FGA"},
	{"fgPct", "FG_PCT"},
	{"ftm", "FTM"},
	{"fta", "FTA"},
	{"ftPct", "FT_PCT"},
	{"fg3m", "FG3M"},
	{"fg3a", "FG3A"},
	{"fg3Pct", "FG3_PCT"},
	{"tov", "TOV"},
	{"plusMinus", "PLUS_MINUS"},
}

var advancedFields = []struct{ key, column string }{
	{"nbaFantasyPoints", "NBA_FANTASY_PTS"},
	{"offRating", "OFF_RATING"},
	{"defRating", "DEF_RATING"},
	{"netRating", "NET_RATING"},
	{"tsPct", "TS_PCT"},
	{"usgPct", "USG_PCT"},
	{"pie", "PIE"},
}

// NewPlayer builds the published profile of one rated player. Stat columns
// are read with a per-game suffix first and bare second.
func NewPlayer(sr rating.SubjectRating) Player {
	r := sr.Subject.Row
	first := text(r, "PLAYER_FIRST_NAME")
	last := text(r, "PLAYER_LAST_NAME")
	name := strings.TrimSpace(first + " " + last)
	if name == "" {
		name = text(r, "PLAYER_NAME")
	}
	if name == "" {
		name = "Unknown"
	}
	position := strings.ToUpper(text(r, rating.ColPosition))
	if position == "" {
		position = sr.Subject.Role.String()
	}

	p := Player{
		Identity: PlayerIdentity{
			PlayerID:         intPtr(r, rating.ColPlayerID),
			FirstName:        first,
			LastName:         last,
			Name:             name,
			TeamID:           intPtr(r, "TEAM_ID"),
			TeamCity:         text(r, "TEAM_CITY"),
			Team:             text(r, "TEAM_NAME"),
			TeamAbbreviation: text(r, "TEAM_ABBREVIATION"),
			Jersey:           text(r, "JERSEY_NUMBER"),
			Position:         position,
			Height:           text(r, "HEIGHT"),
			Weight:           text(r, "WEIGHT"),
		},
		Ratings: PlayerRatings{
			PerCategory:   make(map[string]*int, len(sr.Pillars)),
			Overall:       sr.Overall.Rating.Ptr(),
			RoleDefaulted: sr.Subject.RoleDefaulted,
		},
		Stats: PlayerStats{
			PerGame:  make(map[string]*float64, len(perGameFields)),
			Advanced: make(map[string]*float64, len(advancedFields)),
		},
	}
	for k, s := range sr.Pillars {
		p.Ratings.PerCategory[string(k)] = s.Rating.Ptr()
	}
	for _, f := range perGameFields {
		p.Stats.PerGame[f.key] = r.FirstFloat(f.column+"_PerGame", f.column).Ptr()
	}
	p.Stats.PerGame["gp"] = r.Float("GP").Ptr()
	for _, f := range advancedFields {
		p.Stats.Advanced[f.key] = r.FirstFloat(f.column+"_PerGame", f.column).Ptr()
	}
	return p
}

// OverallScore is the leaderboard score of a player: the overall rating,
// or zero when undefined.
func (p Player) OverallScore() float64 {
	if p.Ratings.Overall == nil {
		return 0
	}
	return float64(*p.Ratings.Overall)
}

// ID returns the player id as text.
func (p Player) ID() string {
	if p.Identity.PlayerID == nil {
		return ""
	}
	return formatInt(*p.Identity.PlayerID)
}

func text(r model.Row, key string) string {
	s, _ := r.String(key)
	return strings.TrimSpace(s)
}

func intPtr(r model.Row, key string) *int64 {
	v, ok := r.Int(key)
	if !ok {
		return nil
	}
	return &v
}
