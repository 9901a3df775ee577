package rating

import "github.com/okian/courtside/internal/domain/model"

// Team pillars.
const (
	Offense      PillarKey = "offense"
	TeamDefense  PillarKey = "defense"
	PacePressure PillarKey = "pacePressure"
	TeamHustle   PillarKey = "hustle"
	Clutch       PillarKey = "clutch"
)

// ColTeamID is the team identifier column.
const ColTeamID = "TEAM_ID"

// Shot zone FGA columns.
var (
	shotZones = []string{
		"Restricted Area_FGA",
		"In The Paint (Non-RA)_FGA",
		"Mid-Range_FGA",
		"Above the Break 3_FGA",
		"Corner 3_FGA",
	}
	rimAndThreeZones = []string{
		"Restricted Area_FGA",
		"Above the Break 3_FGA",
		"Corner 3_FGA",
	}
)

// ShotProfileRate is the share of field goal attempts taken at the rim or
// from three. A precomputed RIM_3_RATE column wins over the zone columns.
// Missing zones count as zero; no attempts at all is undefined.
func ShotProfileRate(r model.Row) model.Value {
	if v := r.Float("RIM_3_RATE"); v.Valid {
		return v
	}
	var total, rim3 float64
	var seen bool
	for _, z := range shotZones {
		if v := r.Float(z); v.Valid {
			total += v.Float
			seen = true
		}
	}
	if !seen || total == 0 {
		return model.None()
	}
	for _, z := range rimAndThreeZones {
		rim3 += r.Float(z).Or(0)
	}
	return model.Some(rim3 / total)
}

// TeamProfile rates teams on five pillars. Teams carry no overall weights;
// their headline number is Elo.
func TeamProfile() Profile {
	return Profile{
		Name: "teams",
		Pillars: []Pillar{
			{
				Key: Offense,
				Terms: []Term{
					{Name: "off_rating", Source: Field("OFF_RATING_Per100"), Weight: 0.40},
					{Name: "ts_pct", Source: Field("TS_PCT_Per100"), Weight: 0.40},
					{Name: "ast_to", Source: Field("AST_TO_Per100"), Weight: 0.10},
					{Name: "rim3_rate", Source: ShotProfileRate, Weight: 0.10},
				},
			},
			{
				Key: TeamDefense,
				Terms: []Term{
					{Name: "def_rating", Source: Field("DEF_RATING_Per100"), Weight: 0.40, Negate: true},
					{Name: "opp_fg_diff", Source: Field("PCT_PLUSMINUS"), Weight: 0.25, Negate: true},
					{Name: "dreb_pct", Source: Field("DREB_PCT_Per100"), Weight: 0.20},
					{Name: "opp_paint", Source: Field("OPP_PTS_PAINT_PerGame"), Weight: 0.15, Negate: true},
				},
			},
			{
				Key: PacePressure,
				Terms: []Term{
					{Name: "pace", Source: Field("PACE_Per100"), Weight: 0.30},
					{Name: "pts_off_tov", Source: Field("PTS_OFF_TOV_PerGame"), Weight: 0.15},
					{Name: "pts_fb", Source: Field("PTS_FB_PerGame"), Weight: 0.20},
					{Name: "pts_2nd", Source: Field("PTS_2ND_CHANCE_PerGame"), Weight: 0.15},
					{Name: "oreb_pct", Source: Field("OREB_PCT_Per100"), Weight: 0.20},
				},
			},
			{
				Key:     TeamHustle,
				Combine: Mean,
				Terms: []Term{
					{Name: "screen_assists", Source: Field("SCREEN_ASSISTS_PerGame")},
					{Name: "deflections", Source: Field("DEFLECTIONS_PerGame")},
					{Name: "loose_balls", Source: Field("LOOSE_BALLS_RECOVERED_PerGame")},
					{Name: "charges", Source: Field("CHARGES_DRAWN_PerGame")},
					{Name: "contests", Source: Field("CONTESTED_SHOTS_PerGame")},
				},
			},
			{
				Key: Clutch,
				Terms: []Term{
					{Name: "net_rating", Source: Field("NET_RATING_Clutch"), Weight: 0.45},
					{Name: "w_pct", Source: Field("W_PCT_Clutch"), Weight: 0.25},
					{Name: "ts_pct", Source: Field("TS_PCT_Clutch"), Weight: 0.15},
					{Name: "tov", Source: Field("TOV_Clutch"), Weight: 0.15, Negate: true},
				},
			},
		},
	}
}

// TeamSubjects builds subjects from team rows.
func TeamSubjects(rows []model.Row) []Subject {
	out := make([]Subject, len(rows))
	for i, r := range rows {
		id, _ := r.String(ColTeamID)
		out[i] = Subject{ID: id, Role: Team, Row: r}
	}
	return out
}

// FilterTeams keeps rows whose team id is in allowed. A nil set keeps all.
func FilterTeams(rows []model.Row, allowed map[int64]struct{}) []model.Row {
	if allowed == nil {
		return rows
	}
	out := make([]model.Row, 0, len(rows))
	for _, r := range rows {
		id, ok := r.Int(ColTeamID)
		if !ok {
			continue
		}
		if _, ok := allowed[id]; ok {
			out = append(out, r)
		}
	}
	return out
}
