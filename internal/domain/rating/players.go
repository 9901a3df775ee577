package rating

import "github.com/okian/courtside/internal/domain/model"

// Player pillars.
const (
	Scoring    PillarKey = "sco"
	Playmaking PillarKey = "ply"
	Rebounding PillarKey = "reb"
	Defense    PillarKey = "def"
	Hustle     PillarKey = "hst"
	Impact     PillarKey = "imp"
)

// Player row columns.
const (
	ColPlayerID = "PLAYER_ID"
	ColPosition = "POSITION"
	ColMinutes  = "MIN_PerGame"
	ColGames    = "GP"
)

// PlayerProfile rates players on six pillars with role-specific overall
// weights.
func PlayerProfile() Profile {
	return Profile{
		Name: "players",
		Pillars: []Pillar{
			{
				Key: Scoring,
				Terms: []Term{
					{Name: "pts_per100", Source: Field("PTS_Per100Possessions"), Weight: 0.50},
					{Name: "ts_pct", Source: Field("TS_PCT_PerGame"), Weight: 0.40},
					{Name: "usg_pct", Source: Field("USG_PCT_PerGame"), Weight: 0.10},
				},
				Shrink: true,
			},
			{
				Key: Playmaking,
				Terms: []Term{
					{Name: "ast_pct", Source: Field("AST_PCT_PerGame"), Weight: 0.50, Scope: Group},
					{Name: "ast_to", Source: Field("AST_TO_PerGame"), Weight: 0.20},
					{Name: "potential_ast", Source: Field("POTENTIAL_AST_PerGame"), Weight: 0.30, Scope: Group},
				},
			},
			{
				Key: Rebounding,
				Terms: []Term{
					{Name: "dreb_pct", Source: Field("DREB_PCT_PerGame"), Weight: 0.35, Scope: Group},
					{Name: "oreb_pct", Source: Field("OREB_PCT_PerGame"), Weight: 0.55, Scope: Group},
					{Name: "box_outs", Source: Field("BOX_OUTS_Per36"), Weight: 0.10, Scope: Group},
				},
			},
			{
				Key: Defense,
				Terms: []Term{
					{
						Name: "stl_pct", Source: Field("PCT_STL_PerGame"), Scope: Group,
						Weight:      0.10,
						RoleWeights: map[Role]float64{Guard: 0.20, Forward: 0.15},
					},
					{
						Name: "blk_pct", Source: Field("PCT_BLK_PerGame"), Scope: Group,
						Weight:      0.20,
						RoleWeights: map[Role]float64{Guard: 0.10, Forward: 0.15},
					},
					// Defended FG% minus normal FG%: lower is better.
					{Name: "dfg_diff", Source: Field("PCT_PLUSMINUS_PerGame"), Weight: 0.60, Negate: true},
					{Name: "pf_per100", Source: Field("PF_Per100Possessions"), Weight: 0.10, Negate: true},
				},
			},
			{
				Key:     Hustle,
				Combine: Mean,
				Terms: []Term{
					{Name: "screen_assists", Source: Field("SCREEN_ASSISTS_Per36"), Scope: Group, Only: []Role{Forward, Center}},
					{Name: "deflections", Source: Field("DEFLECTIONS_Per36"), Scope: Group},
					{Name: "loose_balls", Source: Field("LOOSE_BALLS_RECOVERED_Per36"), Scope: Group},
					{Name: "charges", Source: Field("CHARGES_DRAWN_Per36"), Scope: Group},
					{Name: "contests", Source: Field("CONTESTED_SHOTS_Per36"), Scope: Group},
				},
			},
			{
				Key: Impact,
				Terms: []Term{
					{Name: "pie", Source: Field("PIE_PerGame"), Weight: 0.50},
					{Name: "net_rating", Source: Field("NET_RATING_PerGame"), Weight: 0.50},
				},
			},
		},
		Overall: map[Role]map[PillarKey]float64{
			Guard:   {Scoring: 0.28, Playmaking: 0.28, Rebounding: 0.10, Defense: 0.18, Hustle: 0.10, Impact: 0.06},
			Forward: {Scoring: 0.28, Playmaking: 0.18, Rebounding: 0.18, Defense: 0.20, Hustle: 0.10, Impact: 0.06},
			Center:  {Scoring: 0.24, Playmaking: 0.10, Rebounding: 0.26, Defense: 0.24, Hustle: 0.10, Impact: 0.06},
		},
	}
}

// PlayerSubjects builds subjects from player rows. Positions that do not
// parse resolve to fallback and are flagged as defaulted.
func PlayerSubjects(rows []model.Row, fallback Role) []Subject {
	out := make([]Subject, len(rows))
	for i, r := range rows {
		id, _ := r.String(ColPlayerID)
		pos, _ := r.String(ColPosition)
		role, err := ParseRole(pos)
		defaulted := err != nil
		if defaulted {
			role = fallback
		}
		out[i] = Subject{
			ID:            id,
			Role:          role,
			RoleDefaulted: defaulted,
			Confidence:    r.Float(ColMinutes),
			Row:           r,
		}
	}
	return out
}

// Qualify keeps players with at least minMinutes per game and minGames
// games played. The games check is skipped when no row reports games.
func Qualify(rows []model.Row, minMinutes, minGames float64) []model.Row {
	checkGames := false
	for _, r := range rows {
		if r.Float(ColGames).Valid {
			checkGames = true
			break
		}
	}

	out := make([]model.Row, 0, len(rows))
	for _, r := range rows {
		m := r.Float(ColMinutes)
		if !m.Valid || m.Float < minMinutes {
			continue
		}
		if checkGames {
			g := r.Float(ColGames)
			if !g.Valid || g.Float < minGames {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}
