package elo_test

import (
	"math"
	"testing"
	"time"

	"github.com/okian/courtside/internal/domain/elo"
	"github.com/okian/courtside/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func day(d int) time.Time { return time.Date(2025, time.October, d, 0, 0, 0, 0, time.UTC) }

func game(id string, date time.Time, home, away int64, hs, as float64) elo.Matchup {
	return elo.Matchup{
		GameID: id,
		Date:   date,
		Home:   elo.Side{TeamID: home, Score: hs},
		Away:   elo.Side{TeamID: away, Score: as},
	}
}

func TestExpectedAndMultiplier(t *testing.T) {
	if got := elo.Expected(1500, 1500, 70); math.Abs(got-0.5993) > 1e-3 {
		t.Fatalf("Expected = %v, want ~0.599", got)
	}
	if got := elo.Expected(1500, 1500, 0); got != 0.5 {
		t.Fatalf("Expected without advantage = %v", got)
	}
	if got := elo.MarginMultiplier(10, 0); math.Abs(got-math.Log(11)) > 1e-12 {
		t.Fatalf("MarginMultiplier = %v, want ln 11", got)
	}
	if elo.MarginMultiplier(10, 400) >= elo.MarginMultiplier(10, 0) {
		t.Fatal("rating gap should damp the multiplier")
	}
	if elo.MarginMultiplier(10, -400) != elo.MarginMultiplier(10, 400) {
		t.Fatal("multiplier should use the absolute gap")
	}
}

func TestStep(t *testing.T) {
	Convey("Given A hosting B at equal ratings", t, func() {
		p := elo.DefaultParams()
		s0 := elo.NewState(p.Base)

		s1, home, away := elo.Step(p, s0, game("g1", day(1), 1, 2, 110, 100))

		Convey("Then the home side gains about 19.24", func() {
			So(home.EloChange, ShouldAlmostEqual, 19.24, 0.01)
			So(s1.Rating(1), ShouldAlmostEqual, 1519.24, 0.01)
			So(s1.Rating(2), ShouldAlmostEqual, 1480.76, 0.01)
		})

		Convey("Then the update is zero-sum", func() {
			So(home.EloChange+away.EloChange, ShouldEqual, 0)
			So(s1.Rating(1)+s1.Rating(2), ShouldAlmostEqual, 3000, 1e-9)
		})

		Convey("Then records describe both perspectives", func() {
			So(home.Home, ShouldBeTrue)
			So(home.Result, ShouldEqual, elo.Win)
			So(home.Margin, ShouldEqual, 10.0)
			So(home.EloBefore, ShouldEqual, 1500.0)
			So(away.Home, ShouldBeFalse)
			So(away.Result, ShouldEqual, elo.Loss)
			So(away.Margin, ShouldEqual, -10.0)
			So(away.OpponentID, ShouldEqual, 1)
		})

		Convey("Then the previous state is untouched", func() {
			So(s0.Len(), ShouldEqual, 0)
			So(s0.Rating(1), ShouldEqual, 1500)
		})
	})

	Convey("Given a tie", t, func() {
		p := elo.DefaultParams()
		_, home, away := elo.Step(p, elo.NewState(p.Base), game("g", day(1), 1, 2, 100, 100))

		Convey("Then no margin means no movement", func() {
			So(home.Result, ShouldEqual, elo.Tie)
			So(away.Result, ShouldEqual, elo.Tie)
			So(home.EloChange, ShouldEqual, 0.0)
		})
	})

	Convey("Given the zero-sum invariant over many games", t, func() {
		p := elo.DefaultParams()
		s := elo.NewState(p.Base)
		for i := 0; i < 40; i++ {
			var home, away elo.GameRecord
			s, home, away = elo.Step(p, s, game("g", day(1), int64(i%5), int64(5+i%3), float64(90+i%17), float64(95+i%11)))
			So(home.EloChange+away.EloChange, ShouldEqual, 0)
		}
	})
}

func TestRun(t *testing.T) {
	engine := elo.NewEngine()

	Convey("Given no games", t, func() {
		res := engine.Run(nil)

		So(res.Rating(1), ShouldEqual, elo.DefaultBase)
		So(res.History, ShouldBeEmpty)
		So(res.Games, ShouldBeEmpty)
		So(res.Audit.Processed, ShouldEqual, 0)
	})

	Convey("Given the single game scenario", t, func() {
		res := engine.Run([]elo.Matchup{game("g1", day(1), 1, 2, 110, 100)})

		So(res.Rating(1), ShouldAlmostEqual, 1519.24, 0.01)
		So(res.Rating(2), ShouldAlmostEqual, 1480.76, 0.01)
		So(res.Games[1], ShouldHaveLength, 1)
		So(res.Games[2], ShouldHaveLength, 1)
		So(res.History[1], ShouldHaveLength, 1)
		So(res.History[2][0].Elo, ShouldEqual, res.Rating(2))
	})

	Convey("Given games on different dates in scrambled order", t, func() {
		games := []elo.Matchup{
			game("g3", day(3), 1, 3, 99, 101),
			game("g1", day(1), 1, 2, 110, 100),
			game("g2", day(2), 2, 3, 120, 90),
		}
		a := engine.Run(games)
		b := engine.Run([]elo.Matchup{games[1], games[2], games[0]})

		Convey("Then input order does not matter", func() {
			So(a.State.Ratings(), ShouldResemble, b.State.Ratings())
			So(a.Games, ShouldResemble, b.Games)
		})

		Convey("Then logs are date-ordered", func() {
			So(a.Games[1][0].GameID, ShouldEqual, "g1")
			So(a.Games[1][1].GameID, ShouldEqual, "g3")
			So(a.History[3][0].Date, ShouldEqual, day(2))
		})
	})

	Convey("Given games on the same date", t, func() {
		games := []elo.Matchup{
			game("0022500010", day(5), 1, 2, 100, 90),
			game("0022500002", day(5), 1, 2, 80, 120),
		}
		a := engine.Run(games)
		b := engine.Run([]elo.Matchup{games[1], games[0]})

		Convey("Then the game id breaks the tie reproducibly", func() {
			So(a.State.Ratings(), ShouldResemble, b.State.Ratings())
			So(a.Games[1][0].GameID, ShouldEqual, "0022500002")
			So(a.Games[1][1].EloBefore, ShouldEqual, a.Games[1][0].EloAfter)
		})
	})

	Convey("Given custom parameters", t, func() {
		e := elo.NewEngine(elo.WithBase(1000), elo.WithK(40), elo.WithHomeAdvantage(0))
		res := e.Run([]elo.Matchup{game("g", day(1), 1, 2, 101, 100)})

		So(e.Params().K, ShouldEqual, 40)
		So(res.Rating(1), ShouldAlmostEqual, 1000+40*math.Log(2)*0.5, 1e-9)
		So(res.Rating(99), ShouldEqual, 1000)
	})
}

func TestReplayRows(t *testing.T) {
	row := func(gid string, team int64, matchup string, pts any) model.Row {
		r := model.Row{
			"GAME_ID":           gid,
			"GAME_DATE":         "2025-10-21",
			"TEAM_ID":           team,
			"TEAM_NAME":         map[int64]string{1: "Alpha", 2: "Beta", 3: "Gamma"}[team],
			"TEAM_ABBREVIATION": map[int64]string{1: "ALP", 2: "BET", 3: "GAM"}[team],
			"MATCHUP":           matchup,
		}
		if pts != nil {
			r["PTS"] = pts
		}
		return r
	}

	Convey("Given rows where B visits A", t, func() {
		rows := []model.Row{
			row("g1", 2, "BET @ ALP", 100),
			row("g1", 1, "ALP vs. BET", 110),
		}
		res := elo.NewEngine().Replay(rows)

		Convey("Then the marker decides home and away", func() {
			So(res.Rating(1), ShouldAlmostEqual, 1519.24, 0.01)
			So(res.Games[1][0].Home, ShouldBeTrue)
			So(res.Games[1][0].HomeAwayInferred, ShouldBeFalse)
			So(res.Games[1][0].OpponentName, ShouldEqual, "Beta")
			So(res.Games[2][0].OpponentAbbreviation, ShouldEqual, "ALP")
			So(res.Games[1][0].Date, ShouldEqual, time.Date(2025, 10, 21, 0, 0, 0, 0, time.UTC))
			So(res.Audit.Processed, ShouldEqual, 1)
			So(res.Audit.Skipped(), ShouldEqual, 0)
		})
	})

	Convey("Given an undefined away score", t, func() {
		rows := []model.Row{
			row("g1", 1, "ALP vs. BET", 110),
			row("g1", 2, "BET @ ALP", nil),
		}
		res := elo.NewEngine().Replay(rows)

		Convey("Then the game is excluded and nothing changes", func() {
			So(res.Rating(1), ShouldEqual, 1500)
			So(res.Rating(2), ShouldEqual, 1500)
			So(res.Games, ShouldBeEmpty)
			So(res.Audit.SkippedNoScore, ShouldEqual, 1)
			So(res.Audit.Processed, ShouldEqual, 0)
		})
	})

	Convey("Given a fallback score column", t, func() {
		a := row("g1", 1, "ALP vs. BET", nil)
		a["PTS_TEAM"] = "110"
		res := elo.NewEngine().Replay([]model.Row{a, row("g1", 2, "BET @ ALP", 100)})
		So(res.Games[1][0].TeamScore, ShouldEqual, 110)
	})

	Convey("Given ambiguous markers", t, func() {
		rows := []model.Row{
			row("g1", 2, "BET vs. ALP", 100),
			row("g1", 1, "ALP vs. BET", 110),
		}
		res := elo.NewEngine().Replay(rows)

		Convey("Then the lower team id is home and the game is flagged", func() {
			So(res.Games[1][0].Home, ShouldBeTrue)
			So(res.Games[1][0].HomeAwayInferred, ShouldBeTrue)
			So(res.Games[2][0].HomeAwayInferred, ShouldBeTrue)
			So(res.Audit.HomeAwayInferred, ShouldEqual, 1)
		})
	})

	Convey("Given unresolvable rows", t, func() {
		bad := row("g3", 1, "ALP vs. GAM", 100)
		bad["GAME_DATE"] = "yesterday"
		badAway := row("g3", 3, "GAM @ ALP", 90)
		badAway["GAME_DATE"] = ""
		rows := []model.Row{
			row("g1", 1, "ALP vs. BET", 110),
			{"TEAM_ID": 2, "PTS": 100},
			row("g2", 3, "GAM @ BET", 90),
			bad, badAway,
		}
		res := elo.NewEngine().Replay(rows)

		So(res.Audit.Rows, ShouldEqual, 5)
		So(res.Audit.Unkeyed, ShouldEqual, 1)
		So(res.Audit.Games, ShouldEqual, 3)
		So(res.Audit.SkippedIncomplete, ShouldEqual, 2)
		So(res.Audit.SkippedBadDate, ShouldEqual, 1)
		So(res.Audit.Processed, ShouldEqual, 0)
	})

	Convey("Given a team row repeated within a game", t, func() {
		rows := []model.Row{
			row("g1", 1, "ALP vs. BET", 110),
			row("g1", 1, "ALP vs. BET", 110),
			row("g1", 2, "BET vs. ALP", 100),
		}
		res := elo.NewEngine().Replay(rows)

		Convey("Then the two distinct teams play each other once", func() {
			So(res.Audit.Processed, ShouldEqual, 1)
			So(res.Games[1], ShouldHaveLength, 1)
			So(res.Games[2], ShouldHaveLength, 1)
			So(res.Games[1][0].OpponentID, ShouldEqual, 2)
			So(res.Games[2][0].OpponentID, ShouldEqual, 1)
		})
	})

	Convey("Given a game listing only one team twice", t, func() {
		rows := []model.Row{
			row("g1", 1, "ALP vs. BET", 110),
			row("g1", 1, "ALP @ BET", 100),
		}
		res := elo.NewEngine().Replay(rows)

		Convey("Then it is incomplete and the rating is untouched", func() {
			So(res.Audit.SkippedIncomplete, ShouldEqual, 1)
			So(res.Audit.Processed, ShouldEqual, 0)
			So(res.Rating(1), ShouldEqual, 1500)
			So(res.Games, ShouldBeEmpty)
		})
	})

	Convey("Given an allowed team list", t, func() {
		rows := []model.Row{
			row("g1", 1, "ALP vs. GAM", 110),
			row("g1", 3, "GAM @ ALP", 100),
		}
		res := elo.NewEngine(elo.WithAllowedTeams([]int64{1, 2})).Replay(rows)

		So(res.Audit.Filtered, ShouldEqual, 1)
		So(res.Audit.SkippedIncomplete, ShouldEqual, 1)
		So(res.Games, ShouldBeEmpty)
	})
}

func TestParseDate(t *testing.T) {
	want := time.Date(2025, 10, 21, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2025-10-21", "2025-10-21T00:00:00", "2025-10-21T19:30:00Z", "Oct 21, 2025"} {
		got, ok := elo.ParseDate(in)
		if !ok || !got.Equal(want) {
			t.Errorf("ParseDate(%q) = %v, %v", in, got, ok)
		}
	}
	if _, ok := elo.ParseDate("21/10/2025"); ok {
		t.Error("unexpected parse of unsupported layout")
	}
}
