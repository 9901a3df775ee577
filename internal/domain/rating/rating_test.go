package rating_test

import (
	"errors"
	"testing"

	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/internal/domain/rating"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParseRole(t *testing.T) {
	cases := []struct {
		in   string
		want rating.Role
		err  bool
	}{
		{"G", rating.Guard, false},
		{"g-f", rating.Guard, false},
		{"F-C", rating.Forward, false},
		{" C ", rating.Center, false},
		{"", rating.RoleUnknown, true},
		{"X", rating.RoleUnknown, true},
	}
	for _, tc := range cases {
		got, err := rating.ParseRole(tc.in)
		if got != tc.want {
			t.Errorf("ParseRole(%q) = %v, want %v", tc.in, got, tc.want)
		}
		if (err != nil) != tc.err {
			t.Errorf("ParseRole(%q) err = %v", tc.in, err)
		}
		if err != nil && !errors.Is(err, rating.ErrUnknownRole) {
			t.Errorf("ParseRole(%q) err = %v, want ErrUnknownRole", tc.in, err)
		}
	}
}

func TestProfiles(t *testing.T) {
	Convey("Given the built-in profiles", t, func() {
		So(rating.PlayerProfile().Validate(), ShouldBeNil)
		So(rating.TeamProfile().Validate(), ShouldBeNil)
		So(rating.PlayerProfile().Keys(), ShouldResemble, []rating.PillarKey{
			rating.Scoring, rating.Playmaking, rating.Rebounding, rating.Defense, rating.Hustle, rating.Impact,
		})
	})

	Convey("Given malformed profiles", t, func() {
		Convey("When a profile has no pillars", func() {
			err := rating.Profile{Name: "empty"}.Validate()
			So(errors.Is(err, rating.ErrInvalidProfile), ShouldBeTrue)
		})

		Convey("When a term has no source", func() {
			p := rating.Profile{Pillars: []rating.Pillar{{Key: "a", Terms: []rating.Term{{Name: "x"}}}}}
			So(errors.Is(p.Validate(), rating.ErrInvalidProfile), ShouldBeTrue)
		})

		Convey("When overall weights reference an unknown pillar", func() {
			p := rating.Profile{
				Pillars: []rating.Pillar{{Key: "a", Terms: []rating.Term{{Source: rating.Field("X")}}}},
				Overall: map[rating.Role]map[rating.PillarKey]float64{rating.Guard: {"b": 1}},
			}
			So(errors.Is(p.Validate(), rating.ErrInvalidProfile), ShouldBeTrue)
		})
	})
}

func TestQualify(t *testing.T) {
	Convey("Given player rows", t, func() {
		rows := []model.Row{
			{"PLAYER_ID": 1, "MIN_PerGame": 30.0, "GP": 40},
			{"PLAYER_ID": 2, "MIN_PerGame": 8.0, "GP": 40},
			{"PLAYER_ID": 3, "MIN_PerGame": 25.0, "GP": 2},
			{"PLAYER_ID": 4, "GP": 40},
		}

		Convey("Then light minutes and few games are filtered", func() {
			out := rating.Qualify(rows, 12, 5)
			So(out, ShouldHaveLength, 1)
			So(out[0]["PLAYER_ID"], ShouldEqual, 1)
		})

		Convey("Then the games check is skipped when no row reports games", func() {
			noGP := []model.Row{{"MIN_PerGame": 30.0}, {"MIN_PerGame": 11.9}}
			So(rating.Qualify(noGP, 12, 5), ShouldHaveLength, 1)
		})
	})
}

func TestShotProfileRate(t *testing.T) {
	Convey("Given shot zone attempts", t, func() {
		r := model.Row{
			"Restricted Area_FGA":       30.0,
			"In The Paint (Non-RA)_FGA": 10.0,
			"Mid-Range_FGA":             10.0,
			"Above the Break 3_FGA":     40.0,
			"Corner 3_FGA":              10.0,
		}
		So(rating.ShotProfileRate(r).Float, ShouldAlmostEqual, 0.8, 1e-12)

		Convey("When there are no attempts", func() {
			zero := model.Row{"Restricted Area_FGA": 0, "Mid-Range_FGA": 0}
			So(rating.ShotProfileRate(zero).Valid, ShouldBeFalse)
			So(rating.ShotProfileRate(model.Row{}).Valid, ShouldBeFalse)
		})

		Convey("When the rate is precomputed", func() {
			So(rating.ShotProfileRate(model.Row{"RIM_3_RATE": 0.7}).Float, ShouldEqual, 0.7)
		})
	})
}

func TestPlayerSubjects(t *testing.T) {
	Convey("Given rows with known and unknown positions", t, func() {
		rows := []model.Row{
			{"PLAYER_ID": 10, "POSITION": "G-F", "MIN_PerGame": 30.0},
			{"PLAYER_ID": 11, "POSITION": ""},
		}
		subjects := rating.PlayerSubjects(rows, rating.Center)

		So(subjects[0].ID, ShouldEqual, "10")
		So(subjects[0].Role, ShouldEqual, rating.Guard)
		So(subjects[0].RoleDefaulted, ShouldBeFalse)
		So(subjects[0].Confidence.Float, ShouldEqual, 30)
		So(subjects[1].Role, ShouldEqual, rating.Center)
		So(subjects[1].RoleDefaulted, ShouldBeTrue)
		So(subjects[1].Confidence.Valid, ShouldBeFalse)
	})
}

func TestFilterTeams(t *testing.T) {
	rows := []model.Row{{"TEAM_ID": 1}, {"TEAM_ID": "2"}, {"TEAM_ID": 99}, {}}
	if got := rating.FilterTeams(rows, nil); len(got) != 4 {
		t.Fatalf("nil filter kept %d rows", len(got))
	}
	got := rating.FilterTeams(rows, map[int64]struct{}{1: {}, 2: {}})
	if len(got) != 2 {
		t.Fatalf("filter kept %d rows, want 2", len(got))
	}
}
