package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/courtside/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestLoad(t *testing.T) {
	convey.Convey("Given no file and no env overrides", t, func() {
		t.Setenv("COURTSIDE_CONFIG", "")
		cfg, err := config.Load(context.Background())
		convey.So(err, convey.ShouldBeNil)
		convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
	})

	convey.Convey("Given env overrides", t, func() {
		t.Setenv("COURTSIDE_CONFIG", "")
		t.Setenv("COURTSIDE_ADDR", ":7000")
		t.Setenv("COURTSIDE_QUEUE_SIZE", "8")
		t.Setenv("COURTSIDE_ELO_K", "32")
		t.Setenv("COURTSIDE_WATCH_DATA_DIR", "true")
		t.Setenv("COURTSIDE_SEASON_TYPE", "Playoffs")

		cfg, err := config.Load(context.Background())
		convey.So(err, convey.ShouldBeNil)
		convey.So(cfg.Addr, convey.ShouldEqual, ":7000")
		convey.So(cfg.QueueSize, convey.ShouldEqual, 8)
		convey.So(cfg.EloK, convey.ShouldEqual, 32.0)
		convey.So(cfg.WatchDataDir, convey.ShouldBeTrue)
		convey.So(cfg.SeasonType, convey.ShouldEqual, "Playoffs")
	})

	convey.Convey("Given a YAML file overridden by env", t, func() {
		path := filepath.Join(t.TempDir(), "courtside.yaml")
		body := "season: \"2023-24\"\nmin_minutes: 20\nconfidence_cap: 30\naddr: \":7100\"\n"
		convey.So(os.WriteFile(path, []byte(body), 0o644), convey.ShouldBeNil)
		t.Setenv("COURTSIDE_CONFIG", path)
		t.Setenv("COURTSIDE_ADDR", ":7200")

		cfg, err := config.Load(context.Background())
		convey.So(err, convey.ShouldBeNil)
		convey.So(cfg.Season, convey.ShouldEqual, "2023-24")
		convey.So(cfg.MinMinutes, convey.ShouldEqual, 20.0)
		convey.So(cfg.ConfidenceCap, convey.ShouldEqual, 30.0)
		convey.So(cfg.Addr, convey.ShouldEqual, ":7200")
	})

	convey.Convey("Given an allowed team list in YAML", t, func() {
		path := filepath.Join(t.TempDir(), "courtside.yaml")
		body := "allowed_teams: [1610612747, 1610612744]\n"
		convey.So(os.WriteFile(path, []byte(body), 0o644), convey.ShouldBeNil)
		t.Setenv("COURTSIDE_CONFIG", path)

		cfg, err := config.Load(context.Background())
		convey.So(err, convey.ShouldBeNil)
		convey.So(cfg.AllowedTeams, convey.ShouldResemble, []int64{1610612747, 1610612744})
	})

	convey.Convey("Given an allowed team list", t, func() {
		t.Setenv("COURTSIDE_CONFIG", "")
		t.Setenv("COURTSIDE_ALLOWED_TEAMS", "1610612737,1610612738")

		cfg, err := config.Load(context.Background())
		convey.So(err, convey.ShouldBeNil)
		convey.So(cfg.AllowedTeams, convey.ShouldResemble, []int64{1610612737, 1610612738})
	})

	convey.Convey("Given an invalid override", t, func() {
		t.Setenv("COURTSIDE_CONFIG", "")
		t.Setenv("COURTSIDE_WINSOR_LOW", "0.99")

		_, err := config.Load(context.Background())
		convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
	})

	convey.Convey("Given a missing config file", t, func() {
		t.Setenv("COURTSIDE_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
		_, err := config.Load(context.Background())
		convey.So(err, convey.ShouldNotBeNil)
	})
}
