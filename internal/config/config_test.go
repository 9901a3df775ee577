package config_test

import (
	"errors"
	"runtime"
	"testing"

	"github.com/okian/courtside/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.SeasonType, convey.ShouldEqual, "Regular Season")
			convey.So(cfg.EloBase, convey.ShouldEqual, 1500.0)
			convey.So(cfg.EloK, convey.ShouldEqual, 20.0)
			convey.So(cfg.EloHomeAdvantage, convey.ShouldEqual, 70.0)
			convey.So(cfg.WinsorLow, convey.ShouldEqual, 0.02)
			convey.So(cfg.WinsorHigh, convey.ShouldEqual, 0.98)
			convey.So(cfg.ConfidenceCap, convey.ShouldEqual, 24.0)
			convey.So(cfg.MinMinutes, convey.ShouldEqual, 12.0)
			convey.So(cfg.MinGames, convey.ShouldEqual, 5.0)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"empty addr", func(c *config.Config) { c.Addr = "" }},
		{"empty data dir", func(c *config.Config) { c.DataDir = "" }},
		{"negative winsor low", func(c *config.Config) { c.WinsorLow = -0.1 }},
		{"winsor high above one", func(c *config.Config) { c.WinsorHigh = 1.1 }},
		{"inverted winsor bounds", func(c *config.Config) { c.WinsorLow, c.WinsorHigh = 0.9, 0.1 }},
		{"zero confidence cap", func(c *config.Config) { c.ConfidenceCap = 0 }},
		{"zero k", func(c *config.Config) { c.EloK = 0 }},
		{"negative refresh rate", func(c *config.Config) { c.RefreshRatePerMin = -1 }},
		{"non-positive team id", func(c *config.Config) { c.AllowedTeams = []int64{1610612737, 0} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.New()
			tc.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, config.ErrInvalidConfig) {
				t.Fatalf("Validate() = %v, want ErrInvalidConfig", err)
			}
		})
	}
}
