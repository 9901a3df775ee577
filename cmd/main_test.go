package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/courtside/internal/adapters/archive"
	"github.com/okian/courtside/internal/adapters/source"
	"github.com/okian/courtside/internal/config"
	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/internal/domain/types"
	"github.com/okian/courtside/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func writeSeason(t *testing.T, dir string) {
	t.Helper()
	src := source.NewFileSource(dir)
	tables := map[string]string{
		source.TablePlayers: `[
			{"PLAYER_ID": 1, "PLAYER_NAME": "A", "POSITION": "G", "GP": 30, "MIN_PerGame": 30, "PTS_Per100Possessions": 25},
			{"PLAYER_ID": 2, "PLAYER_NAME": "B", "POSITION": "C", "GP": 30, "MIN_PerGame": 28, "PTS_Per100Possessions": 35}
		]`,
		source.TableTeams: `{"headers": ["TEAM_ID", "TEAM_NAME", "TEAM_ABBREVIATION"], "rowSet": [[10, "Home", "HOM"], [20, "Road", "ROD"]]}`,
		source.TableGames: `{"headers": ["GAME_ID", "GAME_DATE", "TEAM_ID", "TEAM_NAME", "TEAM_ABBREVIATION", "MATCHUP", "PTS"],
			"rowSet": [
				["0001", "2024-10-22", 10, "Home", "HOM", "HOM vs. ROD", 110],
				["0001", "2024-10-22", 20, "Road", "ROD", "ROD @ HOM", 100]
			]}`,
	}
	for table, body := range tables {
		path := src.Path("2024-25", "Regular Season", table)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestServerWiring(t *testing.T) {
	if err := logger.Init(); err != nil {
		t.Fatalf("logger init: %v", err)
	}

	convey.Convey("Given a config pointing at a season on disk", t, func() {
		ctx := context.Background()
		cfg := config.New()
		cfg.DataDir = t.TempDir()
		writeSeason(t, cfg.DataDir)

		arch, err := archive.Open(filepath.Join(t.TempDir(), "runs.db"))
		convey.So(err, convey.ShouldBeNil)
		defer func() { _ = arch.Close() }()

		svc := newService(cfg, configureLogging(ctx, cfg), arch)
		mux := newMux(ctx, cfg, svc)

		convey.Convey("When a refresh runs", func() {
			rep, err := svc.Refresh(ctx, model.Job{ID: "t1", Reason: "test"})
			convey.So(err, convey.ShouldBeNil)
			convey.So(rep.Audit.Processed, convey.ShouldEqual, 1)

			convey.Convey("Then the team board is served over HTTP", func() {
				rec := httptest.NewRecorder()
				mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/teams", nil))
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)

				var entries []types.Entry
				convey.So(json.Unmarshal(rec.Body.Bytes(), &entries), convey.ShouldBeNil)
				convey.So(entries, convey.ShouldHaveLength, 2)
				convey.So(entries[0].SubjectID, convey.ShouldEqual, "10")
				convey.So(entries[0].Score, convey.ShouldEqual, 1519.2)
			})

			convey.Convey("Then the run is archived", func() {
				r, err := arch.Latest(ctx, "2024-25", "Regular Season")
				convey.So(err, convey.ShouldBeNil)
				convey.So(r.ID, convey.ShouldEqual, "t1")
				convey.So(r.Players, convey.ShouldEqual, 2)
			})

			convey.Convey("Then the docs and landing page are mounted", func() {
				for _, path := range []string{"/", "/api-docs", "/openapi.yaml", "/healthz"} {
					rec := httptest.NewRecorder()
					mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
					convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
				}
			})
		})
	})
}
