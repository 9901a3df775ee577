// Command ratings computes one season's ratings from the data directory and
// writes players.json and teams.json.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/courtside/internal/adapters/source"
	app "github.com/okian/courtside/internal/app"
	"github.com/okian/courtside/internal/config"
	"github.com/okian/courtside/internal/domain/elo"
	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/internal/domain/normalize"
	"github.com/okian/courtside/internal/domain/rating"
	"github.com/okian/courtside/pkg/logger"
)

const defaultTimeout = 2 * time.Minute

// options are the command-line overrides on top of the loaded config.
type options struct {
	dataDir    string
	season     string
	seasonType string
	outDir     string
	timeout    time.Duration
}

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	cfg, err := config.Load(context.Background())
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	opts := options{}
	flag.StringVar(&opts.dataDir, "data", cfg.DataDir, "Directory holding <season>/<season-type>/{players,teams,gamelog}.json")
	flag.StringVar(&opts.season, "season", cfg.Season, "Season, e.g. 2024-25")
	flag.StringVar(&opts.seasonType, "season-type", cfg.SeasonType, "Season type, e.g. \"Regular Season\" or Playoffs")
	flag.StringVar(&opts.outDir, "out", ".", "Output directory for players.json and teams.json")
	flag.DurationVar(&opts.timeout, "timeout", defaultTimeout, "Overall time limit")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	flag.Parse()

	if *verbose {
		_ = logger.SetLevelString("debug")
	} else {
		_ = logger.SetLevelString(cfg.LogLevel)
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	if err := run(ctx, cfg, opts); err != nil {
		logger.Get().Error(ctx, "ratings failed", logger.Error(err))
		os.Exit(1)
	}
}

// run performs one refresh and writes both payloads.
func run(ctx context.Context, cfg *config.Config, opts options) error {
	norm := normalize.New(
		normalize.WithWinsorBounds(cfg.WinsorLow, cfg.WinsorHigh),
		normalize.WithConfidenceCap(cfg.ConfidenceCap),
	)
	svc := app.New(source.NewFileSource(opts.dataDir),
		app.WithLogger(logger.Named("ratings")),
		app.WithSeason(opts.season, opts.seasonType),
		app.WithQualification(cfg.MinMinutes, cfg.MinGames),
		app.WithCalculator(rating.NewCalculator(rating.WithNormalizer(norm))),
		app.WithEngine(elo.NewEngine(
			elo.WithBase(cfg.EloBase),
			elo.WithK(cfg.EloK),
			elo.WithHomeAdvantage(cfg.EloHomeAdvantage),
		)),
		app.WithAllowedTeams(cfg.AllowedTeams),
	)

	rep, err := svc.Refresh(ctx, model.Job{Reason: "cli"})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := writeJSON(filepath.Join(opts.outDir, "players.json"), rep.Players); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(opts.outDir, "teams.json"), rep.Teams); err != nil {
		return err
	}

	logger.Get().Info(ctx, "ratings written",
		logger.String("out", opts.outDir),
		logger.Int("players", len(rep.Players.Players)),
		logger.Int("teams", len(rep.Teams.Teams)),
		logger.Int("games_processed", rep.Audit.Processed),
		logger.Int("games_skipped", rep.Audit.Skipped()),
	)
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
