package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/courtside/internal/adapters/archive"
	"github.com/okian/courtside/internal/adapters/http/api"
	"github.com/okian/courtside/internal/adapters/http/site"
	"github.com/okian/courtside/internal/adapters/http/swagger"
	"github.com/okian/courtside/internal/adapters/source"
	app "github.com/okian/courtside/internal/app"
	"github.com/okian/courtside/internal/config"
	"github.com/okian/courtside/internal/domain/elo"
	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/internal/domain/normalize"
	"github.com/okian/courtside/internal/domain/rating"
	"github.com/okian/courtside/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout            = 10 * time.Second
	writeTimeout           = 10 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	shutdownTimeout        = 30 * time.Second
	serviceMetricsInterval = 5 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() { _ = logger.Sync() }()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}
	log := configureLogging(ctx, cfg)

	var arch *archive.Archive
	if cfg.ArchivePath != "" {
		arch, err = archive.Open(cfg.ArchivePath)
		if err != nil {
			log.Error(ctx, "failed to open archive", logger.String("path", cfg.ArchivePath), logger.Error(err))
			return
		}
		defer func() { _ = arch.Close() }()
	}

	svc := newService(cfg, log, arch)
	if err := svc.Start(ctx); err != nil {
		log.Error(ctx, "failed to start service", logger.Error(err))
		return
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := svc.Stop(stopCtx); err != nil {
			log.Warn(stopCtx, "service stop incomplete", logger.Error(err))
		}
	}()

	if cfg.RefreshOnStart {
		if _, _, err := svc.Enqueue(ctx, model.Job{Reason: "startup"}); err != nil {
			log.Error(ctx, "failed to queue startup refresh", logger.Error(err))
		}
	}

	if cfg.WatchDataDir {
		w, err := watchDataDir(ctx, cfg.DataDir, svc, log)
		if err != nil {
			log.Error(ctx, "failed to watch data dir", logger.String("dir", cfg.DataDir), logger.Error(err))
		} else {
			defer func() { _ = w.Close() }()
		}
	}

	go startServiceMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, cfg, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
}

// configureLogging applies level and format, falling back to info/text on
// invalid input.
func configureLogging(ctx context.Context, cfg *config.Config) logger.Logger {
	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	if err := logger.SetFormat(cfg.LogFormat); err != nil {
		log.Warn(ctx, "invalid log_format; falling back to text", logger.String("log_format", cfg.LogFormat), logger.Error(err))
		_ = logger.SetFormat("text")
	}
	return logger.Get()
}

// newService builds the rating service from configuration. arch may be nil.
func newService(cfg *config.Config, log logger.Logger, arch *archive.Archive) *app.Service {
	norm := normalize.New(
		normalize.WithWinsorBounds(cfg.WinsorLow, cfg.WinsorHigh),
		normalize.WithConfidenceCap(cfg.ConfidenceCap),
	)
	engine := elo.NewEngine(
		elo.WithBase(cfg.EloBase),
		elo.WithK(cfg.EloK),
		elo.WithHomeAdvantage(cfg.EloHomeAdvantage),
	)
	opts := []app.Option{
		app.WithLogger(log.Named("service")),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithSeason(cfg.Season, cfg.SeasonType),
		app.WithQualification(cfg.MinMinutes, cfg.MinGames),
		app.WithCalculator(rating.NewCalculator(rating.WithNormalizer(norm))),
		app.WithEngine(engine),
		app.WithAllowedTeams(cfg.AllowedTeams),
	}
	if arch != nil {
		opts = append(opts, app.WithArchive(arch))
	}
	return app.New(source.NewFileSource(cfg.DataDir), opts...)
}

// newMux registers the landing page, API reference and business routes.
func newMux(ctx context.Context, cfg *config.Config, svc *app.Service) *http.ServeMux {
	mux := http.NewServeMux()
	site.Register(ctx, mux)
	swagger.Register(ctx, mux)
	api.NewServer(svc,
		api.WithMaxLimit(cfg.MaxLeaderboardLimit),
		api.WithRefreshRate(cfg.RefreshRatePerMin),
	).Register(ctx, mux)
	return mux
}

// watchDataDir queues a refresh whenever a table under dir changes.
func watchDataDir(ctx context.Context, dir string, svc *app.Service, log logger.Logger) (*source.Watcher, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	w, err := source.NewWatcher(dir, func(ctx context.Context) {
		if _, _, err := svc.Enqueue(ctx, model.Job{Reason: "watch"}); err != nil {
			log.Warn(ctx, "failed to queue refresh after data change", logger.Error(err))
		}
	}, source.WithLogger(log.Named("watcher")))
	if err != nil {
		return nil, err
	}
	go w.Run(ctx)
	log.Info(ctx, "watching data dir", logger.String("dir", dir))
	return w, nil
}

// startServiceMetricsUpdater refreshes queue gauges from service stats.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = svc.Stats(ctx)
		}
	}
}
