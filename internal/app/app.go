package app

import (
	"context"
	"database/sql"
	"log/slog"

	"PortfolioDigest/internal/config"
	"PortfolioDigest/internal/infrastructure/archive"
	"PortfolioDigest/internal/infrastructure/bucket"
	"PortfolioDigest/internal/infrastructure/generator"
	"PortfolioDigest/internal/infrastructure/scheduler"
	"PortfolioDigest/internal/logging"
	"PortfolioDigest/internal/ports"
	"PortfolioDigest/internal/server"
	"PortfolioDigest/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	pipeline  *usecase.Pipeline
	scheduler *usecase.Scheduler
	server    *server.Server
	db        *sql.DB
}

// New builds a runnable application instance. Optional collaborators
// (generator, archive) degrade to nil when unconfigured or unreachable; the
// service still serves whatever it can parse.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	store := bucket.New(cfg.Storage, baseLogger.With("component", "bucket"))

	var gen ports.Generator
	if cfg.Generator.Endpoint != "" {
		gen = generator.NewClient(cfg.Generator)
	}

	var (
		arch ports.DigestArchive
		db   *sql.DB
	)
	if cfg.Database.DSN != "" {
		opened, err := archive.Open(ctx, cfg.Database.DSN)
		if err != nil {
			baseLogger.Warn("archive disabled", "error", err)
		} else {
			db = opened
			arch = archive.NewPostgresArchive(db)
		}
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Store:       store,
		Generator:   gen,
		Archive:     arch,
		SettleDelay: cfg.Scheduler.Settle(),
		Logger:      baseLogger.With("component", "pipeline"),
	})

	driver := scheduler.NewIntervalScheduler(cfg.Scheduler.Interval())
	sched := usecase.NewScheduler(driver, pipeline, baseLogger.With("component", "scheduler"))
	srv := server.New(cfg.Server.Addr, pipeline, baseLogger.With("component", "http"))

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		pipeline:  pipeline,
		scheduler: sched,
		server:    srv,
		db:        db,
	}
}

// Run performs an initial refresh, starts the periodic scheduler, and serves
// HTTP until the context is cancelled.
func (a *Application) Run(ctx context.Context) error {
	if a.db != nil {
		if err := archive.EnsureSchema(ctx, a.db); err != nil {
			a.logger.Warn("archive schema", "error", err)
		}
		defer func() { _ = a.db.Close() }()
	}

	// A failed first refresh is not fatal; the scheduler retries and the
	// HTTP layer serves a fallback page until a digest lands.
	if err := a.pipeline.Refresh(ctx); err != nil {
		a.logger.Warn("initial refresh", "error", err)
	}

	if err := a.scheduler.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = a.scheduler.Stop(context.WithoutCancel(ctx)) }()

	return a.server.Run(ctx)
}
