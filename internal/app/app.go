package app

import (
	"context"
	"fmt"
	"log/slog"

	"DigestEngine/internal/config"
	"DigestEngine/internal/infrastructure/ingesthttp"
	"DigestEngine/internal/infrastructure/llm"
	"DigestEngine/internal/infrastructure/scheduler"
	"DigestEngine/internal/infrastructure/storage"
	"DigestEngine/internal/ingest"
	"DigestEngine/internal/logging"
	"DigestEngine/internal/ports"
	"DigestEngine/internal/trust"
	"DigestEngine/internal/usecase"
)

// Application wires configuration to the engine and its lifecycle.
type Application struct {
	cfg       config.Config
	store     *storage.SQLiteStore
	engine    *usecase.Engine
	scheduler *usecase.Scheduler
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	store, err := storage.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	registry := ingest.NewRegistry()
	registry.Register(ingesthttp.NewSource(nil))

	source := ingest.NewAggregator(registry, cfg.Ingestion.Feeds, baseLogger.With("component", "ingest"))

	var evaluator ports.QualityEvaluator
	if cfg.Evaluator.APIKey != "" {
		evaluator = llm.NewEvaluator(cfg.Evaluator)
	}

	engine := usecase.NewEngine(usecase.EngineDeps{
		Source:    source,
		Evaluator: evaluator,
		Sources:   store,
		Pools:     store,
		Weights:   store,
		Playlists: store,
		Logger:    baseLogger.With("component", "engine"),
		Params: usecase.Params{
			MaxAgeDays:  cfg.Scoring.MaxAgeDays,
			TargetCount: cfg.Selection.TargetCount,
			Workers:     cfg.Selection.Workers,
			Policy: trust.Policy{
				LowThreshold:      cfg.Scoring.TrustLowThreshold,
				ProbationAfter:    cfg.Scoring.ProbationAfter,
				RedemptionCadence: cfg.Scoring.RedemptionCadence,
				MaxStepPerCycle:   cfg.Scoring.MaxTrustStep,
			},
			LeadWindow: trust.LeadWindow{
				CenterHours: cfg.Scoring.LeadCenterHours,
				OuterHours:  cfg.Scoring.LeadOuterHours,
			},
		},
	})

	driver := scheduler.NewCronScheduler(cfg.Scheduler.CronExpression, cfg.Scheduler.Location())

	return &Application{
		cfg:       cfg,
		store:     store,
		engine:    engine,
		scheduler: usecase.NewScheduler(driver, engine),
	}, nil
}

// Engine exposes the scoring engine to the CLI layer.
func (a *Application) Engine() *usecase.Engine {
	return a.engine
}

// Store exposes the repositories to the CLI layer.
func (a *Application) Store() *storage.SQLiteStore {
	return a.store
}

// RunDaemon starts the cron-driven daily batch and blocks until the
// context is cancelled.
func (a *Application) RunDaemon(ctx context.Context) error {
	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	<-ctx.Done()
	return a.scheduler.Stop(context.Background())
}

// Close releases held resources.
func (a *Application) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}
