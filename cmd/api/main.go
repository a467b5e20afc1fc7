package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bd_pipeline_backend/internal/adapters"
	"bd_pipeline_backend/internal/events"
	"bd_pipeline_backend/internal/handover"
	handoverrepo "bd_pipeline_backend/internal/handover/repository"
	apphttp "bd_pipeline_backend/internal/http"
	"bd_pipeline_backend/internal/http/router"
	"bd_pipeline_backend/internal/leads"
	leadrepo "bd_pipeline_backend/internal/leads/repository"
	"bd_pipeline_backend/internal/scheduler"
	userrepo "bd_pipeline_backend/internal/users/repository"
	"bd_pipeline_backend/platform/config"
	"bd_pipeline_backend/platform/db"
	"bd_pipeline_backend/platform/logger"
	"bd_pipeline_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	var pool *pgxpool.Pool
	if err := db.WithRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	if err := db.RunMigrations(ctx, pool); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	enqueuer, closeScheduler := initHandoverEnqueuer(cfg, log)
	if closeScheduler != nil {
		defer closeScheduler()
	}

	handoverModule := handover.NewModule(handoverrepo.New(pool), eventBus, enqueuer, cfg.GetHandoverSyncDelay(), log)

	// Anti-corruption layer: leads only sees its own ports
	classifier := adapters.NewHandoverClassifierAdapter(handoverModule.Service())
	users := adapters.NewUserDirectoryAdapter(userrepo.New(pool))

	leadsModule, err := leads.NewModule(leadrepo.New(pool), eventBus, val, cfg, classifier, users, log)
	if err != nil {
		log.Error("failed to initialize leads module", "error", err)
		panic("failed to initialize leads module: " + err.Error())
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config: cfg,
		Logger: log,
		Health: db.NewPoolAdapter(pool),
		Modules: []apphttp.Module{
			leadsModule,
		},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		eventBus.Wait()
		return err
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initHandoverEnqueuer returns nil when Redis is not configured, so won
// leads get their handover sheet inline.
func initHandoverEnqueuer(cfg config.SchedulerConfig, log *logger.Logger) (scheduler.HandoverEnqueuer, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; handover sync runs inline")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}
