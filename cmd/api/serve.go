package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"github.com/MarcoEnzoS/14608und1Nacht/internal/config"
	"github.com/MarcoEnzoS/14608und1Nacht/internal/family"
	"github.com/MarcoEnzoS/14608und1Nacht/internal/handler"
	"github.com/MarcoEnzoS/14608und1Nacht/internal/repo"
	"github.com/MarcoEnzoS/14608und1Nacht/internal/service"
	"github.com/MarcoEnzoS/14608und1Nacht/internal/tripstore"
	"github.com/MarcoEnzoS/14608und1Nacht/migrations"
)

// newServeCommand creates "serve", which runs the HTTP API until SIGINT or
// SIGTERM.
func newServeCommand(_ *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	roster, err := config.LoadRoster(cfg.RosterFile)
	if err != nil {
		return fmt.Errorf("roster error: %w", err)
	}

	// --- Logger -----------------------------------------------------------
	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	// --- Database ---------------------------------------------------------
	pool, err := connect(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return err
	}
	defer pool.Close()
	slog.Info("database connection established")

	sqlDB := stdlib.OpenDBFromPool(pool)
	n, err := migrations.Up(ctx, sqlDB)
	_ = sqlDB.Close()
	if err != nil {
		return err
	}
	slog.Info("migrations applied", "count", n)

	// --- Services ---------------------------------------------------------
	adapter := tripstore.NewAdapter(
		repo.NewEventRepo(pool),
		repo.NewRSVPRepo(pool),
		repo.NewMealRepo(pool),
		repo.NewProfileRepo(pool),
	)
	planner := service.NewPlanner(adapter, roster, family.NewResolver(roster.Guardians), service.PlannerOptions{
		AdminName:      cfg.AdminName,
		AdminPIN:       cfg.AdminPIN,
		PollInterval:   cfg.PollInterval,
		PersistTimeout: cfg.PersistTimeout,
		Logger:         logger,
	})

	// --- Router -----------------------------------------------------------
	srv := handler.NewServer(planner, handler.NewCookieStore(cfg.SessionSecret), pool, logger)
	router := handler.NewRouter(srv, handler.RouterConfig{
		CORSOrigins:  cfg.CORSOrigins,
		MaxBodyBytes: 1 << 20,
		Logger:       logger,
	})

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", httpSrv.Addr, "participants", len(roster.Participants))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		planner.Shutdown()
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}
	slog.Info("shutting down server")

	// In-flight requests get up to 15 seconds; then every session is ended
	// and outstanding background writes are drained before the pool closes.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	planner.Shutdown()
	slog.Info("server stopped")
	return nil
}
