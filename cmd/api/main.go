// Package main is the entry point for the dive logbook API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for goose
	"github.com/pressly/goose/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pkordes/dive-logbook/internal/config"
	"github.com/pkordes/dive-logbook/internal/handler"
	"github.com/pkordes/dive-logbook/internal/middleware"
	"github.com/pkordes/dive-logbook/internal/repo"
	"github.com/pkordes/dive-logbook/internal/service"
	"github.com/pkordes/dive-logbook/migrations"
	"github.com/pkordes/dive-logbook/spec"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Store ------------------------------------------------------------
	ctx := context.Background()
	st, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open dive store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer st.close()
	slog.Info("dive store ready", "driver", cfg.StoreDriver)

	// --- Service ----------------------------------------------------------
	svc := service.NewDiveListService(st.dives, st.trips, service.Options{
		Autogroup: cfg.Autogroup,
		Window:    cfg.TripWindow,
		Units:     cfg.Units,
		Font:      cfg.Font,
		Logger:    logger,
	})
	if err := svc.Load(ctx); err != nil {
		slog.Error("failed to load logbook", "error", err)
		os.Exit(1)
	}

	// --- Router -----------------------------------------------------------
	// Middleware order: RequestID → RealIP → Logger → Recoverer → CORS → body limit.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	r.Get("/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(spec.OpenAPI)
	})
	r.Handle("/metrics", promhttp.Handler())
	handler.HandlerFromMux(handler.NewServer(svc, svc, svc, svc), r)

	// --- HTTP Server ------------------------------------------------------
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// store bundles the repositories of the configured driver with its cleanup.
type store struct {
	dives repo.DiveRepo
	trips repo.TripHintRepo
	close func()
}

func openStore(ctx context.Context, cfg config.Config) (store, error) {
	if cfg.StoreDriver == config.DriverSQLite {
		db, err := repo.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return store{}, err
		}
		return store{
			dives: repo.NewSQLiteDiveRepo(db),
			trips: repo.NewSQLiteTripHintRepo(db),
			close: func() { _ = db.Close() },
		}, nil
	}

	if err := migrate(ctx, cfg.DatabaseURL); err != nil {
		return store{}, err
	}

	// pgxpool.New does not open connections; the ping does.
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return store{}, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return store{}, fmt.Errorf("ping: %w", err)
	}
	return store{
		dives: repo.NewDiveRepo(pool),
		trips: repo.NewTripHintRepo(pool),
		close: pool.Close,
	}, nil
}

// migrate applies pending Postgres migrations. goose needs database/sql,
// so it runs on its own short-lived connection.
func migrate(ctx context.Context, dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open migrations connection: %w", err)
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("create goose provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("migrations applied", "count", len(results))
	return nil
}
