// campusql server - college enquiry assistant over WebSocket and REST.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/rkvadlamudi/campusql/internal/audit"
	"github.com/rkvadlamudi/campusql/internal/catalog"
	"github.com/rkvadlamudi/campusql/internal/config"
	"github.com/rkvadlamudi/campusql/internal/engine"
	"github.com/rkvadlamudi/campusql/internal/providers"
	"github.com/rkvadlamudi/campusql/internal/search"
	"github.com/rkvadlamudi/campusql/internal/transport"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "db", cfg.DBPath, "provider", cfg.Provider)

	store, err := catalog.OpenSQLite(context.Background(), cfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	tables, err := store.Tables(context.Background())
	if err != nil {
		slog.Error("Failed to enumerate tables", "error", err)
		os.Exit(1)
	}
	names := catalog.NewNameList(tables)
	slog.Info("Database connected", "tables", len(tables))

	llm, model, err := providers.NewLLMClient(cfg.Provider, cfg.Model, cfg.BaseURL)
	if err != nil {
		slog.Error("Failed to create LLM client", "error", err)
		os.Exit(1)
	}
	slog.Info("Generation service ready", "provider", cfg.Provider, "model", model)

	auditLog, err := audit.New(cfg.AuditPath)
	if err != nil {
		slog.Error("Failed to open audit log", "error", err)
		os.Exit(1)
	}
	defer auditLog.Close()

	index, err := search.New(engine.DefaultTableDescriptions)
	if err != nil {
		slog.Error("Failed to build table index", "error", err)
		os.Exit(1)
	}
	defer index.Close()

	eng := engine.New(engine.Options{
		LLM:         llm,
		Store:       store,
		Names:       names,
		Audit:       auditLog,
		Institute:   cfg.InstituteName,
		SampleRows:  cfg.SampleRows,
		FuzzyCutoff: cfg.FuzzyCutoff,
		MaxAttempts: cfg.MaxAttempts,
		CallTimeout: cfg.CallTimeout,
		Fallback:    index,
	})

	watcher, err := catalog.NewWatcher(cfg.DBPath, names, store)
	if err != nil {
		slog.Error("Failed to create database watcher", "error", err)
		os.Exit(1)
	}
	watcher.OnChange(func() {
		slog.Info("Database changed, table list refreshed", "tables", len(names.Snapshot()))
	})
	if err := watcher.Start(); err != nil {
		slog.Error("Failed to start database watcher", "error", err)
		os.Exit(1)
	}
	defer watcher.Stop()

	registry := engine.NewRegistry(cfg.HistoryBound)
	api := transport.NewAPI(eng, store, names, cfg.HistoryBound)
	ws := transport.NewWebSocketHandler(eng, registry, cfg.MinMessageInterval, cfg.InstituteName)

	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     transport.NewRouter(api, ws),
		ReadTimeout: 30 * time.Second,
		// WebSocket sessions stay open indefinitely.
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
