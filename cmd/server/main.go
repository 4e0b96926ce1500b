package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/p-n-ai/curriculum-designer/internal/agent"
	"github.com/p-n-ai/curriculum-designer/internal/ai"
	"github.com/p-n-ai/curriculum-designer/internal/designer"
	"github.com/p-n-ai/curriculum-designer/internal/platform/cache"
	"github.com/p-n-ai/curriculum-designer/internal/platform/config"
	"github.com/p-n-ai/curriculum-designer/internal/platform/database"
	"github.com/p-n-ai/curriculum-designer/internal/platform/tracing"
	"github.com/p-n-ai/curriculum-designer/internal/prompt"
	"github.com/p-n-ai/curriculum-designer/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(newLogger(cfg.Log, os.Stdout))

	// Graceful shutdown on SIGTERM/SIGINT.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	shutdownTracing, err := tracing.Setup(cfg.Tracing.Enabled, os.Stderr)
	if err != nil {
		return err
	}
	defer shutdownTracing(context.Background())

	provider, closeProvider, err := newProvider(ctx, cfg.AI)
	if err != nil {
		return err
	}
	defer closeProvider()

	client := ai.NewClient(provider, ai.AttemptPolicy{MaxAttempts: cfg.AI.MaxAttempts, Timeout: cfg.AI.Timeout})

	catalogue, err := prompt.LoadCatalogue(cfg.Prompt.CataloguePath)
	if err != nil {
		return err
	}
	prompts, err := prompt.NewBuilder(catalogue)
	if err != nil {
		return err
	}

	checks := map[string]server.HealthChecker{}
	engineCfg := agent.EngineConfig{
		Client:    client,
		Prompts:   prompts,
		TrendsTTL: cfg.Cache.TrendsTTL,
	}

	if cfg.Cache.Enabled {
		c, err := cache.New(ctx, cfg.Cache.URL)
		if err != nil {
			return err
		}
		defer c.Close()
		engineCfg.Cache = c
		checks["cache"] = c
		slog.Info("trend cache enabled", "ttl", cfg.Cache.TrendsTTL)
	}

	var events agent.EventLogger = agent.NopEventLogger{}
	if cfg.HasDatabase() {
		db, err := database.New(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.EnsureSchema(ctx); err != nil {
			return err
		}
		events = agent.NewPostgresEventLogger(db.Pool)
		checks["database"] = db
		slog.Info("event sink enabled")
	}
	engineCfg.Events = events

	engine := agent.NewEngine(engineCfg)
	addAICheck(checks, engine)
	registry := designer.NewRegistry(cfg.Session.TTL, events)
	go registry.Run(ctx, time.Minute)

	srv := &http.Server{
		Addr: fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: server.New(server.Config{
			Engine:         engine,
			Registry:       registry,
			AllowedOrigins: cfg.Server.AllowedOrigins,
			Checks:         checks,
		}).Handler(),
		ReadTimeout: 10 * time.Second,
		// Long enough for one generation call.
		WriteTimeout: cfg.AI.Timeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", srv.Addr, "backend", cfg.AI.Backend, "model", cfg.AI.Google.Model)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	return nil
}

// addAICheck registers the engine as the "ai" readiness check. Without a
// key the service still serves sentinels, so it is left out.
func addAICheck(checks map[string]server.HealthChecker, engine *agent.Engine) {
	if !engine.Configured() {
		slog.Warn("no API key configured, generation is disabled", "env", "LEARN_AI_GOOGLE_API_KEY")
		return
	}
	checks["ai"] = engine
}

// newProvider builds the generative-language provider for the configured
// backend. The returned close func is always non-nil.
func newProvider(ctx context.Context, cfg config.AIConfig) (ai.Provider, func() error, error) {
	switch cfg.Backend {
	case "sdk":
		p, err := ai.NewGenaiProvider(ctx, cfg.Google.APIKey, cfg.Google.Model)
		if err != nil {
			return nil, nil, err
		}
		return p, p.Close, nil
	default:
		p := ai.NewGoogleProvider(cfg.Google.APIKey,
			ai.WithGoogleBaseURL(cfg.Google.BaseURL),
			ai.WithGoogleModel(cfg.Google.Model),
			ai.WithGoogleHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		)
		return p, func() error { return nil }, nil
	}
}

// newLogger builds the process logger from LEARN_LOG_LEVEL and LEARN_LOG_FORMAT.
func newLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
