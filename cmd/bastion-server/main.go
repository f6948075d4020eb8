package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // Register pgx as database/sql driver
	"github.com/triage-ai/bastion/internal/api"
	"github.com/triage-ai/bastion/internal/cache"
	"github.com/triage-ai/bastion/internal/engine"
	"github.com/triage-ai/bastion/internal/llm"
	"github.com/triage-ai/bastion/internal/storage"
	"github.com/triage-ai/bastion/internal/store"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	// Logger
	logger := mustBuildLogger(envOrDefault("BASTION_LOG_LEVEL", "info"))
	defer logger.Sync() //nolint:errcheck // best-effort flush

	// Config from env
	httpPort := envOrDefault("BASTION_HTTP_PORT", "8080")
	blockThreshold := envOrDefaultFloat("BASTION_BLOCK_THRESHOLD", 0.8)
	cacheSize := envOrDefaultInt("BASTION_CACHE_SIZE", cache.DefaultCapacity)
	ollamaURL := envOrDefault("BASTION_OLLAMA_URL", "http://localhost:11434")
	ollamaModel := envOrDefault("BASTION_OLLAMA_MODEL", "llama2")
	llmTimeoutMs := envOrDefaultInt("BASTION_LLM_TIMEOUT_MS", 30_000)
	apiKeyHash := os.Getenv("BASTION_API_KEY_HASH")
	clickhouseDSN := os.Getenv("CLICKHOUSE_DSN")
	postgresDSN := os.Getenv("POSTGRES_DSN")

	logger.Info("starting bastion server",
		zap.String("http_port", httpPort),
		zap.Float64("block_threshold", blockThreshold),
		zap.Int("cache_size", cacheSize),
		zap.String("ollama_url", ollamaURL),
		zap.String("ollama_model", ollamaModel),
		zap.Int("llm_timeout_ms", llmTimeoutMs),
	)

	// Deployment blocklist — extra terms from Postgres, if configured
	var extraTerms []string
	if postgresDSN != "" {
		db, err := sql.Open("pgx", postgresDSN)
		if err != nil {
			logger.Fatal("failed to open postgres", zap.Error(err))
		}
		defer func() { _ = db.Close() }()
		db.SetMaxOpenConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		terms, err := store.NewStore(db).GetBlocklistTerms(ctx)
		cancel()
		if err != nil {
			logger.Fatal("failed to load blocklist terms", zap.Error(err))
		}
		extraTerms = terms
		logger.Info("deployment blocklist loaded", zap.Int("terms", len(terms)))
	} else {
		logger.Info("no POSTGRES_DSN set, using built-in blocklist only")
	}

	// Engine
	model := llm.NewOllamaClient(ollamaURL, ollamaModel, time.Duration(llmTimeoutMs)*time.Millisecond)
	eng := engine.NewFirewallEngine(
		engine.NewRuleMatcher(extraTerms),
		engine.NewSafetyClassifier(model, logger),
		engine.NewResponseGenerator(model, logger),
		cache.New[engine.Classification](cacheSize),
		engine.PolicyConfig{BlockThreshold: blockThreshold},
		logger,
	)

	// Storage — ClickHouse or LogWriter fallback
	var writer storage.EventWriter
	if clickhouseDSN != "" {
		chWriter, err := storage.NewClickHouseWriter(clickhouseDSN, logger)
		if err != nil {
			logger.Warn("clickhouse connection failed, falling back to log writer",
				zap.Error(err),
			)
			writer = storage.NewLogWriter(logger)
		} else {
			writer = chWriter
			logger.Info("clickhouse writer connected")
		}
	} else {
		writer = storage.NewLogWriter(logger)
		logger.Info("no CLICKHOUSE_DSN set, using log writer")
	}
	defer writer.Close()

	// HTTP server
	deps := &api.Dependencies{
		Engine:     eng,
		Writer:     writer,
		Logger:     logger,
		APIKeyHash: apiKeyHash,
	}
	httpServer := &http.Server{
		Addr:         ":" + httpPort,
		Handler:      api.NewRouter(deps),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second, // generation calls can be slow
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("http server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	// Block until shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("received signal, shutting down", zap.String("signal", sig.String()))

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", zap.Error(err))
	}

	logger.Info("bastion server stopped")
}

func mustBuildLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to build logger: %v", err))
	}
	return logger
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envOrDefaultInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func envOrDefaultFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
