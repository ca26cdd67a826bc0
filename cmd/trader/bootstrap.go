package main

import (
	"context"
	"fmt"
	"os"

	"auto-trader/internal/engine"
	"auto-trader/internal/engine/engineobs"
	"auto-trader/internal/feed"
	"auto-trader/internal/interfaces"
	"auto-trader/internal/logger"
	"auto-trader/internal/risk"
	"auto-trader/internal/store"
	"auto-trader/internal/strategy"
	"auto-trader/internal/trace"
	"auto-trader/internal/tradelog"

	"github.com/joho/godotenv"
)

// initializeSystem initializes environment, logger and tracer
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}

	return nil
}

func configPath() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "config.yaml"
}

func loadConfig(ctx context.Context) (*store.Config, error) {
	cfg, err := store.LoadConfig(configPath())
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err)
		return nil, err
	}
	if err := cfg.ValidateLive(); err != nil {
		logger.ErrorWithErr(ctx, "Invalid live config", err)
		return nil, err
	}
	return cfg, nil
}

// compressOldLogs compresses old tradelog files if retention is configured
func compressOldLogs(ctx context.Context) {
	if v := os.Getenv("TRADER_LOG_RETENTION_DAYS"); v != "" {
		var n int
		fmt.Sscanf(v, "%d", &n)
		if err := tradelog.CompressOlder(n); err != nil {
			logger.Warn(ctx, "Failed to compress old logs", "error", err)
		}
	}
}

func initializeStrategies(ctx context.Context, cfg *store.Config) ([]interfaces.Strategy, error) {
	strategies := make([]interfaces.Strategy, 0, len(cfg.Strategies))
	for _, sc := range cfg.Strategies {
		s, err := strategy.New(sc)
		if err != nil {
			return nil, err
		}
		logger.Info(ctx, "Strategy enabled", "strategy", s.Name(), "min_window", s.MinWindow())
		strategies = append(strategies, s)
	}
	return strategies, nil
}

// initializeEngine wires the engine and its observability middleware
func initializeEngine(cfg *store.Config, strategies []interfaces.Strategy, rm *risk.Manager, src interfaces.Feed) interfaces.Engine {
	eng := engine.New(engine.Config{
		Markets:           cfg.Markets,
		WindowSize:        cfg.WindowSize,
		RiskPerTrade:      cfg.RiskPerTrade,
		MinConfidence:     cfg.Confidence.Live,
		MaxHoldMs:         cfg.MaxHoldMs,
		StopLossPercent:   cfg.StopLossPercent,
		TakeProfitPercent: cfg.TakeProfitPercent,
	}, strategies, rm, src, engine.SystemClock())

	return engineobs.Wrap(eng)
}

func initializeFeed(ctx context.Context, cfg *store.Config) (interfaces.Feed, error) {
	src, err := feed.NewCSVReplay(cfg.DataCSV)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load price data", err, "path", cfg.DataCSV)
		return nil, err
	}
	logger.Info(ctx, "Replaying recorded prices", "path", cfg.DataCSV, "markets", cfg.Markets)
	return src, nil
}
