package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
initial_balance: 10000
strategy:
  kind: meanReversion
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Risk.MaxPositionSize != 500 {
		t.Errorf("Expected default max position size 500, got %f", cfg.Risk.MaxPositionSize)
	}
	if cfg.Risk.MaxTotalExposure != 2000 {
		t.Errorf("Expected default max exposure 2000, got %f", cfg.Risk.MaxTotalExposure)
	}
	if cfg.Risk.MaxDrawdown != 20 || cfg.Risk.MaxDailyTrades != 10 || cfg.Risk.MaxConcurrentPositions != 3 {
		t.Errorf("Unexpected risk defaults %+v", cfg.Risk)
	}
	if cfg.RiskPerTrade != 10 {
		t.Errorf("Expected default risk per trade 10, got %f", cfg.RiskPerTrade)
	}
	if cfg.Confidence.Backtest != 0.5 || cfg.Confidence.Live != 0.6 {
		t.Errorf("Unexpected confidence defaults %+v", cfg.Confidence)
	}
	if cfg.PollSeconds != 1 || cfg.WindowSize != 100 {
		t.Errorf("Unexpected live defaults poll=%d window=%d", cfg.PollSeconds, cfg.WindowSize)
	}
	if len(cfg.Strategies) != 1 || cfg.Strategies[0].Kind != "meanReversion" {
		t.Errorf("Expected Strategies to fall back to the single strategy, got %+v", cfg.Strategies)
	}
}

func TestLoadConfigUnknownStrategy(t *testing.T) {
	path := writeConfig(t, `
initial_balance: 10000
strategy:
  kind: astrology
`)
	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("Expected validation error for unknown strategy kind")
	}
	if !strings.Contains(err.Error(), "astrology") {
		t.Errorf("Expected the kind in the error, got %v", err)
	}
}

func TestLoadConfigBadBalance(t *testing.T) {
	path := writeConfig(t, `
initial_balance: -5
strategy:
  kind: meanReversion
`)
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("Expected validation error for negative balance")
	}
}

func TestLoadConfigExposureBelowPositionSize(t *testing.T) {
	path := writeConfig(t, `
initial_balance: 10000
strategy:
  kind: meanReversion
risk:
  max_position_size: 500
  max_total_exposure: 100
`)
	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("Expected validation error when exposure cap is below position cap")
	}
}

func TestValidateLiveRequiresMarkets(t *testing.T) {
	path := writeConfig(t, `
initial_balance: 10000
strategy:
  kind: breakout
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.ValidateLive(); err == nil {
		t.Fatal("Expected live validation to require markets")
	}

	cfg.Markets = []string{"BTC-USD"}
	if err := cfg.ValidateLive(); err != nil {
		t.Errorf("Expected live config valid with markets, got %v", err)
	}
}

func TestLoadConfigStrategiesOnly(t *testing.T) {
	path := writeConfig(t, `
initial_balance: 10000
strategies:
  - kind: trendFollowing
  - kind: breakout
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Expected a strategies-only config to validate, got %v", err)
	}
	if cfg.Strategy.Kind != "trendFollowing" {
		t.Errorf("Expected the single strategy to default to the first entry, got %q", cfg.Strategy.Kind)
	}
}

func TestLoadConfigNoStrategyAtAll(t *testing.T) {
	path := writeConfig(t, `
initial_balance: 10000
`)
	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("Expected validation error with neither strategy nor strategies")
	}
	if !strings.Contains(err.Error(), "no strategy configured") {
		t.Errorf("Expected a clear message, got %v", err)
	}
}

func TestLoadConfigMultipleStrategies(t *testing.T) {
	path := writeConfig(t, `
initial_balance: 10000
strategy:
  kind: meanReversion
strategies:
  - kind: trendFollowing
  - kind: volatility
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Strategies) != 2 {
		t.Fatalf("Expected explicit strategies preserved, got %+v", cfg.Strategies)
	}
}
