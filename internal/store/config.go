package store

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"auto-trader/internal/risk"
	"auto-trader/internal/strategy"
)

// Config is the single yaml-backed configuration for both the backtest
// CLI and the live trading loop.
type Config struct {
	InitialBalance float64 `yaml:"initial_balance"`
	DataCSV        string  `yaml:"data_csv"`

	// Strategy drives backtests; Strategies drives the live engine and
	// defaults to the single Strategy when empty.
	Strategy   strategy.Config   `yaml:"strategy"`
	Strategies []strategy.Config `yaml:"strategies"`

	Risk risk.Config `yaml:"risk"`

	RiskPerTrade      float64 `yaml:"risk_per_trade"`
	StopLossPercent   float64 `yaml:"stop_loss_percent"`
	TakeProfitPercent float64 `yaml:"take_profit_percent"`

	// Separate thresholds on purpose: the reference behavior admits
	// signals above 0.5 offline and above 0.6 against live data.
	Confidence struct {
		Backtest float64 `yaml:"backtest"`
		Live     float64 `yaml:"live"`
	} `yaml:"confidence"`

	Warmup    int   `yaml:"warmup"`
	MaxHoldMs int64 `yaml:"max_hold_ms"`

	Markets     []string `yaml:"markets"`
	PollSeconds int      `yaml:"poll_seconds"`
	WindowSize  int      `yaml:"window_size"`
}

func (c *Config) Validate() error {
	if c.InitialBalance <= 0 {
		return fmt.Errorf("initial_balance must be positive, got %.2f", c.InitialBalance)
	}
	if c.Strategy.Kind == "" && len(c.Strategies) == 0 {
		return errors.New("no strategy configured: set strategy or strategies")
	}
	if c.Strategy.Kind != "" && !strategy.Known(c.Strategy.Kind) {
		return fmt.Errorf("unknown strategy kind %q: must be one of %v", c.Strategy.Kind, strategy.Kinds())
	}
	for _, sc := range c.Strategies {
		if !strategy.Known(sc.Kind) {
			return fmt.Errorf("unknown strategy kind %q: must be one of %v", sc.Kind, strategy.Kinds())
		}
	}
	if c.RiskPerTrade <= 0 || c.RiskPerTrade > 100 {
		return fmt.Errorf("risk_per_trade must be between 0-100, got %.2f", c.RiskPerTrade)
	}
	if c.Risk.MaxPositionSize <= 0 {
		return errors.New("risk.max_position_size must be positive")
	}
	if c.Risk.MaxTotalExposure < c.Risk.MaxPositionSize {
		return fmt.Errorf("risk.max_total_exposure %.2f below risk.max_position_size %.2f",
			c.Risk.MaxTotalExposure, c.Risk.MaxPositionSize)
	}
	if c.Risk.MaxConcurrentPositions <= 0 {
		return errors.New("risk.max_concurrent_positions must be positive")
	}
	if c.Risk.MaxDailyTrades <= 0 {
		return errors.New("risk.max_daily_trades must be positive")
	}
	if c.Confidence.Backtest <= 0 || c.Confidence.Backtest >= 1 {
		return fmt.Errorf("confidence.backtest must be in (0,1), got %.2f", c.Confidence.Backtest)
	}
	if c.Confidence.Live <= 0 || c.Confidence.Live >= 1 {
		return fmt.Errorf("confidence.live must be in (0,1), got %.2f", c.Confidence.Live)
	}
	return nil
}

// ValidateLive adds the checks only the live loop needs.
func (c *Config) ValidateLive() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if len(c.Markets) == 0 {
		return errors.New("markets cannot be empty")
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	// Reference defaults from the risk configuration.
	if c.Risk.MaxPositionSize == 0 {
		c.Risk.MaxPositionSize = 500
	}
	if c.Risk.MaxTotalExposure == 0 {
		c.Risk.MaxTotalExposure = 2000
	}
	if c.Risk.MaxDrawdown == 0 {
		c.Risk.MaxDrawdown = 20
	}
	if c.Risk.StopLossPercent == 0 {
		c.Risk.StopLossPercent = 5
	}
	if c.Risk.TakeProfitPercent == 0 {
		c.Risk.TakeProfitPercent = 10
	}
	if c.Risk.MaxDailyTrades == 0 {
		c.Risk.MaxDailyTrades = 10
	}
	if c.Risk.MaxConcurrentPositions == 0 {
		c.Risk.MaxConcurrentPositions = 3
	}

	if c.RiskPerTrade == 0 {
		c.RiskPerTrade = 10
	}
	if c.StopLossPercent == 0 {
		c.StopLossPercent = 5
	}
	if c.TakeProfitPercent == 0 {
		c.TakeProfitPercent = 10
	}
	if c.Confidence.Backtest == 0 {
		c.Confidence.Backtest = 0.5
	}
	if c.Confidence.Live == 0 {
		c.Confidence.Live = 0.6
	}
	if c.PollSeconds == 0 {
		c.PollSeconds = 1
	}
	if c.WindowSize == 0 {
		c.WindowSize = 100
	}
	if len(c.Strategies) == 0 && c.Strategy.Kind != "" {
		c.Strategies = []strategy.Config{c.Strategy}
	}
	if c.Strategy.Kind == "" && len(c.Strategies) > 0 {
		c.Strategy = c.Strategies[0]
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}
