package backtest

import (
	"auto-trader/internal/risk"
	"auto-trader/internal/strategy"
	"auto-trader/internal/types"
)

// Config drives one backtest track: one strategy against one price
// series under one risk configuration.
type Config struct {
	InitialBalance float64         `yaml:"initial_balance"`
	Strategy       strategy.Config `yaml:"strategy"`
	Risk           risk.Config     `yaml:"risk"`

	// RiskPerTrade sizes each entry as a percent of the balance at the
	// moment of entry.
	RiskPerTrade float64 `yaml:"risk_per_trade"`

	// Fallback stop/target percents applied when a signal carries no
	// explicit levels.
	StopLossPercent   float64 `yaml:"stop_loss_percent"`
	TakeProfitPercent float64 `yaml:"take_profit_percent"`

	// MinConfidence is the signal admission threshold. Offline backtests
	// reference 0.5; live-data backtests reference 0.6.
	MinConfidence float64 `yaml:"min_confidence"`

	// Warmup is the number of leading observations skipped before the
	// strategy is queried. Zero means the strategy's own minimum window
	// (floor 20).
	Warmup int `yaml:"warmup"`

	// MaxHoldMs closes a position after this many milliseconds with a
	// TIME_LIMIT exit. Zero disables the time limit.
	MaxHoldMs int64 `yaml:"max_hold_ms"`
}

// Result is a completed run: the summary report plus the full ordered
// trade log, insertion order = chronological close order.
type Result struct {
	Report types.Report  `json:"report"`
	Trades []types.Trade `json:"trades"`
}
