package strategy

import (
	"fmt"
	"sort"

	"auto-trader/internal/interfaces"
	"auto-trader/internal/types"
)

// Config selects one strategy kind and carries its parameters. Only the
// fields relevant to the chosen kind are read; zero values fall back to
// the kind's defaults.
type Config struct {
	Kind        string  `yaml:"kind"`
	Window      int     `yaml:"window"`       // meanReversion
	Threshold   float64 `yaml:"threshold"`    // meanReversion, breakout
	ShortWindow int     `yaml:"short_window"` // trendFollowing
	LongWindow  int     `yaml:"long_window"`  // trendFollowing
	Lookback    int     `yaml:"lookback"`     // breakout
	ATRPeriod   int     `yaml:"atr_period"`   // volatility
	Multiplier  float64 `yaml:"multiplier"`   // volatility
}

// The strategy set is a closed registry: construction of an unknown
// kind fails fast with a descriptive error.
var registry = map[string]func(Config) interfaces.Strategy{
	"meanReversion":  func(c Config) interfaces.Strategy { return NewMeanReversion(c.Window, c.Threshold) },
	"trendFollowing": func(c Config) interfaces.Strategy { return NewTrendFollowing(c.ShortWindow, c.LongWindow) },
	"breakout":       func(c Config) interfaces.Strategy { return NewBreakout(c.Lookback, c.Threshold) },
	"volatility":     func(c Config) interfaces.Strategy { return NewVolatility(c.ATRPeriod, c.Multiplier) },
}

func New(cfg Config) (interfaces.Strategy, error) {
	mk, ok := registry[cfg.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown strategy kind %q (known: %v)", cfg.Kind, Kinds())
	}
	return mk(cfg), nil
}

func Known(kind string) bool {
	_, ok := registry[kind]
	return ok
}

func Kinds() []string {
	kinds := make([]string, 0, len(registry))
	for k := range registry {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

func closes(window []types.PricePoint) []float64 {
	prices := make([]float64, len(window))
	for i, p := range window {
		prices[i] = p.Price
	}
	return prices
}

func hold(reason string) *types.Signal {
	return &types.Signal{Action: types.ActionHold, Confidence: 0, Reason: reason}
}
