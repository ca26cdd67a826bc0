package strategy

import (
	"fmt"

	"auto-trader/internal/ta"
	"auto-trader/internal/types"
)

// Breakout trades range escapes: a close beyond the high/low of the
// lookback prices preceding the current tick, by more than threshold,
// targets a move of one full range width.
type Breakout struct {
	lookback  int
	threshold float64
}

func NewBreakout(lookback int, threshold float64) *Breakout {
	if lookback <= 0 {
		lookback = 20
	}
	if threshold <= 0 {
		threshold = 0.02
	}
	return &Breakout{lookback: lookback, threshold: threshold}
}

func (s *Breakout) Name() string { return "Breakout" }

// MinWindow is lookback+1: the range excludes the current tick.
func (s *Breakout) MinWindow() int { return s.lookback + 1 }

func (s *Breakout) Analyze(window []types.PricePoint) *types.Signal {
	if len(window) < s.lookback+1 {
		return nil
	}
	prices := closes(window)
	price := prices[len(prices)-1]
	preceding := prices[len(prices)-1-s.lookback : len(prices)-1]
	hi, lo := ta.HighLow(preceding)
	rng := hi - lo

	if price > hi*(1+s.threshold) {
		return &types.Signal{
			Action:     types.ActionBuy,
			Confidence: 0.75,
			Reason:     fmt.Sprintf("broke above %d-tick high %.4f", s.lookback, hi),
			StopLoss:   hi * 0.99,
			TakeProfit: price + rng,
		}
	}
	if price < lo*(1-s.threshold) {
		return &types.Signal{
			Action:     types.ActionSell,
			Confidence: 0.75,
			Reason:     fmt.Sprintf("broke below %d-tick low %.4f", s.lookback, lo),
			StopLoss:   lo * 1.01,
			TakeProfit: price - rng,
		}
	}
	return hold("no breakout")
}
