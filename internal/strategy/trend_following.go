package strategy

import (
	"fmt"

	"auto-trader/internal/ta"
	"auto-trader/internal/types"
)

// TrendFollowing looks for golden/death crosses of a short SMA over a
// long SMA. A cross only fires when the short SMA clears the long SMA
// by more than 2% and was on the other side one tick prior.
type TrendFollowing struct {
	shortWindow int
	longWindow  int
}

func NewTrendFollowing(shortWindow, longWindow int) *TrendFollowing {
	if shortWindow <= 0 {
		shortWindow = 5
	}
	if longWindow <= 0 {
		longWindow = 20
	}
	return &TrendFollowing{shortWindow: shortWindow, longWindow: longWindow}
}

func (s *TrendFollowing) Name() string   { return "TrendFollowing" }
func (s *TrendFollowing) MinWindow() int { return s.longWindow }

func (s *TrendFollowing) Analyze(window []types.PricePoint) *types.Signal {
	if len(window) < s.longWindow {
		return nil
	}
	prices := closes(window)
	price := prices[len(prices)-1]
	shortMA := ta.SMA(prices, s.shortWindow)
	longMA := ta.SMA(prices, s.longWindow)
	prev := prices[:len(prices)-1]

	if shortMA > longMA*1.02 && !s.wasAbove(prev) {
		return &types.Signal{
			Action:     types.ActionBuy,
			Confidence: 0.7,
			Reason:     fmt.Sprintf("golden cross: SMA(%d) above SMA(%d)", s.shortWindow, s.longWindow),
			StopLoss:   longMA * 0.98,
			TakeProfit: price * 1.1,
		}
	}
	if shortMA < longMA*0.98 && !s.wasBelow(prev) {
		return &types.Signal{
			Action:     types.ActionSell,
			Confidence: 0.7,
			Reason:     fmt.Sprintf("death cross: SMA(%d) below SMA(%d)", s.shortWindow, s.longWindow),
			StopLoss:   longMA * 1.02,
			TakeProfit: price * 0.9,
		}
	}
	return hold("no clear trend")
}

// wasAbove reports whether the short SMA was already above the long SMA
// one tick prior. On the first evaluable tick the prior SMAs are not
// computable and the prior state is taken as "not above", so a series
// already trending when the window fills counts as a fresh cross.
func (s *TrendFollowing) wasAbove(prev []float64) bool {
	if len(prev) < s.longWindow {
		return false
	}
	return ta.SMA(prev, s.shortWindow) > ta.SMA(prev, s.longWindow)
}

func (s *TrendFollowing) wasBelow(prev []float64) bool {
	if len(prev) < s.longWindow {
		return false
	}
	return ta.SMA(prev, s.shortWindow) < ta.SMA(prev, s.longWindow)
}
