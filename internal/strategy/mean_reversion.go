package strategy

import (
	"fmt"
	"math"

	"auto-trader/internal/ta"
	"auto-trader/internal/types"
)

// MeanReversion trades deviations from the rolling mean: sell when the
// latest price stretches more than threshold above it, buy when it
// stretches below, with confidence scaled by the z-score.
type MeanReversion struct {
	window    int
	threshold float64
}

func NewMeanReversion(window int, threshold float64) *MeanReversion {
	if window <= 0 {
		window = 20
	}
	if threshold <= 0 {
		threshold = 0.15
	}
	return &MeanReversion{window: window, threshold: threshold}
}

func (s *MeanReversion) Name() string   { return "MeanReversion" }
func (s *MeanReversion) MinWindow() int { return s.window }

func (s *MeanReversion) Analyze(window []types.PricePoint) *types.Signal {
	if len(window) < s.window {
		return nil
	}
	prices := closes(window)
	price := prices[len(prices)-1]
	recent := prices[len(prices)-s.window:]
	mean := ta.Mean(recent)
	sd := ta.StdDev(prices, s.window)

	// A zero standard deviation means every price in the window equals
	// the mean, so neither deviation branch can be taken; guard anyway
	// so the z-score is never a division by zero.
	if price > mean*(1+s.threshold) {
		if sd == 0 {
			return hold("zero variance in window")
		}
		z := (price - mean) / sd
		return &types.Signal{
			Action:     types.ActionSell,
			Confidence: math.Min(math.Abs(z)/2, 1),
			Reason:     fmt.Sprintf("price %.1f%% above mean, z-score %.2f", (price/mean-1)*100, z),
			StopLoss:   price * 1.05,
			TakeProfit: mean,
		}
	}
	if price < mean*(1-s.threshold) {
		if sd == 0 {
			return hold("zero variance in window")
		}
		z := (price - mean) / sd
		return &types.Signal{
			Action:     types.ActionBuy,
			Confidence: math.Min(math.Abs(z)/2, 1),
			Reason:     fmt.Sprintf("price %.1f%% below mean, z-score %.2f", (1-price/mean)*100, z),
			StopLoss:   price * 0.95,
			TakeProfit: mean,
		}
	}
	return hold("price within normal range")
}
