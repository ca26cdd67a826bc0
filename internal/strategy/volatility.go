package strategy

import (
	"fmt"

	"auto-trader/internal/ta"
	"auto-trader/internal/types"
)

// Volatility builds bands around the period SMA at ±ATR*multiplier and
// fades band crossings back toward the mean.
type Volatility struct {
	atrPeriod  int
	multiplier float64
}

func NewVolatility(atrPeriod int, multiplier float64) *Volatility {
	if atrPeriod <= 0 {
		atrPeriod = 14
	}
	if multiplier <= 0 {
		multiplier = 2
	}
	return &Volatility{atrPeriod: atrPeriod, multiplier: multiplier}
}

func (s *Volatility) Name() string   { return "Volatility" }
func (s *Volatility) MinWindow() int { return s.atrPeriod + 1 }

func (s *Volatility) Analyze(window []types.PricePoint) *types.Signal {
	if len(window) < s.atrPeriod+1 {
		return nil
	}
	prices := closes(window)
	price := prices[len(prices)-1]
	atr := ta.RangeATR(prices, s.atrPeriod)
	sma := ta.SMA(prices, s.atrPeriod)
	upper := sma + atr*s.multiplier
	lower := sma - atr*s.multiplier

	if price > upper {
		return &types.Signal{
			Action:     types.ActionSell,
			Confidence: 0.6,
			Reason:     fmt.Sprintf("price above volatility band %.4f", upper),
			StopLoss:   price * 1.02,
			TakeProfit: sma,
		}
	}
	if price < lower {
		return &types.Signal{
			Action:     types.ActionBuy,
			Confidence: 0.6,
			Reason:     fmt.Sprintf("price below volatility band %.4f", lower),
			StopLoss:   price * 0.98,
			TakeProfit: sma,
		}
	}
	return hold("volatility within bands")
}
