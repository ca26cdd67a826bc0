package backtest

import (
	"math"

	"auto-trader/internal/types"
)

// Summarize rolls a trade log up into portfolio statistics. Every ratio
// defines its degenerate case explicitly: win rate is 0 with no trades,
// the Sharpe-like ratio is 0 with no trades or zero variance, and the
// profit factor is 0 with no losses. Nothing here ever returns NaN.
func Summarize(trades []types.Trade, initialBalance, finalBalance, maxDrawdownPct float64) types.Report {
	rep := types.Report{
		InitialBalance: initialBalance,
		FinalBalance:   finalBalance,
		TotalTrades:    len(trades),
		MaxDrawdown:    maxDrawdownPct,
	}
	if initialBalance != 0 {
		rep.TotalReturn = (finalBalance - initialBalance) / initialBalance * 100
	}

	var grossProfit, grossLoss float64
	for _, t := range trades {
		if t.Pnl > 0 {
			rep.WinningTrades++
			grossProfit += t.Pnl
			if t.Pnl > rep.LargestWin {
				rep.LargestWin = t.Pnl
			}
		} else {
			rep.LosingTrades++
			grossLoss += -t.Pnl
			if t.Pnl < rep.LargestLoss {
				rep.LargestLoss = t.Pnl
			}
		}
	}

	if len(trades) > 0 {
		rep.WinRate = float64(rep.WinningTrades) / float64(len(trades)) * 100
	}
	if grossLoss > 0 {
		rep.ProfitFactor = grossProfit / grossLoss
	}
	if rep.WinningTrades > 0 {
		rep.AvgWin = grossProfit / float64(rep.WinningTrades)
	}
	if rep.LosingTrades > 0 {
		rep.AvgLoss = grossLoss / float64(rep.LosingTrades)
	}
	rep.SharpeRatio = sharpe(trades)
	return rep
}

// sharpe is mean(pnlPercent)/stddev(pnlPercent) across trades, with
// population standard deviation.
func sharpe(trades []types.Trade) float64 {
	if len(trades) == 0 {
		return 0
	}
	mean := 0.0
	for _, t := range trades {
		mean += t.PnlPercent
	}
	mean /= float64(len(trades))

	variance := 0.0
	for _, t := range trades {
		d := t.PnlPercent - mean
		variance += d * d
	}
	variance /= float64(len(trades))

	sd := math.Sqrt(variance)
	if sd == 0 {
		return 0
	}
	return mean / sd
}
