package backtest

import (
	"context"
	"fmt"

	"auto-trader/internal/interfaces"
	"auto-trader/internal/logger"
	"auto-trader/internal/risk"
	"auto-trader/internal/strategy"
	"auto-trader/internal/types"
)

// Runner walks a price series one tick at a time, holding at most one
// open position: FLAT -> (signal admitted) -> OPEN -> (exit) -> FLAT.
type Runner struct {
	cfg    Config
	strat  interfaces.Strategy
	warmup int
	seq    int
}

func NewRunner(cfg Config) (*Runner, error) {
	if cfg.InitialBalance <= 0 {
		return nil, fmt.Errorf("initial balance must be positive, got %.2f", cfg.InitialBalance)
	}
	strat, err := strategy.New(cfg.Strategy)
	if err != nil {
		return nil, err
	}
	if cfg.RiskPerTrade <= 0 {
		cfg.RiskPerTrade = 10
	}
	if cfg.StopLossPercent <= 0 {
		cfg.StopLossPercent = 5
	}
	if cfg.TakeProfitPercent <= 0 {
		cfg.TakeProfitPercent = 10
	}
	if cfg.MinConfidence <= 0 {
		cfg.MinConfidence = 0.5
	}
	warmup := cfg.Warmup
	if warmup <= 0 {
		warmup = strat.MinWindow()
		if warmup < 20 {
			warmup = 20
		}
	}
	return &Runner{cfg: cfg, strat: strat, warmup: warmup}, nil
}

// Run simulates the series and returns the report and trade log. The
// risk manager gates every entry; its rejections are expected and the
// loop simply stays flat. A position still open when the series ends is
// discarded, not recorded as a trade.
func (r *Runner) Run(ctx context.Context, series []types.PricePoint) (*Result, error) {
	rm := risk.NewManager(r.cfg.Risk, r.cfg.InitialBalance)

	balance := r.cfg.InitialBalance
	peak := balance
	maxDrawdown := 0.0

	var open *types.Position
	trades := []types.Trade{}

	logger.Info(ctx, "Backtest started",
		"strategy", r.strat.Name(),
		"points", len(series),
		"initial_balance", r.cfg.InitialBalance,
		"warmup", r.warmup,
	)

	for i := r.warmup; i < len(series); i++ {
		window := series[:i+1]
		price := series[i].Price
		ts := series[i].Ts

		if open != nil {
			if reason, ok := exitReason(open, price, ts); ok {
				trade := closeTrade(open, price, ts, reason)
				balance += trade.Pnl
				if balance > peak {
					peak = balance
				}
				if dd := (peak - balance) / peak; dd > maxDrawdown {
					maxDrawdown = dd
				}
				trades = append(trades, trade)
				// The manager must know this id; a miss means the
				// one-position-per-track invariant broke.
				if _, err := rm.RemovePosition(open.ID, price); err != nil {
					return nil, err
				}
				logger.Debug(ctx, "Position closed",
					"id", open.ID, "reason", reason, "pnl", trade.Pnl, "balance", balance)
				open = nil
			}
		}

		if open == nil {
			sig := r.strat.Analyze(window)
			if sig == nil || sig.Action == types.ActionHold || sig.Confidence <= r.cfg.MinConfidence {
				continue
			}
			size := balance * (r.cfg.RiskPerTrade / 100)
			if dec := rm.CanOpenPosition(size); !dec.Allowed {
				logger.Debug(ctx, "Signal rejected by risk limits", "reason", dec.Reason)
				continue
			}
			r.seq++
			open = r.openPosition(sig, price, ts, size)
			// The manager realizes priceDiff times the size it stores.
			// Register the unit quantity bought with the notional so the
			// manager's balance moves by the same pnl the trade log
			// records and its drawdown gate tracks the real equity curve.
			reg := *open
			reg.Size = size / price
			rm.AddPosition(reg)
			logger.Debug(ctx, "Position opened",
				"id", open.ID, "side", open.Side, "entry", price, "size", size, "reason", sig.Reason)
		}
	}

	report := Summarize(trades, r.cfg.InitialBalance, balance, maxDrawdown*100)
	logger.Info(ctx, "Backtest finished",
		"trades", report.TotalTrades,
		"final_balance", report.FinalBalance,
		"total_return_pct", report.TotalReturn,
		"win_rate", report.WinRate,
	)
	return &Result{Report: report, Trades: trades}, nil
}

func (r *Runner) openPosition(sig *types.Signal, price float64, ts int64, size float64) *types.Position {
	side := types.SideLong
	if sig.Action == types.ActionSell {
		side = types.SideShort
	}
	sl, tp := sig.StopLoss, sig.TakeProfit
	if sl == 0 {
		if side == types.SideLong {
			sl = price * (1 - r.cfg.StopLossPercent/100)
		} else {
			sl = price * (1 + r.cfg.StopLossPercent/100)
		}
	}
	if tp == 0 {
		if side == types.SideLong {
			tp = price * (1 + r.cfg.TakeProfitPercent/100)
		} else {
			tp = price * (1 - r.cfg.TakeProfitPercent/100)
		}
	}
	return &types.Position{
		ID:         fmt.Sprintf("bt_%d_%d", ts, r.seq),
		Side:       side,
		EntryPrice: price,
		EntryTime:  ts,
		Size:       size,
		StopLoss:   sl,
		TakeProfit: tp,
		MaxHoldMs:  r.cfg.MaxHoldMs,
	}
}

// exitReason checks exit conditions in a fixed order: stop-loss, then
// take-profit, then time limit. A tick satisfying several conditions is
// resolved deterministically in favor of the stop-loss.
func exitReason(p *types.Position, price float64, ts int64) (types.ExitReason, bool) {
	long := p.Side == types.SideLong
	if long && price <= p.StopLoss {
		return types.ExitStopLoss, true
	}
	if !long && price >= p.StopLoss {
		return types.ExitStopLoss, true
	}
	if long && price >= p.TakeProfit {
		return types.ExitTakeProfit, true
	}
	if !long && price <= p.TakeProfit {
		return types.ExitTakeProfit, true
	}
	if p.MaxHoldMs > 0 && ts-p.EntryTime >= p.MaxHoldMs {
		return types.ExitTimeLimit, true
	}
	return "", false
}

// closeTrade realizes pnl per unit of entry price:
// LONG (exit-entry)/entry*size, SHORT mirrored.
func closeTrade(p *types.Position, price float64, ts int64, reason types.ExitReason) types.Trade {
	priceDiff := price - p.EntryPrice
	if p.Side == types.SideShort {
		priceDiff = p.EntryPrice - price
	}
	pnl := priceDiff * (p.Size / p.EntryPrice)
	return types.Trade{
		Market:     p.Market,
		Side:       p.Side,
		EntryTime:  p.EntryTime,
		ExitTime:   ts,
		EntryPrice: p.EntryPrice,
		ExitPrice:  price,
		Size:       p.Size,
		Pnl:        pnl,
		PnlPercent: pnl / p.Size * 100,
		ExitReason: reason,
	}
}
