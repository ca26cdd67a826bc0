package engine

import (
	"context"
	"fmt"

	"auto-trader/internal/interfaces"
	"auto-trader/internal/logger"
	"auto-trader/internal/risk"
	"auto-trader/internal/tradelog"
	"auto-trader/internal/types"
)

// Config holds the live-loop parameters. Zero values are filled with
// the same defaults the backtester uses, except MinConfidence which is
// stricter against live data.
type Config struct {
	Markets           []string
	WindowSize        int
	RiskPerTrade      float64 // percent of current balance per position
	MinConfidence     float64 // exclusive threshold
	MaxHoldMs         int64   // 0 = hold until stop or take-profit
	StopLossPercent   float64 // fallback level when a signal sets none
	TakeProfitPercent float64
}

// Engine polls the feed once per Tick, drives exits for open positions
// and runs every strategy over each market's price window. At most one
// position per market; portfolio-wide limits stay with the risk
// manager. Not safe for concurrent use; the caller owns the tick loop.
type Engine struct {
	cfg        Config
	strategies []interfaces.Strategy
	rm         *risk.Manager
	feed       interfaces.Feed
	clock      interfaces.Clock

	windows      map[string][]types.PricePoint
	openByMarket map[string]string // market -> position id
	lastPrice    map[string]float64
	seq          int
}

var _ interfaces.Engine = (*Engine)(nil)

func New(cfg Config, strategies []interfaces.Strategy, rm *risk.Manager, feed interfaces.Feed, clock interfaces.Clock) *Engine {
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = 100
	}
	if cfg.RiskPerTrade <= 0 {
		cfg.RiskPerTrade = 10
	}
	if cfg.MinConfidence <= 0 {
		cfg.MinConfidence = 0.6
	}
	if cfg.StopLossPercent <= 0 {
		cfg.StopLossPercent = 5
	}
	if cfg.TakeProfitPercent <= 0 {
		cfg.TakeProfitPercent = 10
	}
	if clock == nil {
		clock = SystemClock()
	}
	return &Engine{
		cfg:          cfg,
		strategies:   strategies,
		rm:           rm,
		feed:         feed,
		clock:        clock,
		windows:      make(map[string][]types.PricePoint),
		openByMarket: make(map[string]string),
		lastPrice:    make(map[string]float64),
	}
}

// Tick runs one full pass: refresh every market's window, evaluate
// exits for open positions, then look for entries on flat markets.
// Feed errors abort the tick; io.EOF from a replay feed reaches the
// caller unchanged so it can wind the loop down.
func (e *Engine) Tick(ctx context.Context) (*types.TickResult, error) {
	now := e.clock.Now()
	res := &types.TickResult{Time: now.UnixMilli()}

	for _, market := range e.cfg.Markets {
		pt, err := e.feed.Latest(ctx, market)
		if err != nil {
			return nil, err
		}
		w := append(e.windows[market], pt)
		if len(w) > e.cfg.WindowSize {
			w = w[len(w)-e.cfg.WindowSize:]
		}
		e.windows[market] = w
		e.lastPrice[market] = pt.Price
	}

	for _, p := range e.rm.Positions() {
		price, ok := e.lastPrice[p.Market]
		if !ok {
			continue
		}
		check := e.rm.CheckExit(p.ID, price)
		reason := check.Reason
		if !check.ShouldExit {
			if p.MaxHoldMs <= 0 || now.UnixMilli()-p.EntryTime < p.MaxHoldMs {
				continue
			}
			reason = types.ExitTimeLimit
		}
		if err := e.closePosition(ctx, p, price, reason); err != nil {
			return nil, err
		}
		res.Closed = append(res.Closed, p.ID)
	}

	for _, market := range e.cfg.Markets {
		if _, open := e.openByMarket[market]; open {
			continue
		}
		id, opened, signals := e.tryOpen(ctx, market, now.UnixMilli())
		res.Signals += signals
		if opened {
			res.Opened = append(res.Opened, id)
		}
	}
	return res, nil
}

// tryOpen runs each strategy over the market's window until one signal
// clears the confidence bar and the risk manager admits it.
func (e *Engine) tryOpen(ctx context.Context, market string, nowMs int64) (string, bool, int) {
	window := e.windows[market]
	price := e.lastPrice[market]
	signals := 0

	for _, s := range e.strategies {
		if len(window) < s.MinWindow() {
			continue
		}
		sig := s.Analyze(window)
		if sig == nil || sig.Action == types.ActionHold {
			continue
		}
		signals++
		logger.Decision(ctx, market, string(sig.Action), sig.Confidence, sig.Reason, "strategy", s.Name())
		if err := tradelog.AppendDecision(tradelog.DecisionEntry{
			Market:     market,
			Strategy:   s.Name(),
			Action:     sig.Action,
			Confidence: sig.Confidence,
			Reason:     sig.Reason,
			Price:      price,
		}); err != nil {
			logger.Warn(ctx, "Failed to log decision", "error", err)
		}
		if sig.Confidence <= e.cfg.MinConfidence {
			continue
		}

		size := e.rm.CurrentBalance() * (e.cfg.RiskPerTrade / 100)
		if dec := e.rm.CanOpenPosition(size); !dec.Allowed {
			logger.Risk(ctx, market, "POSITION_REJECTED", "reason", dec.Reason, "size", size)
			continue
		}

		p := e.newPosition(market, sig, price, size, nowMs)
		e.rm.AddPosition(p)
		e.openByMarket[market] = p.ID
		logger.Trade(ctx, market, "OPEN", string(p.Side), p.Size, p.EntryPrice, p.ID,
			"stop_loss", p.StopLoss, "take_profit", p.TakeProfit)
		if err := tradelog.Append(tradelog.Entry{
			Event:      "OPEN",
			Market:     market,
			PositionID: p.ID,
			Side:       p.Side,
			Price:      p.EntryPrice,
			Size:       p.Size,
			Reason:     sig.Reason,
			Confidence: sig.Confidence,
		}); err != nil {
			logger.Warn(ctx, "Failed to log trade", "error", err)
		}
		return p.ID, true, signals
	}
	return "", false, signals
}

func (e *Engine) newPosition(market string, sig *types.Signal, price, size float64, nowMs int64) types.Position {
	side := types.SideLong
	if sig.Action == types.ActionSell {
		side = types.SideShort
	}
	stop, take := sig.StopLoss, sig.TakeProfit
	if stop == 0 {
		if side == types.SideLong {
			stop = price * (1 - e.cfg.StopLossPercent/100)
		} else {
			stop = price * (1 + e.cfg.StopLossPercent/100)
		}
	}
	if take == 0 {
		if side == types.SideLong {
			take = price * (1 + e.cfg.TakeProfitPercent/100)
		} else {
			take = price * (1 - e.cfg.TakeProfitPercent/100)
		}
	}
	e.seq++
	return types.Position{
		ID:         fmt.Sprintf("pos_%d_%d", nowMs, e.seq),
		Market:     market,
		Side:       side,
		EntryPrice: price,
		EntryTime:  nowMs,
		Size:       size,
		StopLoss:   stop,
		TakeProfit: take,
		MaxHoldMs:  e.cfg.MaxHoldMs,
	}
}

func (e *Engine) closePosition(ctx context.Context, p types.Position, price float64, reason types.ExitReason) error {
	closed, err := e.rm.RemovePosition(p.ID, price)
	if err != nil {
		return err
	}
	delete(e.openByMarket, p.Market)
	logger.Trade(ctx, p.Market, "CLOSE", string(p.Side), p.Size, price, p.ID,
		"pnl", closed.Pnl, "pnl_percent", closed.PnlPercent, "exit_reason", string(reason))
	if err := tradelog.Append(tradelog.Entry{
		Event:      "CLOSE",
		Market:     p.Market,
		PositionID: p.ID,
		Side:       p.Side,
		Price:      price,
		Size:       p.Size,
		Pnl:        closed.Pnl,
		PnlPercent: closed.PnlPercent,
		ExitReason: reason,
	}); err != nil {
		logger.Warn(ctx, "Failed to log trade", "error", err)
	}
	return nil
}

// Close flattens every remaining position at its market's last seen
// price (entry price if the market never ticked) and records the exits
// as MANUAL.
func (e *Engine) Close(ctx context.Context) error {
	for _, p := range e.rm.Positions() {
		price, ok := e.lastPrice[p.Market]
		if !ok {
			price = p.EntryPrice
		}
		if err := e.closePosition(ctx, p, price, types.ExitManual); err != nil {
			return err
		}
	}
	return nil
}
