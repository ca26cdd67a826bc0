package risk

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"auto-trader/internal/types"
)

// ErrPositionNotFound indicates a close was requested for a position id
// the manager has no record of. This is a caller-contract violation,
// not a recoverable trading condition.
var ErrPositionNotFound = errors.New("position not found")

// Config carries the portfolio-wide risk limits. All percent fields are
// expressed in percent, not fractions.
type Config struct {
	MaxPositionSize        float64 `yaml:"max_position_size"`
	MaxTotalExposure       float64 `yaml:"max_total_exposure"`
	MaxDrawdown            float64 `yaml:"max_drawdown"`
	StopLossPercent        float64 `yaml:"stop_loss_percent"`
	TakeProfitPercent      float64 `yaml:"take_profit_percent"`
	MaxDailyTrades         int     `yaml:"max_daily_trades"`
	MaxConcurrentPositions int     `yaml:"max_concurrent_positions"`
}

// Decision is the admission-control verdict. Limit violations are
// values, never errors: they are expected and frequent.
type Decision struct {
	Allowed bool
	Reason  string
}

// ExitCheck is the verdict of a stop-loss/take-profit evaluation.
type ExitCheck struct {
	ShouldExit bool
	Reason     types.ExitReason
}

// CloseResult is the realized outcome of removing a position.
type CloseResult struct {
	Pnl        float64
	PnlPercent float64
}

// Manager is the single source of truth for whether a new position may
// be opened and for realized P&L accounting. It owns the position
// arena: callers reference positions by id and never mutate them
// directly. Not safe for concurrent use; callers serialize access.
type Manager struct {
	cfg            Config
	positions      map[string]*types.Position
	dailyTrades    int
	lastTradeDate  string
	initialBalance float64
	currentBalance float64
	peakBalance    float64

	now func() time.Time // stubbed in tests for daily-reset checks
}

func NewManager(cfg Config, initialBalance float64) *Manager {
	return &Manager{
		cfg:            cfg,
		positions:      make(map[string]*types.Position),
		initialBalance: initialBalance,
		currentBalance: initialBalance,
		peakBalance:    initialBalance,
		now:            time.Now,
	}
}

// CanOpenPosition gates a prospective position of the given notional
// size. Each limit is checked independently and the first violation is
// reported. The daily counter resets lazily at the local calendar-day
// boundary.
func (m *Manager) CanOpenPosition(size float64) Decision {
	if size > m.cfg.MaxPositionSize {
		return Decision{Reason: fmt.Sprintf("position size %.2f exceeds limit %.2f", size, m.cfg.MaxPositionSize)}
	}
	if exposure := m.TotalExposure(); exposure+size > m.cfg.MaxTotalExposure {
		return Decision{Reason: fmt.Sprintf("total exposure %.2f would exceed limit %.2f", exposure+size, m.cfg.MaxTotalExposure)}
	}
	if len(m.positions) >= m.cfg.MaxConcurrentPositions {
		return Decision{Reason: fmt.Sprintf("open positions %d at limit %d", len(m.positions), m.cfg.MaxConcurrentPositions)}
	}
	m.resetDailyCounterIfNeeded()
	if m.dailyTrades >= m.cfg.MaxDailyTrades {
		return Decision{Reason: fmt.Sprintf("daily trades %d at limit %d", m.dailyTrades, m.cfg.MaxDailyTrades)}
	}
	if dd := m.Drawdown(); dd > m.cfg.MaxDrawdown {
		return Decision{Reason: fmt.Sprintf("drawdown %.2f%% exceeds limit %.2f%%", dd, m.cfg.MaxDrawdown)}
	}
	return Decision{Allowed: true}
}

// AddPosition registers an admitted position and increments the daily
// trade counter. It deliberately does not re-validate limits: callers
// run CanOpenPosition first so they can inspect the rejection reason
// before committing.
func (m *Manager) AddPosition(p types.Position) {
	cp := p
	m.positions[p.ID] = &cp
	m.dailyTrades++
}

// CheckExit evaluates stop-loss/take-profit for an open position at the
// current price, stop-loss first. Unknown ids report no exit.
func (m *Manager) CheckExit(id string, currentPrice float64) ExitCheck {
	p, ok := m.positions[id]
	if !ok {
		return ExitCheck{}
	}
	pct := (currentPrice - p.EntryPrice) / p.EntryPrice * 100
	long := p.Side == types.SideLong

	if long && pct <= -m.cfg.StopLossPercent {
		return ExitCheck{ShouldExit: true, Reason: types.ExitStopLoss}
	}
	if !long && pct >= m.cfg.StopLossPercent {
		return ExitCheck{ShouldExit: true, Reason: types.ExitStopLoss}
	}
	if long && pct >= m.cfg.TakeProfitPercent {
		return ExitCheck{ShouldExit: true, Reason: types.ExitTakeProfit}
	}
	if !long && pct <= -m.cfg.TakeProfitPercent {
		return ExitCheck{ShouldExit: true, Reason: types.ExitTakeProfit}
	}
	return ExitCheck{}
}

// RemovePosition realizes the position at exitPrice, updates the
// balance and peak, and deletes it from the arena.
func (m *Manager) RemovePosition(id string, exitPrice float64) (CloseResult, error) {
	p, ok := m.positions[id]
	if !ok {
		return CloseResult{}, fmt.Errorf("%w: %s", ErrPositionNotFound, id)
	}
	priceDiff := exitPrice - p.EntryPrice
	if p.Side == types.SideShort {
		priceDiff = p.EntryPrice - exitPrice
	}
	pnl := priceDiff * p.Size
	pnlPercent := priceDiff / p.EntryPrice * 100

	m.currentBalance += pnl
	if m.currentBalance > m.peakBalance {
		m.peakBalance = m.currentBalance
	}
	delete(m.positions, id)
	return CloseResult{Pnl: pnl, PnlPercent: pnlPercent}, nil
}

// Drawdown is the percentage decline of the current balance from its
// historical peak, never negative.
func (m *Manager) Drawdown() float64 {
	if m.currentBalance >= m.peakBalance {
		return 0
	}
	return (m.peakBalance - m.currentBalance) / m.peakBalance * 100
}

func (m *Manager) TotalExposure() float64 {
	total := 0.0
	for _, p := range m.positions {
		total += p.Size
	}
	return total
}

func (m *Manager) CurrentBalance() float64 { return m.currentBalance }

// Position returns a copy of the identified position.
func (m *Manager) Position(id string) (types.Position, bool) {
	p, ok := m.positions[id]
	if !ok {
		return types.Position{}, false
	}
	return *p, true
}

// Positions returns copies of all open positions ordered by entry time,
// then id, so callers iterate deterministically.
func (m *Manager) Positions() []types.Position {
	out := make([]types.Position, 0, len(m.positions))
	for _, p := range m.positions {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EntryTime != out[j].EntryTime {
			return out[i].EntryTime < out[j].EntryTime
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (m *Manager) Status() types.RiskStatus {
	return types.RiskStatus{
		InitialBalance:    m.initialBalance,
		CurrentBalance:    m.currentBalance,
		TotalPnl:          m.currentBalance - m.initialBalance,
		Drawdown:          m.Drawdown(),
		OpenPositions:     len(m.positions),
		TotalExposure:     m.TotalExposure(),
		AvailableExposure: m.cfg.MaxTotalExposure - m.TotalExposure(),
		DailyTrades:       m.dailyTrades,
	}
}

// KellyPosition sizes a position at half the Kelly-optimal fraction of
// the current balance, floored at zero and capped at MaxPositionSize.
// Degenerate win/loss averages yield zero rather than NaN.
func (m *Manager) KellyPosition(winRate, avgWin, avgLoss float64) float64 {
	if avgWin <= 0 || avgLoss <= 0 {
		return 0
	}
	b := avgWin / avgLoss
	kelly := (winRate*b - (1 - winRate)) / b
	halfKelly := kelly / 2
	if halfKelly < 0 {
		halfKelly = 0
	}
	size := m.currentBalance * halfKelly
	if size > m.cfg.MaxPositionSize {
		size = m.cfg.MaxPositionSize
	}
	return size
}

func (m *Manager) resetDailyCounterIfNeeded() {
	today := m.now().Format("2006-01-02")
	if today != m.lastTradeDate {
		m.dailyTrades = 0
		m.lastTradeDate = today
	}
}
