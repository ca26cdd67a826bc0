package types

// Action is a strategy's per-tick recommendation.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// Side of an open position.
type Side string

const (
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
)

// ExitReason records why a position was closed.
type ExitReason string

const (
	ExitStopLoss   ExitReason = "STOP_LOSS"
	ExitTakeProfit ExitReason = "TAKE_PROFIT"
	ExitTimeLimit  ExitReason = "TIME_LIMIT"
	ExitManual     ExitReason = "MANUAL"
)

// PricePoint is one timestamped observation of a market price.
// Series are ordered by Ts ascending.
type PricePoint struct {
	Ts     int64   `json:"ts"` // ms epoch
	Price  float64 `json:"price"`
	Volume float64 `json:"volume,omitempty"`
}

// Signal is produced fresh each evaluation tick and never mutated.
// StopLoss/TakeProfit are price levels; zero means the strategy left
// them to the simulator's percentage fallback.
type Signal struct {
	Action     Action  `json:"action"`
	Confidence float64 `json:"confidence"` // 0..1
	Reason     string  `json:"reason"`
	StopLoss   float64 `json:"stop_loss,omitempty"`
	TakeProfit float64 `json:"take_profit,omitempty"`
}

// Position is one open simulated trade awaiting an exit condition.
// Size is notional currency value, not a share count.
type Position struct {
	ID         string
	Market     string
	Side       Side
	EntryPrice float64
	EntryTime  int64 // ms epoch
	Size       float64
	StopLoss   float64
	TakeProfit float64
	MaxHoldMs  int64 // 0 = no time limit
}

// Trade is the immutable closed record of a completed position.
type Trade struct {
	Market     string     `json:"market,omitempty"`
	Side       Side       `json:"side"`
	EntryTime  int64      `json:"entry_time"`
	ExitTime   int64      `json:"exit_time"`
	EntryPrice float64    `json:"entry_price"`
	ExitPrice  float64    `json:"exit_price"`
	Size       float64    `json:"size"`
	Pnl        float64    `json:"pnl"`
	PnlPercent float64    `json:"pnl_percent"`
	ExitReason ExitReason `json:"exit_reason"`
}

// Report is the summary a completed run always yields, even with zero
// trades. No field is ever NaN.
type Report struct {
	InitialBalance float64 `json:"initial_balance"`
	FinalBalance   float64 `json:"final_balance"`
	TotalReturn    float64 `json:"total_return"` // percent
	TotalTrades    int     `json:"total_trades"`
	WinningTrades  int     `json:"winning_trades"`
	LosingTrades   int     `json:"losing_trades"`
	WinRate        float64 `json:"win_rate"`     // percent, 0 with no trades
	MaxDrawdown    float64 `json:"max_drawdown"` // percent
	SharpeRatio    float64 `json:"sharpe_ratio"`
	ProfitFactor   float64 `json:"profit_factor"`
	AvgWin         float64 `json:"avg_win"`
	AvgLoss        float64 `json:"avg_loss"` // magnitude
	LargestWin     float64 `json:"largest_win"`
	LargestLoss    float64 `json:"largest_loss"` // signed, most negative pnl
}

// RiskStatus is a read-only snapshot of the risk manager's state.
type RiskStatus struct {
	InitialBalance    float64 `json:"initial_balance"`
	CurrentBalance    float64 `json:"current_balance"`
	TotalPnl          float64 `json:"total_pnl"`
	Drawdown          float64 `json:"drawdown"` // percent from peak
	OpenPositions     int     `json:"open_positions"`
	TotalExposure     float64 `json:"total_exposure"`
	AvailableExposure float64 `json:"available_exposure"`
	DailyTrades       int     `json:"daily_trades"`
}

// TickResult summarizes one pass of the live engine over its markets.
type TickResult struct {
	Time    int64    `json:"time"`
	Opened  []string `json:"opened,omitempty"` // position ids
	Closed  []string `json:"closed,omitempty"`
	Signals int      `json:"signals"`
}
