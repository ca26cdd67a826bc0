package interfaces

import (
	"auto-trader/internal/types"
)

// Strategy turns a price-window prefix into an optional trade signal.
// Analyze returns nil when the window is shorter than MinWindow, which
// is distinct from a HOLD signal: nil means "not enough data yet".
type Strategy interface {
	Name() string
	MinWindow() int
	Analyze(window []types.PricePoint) *types.Signal
}
