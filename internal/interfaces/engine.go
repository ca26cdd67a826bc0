package interfaces

import (
	"context"

	"auto-trader/internal/types"
)

type Engine interface {
	// Tick advances one poll cycle: fetch prices, check exits, evaluate
	// strategies, open admitted positions.
	Tick(ctx context.Context) (*types.TickResult, error)
	// Close closes all remaining open positions at their last seen price
	// with a MANUAL exit reason.
	Close(ctx context.Context) error
}
