package interfaces

import (
	"context"

	"auto-trader/internal/types"
)

// Feed supplies the next observed price for a market. Implementations
// return io.EOF once a replayed series is exhausted.
type Feed interface {
	Latest(ctx context.Context, market string) (types.PricePoint, error)
}
