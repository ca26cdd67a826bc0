package engineobs

import (
	"context"
	"errors"
	"io"
	"time"

	"auto-trader/internal/interfaces"
	"auto-trader/internal/logger"
	"auto-trader/internal/trace"
	"auto-trader/internal/types"
)

type observableEngine struct {
	engine interfaces.Engine
}

var _ interfaces.Engine = (*observableEngine)(nil)

func Wrap(eng interfaces.Engine) interfaces.Engine {
	return &observableEngine{
		engine: eng,
	}
}

func (oe *observableEngine) Tick(ctx context.Context) (*types.TickResult, error) {
	ctx, span := trace.StartSpan(ctx, "engine.Tick")
	defer span.End()

	start := time.Now()

	result, err := oe.engine.Tick(ctx)
	if err != nil {
		if errors.Is(err, io.EOF) {
			logger.Info(ctx, "Feed exhausted, stopping",
				"duration_ms", time.Since(start).Milliseconds(),
			)
			return nil, err
		}
		logger.ErrorWithErr(ctx, "Tick failed", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	logger.Debug(ctx, "Tick completed",
		"signals", result.Signals,
		"opened", len(result.Opened),
		"closed", len(result.Closed),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return result, nil
}

func (oe *observableEngine) Close(ctx context.Context) error {
	ctx, span := trace.StartSpan(ctx, "engine.Close")
	defer span.End()

	if err := oe.engine.Close(ctx); err != nil {
		logger.ErrorWithErr(ctx, "Engine close failed", err)
		return err
	}
	logger.Info(ctx, "Engine closed, all positions flattened")
	return nil
}
