package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"auto-trader/internal/logger"
	"auto-trader/internal/risk"
	"auto-trader/internal/trace"
)

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	must(initializeSystem())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer func() { _ = trace.Shutdown(context.Background()) }()

	cfg, err := loadConfig(ctx)
	must(err)

	compressOldLogs(ctx)

	strategies, err := initializeStrategies(ctx, cfg)
	must(err)

	src, err := initializeFeed(ctx, cfg)
	must(err)

	rm := risk.NewManager(cfg.Risk, cfg.InitialBalance)
	eng := initializeEngine(cfg, strategies, rm, src)

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	tick := time.NewTicker(time.Duration(cfg.PollSeconds) * time.Second)
	defer tick.Stop()
	statusTick := time.NewTicker(60 * time.Second)
	defer statusTick.Stop()

	logger.Info(ctx, "Trader started",
		"markets", cfg.Markets,
		"poll_seconds", cfg.PollSeconds,
		"initial_balance", cfg.InitialBalance,
	)

loop:
	for {
		select {
		case <-tick.C:
			if _, err := eng.Tick(ctx); err != nil {
				if errors.Is(err, io.EOF) {
					break loop
				}
				logger.ErrorWithErr(ctx, "Tick error", err)
			}
		case <-statusTick.C:
			st := rm.Status()
			logger.Info(ctx, "Portfolio status",
				"balance", st.CurrentBalance,
				"total_pnl", st.TotalPnl,
				"drawdown", st.Drawdown,
				"open_positions", st.OpenPositions,
				"daily_trades", st.DailyTrades,
			)
		case <-sigc:
			logger.Info(ctx, "Shutting down...")
			break loop
		case <-ctx.Done():
			break loop
		}
	}

	if err := eng.Close(ctx); err != nil {
		logger.ErrorWithErr(ctx, "Failed to flatten positions", err)
	}

	b, _ := json.MarshalIndent(rm.Status(), "", "  ")
	fmt.Println(string(b))
}
