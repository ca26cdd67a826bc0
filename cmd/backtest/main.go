package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"auto-trader/internal/backtest"
	"auto-trader/internal/feed"
	"auto-trader/internal/logger"
	"auto-trader/internal/store"
	"auto-trader/internal/trace"

	"github.com/joho/godotenv"
)

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	configFlag := flag.String("config", "", "path to config.yaml (default $CONFIG_PATH or config.yaml)")
	dataFlag := flag.String("data", "", "price series CSV, overrides data_csv from config")
	marketFlag := flag.String("market", "", "restrict the series to one market column value")
	tradesOut := flag.String("trades", "", "write the closed-trade log to this CSV path")
	flag.Parse()

	_ = godotenv.Load()
	must(logger.Init())
	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
	defer func() { _ = trace.Shutdown(context.Background()) }()

	ctx := context.Background()

	path := *configFlag
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = "config.yaml"
	}
	cfg, err := store.LoadConfig(path)
	must(err)

	dataPath := *dataFlag
	if dataPath == "" {
		dataPath = cfg.DataCSV
	}
	if dataPath == "" {
		log.Fatal("no price data: set data_csv in config or pass -data")
	}

	series, err := feed.LoadSeries(dataPath, *marketFlag)
	must(err)
	if len(series) == 0 {
		log.Fatalf("no observations in %s for market %q", dataPath, *marketFlag)
	}

	runner, err := backtest.NewRunner(backtest.Config{
		InitialBalance:    cfg.InitialBalance,
		Strategy:          cfg.Strategy,
		Risk:              cfg.Risk,
		RiskPerTrade:      cfg.RiskPerTrade,
		StopLossPercent:   cfg.StopLossPercent,
		TakeProfitPercent: cfg.TakeProfitPercent,
		MinConfidence:     cfg.Confidence.Backtest,
		Warmup:            cfg.Warmup,
		MaxHoldMs:         cfg.MaxHoldMs,
	})
	must(err)

	result, err := runner.Run(ctx, series)
	must(err)

	if *tradesOut != "" {
		must(backtest.WriteCSV(result.Trades, *tradesOut))
		logger.Info(ctx, "Trade log written", "path", *tradesOut, "trades", len(result.Trades))
	}

	b, _ := json.MarshalIndent(result.Report, "", "  ")
	fmt.Println(string(b))
}
