package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"sentiment-trader/internal/backtest"
	"sentiment-trader/internal/logger"
	"sentiment-trader/internal/storage"
	"sentiment-trader/internal/store"
	"sentiment-trader/internal/trace"
)

// summary is the per-ticker console output; the day-by-day curve is only
// emitted with -days.
type summary struct {
	Ticker        string  `json:"ticker"`
	Days          int     `json:"days"`
	Trades        int     `json:"trades"`
	TotalReturn   float64 `json:"total_return"`
	BuyHoldReturn float64 `json:"buy_hold_return"`
	SharpeRatio   float64 `json:"sharpe_ratio"`
	MaxDrawdown   float64 `json:"max_drawdown"`
	FinalEquity   float64 `json:"final_equity"`
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	ticker := flag.String("ticker", "", "backtest a single ticker instead of the whole universe")
	withDays := flag.Bool("days", false, "emit the full day-by-day equity curve")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := store.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}

	ctx := context.Background()
	defer trace.Shutdown(ctx)

	db, err := storage.NewStore(cfg.DBPath)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to open store", err, "path", cfg.DBPath)
		os.Exit(1)
	}
	defer db.Close()

	tickers := cfg.Tickers
	if *ticker != "" {
		tickers = []string{*ticker}
	}

	bt := backtest.New(db, cfg.ModelsDir, backtest.Options{
		TransactionCost: cfg.Backtest.TransactionCost,
		InitialCapital:  cfg.Backtest.InitialCapital,
	})

	exitCode := 0
	var out []any
	for _, tk := range tickers {
		result, err := bt.Run(ctx, tk)
		if err != nil {
			logger.ErrorWithErr(ctx, "Backtest failed", err, "ticker", tk)
			exitCode = 1
			continue
		}
		if *withDays {
			out = append(out, result)
		} else {
			out = append(out, summary{
				Ticker:        result.Ticker,
				Days:          len(result.Days),
				Trades:        result.Trades,
				TotalReturn:   result.TotalReturn,
				BuyHoldReturn: result.BuyHoldReturn,
				SharpeRatio:   result.SharpeRatio,
				MaxDrawdown:   result.MaxDrawdown,
				FinalEquity:   result.FinalEquity,
			})
		}
	}

	b, _ := json.MarshalIndent(out, "", "  ")
	fmt.Println(string(b))
	os.Exit(exitCode)
}
