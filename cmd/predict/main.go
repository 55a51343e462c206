package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"sentiment-trader/internal/logger"
	"sentiment-trader/internal/predict"
	"sentiment-trader/internal/runlog"
	"sentiment-trader/internal/storage"
	"sentiment-trader/internal/store"
	"sentiment-trader/internal/trace"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	ticker := flag.String("ticker", "", "predict a single ticker instead of the whole universe")
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

	predictor := predict.New(db, cfg.ModelsDir)

	exitCode := 0
	for _, tk := range tickers {
		p, err := predictor.NextDay(ctx, tk)
		if err != nil {
			logger.ErrorWithErr(ctx, "Prediction failed", err, "ticker", tk)
			exitCode = 1
			continue
		}
		if err := runlog.AppendPrediction(*p); err != nil {
			logger.Warn(ctx, "Failed to append prediction log", "error", err)
		}
		b, _ := json.Marshal(p)
		fmt.Println(string(b))
	}
	os.Exit(exitCode)
}
