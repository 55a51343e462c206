package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"sentiment-trader/internal/aggregate"
	"sentiment-trader/internal/ingest"
	"sentiment-trader/internal/interfaces"
	"sentiment-trader/internal/logger"
	"sentiment-trader/internal/runlog"
	"sentiment-trader/internal/sentiment"
	"sentiment-trader/internal/storage"
	"sentiment-trader/internal/store"
	"sentiment-trader/internal/textnorm"
	"sentiment-trader/internal/trace"
	"sentiment-trader/internal/train"
	"sentiment-trader/internal/types"
	"sentiment-trader/internal/vectorindex"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	skipTrain := flag.Bool("skip-train", false, "run every stage except training")
	doIngest := flag.Bool("ingest", false, "fetch news and prices")
	doClean := flag.Bool("clean", false, "normalize raw articles")
	doScore := flag.Bool("score", false, "score cleaned articles")
	doAggregate := flag.Bool("aggregate", false, "roll scores up into daily rows")
	doVectors := flag.Bool("vectors", false, "embed articles into the vector index")
	doTrain := flag.Bool("train", false, "train per-ticker models")
	flag.Parse()

	// With no stage flags the whole pipeline runs.
	runAll := !(*doIngest || *doClean || *doScore || *doAggregate || *doVectors || *doTrain)

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

	mapper, err := textnorm.LoadTickerMap(cfg.TickerMapFile)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load ticker map", err, "path", cfg.TickerMapFile)
		os.Exit(1)
	}

	pipeline := ingest.NewPipeline(db, mapper)
	var results []types.StageResult

	scorer := newScorer(cfg)

	// News and price ingestion.
	if runAll || *doIngest {
		sources := newsSources(cfg)
		if len(sources) > 0 {
			r, err := pipeline.FetchNews(ctx, sources, cfg.Ingest.MaxArticles)
			if err != nil {
				logger.ErrorWithErr(ctx, "News ingestion failed", err)
				os.Exit(1)
			}
			results = append(results, r)
		}

		priceSource, err := newPriceSource(cfg)
		if err != nil {
			logger.ErrorWithErr(ctx, "Failed to build price source", err)
			os.Exit(1)
		}
		if priceSource != nil {
			to := time.Now().UTC()
			from := to.AddDate(0, 0, -cfg.Ingest.Kite.PeriodDays)
			r, err := pipeline.FetchPrices(ctx, priceSource, cfg.Tickers, from, to)
			if err != nil {
				logger.ErrorWithErr(ctx, "Price ingestion failed", err)
				os.Exit(1)
			}
			results = append(results, r)
		}
	}

	if runAll || *doClean {
		r, err := pipeline.CleanNews(ctx)
		if err != nil {
			logger.ErrorWithErr(ctx, "Cleaning failed", err)
			os.Exit(1)
		}
		results = append(results, r)
	}

	if runAll || *doScore {
		r, err := pipeline.ScoreNews(ctx, scorer)
		if err != nil {
			logger.ErrorWithErr(ctx, "Scoring failed", err)
			os.Exit(1)
		}
		results = append(results, r)
	}

	// Daily aggregation.
	if runAll || *doAggregate {
		r, err := aggregate.New(db).Run(ctx, cfg.Tickers, scorer.ModelVersion(), time.Time{}, time.Time{})
		if err != nil {
			logger.ErrorWithErr(ctx, "Aggregation failed", err)
			os.Exit(1)
		}
		results = append(results, r)
	}

	// Vector index refresh, either explicitly or when the config enables it.
	if *doVectors || (runAll && cfg.VectorIndex.Enabled) {
		ix := vectorindex.New(db, vectorindex.NewOpenAIEmbedder(cfg.VectorIndex.EmbeddingModel))
		r, err := ix.EmbedPending(ctx)
		if err != nil {
			logger.ErrorWithErr(ctx, "Embedding failed", err)
		} else {
			results = append(results, r)
		}
	}

	// Training.
	if (runAll || *doTrain) && !*skipTrain {
		trainer := train.New(db, cfg.ModelsDir, train.Options{
			Folds:    cfg.Trainer.Folds,
			Trees:    cfg.Trainer.Trees,
			MaxDepth: cfg.Trainer.MaxDepth,
			Seed:     cfg.Trainer.Seed,
		})
		trainResult := types.StageResult{Stage: "train"}
		for _, ticker := range cfg.Tickers {
			art, err := trainer.Train(ctx, ticker, scorer.ModelVersion())
			if err != nil {
				logger.ErrorWithErr(ctx, "Training failed", err, "ticker", ticker)
				trainResult.Failed++
				continue
			}
			logger.Info(ctx, "Model trained", "ticker", ticker, "cv_accuracy", art.CVAccuracy)
			trainResult.Succeeded++
		}
		results = append(results, trainResult)
	}

	if err := runlog.AppendRun(runlog.RunEntry{Command: "pipeline", Stages: results}); err != nil {
		logger.Warn(ctx, "Failed to append run log", "error", err)
	}
	if v := os.Getenv("SENTIMENT_LOG_RETENTION_DAYS"); v != "" {
		var n int
		fmt.Sscanf(v, "%d", &n)
		_ = runlog.CompressOlder(n)
	}

	out, _ := json.MarshalIndent(results, "", "  ")
	fmt.Println(string(out))
}

// newsSources builds the configured sources. All three can run together.
func newsSources(cfg *store.Config) []interfaces.NewsSource {
	var sources []interfaces.NewsSource
	if cfg.Ingest.NewsCSV != "" {
		sources = append(sources, ingest.NewCSVNewsSource(cfg.Ingest.NewsCSV))
	}
	if len(cfg.Ingest.Feeds) > 0 {
		sources = append(sources, ingest.NewRSSSource(cfg.Ingest.Feeds))
	}
	if cfg.Ingest.Scrape {
		sources = append(sources, ingest.NewScraperSource(cfg.Tickers, 30*time.Second))
	}
	return sources
}

func newScorer(cfg *store.Config) interfaces.Scorer {
	if cfg.Sentiment.Scorer == "LLM" {
		return sentiment.NewLLMScorer(cfg)
	}
	return sentiment.NewLexiconScorer(cfg.Sentiment.ModelVersion)
}

func newPriceSource(cfg *store.Config) (interfaces.PriceSource, error) {
	switch cfg.Ingest.PriceSource {
	case "KITE":
		return ingest.NewKitePriceSource(cfg.Ingest.Kite.Exchange)
	case "CSV":
		if cfg.Ingest.PriceCSV == "" {
			return nil, nil
		}
		return ingest.NewCSVPriceSource(cfg.Ingest.PriceCSV), nil
	}
	return nil, nil
}
