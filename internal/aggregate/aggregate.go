// Package aggregate rolls per-article sentiment scores up into one row per
// ticker, UTC calendar day and model version.
package aggregate

import (
	"context"
	"fmt"
	"sort"
	"time"

	"sentiment-trader/internal/logger"
	"sentiment-trader/internal/sentiment"
	"sentiment-trader/internal/storage"
	"sentiment-trader/internal/types"
)

// Aggregator computes daily sentiment aggregates from stored scores.
type Aggregator struct {
	store *storage.Store
}

func New(store *storage.Store) *Aggregator {
	return &Aggregator{store: store}
}

// Run aggregates every ticker for one model version over the given date
// window (zero times mean unbounded). Rerunning after new articles arrive
// replaces the affected day rows in place, so counts never double. One
// ticker failing does not stop the others.
func (a *Aggregator) Run(ctx context.Context, tickers []string, modelVersion string, from, to time.Time) (types.StageResult, error) {
	result := types.StageResult{Stage: "aggregate"}

	for _, ticker := range tickers {
		days, err := a.Ticker(ctx, ticker, modelVersion, from, to)
		if err != nil {
			logger.ErrorWithErr(ctx, "Daily aggregation failed", err, "ticker", ticker)
			result.Failed++
			continue
		}
		if days == 0 {
			result.Skipped++
			continue
		}
		result.Succeeded++
	}

	logger.Stage(ctx, result.Stage, result.Succeeded, result.Skipped, result.Failed)
	return result, nil
}

// Ticker aggregates one ticker's scores within [from, to] and upserts one
// row per day. Zero times leave that side of the window open. It returns
// the number of day rows written.
func (a *Aggregator) Ticker(ctx context.Context, ticker, modelVersion string, from, to time.Time) (int, error) {
	scores, err := a.store.ListSentimentScores(ticker, from, to, modelVersion)
	if err != nil {
		return 0, fmt.Errorf("failed to load scores for %s: %w", ticker, err)
	}
	if len(scores) == 0 {
		return 0, nil
	}

	byDay := groupByDay(scores)

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)

	for _, day := range days {
		row, err := summarize(ticker, day, modelVersion, byDay[day])
		if err != nil {
			return 0, err
		}
		if err := a.store.UpsertDailySentiment(&row); err != nil {
			return 0, err
		}
	}

	logger.Debug(ctx, "Aggregated daily sentiment",
		"ticker", ticker,
		"model_version", modelVersion,
		"days", len(days),
		"articles", len(scores))
	return len(days), nil
}

// groupByDay buckets scores by their UTC calendar day.
func groupByDay(scores []types.SentimentScore) map[string][]types.SentimentScore {
	byDay := make(map[string][]types.SentimentScore)
	for _, sc := range scores {
		if sc.PublishedAt == nil {
			continue
		}
		day := sc.PublishedAt.UTC().Format(storage.DateLayout)
		byDay[day] = append(byDay[day], sc)
	}
	return byDay
}

func summarize(ticker, day, modelVersion string, scores []types.SentimentScore) (types.DailySentiment, error) {
	date, err := time.Parse(storage.DateLayout, day)
	if err != nil {
		return types.DailySentiment{}, fmt.Errorf("bad day key %q: %w", day, err)
	}

	var sum float64
	var pos, neg int
	for _, sc := range scores {
		sum += sc.Compound
		switch sc.Label {
		case sentiment.LabelPositive:
			pos++
		case sentiment.LabelNegative:
			neg++
		}
	}

	n := float64(len(scores))
	return types.DailySentiment{
		Ticker:       ticker,
		Date:         date,
		AvgCompound:  sum / n,
		ArticleCount: len(scores),
		PctPositive:  float64(pos) / n,
		PctNegative:  float64(neg) / n,
		ModelVersion: modelVersion,
	}, nil
}
