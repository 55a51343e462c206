// Package features joins price history with daily sentiment into supervised
// training rows. Every feature on a row is computed from data at or before
// the row's date; only the target looks one day ahead.
package features

import (
	"context"
	"errors"
	"fmt"

	"sentiment-trader/internal/logger"
	"sentiment-trader/internal/storage"
	"sentiment-trader/internal/types"
)

// warmup is the longest return lookback. Rows inside the warmup window have
// undefined features and are dropped.
const warmup = 10

// ErrNotEnoughBars is returned when the price history cannot produce a
// single complete row.
var ErrNotEnoughBars = errors.New("not enough price history")

// Builder assembles feature rows from stored bars and aggregates.
type Builder struct {
	store *storage.Store
}

func NewBuilder(store *storage.Store) *Builder {
	return &Builder{store: store}
}

// Build returns one row per tradable day for ticker, oldest first. Days
// without news get zero sentiment features. The last bar is dropped because
// its target is undefined.
func (b *Builder) Build(ctx context.Context, ticker, sentimentModel string) ([]types.FeatureRow, error) {
	bars, err := b.store.ListPriceBars(ticker)
	if err != nil {
		return nil, fmt.Errorf("failed to load price bars for %s: %w", ticker, err)
	}
	if len(bars) < warmup+2 {
		return nil, fmt.Errorf("%w: %s has %d bars, need at least %d", ErrNotEnoughBars, ticker, len(bars), warmup+2)
	}

	daily, err := b.store.ListDailySentiment(ticker, sentimentModel)
	if err != nil {
		return nil, fmt.Errorf("failed to load daily sentiment for %s: %w", ticker, err)
	}
	sentimentByDay := make(map[string]types.DailySentiment, len(daily))
	for _, d := range daily {
		sentimentByDay[d.Date.Format(storage.DateLayout)] = d
	}

	rows := Assemble(ticker, bars, sentimentByDay)

	logger.Debug(ctx, "Built feature rows",
		"ticker", ticker,
		"bars", len(bars),
		"sentiment_days", len(daily),
		"rows", len(rows))
	return rows, nil
}

// Assemble computes rows from already-loaded inputs. Bars must be in
// ascending date order.
func Assemble(ticker string, bars []types.PriceBar, sentimentByDay map[string]types.DailySentiment) []types.FeatureRow {
	var rows []types.FeatureRow

	// The last bar has no next-day return to learn from.
	for i := warmup; i < len(bars)-1; i++ {
		bar := bars[i]

		row := types.FeatureRow{
			Ticker:    ticker,
			Date:      bar.Date,
			Return1D:  pctChange(bars[i-1].Close, bar.Close),
			Return5D:  pctChange(bars[i-5].Close, bar.Close),
			Return10D: pctChange(bars[i-10].Close, bar.Close),
			VolChange: pctChange(bars[i-1].Volume, bar.Volume),
		}

		if d, ok := sentimentByDay[bar.Date.Format(storage.DateLayout)]; ok {
			row.AvgCompound = d.AvgCompound
			row.PctPositive = d.PctPositive
			row.PctNegative = d.PctNegative
			row.ArticleCount = float64(d.ArticleCount)
		}

		row.Target = pctChange(bar.Close, bars[i+1].Close)
		if row.Target > 0 {
			row.TargetClass = 1
		}

		rows = append(rows, row)
	}
	return rows
}

// pctChange returns (curr-prev)/prev, or 0 when prev is 0.
func pctChange(prev, curr float64) float64 {
	if prev == 0 {
		return 0
	}
	return (curr - prev) / prev
}
