package interfaces

import (
	"context"
	"time"

	"sentiment-trader/internal/types"
)

// NewsSource delivers raw articles from one upstream (CSV, RSS, scraper).
type NewsSource interface {
	Name() string
	Fetch(ctx context.Context, maxArticles int) ([]types.RawArticle, error)
}

// PriceSource delivers daily bars for a ticker over a date range.
type PriceSource interface {
	FetchDaily(ctx context.Context, ticker string, from, to time.Time) ([]types.PriceBar, error)
}
