// Package ingest moves news and prices into the store in idempotent
// stages: fetch raw articles, normalize them into per-ticker clean rows,
// score them, and load daily bars. Every stage reports partial-success
// counts and a rerun never duplicates data.
package ingest

import (
	"context"
	"time"

	"sentiment-trader/internal/interfaces"
	"sentiment-trader/internal/logger"
	"sentiment-trader/internal/storage"
	"sentiment-trader/internal/textnorm"
	"sentiment-trader/internal/types"
)

// Pipeline runs the ingestion stages against one store.
type Pipeline struct {
	store  *storage.Store
	mapper *textnorm.TickerMapper
}

func NewPipeline(store *storage.Store, mapper *textnorm.TickerMapper) *Pipeline {
	return &Pipeline{store: store, mapper: mapper}
}

// FetchNews pulls articles from every source, drops in-batch duplicates and
// articles whose URL is already stored, and persists the rest untouched.
func (p *Pipeline) FetchNews(ctx context.Context, sources []interfaces.NewsSource, maxArticles int) (types.StageResult, error) {
	result := types.StageResult{Stage: "fetch_news"}

	var batch []types.RawArticle
	for _, src := range sources {
		articles, err := src.Fetch(ctx, maxArticles)
		if err != nil {
			logger.ErrorWithErr(ctx, "News source failed", err, "source", src.Name())
			result.Failed++
			continue
		}
		batch = append(batch, articles...)
	}

	for _, a := range textnorm.Dedupe(batch) {
		existing, err := p.store.FindRawByURL(a.URL)
		if err != nil {
			logger.ErrorWithErr(ctx, "Failed to check for duplicate", err, "url", a.URL)
			result.Failed++
			continue
		}
		if existing != nil {
			result.Skipped++
			continue
		}
		if _, err := p.store.InsertRawArticle(&a); err != nil {
			logger.ErrorWithErr(ctx, "Failed to store article", err, "url", a.URL)
			result.Failed++
			continue
		}
		result.Succeeded++
	}

	logger.Stage(ctx, result.Stage, result.Succeeded, result.Skipped, result.Failed)
	return result, nil
}

// CleanNews normalizes raw articles that have not been cleaned yet: HTML is
// stripped and each matched ticker gets its own row. An article matching no
// ticker is kept once with an empty ticker so it is not refetched, but it
// never reaches aggregation.
func (p *Pipeline) CleanNews(ctx context.Context) (types.StageResult, error) {
	result := types.StageResult{Stage: "clean_news"}

	raw, err := p.store.ListUncleanedRaw()
	if err != nil {
		return result, err
	}

	for _, a := range raw {
		title := textnorm.StripHTML(a.Title)
		body := textnorm.StripHTML(a.Body)

		tickers := p.mapper.Map(title + " " + body)
		if len(tickers) == 0 {
			tickers = []string{""}
		}

		failed := false
		for _, ticker := range tickers {
			_, err := p.store.InsertCleanArticle(&types.CleanArticle{
				RawID:       a.ID,
				Ticker:      ticker,
				Title:       title,
				Body:        body,
				PublishedAt: a.PublishedAt,
			})
			if err != nil {
				logger.ErrorWithErr(ctx, "Failed to store clean article", err, "raw_id", a.ID, "ticker", ticker)
				failed = true
			}
		}
		if failed {
			result.Failed++
		} else if tickers[0] == "" {
			result.Skipped++
		} else {
			result.Succeeded++
		}
	}

	logger.Stage(ctx, result.Stage, result.Succeeded, result.Skipped, result.Failed)
	return result, nil
}

// ScoreNews runs the scorer over clean articles that have no score for its
// model version yet. Articles without a ticker are skipped; a scorer error
// on one article does not stop the rest.
func (p *Pipeline) ScoreNews(ctx context.Context, scorer interfaces.Scorer) (types.StageResult, error) {
	result := types.StageResult{Stage: "score_news"}
	modelVersion := scorer.ModelVersion()

	articles, err := p.store.ListCleanArticles()
	if err != nil {
		return result, err
	}

	for _, a := range articles {
		if a.Ticker == "" {
			result.Skipped++
			continue
		}
		scored, err := p.store.HasSentimentScore(a.ID, modelVersion)
		if err != nil {
			result.Failed++
			continue
		}
		if scored {
			result.Skipped++
			continue
		}

		verdict, err := scorer.Score(ctx, a.Title, a.Body)
		if err != nil {
			logger.ErrorWithErr(ctx, "Scorer failed", err, "clean_id", a.ID, "ticker", a.Ticker)
			result.Failed++
			continue
		}

		_, err = p.store.InsertSentimentScore(&types.SentimentScore{
			CleanID:      a.ID,
			Ticker:       a.Ticker,
			PublishedAt:  a.PublishedAt,
			Neg:          verdict.Neg,
			Neu:          verdict.Neu,
			Pos:          verdict.Pos,
			Compound:     verdict.Compound,
			Label:        verdict.Label,
			ModelVersion: modelVersion,
		})
		if err != nil {
			logger.ErrorWithErr(ctx, "Failed to store score", err, "clean_id", a.ID)
			result.Failed++
			continue
		}
		result.Succeeded++
	}

	logger.Stage(ctx, result.Stage, result.Succeeded, result.Skipped, result.Failed)
	return result, nil
}

// FetchPrices loads daily bars for every ticker from the source and upserts
// them, so overlapping date ranges are safe.
func (p *Pipeline) FetchPrices(ctx context.Context, source interfaces.PriceSource, tickers []string, from, to time.Time) (types.StageResult, error) {
	result := types.StageResult{Stage: "fetch_prices"}

	for _, ticker := range tickers {
		bars, err := source.FetchDaily(ctx, ticker, from, to)
		if err != nil {
			logger.ErrorWithErr(ctx, "Failed to fetch prices", err, "ticker", ticker)
			result.Failed++
			continue
		}
		if len(bars) == 0 {
			result.Skipped++
			continue
		}

		stored := 0
		for i := range bars {
			if err := p.store.UpsertPriceBar(&bars[i]); err != nil {
				logger.ErrorWithErr(ctx, "Failed to store bar", err, "ticker", ticker, "date", bars[i].Date)
				continue
			}
			stored++
		}
		if stored == 0 {
			result.Failed++
			continue
		}
		result.Succeeded++
	}

	logger.Stage(ctx, result.Stage, result.Succeeded, result.Skipped, result.Failed)
	return result, nil
}
