package ingest

import (
	"context"
	"testing"
	"time"

	"sentiment-trader/internal/interfaces"
	"sentiment-trader/internal/sentiment"
	"sentiment-trader/internal/storage"
	"sentiment-trader/internal/textnorm"
	"sentiment-trader/internal/types"
)

type fakeNewsSource struct {
	name     string
	articles []types.RawArticle
	err      error
}

func (f *fakeNewsSource) Name() string { return f.name }
func (f *fakeNewsSource) Fetch(ctx context.Context, maxArticles int) ([]types.RawArticle, error) {
	return f.articles, f.err
}

func testMapper() *textnorm.TickerMapper {
	return textnorm.NewTickerMapper([]textnorm.TickerAlias{
		{Ticker: "RELIANCE", Keywords: []string{"reliance", "ril"}},
		{Ticker: "TCS", Keywords: []string{"tcs", "tata consultancy"}},
	})
}

func newTestPipeline(t *testing.T) (*Pipeline, *storage.Store) {
	t.Helper()
	s, err := storage.NewStore(":memory:")
	if err != nil {
		t.Fatalf("Expected store to open, got %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return NewPipeline(s, testMapper()), s
}

func at(s string) *time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return &t
}

func TestFetchNewsDedupesAndSkipsStored(t *testing.T) {
	p, s := newTestPipeline(t)
	ctx := context.Background()

	src := &fakeNewsSource{name: "fake", articles: []types.RawArticle{
		{URL: "https://x.com/a", Title: "Reliance profit up", PublishedAt: at("2024-03-15T10:00:00Z")},
		{URL: "https://x.com/a", Title: "Reliance profit up", PublishedAt: at("2024-03-15T10:00:00Z")},
		{URL: "https://x.com/b", Title: "TCS wins deal", PublishedAt: at("2024-03-15T11:00:00Z")},
	}}

	result, err := p.FetchNews(ctx, []interfaces.NewsSource{src}, 0)
	if err != nil {
		t.Fatalf("Expected fetch to succeed, got %v", err)
	}
	if result.Succeeded != 2 {
		t.Errorf("Expected 2 stored after in-batch dedupe, got %d", result.Succeeded)
	}

	// A second run finds both URLs already stored.
	result, _ = p.FetchNews(ctx, []interfaces.NewsSource{src}, 0)
	if result.Succeeded != 0 || result.Skipped != 2 {
		t.Errorf("Expected rerun to skip stored articles, got %+v", result)
	}

	raw, _ := s.ListRawArticles()
	if len(raw) != 2 {
		t.Errorf("Expected 2 raw rows, got %d", len(raw))
	}
}

func TestFetchNewsSourceFailureCounted(t *testing.T) {
	p, _ := newTestPipeline(t)

	good := &fakeNewsSource{name: "good", articles: []types.RawArticle{{URL: "https://x.com/a", Title: "t"}}}
	bad := &fakeNewsSource{name: "bad", err: context.DeadlineExceeded}

	result, err := p.FetchNews(context.Background(), []interfaces.NewsSource{good, bad}, 0)
	if err != nil {
		t.Fatalf("Expected partial success, got %v", err)
	}
	if result.Failed != 1 || result.Succeeded != 1 {
		t.Errorf("Expected 1 failed source and 1 stored article, got %+v", result)
	}
}

func TestCleanNewsMapsTickersAndStripsHTML(t *testing.T) {
	p, s := newTestPipeline(t)
	ctx := context.Background()

	src := &fakeNewsSource{name: "fake", articles: []types.RawArticle{
		{URL: "https://x.com/a", Title: "<b>Reliance</b> and TCS rally", Body: "<p>Both gained.</p>", PublishedAt: at("2024-03-15T10:00:00Z")},
		{URL: "https://x.com/b", Title: "Weather update", Body: "Rain expected."},
	}}
	if _, err := p.FetchNews(ctx, []interfaces.NewsSource{src}, 0); err != nil {
		t.Fatalf("Expected fetch, got %v", err)
	}

	result, err := p.CleanNews(ctx)
	if err != nil {
		t.Fatalf("Expected clean to succeed, got %v", err)
	}
	if result.Succeeded != 1 {
		t.Errorf("Expected 1 mapped article, got %d", result.Succeeded)
	}
	if result.Skipped != 1 {
		t.Errorf("Expected 1 unmapped article skipped, got %d", result.Skipped)
	}

	clean, _ := s.ListCleanArticles()
	// Two tickers matched one article, plus one unmapped row.
	if len(clean) != 3 {
		t.Fatalf("Expected 3 clean rows, got %d", len(clean))
	}
	tickers := map[string]bool{}
	for _, c := range clean {
		tickers[c.Ticker] = true
		if c.Ticker != "" && c.Title != "Reliance and TCS rally" {
			t.Errorf("Expected HTML stripped, got %q", c.Title)
		}
	}
	if !tickers["RELIANCE"] || !tickers["TCS"] || !tickers[""] {
		t.Errorf("Expected RELIANCE, TCS and unmapped rows, got %v", tickers)
	}

	// Rerunning cleans nothing new.
	result, _ = p.CleanNews(ctx)
	if result.Succeeded != 0 || result.Skipped != 0 {
		t.Errorf("Expected rerun to be a no-op, got %+v", result)
	}
}

func TestScoreNewsSkipsScoredAndUnmapped(t *testing.T) {
	p, s := newTestPipeline(t)
	ctx := context.Background()

	src := &fakeNewsSource{name: "fake", articles: []types.RawArticle{
		{URL: "https://x.com/a", Title: "Reliance profit surges", Body: "Record growth.", PublishedAt: at("2024-03-15T10:00:00Z")},
		{URL: "https://x.com/b", Title: "Weather update", Body: "Rain."},
	}}
	p.FetchNews(ctx, []interfaces.NewsSource{src}, 0)
	p.CleanNews(ctx)

	scorer := sentiment.NewLexiconScorer("lexicon-v1")
	result, err := p.ScoreNews(ctx, scorer)
	if err != nil {
		t.Fatalf("Expected scoring to succeed, got %v", err)
	}
	if result.Succeeded != 1 {
		t.Errorf("Expected 1 scored, got %d", result.Succeeded)
	}
	if result.Skipped != 1 {
		t.Errorf("Expected unmapped article skipped, got %d", result.Skipped)
	}

	scores, _ := s.ListSentimentScores("RELIANCE", time.Time{}, time.Time{}, "lexicon-v1")
	if len(scores) != 1 {
		t.Fatalf("Expected 1 score, got %d", len(scores))
	}
	if scores[0].Label != "positive" {
		t.Errorf("Expected positive label, got %s", scores[0].Label)
	}

	// Rerun skips the already-scored article.
	result, _ = p.ScoreNews(ctx, scorer)
	if result.Succeeded != 0 {
		t.Errorf("Expected rerun to score nothing, got %+v", result)
	}
}

type fakePriceSource struct {
	bars map[string][]types.PriceBar
}

func (f *fakePriceSource) FetchDaily(ctx context.Context, ticker string, from, to time.Time) ([]types.PriceBar, error) {
	return f.bars[ticker], nil
}

func TestFetchPrices(t *testing.T) {
	p, s := newTestPipeline(t)

	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	src := &fakePriceSource{bars: map[string][]types.PriceBar{
		"RELIANCE": {
			{Ticker: "RELIANCE", Date: date, Close: 2900, Volume: 100},
			{Ticker: "RELIANCE", Date: date.AddDate(0, 0, 1), Close: 2950, Volume: 120},
		},
	}}

	result, err := p.FetchPrices(context.Background(), src, []string{"RELIANCE", "TCS"}, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("Expected fetch to succeed, got %v", err)
	}
	if result.Succeeded != 1 || result.Skipped != 1 {
		t.Errorf("Expected 1 loaded and 1 empty ticker skipped, got %+v", result)
	}

	bars, _ := s.ListPriceBars("RELIANCE")
	if len(bars) != 2 {
		t.Errorf("Expected 2 bars, got %d", len(bars))
	}

	// Overlapping reload keeps a single row per day.
	p.FetchPrices(context.Background(), src, []string{"RELIANCE"}, time.Time{}, time.Time{})
	bars, _ = s.ListPriceBars("RELIANCE")
	if len(bars) != 2 {
		t.Errorf("Expected reload to keep 2 bars, got %d", len(bars))
	}
}
