package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"sentiment-trader/internal/storage"
	"sentiment-trader/internal/textnorm"
	"sentiment-trader/internal/types"
)

// CSVNewsSource reads articles from a CSV export. Columns are matched by
// header name: url, title, body, published_at, source. Only title is
// required.
type CSVNewsSource struct {
	path string
}

func NewCSVNewsSource(path string) *CSVNewsSource {
	return &CSVNewsSource{path: path}
}

func (s *CSVNewsSource) Name() string { return "csv" }

func (s *CSVNewsSource) Fetch(ctx context.Context, maxArticles int) ([]types.RawArticle, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open news csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read news csv header: %w", err)
	}
	col := columnIndex(header)
	if _, ok := col["title"]; !ok {
		return nil, fmt.Errorf("news csv %s has no title column", s.path)
	}

	var articles []types.RawArticle
	for maxArticles <= 0 || len(articles) < maxArticles {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read news csv row: %w", err)
		}

		title := field(record, col, "title")
		if title == "" {
			continue
		}
		articles = append(articles, types.RawArticle{
			URL:         field(record, col, "url"),
			Title:       title,
			Body:        field(record, col, "body"),
			PublishedAt: textnorm.ParseTimestamp(field(record, col, "published_at")),
			Source:      field(record, col, "source"),
		})
	}
	return articles, nil
}

// CSVPriceSource reads daily bars from a CSV with columns ticker, date,
// open, high, low, close, adj_close, volume. Bars for other tickers are
// skipped, so one file can carry a whole universe.
type CSVPriceSource struct {
	path string
}

func NewCSVPriceSource(path string) *CSVPriceSource {
	return &CSVPriceSource{path: path}
}

func (s *CSVPriceSource) FetchDaily(ctx context.Context, ticker string, from, to time.Time) ([]types.PriceBar, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open price csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read price csv header: %w", err)
	}
	col := columnIndex(header)
	for _, required := range []string{"ticker", "date", "close"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("price csv %s has no %s column", s.path, required)
		}
	}

	var bars []types.PriceBar
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read price csv row: %w", err)
		}
		if !strings.EqualFold(field(record, col, "ticker"), ticker) {
			continue
		}

		date, err := time.Parse(storage.DateLayout, field(record, col, "date"))
		if err != nil {
			return nil, fmt.Errorf("bad date %q in price csv: %w", field(record, col, "date"), err)
		}
		if !from.IsZero() && date.Before(from) {
			continue
		}
		if !to.IsZero() && date.After(to) {
			continue
		}

		bar := types.PriceBar{
			Ticker: ticker,
			Date:   date,
			Open:   num(field(record, col, "open")),
			High:   num(field(record, col, "high")),
			Low:    num(field(record, col, "low")),
			Close:  num(field(record, col, "close")),
			Volume: num(field(record, col, "volume")),
		}
		bar.AdjClose = num(field(record, col, "adj_close"))
		if bar.AdjClose == 0 {
			bar.AdjClose = bar.Close
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

func columnIndex(header []string) map[string]int {
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return col
}

func field(record []string, col map[string]int, name string) string {
	i, ok := col[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func num(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}
