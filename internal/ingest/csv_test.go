package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Expected fixture write, got %v", err)
	}
	return path
}

func TestCSVNewsSource(t *testing.T) {
	path := writeFile(t, "news.csv", `url,title,body,published_at,source
https://x.com/a,Reliance profit up,Strong quarter,2024-03-15T10:00:00Z,wire
https://x.com/b,TCS wins deal,,2024-03-16,wire
,No URL headline,,,
`)

	articles, err := NewCSVNewsSource(path).Fetch(context.Background(), 0)
	if err != nil {
		t.Fatalf("Expected load to succeed, got %v", err)
	}
	if len(articles) != 3 {
		t.Fatalf("Expected 3 articles, got %d", len(articles))
	}

	if articles[0].Title != "Reliance profit up" || articles[0].Source != "wire" {
		t.Errorf("Expected first row parsed, got %+v", articles[0])
	}
	if articles[0].PublishedAt == nil || articles[0].PublishedAt.Format("2006-01-02") != "2024-03-15" {
		t.Errorf("Expected timestamp parsed, got %v", articles[0].PublishedAt)
	}
	if articles[1].PublishedAt == nil {
		t.Errorf("Expected date-only timestamp parsed")
	}
	if articles[2].PublishedAt != nil {
		t.Errorf("Expected missing timestamp to stay nil, got %v", articles[2].PublishedAt)
	}
}

func TestCSVNewsSourceMaxArticles(t *testing.T) {
	path := writeFile(t, "news.csv", `title
one
two
three
`)
	articles, err := NewCSVNewsSource(path).Fetch(context.Background(), 2)
	if err != nil {
		t.Fatalf("Expected load to succeed, got %v", err)
	}
	if len(articles) != 2 {
		t.Errorf("Expected cap at 2 articles, got %d", len(articles))
	}
}

func TestCSVNewsSourceMissingTitleColumn(t *testing.T) {
	path := writeFile(t, "news.csv", "url,body\nhttps://x.com/a,text\n")
	if _, err := NewCSVNewsSource(path).Fetch(context.Background(), 0); err == nil {
		t.Errorf("Expected error for missing title column")
	}
}

func TestCSVPriceSource(t *testing.T) {
	path := writeFile(t, "prices.csv", `ticker,date,open,high,low,close,adj_close,volume
RELIANCE,2024-03-15,2900,2950,2890,2940,2940,100000
RELIANCE,2024-03-18,2945,2990,2930,2985,,120000
TCS,2024-03-15,4100,4150,4090,4120,4120,50000
`)

	bars, err := NewCSVPriceSource(path).FetchDaily(context.Background(), "RELIANCE", time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("Expected load to succeed, got %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("Expected 2 RELIANCE bars, got %d", len(bars))
	}
	if bars[0].Close != 2940 || bars[0].Volume != 100000 {
		t.Errorf("Expected first bar parsed, got %+v", bars[0])
	}
	// Missing adj_close falls back to close.
	if bars[1].AdjClose != 2985 {
		t.Errorf("Expected adj_close fallback, got %v", bars[1].AdjClose)
	}
}

func TestCSVPriceSourceDateRange(t *testing.T) {
	path := writeFile(t, "prices.csv", `ticker,date,close
X,2024-03-01,100
X,2024-03-15,110
X,2024-03-30,120
`)

	from := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)
	bars, err := NewCSVPriceSource(path).FetchDaily(context.Background(), "X", from, to)
	if err != nil {
		t.Fatalf("Expected load to succeed, got %v", err)
	}
	if len(bars) != 1 || bars[0].Close != 110 {
		t.Errorf("Expected only the in-range bar, got %+v", bars)
	}
}
