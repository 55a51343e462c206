package textnorm

import (
	"testing"

	"sentiment-trader/internal/types"
)

func TestStripHTML(t *testing.T) {
	in := `<html><head><style>p{color:red}</style></head><body>
		<script>alert("x")</script>
		<h1>Quarterly   results</h1>
		<p>Profit rose</p><p>sharply.</p>
	</body></html>`

	got := StripHTML(in)
	want := "Quarterly results Profit rose sharply."
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestStripHTMLEmpty(t *testing.T) {
	if got := StripHTML(""); got != "" {
		t.Errorf("Expected empty string, got %q", got)
	}
}

func TestStripHTMLPlainText(t *testing.T) {
	got := StripHTML("no   markup\n here")
	if got != "no markup here" {
		t.Errorf("Expected collapsed plain text, got %q", got)
	}
}

func TestParseTimestamp(t *testing.T) {
	cases := []string{
		"2024-03-15T09:30:00Z",
		"2024-03-15 09:30:00",
		"March 15, 2024",
		"15 Mar 2024 09:30",
	}
	for _, c := range cases {
		ts := ParseTimestamp(c)
		if ts == nil {
			t.Errorf("Expected %q to parse, got nil", c)
			continue
		}
		if ts.Year() != 2024 || ts.Month() != 3 || ts.Day() != 15 {
			t.Errorf("Expected 2024-03-15 from %q, got %v", c, ts)
		}
	}
}

func TestParseTimestampInvalid(t *testing.T) {
	for _, c := range []string{"", "   ", "not a date", "tomorrow-ish"} {
		if ts := ParseTimestamp(c); ts != nil {
			t.Errorf("Expected nil for %q, got %v", c, ts)
		}
	}
}

func TestDedupeByURL(t *testing.T) {
	batch := []types.RawArticle{
		{URL: "a", Title: "first"},
		{URL: "a", Title: "second"},
		{URL: "b", Title: "third"},
	}

	out := Dedupe(batch)
	if len(out) != 2 {
		t.Fatalf("Expected 2 articles, got %d", len(out))
	}
	if out[0].URL != "a" || out[1].URL != "b" {
		t.Errorf("Expected order [a b], got [%s %s]", out[0].URL, out[1].URL)
	}
	if out[0].Title != "first" {
		t.Errorf("Expected first occurrence to win, got %q", out[0].Title)
	}
}

func TestDedupeByFingerprint(t *testing.T) {
	batch := []types.RawArticle{
		{Title: "Profit Soars", Body: "Company X reported record profit."},
		{URL: "different", Title: "PROFIT SOARS", Body: "Company X reported record profit."},
		{Title: "Other news", Body: "Unrelated."},
	}

	out := Dedupe(batch)
	if len(out) != 2 {
		t.Fatalf("Expected 2 articles, got %d", len(out))
	}
	if out[1].Title != "Other news" {
		t.Errorf("Expected fingerprint duplicate removed, got %q", out[1].Title)
	}
}

func TestDedupeEmptyURLsNotKeyed(t *testing.T) {
	batch := []types.RawArticle{
		{Title: "one", Body: "a"},
		{Title: "two", Body: "b"},
	}
	out := Dedupe(batch)
	if len(out) != 2 {
		t.Errorf("Expected articles without URLs to be kept, got %d", len(out))
	}
}

func TestTickerMapperOrder(t *testing.T) {
	m := NewTickerMapper([]TickerAlias{
		{Ticker: "RELIANCE.NS", Keywords: []string{"reliance", "ril"}},
		{Ticker: "TCS.NS", Keywords: []string{"tcs", "tata consultancy"}},
		{Ticker: "INFY.NS", Keywords: []string{"infosys"}},
	})

	got := m.Map("Infosys and Reliance announced a joint venture; RIL shares rose.")
	if len(got) != 2 {
		t.Fatalf("Expected 2 tickers, got %v", got)
	}
	// File order, not text order.
	if got[0] != "RELIANCE.NS" || got[1] != "INFY.NS" {
		t.Errorf("Expected [RELIANCE.NS INFY.NS], got %v", got)
	}
}

func TestTickerMapperCaseInsensitive(t *testing.T) {
	m := NewTickerMapper([]TickerAlias{
		{Ticker: "TCS.NS", Keywords: []string{"Tata Consultancy"}},
	})
	if got := m.Map("TATA CONSULTANCY wins deal"); len(got) != 1 {
		t.Errorf("Expected case-insensitive match, got %v", got)
	}
}

func TestTickerMapperUnmapped(t *testing.T) {
	m := NewTickerMapper([]TickerAlias{
		{Ticker: "TCS.NS", Keywords: []string{"tcs"}},
	})
	if got := m.Map("nothing relevant here"); len(got) != 0 {
		t.Errorf("Expected no matches, got %v", got)
	}
}
