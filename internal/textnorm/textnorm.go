package textnorm

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
	"golang.org/x/net/html"

	"sentiment-trader/internal/types"
)

// fingerprintBodyLen is how much of the body participates in the
// near-duplicate fingerprint.
const fingerprintBodyLen = 300

// StripHTML removes markup from raw text and collapses whitespace.
// Script and style contents are dropped entirely. Returns "" for empty input
// and falls back to whitespace-collapsing the raw string if it is not
// parseable as HTML.
func StripHTML(raw string) string {
	if raw == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return collapseWhitespace(raw)
	}

	doc.Find("script, style, noscript").Remove()

	// Collect text nodes with space separators so adjacent elements do not
	// run their words together.
	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			parts = append(parts, n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range doc.Nodes {
		walk(n)
	}

	return collapseWhitespace(strings.Join(parts, " "))
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ParseTimestamp parses a timestamp in any common format. Returns nil for
// empty or unparseable input, never an error.
func ParseTimestamp(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	t, err := dateparse.ParseAny(raw)
	if err != nil {
		return nil
	}
	return &t
}

// Dedupe removes articles sharing a non-empty URL already seen, or sharing a
// fingerprint of (title + first 300 chars of body, case-folded). The first
// occurrence wins; input order is otherwise preserved.
func Dedupe(batch []types.RawArticle) []types.RawArticle {
	seenURLs := make(map[string]bool)
	seenFingerprints := make(map[string]bool)

	out := make([]types.RawArticle, 0, len(batch))
	for _, a := range batch {
		url := strings.TrimSpace(a.URL)
		if url != "" && seenURLs[url] {
			continue
		}
		fp := Fingerprint(a.Title, a.Body)
		if seenFingerprints[fp] {
			continue
		}
		if url != "" {
			seenURLs[url] = true
		}
		seenFingerprints[fp] = true
		out = append(out, a)
	}
	return out
}

// Fingerprint builds the case-folded near-duplicate key for an article.
func Fingerprint(title, body string) string {
	title = strings.TrimSpace(title)
	body = strings.TrimSpace(body)
	if r := []rune(body); len(r) > fingerprintBodyLen {
		body = string(r[:fingerprintBodyLen])
	}
	return strings.ToLower(title + "|" + body)
}
