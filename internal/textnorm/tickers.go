package textnorm

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// TickerAlias maps one ticker to the keywords that identify it in free text.
type TickerAlias struct {
	Ticker   string   `yaml:"ticker"`
	Keywords []string `yaml:"keywords"`
}

// TickerMapper matches article text to tickers by case-insensitive substring
// search over a configured alias list. Matching order follows the alias
// file's declared order so results are deterministic.
type TickerMapper struct {
	entries []TickerAlias
}

// NewTickerMapper builds a mapper from alias entries. Keywords are folded to
// lower case once at construction.
func NewTickerMapper(entries []TickerAlias) *TickerMapper {
	folded := make([]TickerAlias, 0, len(entries))
	for _, e := range entries {
		kws := make([]string, 0, len(e.Keywords))
		for _, kw := range e.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				kws = append(kws, kw)
			}
		}
		folded = append(folded, TickerAlias{Ticker: e.Ticker, Keywords: kws})
	}
	return &TickerMapper{entries: folded}
}

// LoadTickerMap reads the yaml alias file. A missing file yields an empty
// mapper, matching nothing, rather than an error.
func LoadTickerMap(path string) (*TickerMapper, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewTickerMapper(nil), nil
		}
		return nil, fmt.Errorf("failed to read ticker map %s: %w", path, err)
	}

	var entries []TickerAlias
	if err := yaml.Unmarshal(b, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse ticker map %s: %w", path, err)
	}
	return NewTickerMapper(entries), nil
}

// Map returns the tickers whose keywords occur in text, in first-match
// order, deduplicated. An empty result means the article is unmapped.
func (m *TickerMapper) Map(text string) []string {
	textLow := strings.ToLower(text)
	seen := make(map[string]bool)
	var matched []string

	for _, e := range m.entries {
		for _, kw := range e.Keywords {
			if strings.Contains(textLow, kw) {
				if !seen[e.Ticker] {
					seen[e.Ticker] = true
					matched = append(matched, e.Ticker)
				}
				break
			}
		}
	}
	return matched
}

// Len reports how many tickers the mapper knows about.
func (m *TickerMapper) Len() int {
	return len(m.entries)
}
