package sentiment

import (
	"context"
	"math"
	"strings"
	"unicode"

	"sentiment-trader/internal/types"
)

// normScalar dampens the raw valence sum when normalizing to [-1, 1].
const normScalar = 15.0

// negationScalar flips and dampens a valence under negation.
const negationScalar = -0.74

// negationWindow is how many preceding tokens are checked for a negator.
const negationWindow = 3

// LexiconScorer is a deterministic rule-based scorer over a financial
// valence lexicon. Same input text always yields the same result.
type LexiconScorer struct {
	version string
}

// NewLexiconScorer returns a scorer tagged with the given model version.
func NewLexiconScorer(version string) *LexiconScorer {
	if version == "" {
		version = "lexicon-v1"
	}
	return &LexiconScorer{version: version}
}

// ModelVersion returns the scorer's version tag.
func (s *LexiconScorer) ModelVersion() string {
	return s.version
}

// Score rates title+body. The error return is always nil; it exists to
// satisfy the Scorer contract shared with networked scorers.
func (s *LexiconScorer) Score(_ context.Context, title, body string) (types.ScoreResult, error) {
	text := title + ". " + body
	tokens := tokenize(text)

	var sum, posSum, negSum float64
	var neuCount int

	for i, tok := range tokens {
		valence, ok := lexicon[tok]
		if !ok {
			neuCount++
			continue
		}

		if i > 0 {
			if boost, ok := boosters[tokens[i-1]]; ok {
				if valence < 0 {
					valence -= boost
				} else {
					valence += boost
				}
			}
		}
		if negatedBefore(tokens, i) {
			valence *= negationScalar
		}

		sum += valence
		if valence > 0 {
			posSum += valence + 1
		} else if valence < 0 {
			negSum += -valence + 1
		} else {
			neuCount++
		}
	}

	compound := sum / math.Sqrt(sum*sum+normScalar)

	total := posSum + negSum + float64(neuCount)
	var pos, neg, neu float64
	if total > 0 {
		pos = posSum / total
		neg = negSum / total
		neu = float64(neuCount) / total
	} else {
		neu = 1
	}

	return types.ScoreResult{
		Neg:      neg,
		Neu:      neu,
		Pos:      pos,
		Compound: compound,
		Label:    LabelFor(compound),
	}, nil
}

// negatedBefore reports whether a negator occurs within the window
// preceding position i.
func negatedBefore(tokens []string, i int) bool {
	for j := i - 1; j >= 0 && j >= i-negationWindow; j-- {
		if negators[tokens[j]] {
			return true
		}
	}
	return false
}

// tokenize lowercases and strips edge punctuation from whitespace-split
// words. Inner punctuation (won't, year-end) is preserved.
func tokenize(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimFunc(f, func(r rune) bool {
			return unicode.IsPunct(r) || unicode.IsSymbol(r)
		})
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

var negators = map[string]bool{
	"not": true, "no": true, "never": true, "none": true, "neither": true,
	"nor": true, "cannot": true, "can't": true, "won't": true, "wouldn't": true,
	"isn't": true, "wasn't": true, "aren't": true, "didn't": true,
	"doesn't": true, "don't": true, "hasn't": true, "haven't": true,
	"without": true, "fails": true, "failed": true,
}

var boosters = map[string]float64{
	"very":          0.293,
	"extremely":     0.366,
	"hugely":        0.366,
	"sharply":       0.293,
	"significantly": 0.293,
	"strongly":      0.293,
	"massively":     0.366,
	"slightly":      -0.293,
	"somewhat":      -0.293,
	"marginally":    -0.293,
	"barely":        -0.293,
}

// lexicon holds token valences on the same -4..+4 scale VADER uses,
// weighted toward financial news vocabulary.
var lexicon = map[string]float64{
	// positive
	"gain": 1.9, "gains": 1.9, "gained": 1.9, "gaining": 1.9,
	"profit": 2.1, "profits": 2.1, "profitable": 2.2, "profitability": 2.0,
	"surge": 2.3, "surges": 2.3, "surged": 2.3, "soar": 2.5, "soars": 2.5,
	"soared": 2.5, "rally": 2.0, "rallies": 2.0, "rallied": 2.0,
	"beat": 1.7, "beats": 1.7, "upgrade": 2.0, "upgraded": 2.0,
	"upgrades": 2.0, "growth": 1.8, "grow": 1.6, "grows": 1.6, "grew": 1.6,
	"record": 1.4, "strong": 1.6, "stronger": 1.7, "strongest": 1.8,
	"bullish": 2.4, "boom": 2.2, "booming": 2.3, "outperform": 2.0,
	"outperformed": 2.0, "outperforms": 2.0, "rise": 1.5, "rises": 1.5,
	"rose": 1.5, "rising": 1.5, "jump": 1.8, "jumps": 1.8, "jumped": 1.8,
	"climb": 1.5, "climbs": 1.5, "climbed": 1.5, "win": 1.9, "wins": 1.9,
	"won": 1.9, "winning": 1.9, "success": 2.0, "successful": 2.1,
	"expand": 1.5, "expands": 1.5, "expansion": 1.5, "dividend": 1.2,
	"buyback": 1.4, "breakthrough": 2.2, "approval": 1.6, "approved": 1.6,
	"exceed": 1.8, "exceeds": 1.8, "exceeded": 1.8, "optimistic": 1.9,
	"optimism": 1.9, "improve": 1.6, "improves": 1.6, "improved": 1.6,
	"improvement": 1.6, "recovery": 1.7, "recover": 1.6, "recovers": 1.6,
	"recovered": 1.6, "robust": 1.7, "momentum": 1.3, "upbeat": 1.8,
	"positive": 1.8, "good": 1.9, "great": 2.4, "best": 2.6,
	// negative
	"loss": -2.1, "losses": -2.1, "lose": -1.8, "loses": -1.8, "lost": -1.8,
	"plunge": -2.6, "plunges": -2.6, "plunged": -2.6, "crash": -3.2,
	"crashes": -3.2, "crashed": -3.2, "slump": -2.3, "slumps": -2.3,
	"slumped": -2.3, "miss": -1.6, "misses": -1.6, "missed": -1.6,
	"downgrade": -2.0, "downgraded": -2.0, "downgrades": -2.0,
	"decline": -1.7, "declines": -1.7, "declined": -1.7, "declining": -1.7,
	"weak": -1.5, "weaker": -1.6, "weakest": -1.7, "weakness": -1.6,
	"bearish": -2.4, "bankruptcy": -3.4, "bankrupt": -3.4, "fraud": -3.2,
	"fraudulent": -3.2, "scandal": -2.8, "lawsuit": -2.0, "sued": -2.0,
	"fine": -1.4, "fined": -1.8, "penalty": -1.8, "default": -2.6,
	"defaulted": -2.6, "fall": -1.5, "falls": -1.5, "fell": -1.5,
	"falling": -1.5, "drop": -1.6, "drops": -1.6, "dropped": -1.6,
	"tumble": -2.0, "tumbles": -2.0, "tumbled": -2.0, "sink": -1.9,
	"sinks": -1.9, "sank": -1.9, "cut": -1.3, "cuts": -1.3, "layoff": -2.2,
	"layoffs": -2.2, "recession": -2.5, "crisis": -2.7, "debt": -1.2,
	"warn": -1.7, "warns": -1.7, "warning": -1.7, "warned": -1.7,
	"concern": -1.4, "concerns": -1.4, "risk": -1.1, "risks": -1.1,
	"risky": -1.4, "volatile": -1.3, "uncertainty": -1.5, "probe": -1.8,
	"investigation": -1.8, "negative": -1.8, "bad": -1.9, "worst": -2.6,
	"poor": -1.8, "disappointing": -2.0, "disappoints": -2.0,
	"disappointed": -2.0, "underperform": -2.0, "underperforms": -2.0,
	"underperformed": -2.0, "writedown": -2.1, "impairment": -2.0,
	"downturn": -2.0, "selloff": -2.1, "shortfall": -1.9,
}
