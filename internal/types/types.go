package types

import "time"

// RawArticle is a news item exactly as ingested. Immutable once stored.
type RawArticle struct {
	ID          int64
	URL         string
	Title       string
	Body        string
	PublishedAt *time.Time
	Source      string
}

// CleanArticle is a normalized article mapped to at most one ticker.
// A raw article produces one clean row per matched ticker, or a single
// row with Ticker=="" when no ticker matched.
type CleanArticle struct {
	ID          int64
	RawID       int64
	Ticker      string
	Title       string
	Body        string
	PublishedAt *time.Time
}

// SentimentScore is one scorer's verdict on one clean article.
// Compound is in [-1, 1]; Label is positive/neutral/negative.
type SentimentScore struct {
	ID           int64
	CleanID      int64
	Ticker       string
	PublishedAt  *time.Time
	Neg          float64
	Neu          float64
	Pos          float64
	Compound     float64
	Label        string
	ModelVersion string
}

// ScoreResult is a scorer's verdict before it is attached to an article.
// Compound is in [-1, 1]. For generative scorers Neg/Neu/Pos carry the
// per-label confidence split rather than lexicon proportions.
type ScoreResult struct {
	Neg       float64
	Neu       float64
	Pos       float64
	Compound  float64
	Label     string
	Rationale string
}

// DailySentiment aggregates scores per (ticker, calendar day, model version).
type DailySentiment struct {
	Ticker       string
	Date         time.Time
	AvgCompound  float64
	ArticleCount int
	PctPositive  float64
	PctNegative  float64
	ModelVersion string
}

// PriceBar is one daily OHLCV bar, unique per (ticker, date).
type PriceBar struct {
	Ticker   string
	Date     time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	AdjClose float64
	Volume   float64
}

// FeatureRow is one supervised training example. Target and TargetClass
// are the only fields computed from data after Date.
type FeatureRow struct {
	Ticker       string
	Date         time.Time
	Return1D     float64
	Return5D     float64
	Return10D    float64
	VolChange    float64
	AvgCompound  float64
	PctPositive  float64
	PctNegative  float64
	ArticleCount float64
	Target       float64
	TargetClass  int
}

// FeatureNames is the canonical model input order. TargetClass is the label
// and is never part of the vector.
var FeatureNames = []string{
	"return_1d", "return_5d", "return_10d", "vol_change",
	"avg_compound", "pct_positive", "pct_negative", "article_count",
}

// Vector returns the row's features in canonical order.
func (r FeatureRow) Vector() []float64 {
	return []float64{
		r.Return1D, r.Return5D, r.Return10D, r.VolChange,
		r.AvgCompound, r.PctPositive, r.PctNegative, r.ArticleCount,
	}
}

// Prediction is the Predictor's answer for one ticker.
// Confidence is always the UP-class probability, even for DOWN calls.
type Prediction struct {
	Ticker     string  `json:"ticker"`
	Prediction string  `json:"prediction"` // "UP" or "DOWN"
	Confidence float64 `json:"confidence"`
	Date       string  `json:"date"`
}

// StageResult reports partial-success counts for one pipeline stage.
type StageResult struct {
	Stage     string `json:"stage"`
	Succeeded int    `json:"succeeded"`
	Skipped   int    `json:"skipped"`
	Failed    int    `json:"failed"`
}
