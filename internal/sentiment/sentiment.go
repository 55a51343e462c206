package sentiment

// Label values shared by every scorer.
const (
	LabelPositive = "positive"
	LabelNeutral  = "neutral"
	LabelNegative = "negative"
)

// labelThreshold is the compound cutoff for positive/negative labels.
const labelThreshold = 0.05

// LabelFor maps a compound score to its label. The thresholds are
// inclusive: exactly +0.05 is positive, exactly -0.05 is negative.
func LabelFor(compound float64) string {
	switch {
	case compound >= labelThreshold:
		return LabelPositive
	case compound <= -labelThreshold:
		return LabelNegative
	default:
		return LabelNeutral
	}
}

// clamp01 bounds a confidence to [0, 1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
