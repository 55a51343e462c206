package sentiment

import (
	"context"
	"testing"
)

func TestLabelForThresholds(t *testing.T) {
	cases := []struct {
		compound float64
		want     string
	}{
		{0.05, LabelPositive},
		{-0.05, LabelNegative},
		{0.04, LabelNeutral},
		{-0.04, LabelNeutral},
		{0.0, LabelNeutral},
		{0.9, LabelPositive},
		{-0.9, LabelNegative},
	}
	for _, c := range cases {
		if got := LabelFor(c.compound); got != c.want {
			t.Errorf("LabelFor(%v): expected %s, got %s", c.compound, c.want, got)
		}
	}
}

func TestLexiconDeterministic(t *testing.T) {
	s := NewLexiconScorer("lexicon-v1")
	ctx := context.Background()

	title := "Profit surges on record growth"
	body := "The company beat expectations and shares rallied."

	first, err := s.Score(ctx, title, body)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	for i := 0; i < 5; i++ {
		again, _ := s.Score(ctx, title, body)
		if again != first {
			t.Fatalf("Expected identical results across runs, got %+v then %+v", first, again)
		}
	}
}

func TestLexiconPositiveText(t *testing.T) {
	s := NewLexiconScorer("")

	r, err := s.Score(context.Background(), "Profit surges", "Record growth, strong gains, shares rallied.")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if r.Label != LabelPositive {
		t.Errorf("Expected positive label, got %s (compound=%v)", r.Label, r.Compound)
	}
	if r.Compound <= 0.05 {
		t.Errorf("Expected compound > 0.05, got %v", r.Compound)
	}
}

func TestLexiconNegativeText(t *testing.T) {
	s := NewLexiconScorer("")

	r, _ := s.Score(context.Background(), "Shares crash", "Heavy losses, bankruptcy fears and a fraud probe.")
	if r.Label != LabelNegative {
		t.Errorf("Expected negative label, got %s (compound=%v)", r.Label, r.Compound)
	}
}

func TestLexiconNeutralText(t *testing.T) {
	s := NewLexiconScorer("")

	r, _ := s.Score(context.Background(), "Board meeting scheduled", "The company will hold its annual general meeting on Tuesday.")
	if r.Label != LabelNeutral {
		t.Errorf("Expected neutral label, got %s (compound=%v)", r.Label, r.Compound)
	}
	if r.Neu == 0 {
		t.Errorf("Expected nonzero neutral component, got %+v", r)
	}
}

func TestLexiconCompoundBounds(t *testing.T) {
	s := NewLexiconScorer("")
	texts := []string{
		"surge surge surge rally rally profit profit gains gains growth record strong bullish",
		"crash crash plunge bankruptcy fraud losses losses recession crisis scandal default",
		"",
	}
	for _, text := range texts {
		r, _ := s.Score(context.Background(), text, text)
		if r.Compound < -1 || r.Compound > 1 {
			t.Errorf("Expected compound in [-1,1] for %q, got %v", text, r.Compound)
		}
	}
}

func TestLexiconNegationFlips(t *testing.T) {
	s := NewLexiconScorer("")
	ctx := context.Background()

	plain, _ := s.Score(ctx, "", "The quarter showed strong profit")
	negated, _ := s.Score(ctx, "", "The quarter showed no profit")

	if negated.Compound >= plain.Compound {
		t.Errorf("Expected negation to lower compound: plain=%v negated=%v", plain.Compound, negated.Compound)
	}
	if negated.Compound >= 0 {
		t.Errorf("Expected negated positive term to score negative, got %v", negated.Compound)
	}
}

func TestLexiconBooster(t *testing.T) {
	s := NewLexiconScorer("")
	ctx := context.Background()

	plain, _ := s.Score(ctx, "", "shares fell")
	boosted, _ := s.Score(ctx, "", "shares sharply fell")

	if boosted.Compound >= plain.Compound {
		t.Errorf("Expected booster to amplify negative score: plain=%v boosted=%v", plain.Compound, boosted.Compound)
	}
}

func TestLexiconModelVersion(t *testing.T) {
	if got := NewLexiconScorer("").ModelVersion(); got != "lexicon-v1" {
		t.Errorf("Expected default version lexicon-v1, got %s", got)
	}
	if got := NewLexiconScorer("lexicon-v2").ModelVersion(); got != "lexicon-v2" {
		t.Errorf("Expected lexicon-v2, got %s", got)
	}
}
