package sentiment

import (
	"strings"
	"testing"
)

func TestParseVerdictDirectJSON(t *testing.T) {
	label, conf, rationale := parseVerdict(`{"label":"positive","confidence":0.82,"rationale":"Strong earnings beat."}`)
	if label != LabelPositive {
		t.Errorf("Expected positive, got %s", label)
	}
	if conf != 0.82 {
		t.Errorf("Expected confidence 0.82, got %v", conf)
	}
	if rationale != "Strong earnings beat." {
		t.Errorf("Expected rationale preserved, got %q", rationale)
	}
}

func TestParseVerdictEmbeddedJSON(t *testing.T) {
	content := "Here is my assessment:\n```json\n{\"label\": \"negative\", \"confidence\": 0.7, \"rationale\": \"Guidance cut.\"}\n```\nHope that helps."
	label, conf, _ := parseVerdict(content)
	if label != LabelNegative {
		t.Errorf("Expected negative, got %s", label)
	}
	if conf != 0.7 {
		t.Errorf("Expected confidence 0.7, got %v", conf)
	}
}

func TestParseVerdictGarbage(t *testing.T) {
	label, conf, rationale := parseVerdict("I cannot assess this article.")
	if label != LabelNeutral {
		t.Errorf("Expected neutral fallback, got %s", label)
	}
	if conf != 0 {
		t.Errorf("Expected zero confidence, got %v", conf)
	}
	if !strings.Contains(rationale, "no JSON") {
		t.Errorf("Expected fallback rationale, got %q", rationale)
	}
}

func TestParseVerdictMalformedJSON(t *testing.T) {
	label, conf, _ := parseVerdict(`{"label": "positive", "confidence": }`)
	if label != LabelNeutral {
		t.Errorf("Expected neutral fallback on malformed JSON, got %s", label)
	}
	if conf != 0 {
		t.Errorf("Expected zero confidence, got %v", conf)
	}
}

func TestParseVerdictClampsConfidence(t *testing.T) {
	_, conf, _ := parseVerdict(`{"label":"positive","confidence":1.7,"rationale":"x"}`)
	if conf != 1.0 {
		t.Errorf("Expected confidence clamped to 1.0, got %v", conf)
	}
	_, conf, _ = parseVerdict(`{"label":"negative","confidence":-0.3,"rationale":"x"}`)
	if conf != 0 {
		t.Errorf("Expected confidence clamped to 0, got %v", conf)
	}
}

func TestParseVerdictLabelSynonyms(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"Positive", LabelPositive},
		{"bullish/good", LabelPositive},
		{"NEGATIVE", LabelNegative},
		{"bad outlook", LabelNegative},
		{"mixed", LabelNeutral},
	}
	for _, c := range cases {
		label, _, _ := parseVerdict(`{"label":"` + c.raw + `","confidence":0.6,"rationale":"x"}`)
		if label != c.want {
			t.Errorf("Label %q: expected %s, got %s", c.raw, c.want, label)
		}
	}
}

func TestParseVerdictMissingConfidence(t *testing.T) {
	_, conf, _ := parseVerdict(`{"label":"positive","rationale":"Earnings beat."}`)
	if conf != 0.75 {
		t.Errorf("Expected heuristic confidence 0.75 for directional label, got %v", conf)
	}
	_, conf, _ = parseVerdict(`{"label":"neutral","rationale":"Routine filing."}`)
	if conf != 0.5 {
		t.Errorf("Expected heuristic confidence 0.5 for neutral label, got %v", conf)
	}
}

func TestVerdictToResultCompoundSign(t *testing.T) {
	r := verdictToResult(LabelPositive, 0.8, "x")
	if r.Compound != 0.8 {
		t.Errorf("Expected compound 0.8, got %v", r.Compound)
	}
	if r.Pos != 0.8 {
		t.Errorf("Expected pos mass 0.8, got %v", r.Pos)
	}

	r = verdictToResult(LabelNegative, 0.6, "x")
	if r.Compound != -0.6 {
		t.Errorf("Expected compound -0.6, got %v", r.Compound)
	}
	if r.Neg != 0.6 {
		t.Errorf("Expected neg mass 0.6, got %v", r.Neg)
	}

	r = verdictToResult(LabelNeutral, 0.5, "x")
	if r.Compound != 0 {
		t.Errorf("Expected compound 0 for neutral, got %v", r.Compound)
	}
}

func TestParseVerdictTruncatesRationale(t *testing.T) {
	long := strings.Repeat("a", 1000)
	_, _, rationale := parseVerdict(`{"label":"positive","confidence":0.6,"rationale":"` + long + `"}`)
	if len(rationale) > maxRationaleChars {
		t.Errorf("Expected rationale truncated to %d chars, got %d", maxRationaleChars, len(rationale))
	}
}
