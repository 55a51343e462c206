package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"sentiment-trader/internal/store"
	"sentiment-trader/internal/trace"
	"sentiment-trader/internal/types"
)

// maxBodyChars caps how much article body is sent to the model.
const maxBodyChars = 2000

// maxRationaleChars caps stored rationale length.
const maxRationaleChars = 400

// LLMScorer classifies sentiment with a chat model (OpenAI or Claude).
// Malformed model output is never an error: the response is parsed
// defensively and degraded to a neutral zero-confidence result.
type LLMScorer struct {
	cfg      *store.Config
	provider string
	version  string
	client   *http.Client
}

// NewLLMScorer creates a scorer using the provider configured under
// sentiment.llm.
func NewLLMScorer(cfg *store.Config) *LLMScorer {
	return &LLMScorer{
		cfg:      cfg,
		provider: cfg.Sentiment.LLM.Provider,
		version:  cfg.Sentiment.ModelVersion,
		client:   http.DefaultClient,
	}
}

// ModelVersion returns the scorer's version tag.
func (s *LLMScorer) ModelVersion() string {
	return s.version
}

// llmVerdict is the JSON shape the prompt requests. Confidence is a
// pointer so an omitted field is distinguishable from an explicit 0.
type llmVerdict struct {
	Label      string   `json:"label"`
	Confidence *float64 `json:"confidence"`
	Rationale  string   `json:"rationale"`
}

// Score classifies one article. Errors are transport-level only (missing
// key, HTTP failure); an unparseable model reply degrades to neutral.
func (s *LLMScorer) Score(ctx context.Context, title, body string) (types.ScoreResult, error) {
	ctx, span := trace.StartSpan(ctx, "llm-sentiment-score")
	defer span.End()

	prompt := buildScorePrompt(title, body)

	var content string
	var err error
	switch strings.ToUpper(s.provider) {
	case "OPENAI":
		content, err = s.callOpenAI(ctx, prompt)
	case "CLAUDE":
		content, err = s.callClaude(ctx, prompt)
	default:
		return types.ScoreResult{}, fmt.Errorf("unsupported LLM provider: %s", s.provider)
	}
	if err != nil {
		return types.ScoreResult{}, err
	}

	label, confidence, rationale := parseVerdict(content)
	return verdictToResult(label, confidence, rationale), nil
}

// buildScorePrompt asks for strictly-valid JSON with label, confidence and
// a short rationale.
func buildScorePrompt(title, body string) string {
	if len(body) > maxBodyChars {
		body = body[:maxBodyChars] + "..."
	}

	return fmt.Sprintf(`You are a concise financial news sentiment classifier.
Given the article title and body, return a JSON object with three fields:
  - "label": one of "positive", "neutral", or "negative" (pick the single most appropriate label).
  - "confidence": a number between 0.0 and 1.0 (0 = not confident, 1 = fully confident).
  - "rationale": a short (max ~40 words) explanation for the label.

Important: Output must be valid JSON and nothing else.

Article title:
"""%s"""

Article body:
"""%s"""`, title, body)
}

// parseVerdict parses model output defensively: direct JSON first, then the
// outermost brace-delimited substring, then a neutral fallback. Never fails.
func parseVerdict(content string) (label string, confidence float64, rationale string) {
	content = strings.TrimSpace(content)

	var v llmVerdict
	if err := json.Unmarshal([]byte(content), &v); err == nil {
		return sanitizeVerdict(v)
	}

	if sub, ok := braceSubstring(content); ok {
		if err := json.Unmarshal([]byte(sub), &v); err == nil {
			return sanitizeVerdict(v)
		}
		return LabelNeutral, 0, "could not parse model output"
	}

	return LabelNeutral, 0, "no JSON in model output"
}

// braceSubstring extracts the outermost {...} span from text.
func braceSubstring(s string) (string, bool) {
	i := strings.Index(s, "{")
	j := strings.LastIndex(s, "}")
	if i < 0 || j <= i {
		return "", false
	}
	return s[i : j+1], true
}

// sanitizeVerdict normalizes the label (including common synonyms), clamps
// confidence to [0, 1] and truncates the rationale. A missing confidence
// field falls back to a per-label heuristic.
func sanitizeVerdict(v llmVerdict) (string, float64, string) {
	label := strings.ToLower(strings.TrimSpace(v.Label))
	switch label {
	case LabelPositive, LabelNeutral, LabelNegative:
	default:
		if strings.Contains(label, "pos") || strings.Contains(label, "good") || strings.Contains(label, "+") {
			label = LabelPositive
		} else if strings.Contains(label, "neg") || strings.Contains(label, "bad") || strings.Contains(label, "-") {
			label = LabelNegative
		} else {
			label = LabelNeutral
		}
	}

	var confidence float64
	if v.Confidence != nil {
		confidence = clamp01(*v.Confidence)
	} else {
		switch label {
		case LabelPositive, LabelNegative:
			confidence = 0.75
		default:
			confidence = 0.5
		}
	}

	rationale := v.Rationale
	if len(rationale) > maxRationaleChars {
		rationale = rationale[:maxRationaleChars]
	}
	return label, confidence, rationale
}

// verdictToResult maps a verdict onto the shared result shape: compound is
// the confidence signed by label, and the component split puts the
// confidence mass on the chosen label.
func verdictToResult(label string, confidence float64, rationale string) types.ScoreResult {
	r := types.ScoreResult{Label: label, Rationale: rationale}
	switch label {
	case LabelPositive:
		r.Compound = confidence
		r.Pos = confidence
		r.Neu = 1 - confidence
	case LabelNegative:
		r.Compound = -confidence
		r.Neg = confidence
		r.Neu = 1 - confidence
	default:
		r.Neu = 1
	}
	return r
}

// callOpenAI sends the prompt to the OpenAI chat completions API.
func (s *LLMScorer) callOpenAI(ctx context.Context, prompt string) (string, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return "", errors.New("OPENAI_API_KEY missing")
	}

	body := map[string]any{
		"model": s.cfg.Sentiment.LLM.Model,
		"messages": []map[string]string{
			{"role": "system", "content": "You are a financial news sentiment classifier. Respond ONLY with valid JSON."},
			{"role": "user", "content": prompt},
		},
		"temperature": s.cfg.Sentiment.LLM.Temperature,
		"max_tokens":  s.cfg.Sentiment.LLM.MaxTokens,
	}
	bb, _ := json.Marshal(body)

	req, _ := http.NewRequestWithContext(ctx, "POST", "https://api.openai.com/v1/chat/completions", bytes.NewReader(bb))
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("openai http %d", resp.StatusCode)
	}

	var r struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return "", err
	}
	if len(r.Choices) == 0 {
		return "", errors.New("no choices")
	}
	return r.Choices[0].Message.Content, nil
}

// callClaude sends the prompt to the Anthropic messages API.
func (s *LLMScorer) callClaude(ctx context.Context, prompt string) (string, error) {
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		return "", errors.New("ANTHROPIC_API_KEY missing")
	}

	body := map[string]any{
		"model":      s.cfg.Sentiment.LLM.Model,
		"max_tokens": s.cfg.Sentiment.LLM.MaxTokens,
		"system":     "You are a financial news sentiment classifier. Respond ONLY with valid JSON.",
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}
	bb, _ := json.Marshal(body)

	req, _ := http.NewRequestWithContext(ctx, "POST", "https://api.anthropic.com/v1/messages", bytes.NewReader(bb))
	req.Header.Set("x-api-key", apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("claude http %d", resp.StatusCode)
	}

	var r struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return "", err
	}
	if len(r.Content) == 0 {
		return "", errors.New("no content")
	}
	return r.Content[0].Text, nil
}
