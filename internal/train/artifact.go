package train

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"sentiment-trader/internal/mlearn"
)

// Artifact is one ticker's persisted model plus enough metadata to tell
// what it was trained on.
type Artifact struct {
	Ticker         string         `json:"ticker"`
	Forest         *mlearn.Forest `json:"forest"`
	FeatureNames   []string       `json:"feature_names"`
	CVAccuracy     float64        `json:"cv_accuracy"`
	SentimentModel string         `json:"sentiment_model"`
	TrainedAt      time.Time      `json:"trained_at"`
}

// ArtifactPath returns where a ticker's model lives under modelsDir.
func ArtifactPath(modelsDir, ticker string) string {
	return filepath.Join(modelsDir, ticker+".json")
}

// Save writes the artifact, creating the models directory if needed.
func (a *Artifact) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create models dir: %w", err)
	}
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write model: %w", err)
	}
	return nil
}

// LoadArtifact reads a previously saved model.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to decode model %s: %w", path, err)
	}
	if a.Forest == nil {
		return nil, fmt.Errorf("model %s has no forest", path)
	}
	return &a, nil
}
