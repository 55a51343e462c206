// Package train fits a direction classifier per ticker with forward-chaining
// cross-validation and persists the best fold's model to disk.
package train

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sentiment-trader/internal/features"
	"sentiment-trader/internal/logger"
	"sentiment-trader/internal/mlearn"
	"sentiment-trader/internal/storage"
	"sentiment-trader/internal/types"
)

// ErrNoData is returned when a ticker has too few feature rows to
// cross-validate.
var ErrNoData = errors.New("not enough data to train")

// Options mirror the trainer section of the config file.
type Options struct {
	Folds    int
	Trees    int
	MaxDepth int
	Seed     int64
}

// Trainer fits and persists per-ticker models.
type Trainer struct {
	builder   *features.Builder
	modelsDir string
	opts      Options
}

func New(store *storage.Store, modelsDir string, opts Options) *Trainer {
	return &Trainer{
		builder:   features.NewBuilder(store),
		modelsDir: modelsDir,
		opts:      opts,
	}
}

// Train cross-validates one ticker, keeps the model from the most accurate
// fold, writes the artifact and returns it. A retrain overwrites the prior
// artifact for the ticker.
func (t *Trainer) Train(ctx context.Context, ticker, sentimentModel string) (*Artifact, error) {
	timer := logger.StartOperation(ctx, "train", "ticker", ticker)

	rows, err := t.builder.Build(ctx, ticker, sentimentModel)
	if err != nil {
		if errors.Is(err, features.ErrNotEnoughBars) {
			err = fmt.Errorf("%w: %s", ErrNoData, ticker)
		}
		timer.EndWithError(err)
		return nil, err
	}

	art, err := t.fit(rows, ticker, sentimentModel)
	if err != nil {
		timer.EndWithError(err)
		return nil, err
	}

	if err := art.Save(ArtifactPath(t.modelsDir, ticker)); err != nil {
		timer.EndWithError(err)
		return nil, err
	}

	timer.End("cv_accuracy", art.CVAccuracy, "rows", len(rows))
	return art, nil
}

// fit runs the fold loop on already-built rows.
func (t *Trainer) fit(rows []types.FeatureRow, ticker, sentimentModel string) (*Artifact, error) {
	splits, err := mlearn.TimeSeriesSplit(len(rows), t.opts.Folds)
	if err != nil {
		return nil, fmt.Errorf("%w: %s has %d rows: %v", ErrNoData, ticker, len(rows), err)
	}

	X := make([][]float64, len(rows))
	y := make([]int, len(rows))
	for i, r := range rows {
		X[i] = r.Vector()
		y[i] = r.TargetClass
	}

	cfg := mlearn.ForestConfig{Trees: t.opts.Trees, MaxDepth: t.opts.MaxDepth, Seed: t.opts.Seed}

	var best *mlearn.Forest
	bestAccuracy := -1.0
	for _, s := range splits {
		f, err := mlearn.TrainForest(X[:s.TrainEnd], y[:s.TrainEnd], cfg)
		if err != nil {
			return nil, fmt.Errorf("fold training failed for %s: %w", ticker, err)
		}

		correct := 0
		for i := s.TestStart; i < s.TestEnd; i++ {
			if f.Predict(X[i]) == y[i] {
				correct++
			}
		}
		accuracy := float64(correct) / float64(s.TestEnd-s.TestStart)
		if accuracy > bestAccuracy {
			bestAccuracy = accuracy
			best = f
		}
	}

	return &Artifact{
		Ticker:         ticker,
		Forest:         best,
		FeatureNames:   types.FeatureNames,
		CVAccuracy:     bestAccuracy,
		SentimentModel: sentimentModel,
		TrainedAt:      time.Now().UTC(),
	}, nil
}
