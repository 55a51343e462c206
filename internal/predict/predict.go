// Package predict answers "which way tomorrow" for a ticker using its
// persisted model and the latest feature row.
package predict

import (
	"context"
	"errors"
	"fmt"
	"os"

	"sentiment-trader/internal/features"
	"sentiment-trader/internal/logger"
	"sentiment-trader/internal/storage"
	"sentiment-trader/internal/train"
	"sentiment-trader/internal/types"
)

var (
	// ErrModelNotFound means the ticker has never been trained.
	ErrModelNotFound = errors.New("no trained model")
	// ErrNoData means there is no feature row to predict from.
	ErrNoData = errors.New("no feature rows")
)

const (
	DirectionUp   = "UP"
	DirectionDown = "DOWN"
)

// Predictor loads artifacts from modelsDir and scores the latest row.
type Predictor struct {
	builder   *features.Builder
	modelsDir string
}

func New(store *storage.Store, modelsDir string) *Predictor {
	return &Predictor{builder: features.NewBuilder(store), modelsDir: modelsDir}
}

// NextDay predicts the direction of the ticker's next daily return.
// Confidence is always the UP-class probability: a DOWN call with
// confidence 0.2 means the model sees a 20% chance of UP.
func (p *Predictor) NextDay(ctx context.Context, ticker string) (*types.Prediction, error) {
	art, err := train.LoadArtifact(train.ArtifactPath(p.modelsDir, ticker))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w for %s", ErrModelNotFound, ticker)
		}
		return nil, err
	}

	rows, err := p.builder.Build(ctx, ticker, art.SentimentModel)
	if err != nil {
		if errors.Is(err, features.ErrNotEnoughBars) {
			return nil, fmt.Errorf("%w for %s", ErrNoData, ticker)
		}
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoData, ticker)
	}

	last := rows[len(rows)-1]
	upProba := art.Forest.PredictProba(last.Vector())

	direction := DirectionDown
	if upProba >= 0.5 {
		direction = DirectionUp
	}

	logger.Prediction(ctx, ticker, direction, upProba, "as_of", last.Date.Format(storage.DateLayout))

	return &types.Prediction{
		Ticker:     ticker,
		Prediction: direction,
		Confidence: upProba,
		Date:       last.Date.Format(storage.DateLayout),
	}, nil
}
