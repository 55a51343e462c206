package interfaces

import (
	"context"

	"sentiment-trader/internal/types"
)

// Scorer assigns a sentiment verdict to one article. Implementations must
// return a well-formed result for any input, including malformed upstream
// model output; only transport-level failures surface as errors.
type Scorer interface {
	Score(ctx context.Context, title, body string) (types.ScoreResult, error)
	ModelVersion() string
}
