// Package vectorindex maintains article embeddings in sqlite and answers
// nearest-neighbor queries over them. It is an optional sidecar: nothing in
// the training or backtest path depends on it.
package vectorindex

import (
	"context"
	"fmt"
	"sort"
	"time"

	embedding "github.com/matthewjhunter/go-embedding"

	"sentiment-trader/internal/logger"
	"sentiment-trader/internal/storage"
	"sentiment-trader/internal/types"
)

// Index embeds clean articles and searches them by cosine similarity.
type Index struct {
	store    *storage.Store
	embedder embedding.Embedder
}

func New(store *storage.Store, embedder embedding.Embedder) *Index {
	return &Index{store: store, embedder: embedder}
}

// EmbedPending embeds every clean article that has no vector for the
// current embedding model yet. One article failing does not stop the rest.
func (ix *Index) EmbedPending(ctx context.Context) (types.StageResult, error) {
	result := types.StageResult{Stage: "embed"}
	model := ix.embedder.Model()

	pending, err := ix.store.ListUnembeddedClean(model)
	if err != nil {
		return result, err
	}

	for _, a := range pending {
		vec, err := embedding.Single(ctx, ix.embedder, a.Title+"\n"+a.Body)
		if err != nil {
			logger.ErrorWithErr(ctx, "Failed to embed article", err, "clean_id", a.ID)
			result.Failed++
			continue
		}
		if err := ix.store.UpsertArticleEmbedding(a.ID, model, embedding.EncodeFloat32s(vec)); err != nil {
			logger.ErrorWithErr(ctx, "Failed to store embedding", err, "clean_id", a.ID)
			result.Failed++
			continue
		}
		result.Succeeded++
	}

	logger.Stage(ctx, result.Stage, result.Succeeded, result.Skipped, result.Failed)
	return result, nil
}

// Match is one query hit, most similar first.
type Match struct {
	CleanID     int64
	Ticker      string
	Title       string
	PublishedAt *time.Time
	Similarity  float64
}

// Query embeds the text and returns the topK most similar articles.
// A non-empty ticker restricts the search to that ticker's articles.
func (ix *Index) Query(ctx context.Context, text, ticker string, topK int) ([]Match, error) {
	if topK <= 0 {
		topK = 10
	}

	queryVec, err := embedding.Single(ctx, ix.embedder, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	stored, err := ix.store.ListArticleEmbeddings(ix.embedder.Model())
	if err != nil {
		return nil, err
	}

	var matches []Match
	for _, e := range stored {
		if ticker != "" && e.Ticker != ticker {
			continue
		}
		vec := embedding.DecodeFloat32s(e.Vector)
		matches = append(matches, Match{
			CleanID:     e.CleanID,
			Ticker:      e.Ticker,
			Title:       e.Title,
			PublishedAt: e.PublishedAt,
			Similarity:  embedding.CosineSimilarity(queryVec, vec),
		})
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Similarity > matches[j].Similarity })
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}
