package similarity

import (
	"context"

	"github.com/ludic-labs/gamerec/internal/domain"
)

// Store is the consumer interface over the embedding repository (ISP).
type Store interface {
	SearchSimilar(ctx context.Context, queryVector []float32, k int) ([]domain.SearchHit, error)
}

// Embedder vectorizes the composite query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Scorer maps distance plus attributes to a bounded score with reasons.
type Scorer interface {
	Score(distance float64, query *domain.SimilarityQuery, candidate *domain.CandidateContext) (final, base float64, reasons []string)
}
