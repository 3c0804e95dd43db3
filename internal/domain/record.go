package domain

import "time"

// EmbeddingPayload is the write-side input for one game's embeddings.
// All three vectors must share the store's configured dimension.
type EmbeddingPayload struct {
	GameID          string
	TitleVector     []float32
	StorylineVector []float32
	SummaryVector   []float32
	Metadata        map[string]any
}

// StoredEmbedding is one persisted embedding record.
type StoredEmbedding struct {
	GameID          string
	Dimension       int
	TitleVector     []float32
	StorylineVector []float32
	SummaryVector   []float32
	Metadata        map[string]any
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// SearchHit is a stored record plus its raw distance to the query vector.
type SearchHit struct {
	Record   StoredEmbedding
	Distance float64
}
