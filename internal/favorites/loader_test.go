package favorites

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ludic-labs/gamerec/internal/domain"
)

func TestLoaderAttachesEmbeddings(t *testing.T) {
	added := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	favStore := &mockFavoriteStore{favorites: []domain.FavoriteGame{
		{
			Game:    domain.CatalogGame{IGDBID: 1020, Title: "Celeste"},
			Tags:    []domain.GameTag{keywordTag(7, "platformer")},
			Notes:   "finished twice",
			AddedAt: added,
		},
		{
			Game: domain.CatalogGame{IGDBID: 2088, Title: "Unindexed"},
		},
	}}
	embStore := &mockEmbeddingStore{records: map[string]domain.StoredEmbedding{
		"1020": {GameID: "1020", TitleVector: []float32{1, 0}},
	}}

	loader := NewLoader(favStore, embStore, zap.NewNop())
	got, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Load() returned %d favorites, want 2", len(got))
	}

	first := got[0]
	if first.Embedding == nil || first.Embedding.GameID != "1020" {
		t.Errorf("first favorite embedding = %+v, want record 1020", first.Embedding)
	}
	if first.Notes != "finished twice" || !first.AddedAt.Equal(added) {
		t.Errorf("first favorite lost fields: %+v", first)
	}
	if len(first.Tags) != 1 {
		t.Errorf("first favorite tags = %v", first.Tags)
	}

	if got[1].Embedding != nil {
		t.Errorf("favorite without a stored record should have nil embedding, got %+v", got[1].Embedding)
	}
}

func TestLoaderPropagatesListError(t *testing.T) {
	favStore := &mockFavoriteStore{err: errors.New("database locked")}
	loader := NewLoader(favStore, &mockEmbeddingStore{}, zap.NewNop())

	if _, err := loader.Load(context.Background()); err == nil {
		t.Fatal("expected error from favorite store")
	}
}

func TestLoaderPropagatesEmbeddingError(t *testing.T) {
	favStore := &mockFavoriteStore{favorites: []domain.FavoriteGame{
		{Game: domain.CatalogGame{IGDBID: 1}},
	}}
	embStore := &mockEmbeddingStore{err: errors.New("corrupt page")}

	loader := NewLoader(favStore, embStore, zap.NewNop())
	if _, err := loader.Load(context.Background()); err == nil {
		t.Fatal("expected embedding store error to fail the load")
	}
}
