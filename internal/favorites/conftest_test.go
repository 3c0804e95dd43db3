package favorites

import (
	"context"

	"github.com/ludic-labs/gamerec/internal/domain"
)

// --- Mocks ---

type mockFavoriteStore struct {
	favorites []domain.FavoriteGame
	err       error
}

func (m *mockFavoriteStore) ListFavorites(_ context.Context) ([]domain.FavoriteGame, error) {
	return m.favorites, m.err
}

type mockEmbeddingStore struct {
	records map[string]domain.StoredEmbedding
	err     error
}

func (m *mockEmbeddingStore) Get(_ context.Context, gameID string) (domain.StoredEmbedding, error) {
	if m.err != nil {
		return domain.StoredEmbedding{}, m.err
	}
	record, ok := m.records[gameID]
	if !ok {
		return domain.StoredEmbedding{}, domain.ErrNotFound
	}
	return record, nil
}

func favoriteWithTags(title string, tags ...domain.GameTag) Favorite {
	return Favorite{
		Game: domain.CatalogGame{Title: title},
		Tags: tags,
	}
}

func keywordTag(igdbID int64, slug string) domain.GameTag {
	return domain.GameTag{Slug: slug, Label: slug, Class: domain.TagClassKeyword, IGDBID: igdbID}
}
