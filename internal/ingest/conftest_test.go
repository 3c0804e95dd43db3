package ingest

import (
	"context"

	"github.com/ludic-labs/gamerec/internal/domain"
	"github.com/ludic-labs/gamerec/internal/igdb"
)

// --- Mocks ---

type mockTagStore struct {
	findFn   func(ctx context.Context, class string, igdbIDs []int64) ([]domain.GameTag, error)
	upsertFn func(ctx context.Context, tag *domain.GameTag) (domain.GameTag, error)

	upserted []domain.GameTag
}

func (m *mockTagStore) FindTags(ctx context.Context, class string, igdbIDs []int64) ([]domain.GameTag, error) {
	if m.findFn != nil {
		return m.findFn(ctx, class, igdbIDs)
	}
	return nil, nil
}

func (m *mockTagStore) UpsertTag(ctx context.Context, tag *domain.GameTag) (domain.GameTag, error) {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, tag)
	}
	stored := *tag
	stored.ID = int64(len(m.upserted) + 1)
	m.upserted = append(m.upserted, stored)
	return stored, nil
}

type mockTagClient struct {
	fetchFn func(ctx context.Context, class string, igdbIDs []int64) ([]igdb.Tag, error)
	calls   int
}

func (m *mockTagClient) FetchTags(ctx context.Context, class string, igdbIDs []int64) ([]igdb.Tag, error) {
	m.calls++
	if m.fetchFn != nil {
		return m.fetchFn(ctx, class, igdbIDs)
	}
	return nil, nil
}

type mockGameClient struct {
	game  igdb.Game
	found bool
	err   error
}

func (m *mockGameClient) FetchGameByID(_ context.Context, _ int64) (igdb.Game, bool, error) {
	return m.game, m.found, m.err
}

type mockResolver struct {
	tags []domain.GameTag
	err  error
}

func (m *mockResolver) Resolve(_ context.Context, _ []int64) ([]domain.GameTag, error) {
	return m.tags, m.err
}

type mockEmbedder struct {
	embedFn func(ctx context.Context, text string) (domain.EmbeddingResult, error)
	texts   []string
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	m.texts = append(m.texts, text)
	if m.embedFn != nil {
		return m.embedFn(ctx, text)
	}
	return domain.EmbeddingResult{Embedding: []float32{1, 2, 3}, Model: "test-model"}, nil
}
