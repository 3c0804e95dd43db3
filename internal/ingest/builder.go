package ingest

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ludic-labs/gamerec/internal/domain"
	"github.com/ludic-labs/gamerec/internal/igdb"
)

// gameClient is the consumer interface over the API client.
type gameClient interface {
	FetchGameByID(ctx context.Context, igdbID int64) (igdb.Game, bool, error)
}

// resolver is the consumer interface over the tag resolver.
type resolver interface {
	Resolve(ctx context.Context, tagNumbers []int64) ([]domain.GameTag, error)
}

// BuiltGame bundles everything the importer persists for one game.
type BuiltGame struct {
	Game      domain.CatalogGame
	Tags      []domain.GameTag
	Storyline string
	Summary   string
	// Embedding is nil when embedding generation was skipped.
	Embedding *domain.EmbeddingPayload
	Model     string
}

// GameBuilder assembles a BuiltGame from a single catalog id: game detail,
// resolved tags, cover URL, and the three embedding vectors.
type GameBuilder struct {
	client   gameClient
	resolver resolver
	embedder domain.Embedder
	logger   *zap.Logger
}

// NewGameBuilder creates a builder.
func NewGameBuilder(client gameClient, res resolver, embedder domain.Embedder, logger *zap.Logger) *GameBuilder {
	return &GameBuilder{client: client, resolver: res, embedder: embedder, logger: logger}
}

// Build fetches and assembles a game. Unknown ids map to domain.ErrNotFound.
// When withEmbedding is false the returned payload has a nil Embedding.
func (b *GameBuilder) Build(ctx context.Context, igdbID int64, withEmbedding bool) (BuiltGame, error) {
	game, found, err := b.client.FetchGameByID(ctx, igdbID)
	if err != nil {
		return BuiltGame{}, fmt.Errorf("fetch game %d: %w", igdbID, err)
	}
	if !found {
		return BuiltGame{}, fmt.Errorf("game %d: %w", igdbID, domain.ErrNotFound)
	}

	tags, err := b.resolver.Resolve(ctx, game.Tags)
	if err != nil {
		return BuiltGame{}, fmt.Errorf("resolve tags for game %d: %w", igdbID, err)
	}

	// Storyline and summary back-fill each other, with the title as the
	// text of last resort so every game embeds something.
	storyline := firstNonEmpty(game.Storyline, game.Summary, game.Name)
	summary := firstNonEmpty(game.Summary, game.Storyline, game.Name)

	built := BuiltGame{
		Game: domain.CatalogGame{
			IGDBID:      game.ID,
			Slug:        game.Slug,
			Title:       game.Name,
			Description: storyline,
			Summary:     summary,
			ReleaseDate: game.ReleaseDate(),
			CoverURL:    igdb.CoverURL(game.Cover.ImageID),
			Checksum:    game.Checksum,
		},
		Tags:      tags,
		Storyline: storyline,
		Summary:   summary,
	}

	if withEmbedding {
		payload, model, err := b.embed(ctx, &built)
		if err != nil {
			return BuiltGame{}, err
		}
		built.Embedding = payload
		built.Model = model
	}

	b.logger.Info("game built",
		zap.Int64("igdb_id", igdbID),
		zap.Int("tags", len(tags)),
		zap.Bool("embedded", built.Embedding != nil))
	return built, nil
}

func (b *GameBuilder) embed(ctx context.Context, built *BuiltGame) (*domain.EmbeddingPayload, string, error) {
	title, err := b.embedder.Embed(ctx, built.Game.Title)
	if err != nil {
		return nil, "", fmt.Errorf("embed title: %w", err)
	}
	storyline, err := b.embedder.Embed(ctx, built.Storyline)
	if err != nil {
		return nil, "", fmt.Errorf("embed storyline: %w", err)
	}
	summary, err := b.embedder.Embed(ctx, built.Summary)
	if err != nil {
		return nil, "", fmt.Errorf("embed summary: %w", err)
	}

	if len(storyline.Embedding) != len(title.Embedding) ||
		len(summary.Embedding) != len(title.Embedding) {
		return nil, "", fmt.Errorf("%w: embedding facets disagree (%d/%d/%d values)",
			domain.ErrDimensionMismatch,
			len(title.Embedding), len(storyline.Embedding), len(summary.Embedding))
	}

	return &domain.EmbeddingPayload{
		GameID:          strconv.FormatInt(built.Game.IGDBID, 10),
		TitleVector:     title.Embedding,
		StorylineVector: storyline.Embedding,
		SummaryVector:   summary.Embedding,
		Metadata:        buildMetadata(built),
	}, title.Model, nil
}

// buildMetadata shapes the searchable candidate profile stored next to the
// vectors.
func buildMetadata(built *BuiltGame) map[string]any {
	var tags, genres, keywords []string
	for _, tag := range built.Tags {
		tags = append(tags, tag.Label)
		switch tag.Class {
		case domain.TagClassGenre:
			genres = append(genres, tag.Label)
		case domain.TagClassKeyword:
			keywords = append(keywords, tag.Label)
		}
	}

	return map[string]any{
		"title":     built.Game.Title,
		"slug":      built.Game.Slug,
		"summary":   built.Summary,
		"storyline": built.Storyline,
		"tags":      tags,
		"genres":    genres,
		"keywords":  keywords,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
