package favorites

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/ludic-labs/gamerec/internal/domain"
)

// favoriteStore is the consumer interface over the catalog repository.
type favoriteStore interface {
	ListFavorites(ctx context.Context) ([]domain.FavoriteGame, error)
}

// embeddingStore is the consumer interface over the embedding repository.
type embeddingStore interface {
	Get(ctx context.Context, gameID string) (domain.StoredEmbedding, error)
}

// Loader joins favorites with their stored embedding records.
type Loader struct {
	favorites  favoriteStore
	embeddings embeddingStore
	logger     *zap.Logger
}

// NewLoader creates a loader.
func NewLoader(favorites favoriteStore, embeddings embeddingStore, logger *zap.Logger) *Loader {
	return &Loader{favorites: favorites, embeddings: embeddings, logger: logger}
}

// Load returns all favorites. Games without a stored embedding keep a nil
// Embedding rather than failing the load.
func (l *Loader) Load(ctx context.Context) ([]Favorite, error) {
	stored, err := l.favorites.ListFavorites(ctx)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}

	favorites := make([]Favorite, 0, len(stored))
	for _, fav := range stored {
		item := Favorite{
			Game:    fav.Game,
			Tags:    fav.Tags,
			Notes:   fav.Notes,
			AddedAt: fav.AddedAt,
		}

		gameID := strconv.FormatInt(fav.Game.IGDBID, 10)
		record, err := l.embeddings.Get(ctx, gameID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			l.logger.Debug("favorite has no embedding", zap.String("game_id", gameID))
		case err != nil:
			return nil, fmt.Errorf("load embedding for %s: %w", gameID, err)
		default:
			item.Embedding = &record
		}

		favorites = append(favorites, item)
	}

	l.logger.Info("favorites loaded", zap.Int("count", len(favorites)))
	return favorites, nil
}
