// Package catalog persists imported games, their taxonomy tags, and user
// favorites in SQLite.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ludic-labs/gamerec/internal/db"
	"github.com/ludic-labs/gamerec/internal/domain"
)

// Repository is the catalog store.
type Repository struct {
	db     *db.DB
	logger *zap.Logger
}

// New creates the repository.
func New(database *db.DB, logger *zap.Logger) *Repository {
	return &Repository{db: database, logger: logger}
}

// UpsertGame stores or refreshes a game keyed by its IGDB id. When the
// stored checksum matches the incoming one the row is left untouched and
// the stored copy is returned, so unchanged imports cost one lookup.
func (r *Repository) UpsertGame(ctx context.Context, game *domain.CatalogGame) (domain.CatalogGame, error) {
	existing, err := r.GetByIGDBID(ctx, game.IGDBID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return r.insertGame(ctx, game)
	case err != nil:
		return domain.CatalogGame{}, err
	}

	if game.Checksum != "" && existing.Checksum == game.Checksum {
		return existing, nil
	}

	now := time.Now().UTC()
	_, err = r.db.SQL().ExecContext(ctx, `
		UPDATE igdb_games
		SET slug = ?, title = ?, description = ?, summary = ?,
		    release_date = ?, cover_url = ?, checksum = ?, updated_at = ?
		WHERE id = ?`,
		game.Slug, game.Title, game.Description, game.Summary,
		game.ReleaseDate, game.CoverURL, game.Checksum, now, existing.ID)
	if err != nil {
		return domain.CatalogGame{}, db.Wrap(db.OpExec, "update game", err)
	}

	updated := *game
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = now
	return updated, nil
}

func (r *Repository) insertGame(ctx context.Context, game *domain.CatalogGame) (domain.CatalogGame, error) {
	now := time.Now().UTC()
	res, err := r.db.SQL().ExecContext(ctx, `
		INSERT INTO igdb_games
			(igdb_id, slug, title, description, summary, release_date, cover_url,
			 checksum, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		game.IGDBID, game.Slug, game.Title, game.Description, game.Summary,
		game.ReleaseDate, game.CoverURL, game.Checksum, now, now)
	if err != nil {
		return domain.CatalogGame{}, db.Wrap(db.OpExec, "insert game", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.CatalogGame{}, db.Wrap(db.OpExec, "insert game", err)
	}

	stored := *game
	stored.ID = id
	stored.CreatedAt = now
	stored.UpdatedAt = now
	return stored, nil
}

// GetByIGDBID returns the game with the given IGDB id or domain.ErrNotFound.
func (r *Repository) GetByIGDBID(ctx context.Context, igdbID int64) (domain.CatalogGame, error) {
	return r.getGame(ctx, `igdb_id = ?`, igdbID)
}

// GetBySlug returns the game with the given slug or domain.ErrNotFound.
func (r *Repository) GetBySlug(ctx context.Context, slug string) (domain.CatalogGame, error) {
	return r.getGame(ctx, `slug = ?`, slug)
}

func (r *Repository) getGame(ctx context.Context, where string, arg any) (domain.CatalogGame, error) {
	row := r.db.SQL().QueryRowContext(ctx, `
		SELECT id, igdb_id, slug, title, description, summary,
		       release_date, cover_url, checksum, created_at, updated_at
		FROM igdb_games WHERE `+where, arg)

	game, err := scanGame(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.CatalogGame{}, fmt.Errorf("game %v: %w", arg, domain.ErrNotFound)
	}
	if err != nil {
		return domain.CatalogGame{}, db.Wrap(db.OpScan, "game", err)
	}
	return game, nil
}

// UpsertTag stores or refreshes a tag keyed by slug and returns the stored row.
func (r *Repository) UpsertTag(ctx context.Context, tag *domain.GameTag) (domain.GameTag, error) {
	_, err := r.db.SQL().ExecContext(ctx, `
		INSERT INTO game_tags (slug, label, tag_class, igdb_id)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(slug) DO UPDATE SET
			label = excluded.label,
			tag_class = excluded.tag_class,
			igdb_id = excluded.igdb_id`,
		tag.Slug, tag.Label, tag.Class, tag.IGDBID)
	if err != nil {
		return domain.GameTag{}, db.Wrap(db.OpExec, "upsert tag", err)
	}

	row := r.db.SQL().QueryRowContext(ctx,
		`SELECT id, slug, label, tag_class, igdb_id FROM game_tags WHERE slug = ?`, tag.Slug)
	stored, err := scanTag(row)
	if err != nil {
		return domain.GameTag{}, db.Wrap(db.OpScan, "tag", err)
	}
	return stored, nil
}

// FindTags returns the cached tags of one class matching the given external
// ids. Missing ids are simply absent from the result.
func (r *Repository) FindTags(ctx context.Context, class string, igdbIDs []int64) ([]domain.GameTag, error) {
	if len(igdbIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat(",?", len(igdbIDs))[1:]
	args := make([]any, 0, len(igdbIDs)+1)
	args = append(args, class)
	for _, id := range igdbIDs {
		args = append(args, id)
	}

	rows, err := r.db.SQL().QueryContext(ctx, `
		SELECT id, slug, label, tag_class, igdb_id FROM game_tags
		WHERE tag_class = ? AND igdb_id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, db.Wrap(db.OpQuery, "find tags", err)
	}
	defer func() { _ = rows.Close() }()

	return collectTags(rows)
}

// ReplaceTagLinks rewrites the tag set of a game atomically.
func (r *Repository) ReplaceTagLinks(ctx context.Context, gameID int64, tagIDs []int64) error {
	tx, err := r.db.SQL().BeginTx(ctx, nil)
	if err != nil {
		return db.Wrap(db.OpBegin, "replace tag links", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM game_tag_links WHERE game_id = ?`, gameID); err != nil {
		return db.Wrap(db.OpExec, "clear tag links", err)
	}
	for _, tagID := range tagIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO game_tag_links (game_id, tag_id) VALUES (?, ?)`,
			gameID, tagID); err != nil {
			return db.Wrap(db.OpExec, "insert tag link", err)
		}
	}

	return db.Wrap(db.OpCommit, "replace tag links", tx.Commit())
}

// TagsForGame returns the tags linked to a game, ordered by class then label.
func (r *Repository) TagsForGame(ctx context.Context, gameID int64) ([]domain.GameTag, error) {
	rows, err := r.db.SQL().QueryContext(ctx, `
		SELECT t.id, t.slug, t.label, t.tag_class, t.igdb_id
		FROM game_tags t
		JOIN game_tag_links l ON l.tag_id = t.id
		WHERE l.game_id = ?
		ORDER BY t.tag_class, t.label`, gameID)
	if err != nil {
		return nil, db.Wrap(db.OpQuery, "tags for game", err)
	}
	defer func() { _ = rows.Close() }()

	return collectTags(rows)
}

// AddFavorite marks a game as a user favorite. Re-adding updates the notes.
func (r *Repository) AddFavorite(ctx context.Context, gameID int64, notes string) error {
	_, err := r.db.SQL().ExecContext(ctx, `
		INSERT INTO user_favorite_games (game_id, notes) VALUES (?, ?)
		ON CONFLICT(game_id) DO UPDATE SET notes = excluded.notes`,
		gameID, notes)
	return db.Wrap(db.OpExec, "add favorite", err)
}

// RemoveFavorite removes a game from the favorites. Removing an absent
// favorite is not an error.
func (r *Repository) RemoveFavorite(ctx context.Context, gameID int64) error {
	_, err := r.db.SQL().ExecContext(ctx,
		`DELETE FROM user_favorite_games WHERE game_id = ?`, gameID)
	return db.Wrap(db.OpExec, "remove favorite", err)
}

// ListFavorites returns all favorites with their games and tags, newest first.
func (r *Repository) ListFavorites(ctx context.Context) ([]domain.FavoriteGame, error) {
	rows, err := r.db.SQL().QueryContext(ctx, `
		SELECT g.id, g.igdb_id, g.slug, g.title, g.description, g.summary,
		       g.release_date, g.cover_url, g.checksum, g.created_at, g.updated_at,
		       f.notes, f.added_at
		FROM user_favorite_games f
		JOIN igdb_games g ON g.id = f.game_id
		ORDER BY f.added_at DESC, f.id DESC`)
	if err != nil {
		return nil, db.Wrap(db.OpQuery, "list favorites", err)
	}
	defer func() { _ = rows.Close() }()

	var favorites []domain.FavoriteGame
	for rows.Next() {
		fav, err := scanFavorite(rows)
		if err != nil {
			return nil, db.Wrap(db.OpScan, "favorite", err)
		}
		favorites = append(favorites, fav)
	}
	if err := rows.Err(); err != nil {
		return nil, db.Wrap(db.OpScan, "list favorites", err)
	}

	for i := range favorites {
		tags, err := r.TagsForGame(ctx, favorites[i].Game.ID)
		if err != nil {
			return nil, err
		}
		favorites[i].Tags = tags
	}
	return favorites, nil
}
