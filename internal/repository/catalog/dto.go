package catalog

import (
	"database/sql"

	"github.com/ludic-labs/gamerec/internal/domain"
)

// scanner abstracts *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanGame(s scanner) (domain.CatalogGame, error) {
	var game domain.CatalogGame
	var slug, summary, release, cover, checksum sql.NullString

	err := s.Scan(&game.ID, &game.IGDBID, &slug, &game.Title, &game.Description,
		&summary, &release, &cover, &checksum, &game.CreatedAt, &game.UpdatedAt)
	if err != nil {
		return domain.CatalogGame{}, err
	}

	game.Slug = slug.String
	game.Summary = summary.String
	game.ReleaseDate = release.String
	game.CoverURL = cover.String
	game.Checksum = checksum.String
	return game, nil
}

func scanTag(s scanner) (domain.GameTag, error) {
	var tag domain.GameTag
	err := s.Scan(&tag.ID, &tag.Slug, &tag.Label, &tag.Class, &tag.IGDBID)
	return tag, err
}

func collectTags(rows *sql.Rows) ([]domain.GameTag, error) {
	var tags []domain.GameTag
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

func scanFavorite(s scanner) (domain.FavoriteGame, error) {
	var fav domain.FavoriteGame
	var slug, summary, release, cover, checksum, notes sql.NullString

	err := s.Scan(&fav.Game.ID, &fav.Game.IGDBID, &slug, &fav.Game.Title,
		&fav.Game.Description, &summary, &release, &cover, &checksum,
		&fav.Game.CreatedAt, &fav.Game.UpdatedAt, &notes, &fav.AddedAt)
	if err != nil {
		return domain.FavoriteGame{}, err
	}

	fav.Game.Slug = slug.String
	fav.Game.Summary = summary.String
	fav.Game.ReleaseDate = release.String
	fav.Game.CoverURL = cover.String
	fav.Game.Checksum = checksum.String
	fav.Notes = notes.String
	return fav, nil
}
