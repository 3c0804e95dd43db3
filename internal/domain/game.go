package domain

import "time"

// CatalogGame is one imported game from the external catalog.
type CatalogGame struct {
	ID          int64 // internal row id, 0 until persisted
	IGDBID      int64
	Slug        string
	Title       string
	Description string
	Summary     string
	ReleaseDate string
	CoverURL    string
	Checksum    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Tag classes as encoded in IGDB packed tag numbers.
const (
	TagClassTheme             = "theme"
	TagClassGenre             = "genre"
	TagClassKeyword           = "keyword"
	TagClassPlayerPerspective = "player_perspective"
)

// GameTag is one resolved taxonomy tag, cached locally.
type GameTag struct {
	ID     int64
	Slug   string
	Label  string
	Class  string
	IGDBID int64
}

// FavoriteGame is a user favorite joined with its catalog entry.
type FavoriteGame struct {
	Game    CatalogGame
	Tags    []GameTag
	Notes   string
	AddedAt time.Time
}
