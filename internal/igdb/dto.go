package igdb

import (
	"fmt"
	"time"

	"github.com/ludic-labs/gamerec/internal/domain"
)

// Game is one game record from the catalog API. Only the fields the
// importer selects are mapped.
type Game struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	Slug             string  `json:"slug"`
	Summary          string  `json:"summary"`
	Storyline        string  `json:"storyline"`
	FirstReleaseDate int64   `json:"first_release_date"` // unix seconds, 0 when unknown
	Cover            Cover   `json:"cover"`
	Platforms        []int64 `json:"platforms"`
	Category         int     `json:"category"`
	Tags             []int64 `json:"tags"`
	Checksum         string  `json:"checksum"`
}

// Cover holds the nested cover object.
type Cover struct {
	ImageID string `json:"image_id"`
}

// ReleaseDate renders the release timestamp as a date string, empty when
// unknown.
func (g Game) ReleaseDate() string {
	if g.FirstReleaseDate <= 0 {
		return ""
	}
	return time.Unix(g.FirstReleaseDate, 0).UTC().Format("2006-01-02")
}

// Tag is one taxonomy record from a tag endpoint.
type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

const coverBaseURL = "https://images.igdb.com/igdb/image/upload"

// CoverURL builds the public cover image URL for an image id, empty for an
// empty id.
func CoverURL(imageID string) string {
	if imageID == "" {
		return ""
	}
	return fmt.Sprintf("%s/t_cover_big/%s.jpg", coverBaseURL, imageID)
}

// tagEndpoints maps tag classes to their API v4 endpoints.
var tagEndpoints = map[string]string{
	domain.TagClassTheme:             "themes",
	domain.TagClassGenre:             "genres",
	domain.TagClassKeyword:           "keywords",
	domain.TagClassPlayerPerspective: "player_perspectives",
}
