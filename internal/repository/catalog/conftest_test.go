package catalog

import (
	"context"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/ludic-labs/gamerec/internal/db"
	"github.com/ludic-labs/gamerec/internal/domain"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	database, err := db.Open(db.Config{Path: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	return New(database, zap.NewNop())
}

func testGame(igdbID int64, title string) *domain.CatalogGame {
	return &domain.CatalogGame{
		IGDBID:      igdbID,
		Slug:        title + "-slug",
		Title:       title,
		Description: "storyline of " + title,
		Summary:     "summary of " + title,
		ReleaseDate: "2020-01-01",
		Checksum:    "sum-" + title,
	}
}

func mustUpsertGame(t *testing.T, repo *Repository, game *domain.CatalogGame) domain.CatalogGame {
	t.Helper()
	stored, err := repo.UpsertGame(context.Background(), game)
	if err != nil {
		t.Fatalf("upsert game %q: %v", game.Title, err)
	}
	return stored
}

func mustUpsertTag(t *testing.T, repo *Repository, slug, class string, igdbID int64) domain.GameTag {
	t.Helper()
	stored, err := repo.UpsertTag(context.Background(), &domain.GameTag{
		Slug:   slug,
		Label:  slug,
		Class:  class,
		IGDBID: igdbID,
	})
	if err != nil {
		t.Fatalf("upsert tag %q: %v", slug, err)
	}
	return stored
}
