package ingest

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/ludic-labs/gamerec/internal/domain"
	"github.com/ludic-labs/gamerec/internal/igdb"
)

func testIGDBGame() igdb.Game {
	return igdb.Game{
		ID:               1942,
		Name:             "Celeste",
		Slug:             "celeste",
		Summary:          "A platformer about climbing a mountain.",
		Storyline:        "Madeline climbs Celeste Mountain.",
		FirstReleaseDate: 1516838400,
		Cover:            igdb.Cover{ImageID: "co1abc"},
		Tags:             []int64{17, (1 << 28) | 8},
		Checksum:         "abc",
	}
}

func newTestBuilder(client *mockGameClient, res *mockResolver, emb *mockEmbedder) *GameBuilder {
	return NewGameBuilder(client, res, emb, zap.NewNop())
}

func TestBuildAssemblesGame(t *testing.T) {
	client := &mockGameClient{game: testIGDBGame(), found: true}
	res := &mockResolver{tags: []domain.GameTag{
		{Slug: "platformer", Label: "Platformer", Class: domain.TagClassGenre, IGDBID: 8},
		{Slug: "pixel-art", Label: "Pixel Art", Class: domain.TagClassKeyword, IGDBID: 77},
		{Slug: "survival", Label: "Survival", Class: domain.TagClassTheme, IGDBID: 17},
	}}
	emb := &mockEmbedder{}

	built, err := newTestBuilder(client, res, emb).Build(context.Background(), 1942, true)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if built.Game.Title != "Celeste" || built.Game.IGDBID != 1942 {
		t.Errorf("game = %+v", built.Game)
	}
	if built.Game.ReleaseDate != "2018-01-25" {
		t.Errorf("release date = %q", built.Game.ReleaseDate)
	}
	if built.Game.CoverURL == "" {
		t.Error("cover URL missing")
	}
	if built.Storyline != "Madeline climbs Celeste Mountain." {
		t.Errorf("storyline = %q", built.Storyline)
	}

	if built.Embedding == nil {
		t.Fatal("embedding payload missing")
	}
	if built.Embedding.GameID != "1942" {
		t.Errorf("embedding game id = %q", built.Embedding.GameID)
	}
	if built.Model != "test-model" {
		t.Errorf("model = %q", built.Model)
	}
	if len(emb.texts) != 3 || emb.texts[0] != "Celeste" {
		t.Errorf("embedded texts = %v", emb.texts)
	}

	meta := built.Embedding.Metadata
	if meta["title"] != "Celeste" {
		t.Errorf("metadata title = %v", meta["title"])
	}
	if tags, _ := meta["tags"].([]string); len(tags) != 3 {
		t.Errorf("metadata tags = %v", meta["tags"])
	}
	if genres, _ := meta["genres"].([]string); len(genres) != 1 || genres[0] != "Platformer" {
		t.Errorf("metadata genres = %v", meta["genres"])
	}
	if keywords, _ := meta["keywords"].([]string); len(keywords) != 1 || keywords[0] != "Pixel Art" {
		t.Errorf("metadata keywords = %v", meta["keywords"])
	}
}

func TestBuildSkipsEmbedding(t *testing.T) {
	client := &mockGameClient{game: testIGDBGame(), found: true}
	emb := &mockEmbedder{}

	built, err := newTestBuilder(client, &mockResolver{}, emb).Build(context.Background(), 1942, false)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if built.Embedding != nil {
		t.Error("expected nil embedding when generation is skipped")
	}
	if len(emb.texts) != 0 {
		t.Errorf("embedder called %d times", len(emb.texts))
	}
}

func TestBuildTextFallbacks(t *testing.T) {
	tests := []struct {
		name          string
		storyline     string
		summary       string
		wantStoryline string
		wantSummary   string
	}{
		{"both present", "story", "sum", "story", "sum"},
		{"storyline only", "story", "", "story", "story"},
		{"summary only", "", "sum", "sum", "sum"},
		{"neither", "", "", "Celeste", "Celeste"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			game := testIGDBGame()
			game.Storyline = tt.storyline
			game.Summary = tt.summary
			client := &mockGameClient{game: game, found: true}

			built, err := newTestBuilder(client, &mockResolver{}, &mockEmbedder{}).
				Build(context.Background(), 1942, false)
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if built.Storyline != tt.wantStoryline || built.Summary != tt.wantSummary {
				t.Errorf("storyline/summary = %q/%q, want %q/%q",
					built.Storyline, built.Summary, tt.wantStoryline, tt.wantSummary)
			}
		})
	}
}

func TestBuildUnknownGame(t *testing.T) {
	client := &mockGameClient{found: false}

	_, err := newTestBuilder(client, &mockResolver{}, &mockEmbedder{}).
		Build(context.Background(), 404, true)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestBuildEmbeddingErrors(t *testing.T) {
	client := &mockGameClient{game: testIGDBGame(), found: true}
	emb := &mockEmbedder{
		embedFn: func(_ context.Context, _ string) (domain.EmbeddingResult, error) {
			return domain.EmbeddingResult{}, errors.New("provider down")
		},
	}

	if _, err := newTestBuilder(client, &mockResolver{}, emb).
		Build(context.Background(), 1942, true); err == nil {
		t.Fatal("expected embedding error to surface")
	}
}

func TestBuildRejectsMismatchedFacets(t *testing.T) {
	client := &mockGameClient{game: testIGDBGame(), found: true}
	call := 0
	emb := &mockEmbedder{
		embedFn: func(_ context.Context, _ string) (domain.EmbeddingResult, error) {
			call++
			vec := []float32{1, 2, 3}
			if call == 2 {
				vec = []float32{1, 2} // storyline facet disagrees
			}
			return domain.EmbeddingResult{Embedding: vec, Model: "m"}, nil
		},
	}

	_, err := newTestBuilder(client, &mockResolver{}, emb).Build(context.Background(), 1942, true)
	if !errors.Is(err, domain.ErrDimensionMismatch) {
		t.Fatalf("error = %v, want ErrDimensionMismatch", err)
	}
}
