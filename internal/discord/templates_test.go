package discord

import (
	"strings"
	"testing"
	"time"

	"github.com/ludic-labs/gamerec/internal/domain"
)

func TestChunkMessage(t *testing.T) {
	tests := []struct {
		name    string
		content string
		limit   int
		want    []string
	}{
		{"empty", "", 10, nil},
		{"fits in one chunk", "short\nmessage", 100, []string{"short\nmessage"}},
		{
			name:    "splits on line boundary",
			content: "aaaa\nbbbb\ncccc",
			limit:   9,
			want:    []string{"aaaa\nbbbb", "cccc"},
		},
		{
			name:    "hard-splits an oversized line",
			content: "aaaaaaaaaa",
			limit:   4,
			want:    []string{"aaaa", "aaaa", "aa"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ChunkMessage(tt.content, tt.limit)
			if len(got) != len(tt.want) {
				t.Fatalf("chunks = %q, want %q", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("chunk %d = %q, want %q", i, got[i], tt.want[i])
				}
				if len(got[i]) > tt.limit {
					t.Errorf("chunk %d exceeds limit: %d > %d", i, len(got[i]), tt.limit)
				}
			}
		})
	}
}

func TestTruncateText(t *testing.T) {
	if got := TruncateText("short", 10); got != "short" {
		t.Errorf("TruncateText = %q", got)
	}
	got := TruncateText(strings.Repeat("a", 400), 280)
	if len(got) > 280+len("…") {
		t.Errorf("truncated length %d", len(got))
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("missing ellipsis: %q", got)
	}
}

func TestBuildRecommendationMessages(t *testing.T) {
	result := &domain.SimilarityResult{
		Query: domain.SimilarityQuery{
			Title:         "Celeste",
			Tags:          []string{"platformer"},
			Genres:        []string{"indie"},
			FocusKeywords: []string{"pixel art"},
		},
		Matches: []domain.SimilarityMatch{
			{
				Candidate: domain.CandidateContext{
					GameID:  "g-1",
					Title:   "Hollow Knight",
					Summary: "A bug explores a fallen kingdom.",
					Tags:    []string{"metroidvania"},
					Genres:  []string{"indie"},
				},
				Score:     0.91,
				BaseScore: 0.72,
				Distance:  0.39,
				Reasons:   []string{"tag_overlap:metroidvania"},
			},
			{
				Candidate: domain.CandidateContext{GameID: "g-2"},
				Score:     0.5,
				BaseScore: 0.5,
				Distance:  1.0,
			},
		},
		EmbeddingModel: "text-embedding-3-small",
		ComputedAt:     time.Now(),
	}

	messages := BuildRecommendationMessages(result, MessageLimit)
	if len(messages) == 0 {
		t.Fatal("expected at least one message")
	}
	joined := strings.Join(messages, "\n")

	for _, want := range []string{
		"Recommendations (text-embedding-3-small)",
		"Query: Celeste",
		"Focus keywords: pixel art",
		"1. Hollow Knight (ID: g-1)",
		"score: 0.910 / base: 0.720 / distance: 0.390",
		"genres: indie | tags: metroidvania",
		"reasons: tag_overlap:metroidvania",
		"2. (untitled) (ID: g-2)",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("messages missing %q\n---\n%s", want, joined)
		}
	}
}

func TestBuildRecommendationMessagesChunking(t *testing.T) {
	long := strings.Repeat("An extremely detailed storyline sentence. ", 20)
	result := &domain.SimilarityResult{
		Query:          domain.SimilarityQuery{Title: "Celeste"},
		EmbeddingModel: "m",
	}
	for i := 0; i < 10; i++ {
		result.Matches = append(result.Matches, domain.SimilarityMatch{
			Candidate: domain.CandidateContext{GameID: "g", Title: "T", Summary: long},
		})
	}

	messages := BuildRecommendationMessages(result, 500)
	if len(messages) < 2 {
		t.Fatalf("expected chunked output, got %d message(s)", len(messages))
	}
	for i, msg := range messages {
		if len(msg) > 500 {
			t.Errorf("message %d length %d exceeds limit", i, len(msg))
		}
	}
}
