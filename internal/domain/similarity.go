package domain

import (
	"fmt"
	"strings"
	"time"
)

// SimilarityQuery describes what to search similar games for.
// Tags, genres and keywords keep their original casing for display;
// comparisons are done on the lowercased forms.
type SimilarityQuery struct {
	Title           string
	Summary         string
	Tags            []string
	Genres          []string
	FocusKeywords   []string
	Limit           int
	GameID          string
	ExcludedGameIDs []string
}

// Normalize trims and de-duplicates list fields in place. Excluded ids are
// lowercased since id comparison is case-insensitive throughout.
func (q *SimilarityQuery) Normalize() {
	q.Tags = dedupeTrimmed(q.Tags)
	q.Genres = dedupeTrimmed(q.Genres)
	q.FocusKeywords = dedupeTrimmed(q.FocusKeywords)
	q.ExcludedGameIDs = dedupeLowered(q.ExcludedGameIDs)
}

// Validate checks the required fields.
func (q *SimilarityQuery) Validate() error {
	if strings.TrimSpace(q.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidQuery)
	}
	if q.Limit <= 0 {
		return fmt.Errorf("%w: limit must be positive", ErrInvalidQuery)
	}
	return nil
}

// NormalizedTags returns the lowercased tag set for comparison.
func (q *SimilarityQuery) NormalizedTags() map[string]struct{} { return loweredSet(q.Tags) }

// NormalizedGenres returns the lowercased genre set for comparison.
func (q *SimilarityQuery) NormalizedGenres() map[string]struct{} { return loweredSet(q.Genres) }

// NormalizedKeywords returns the lowercased focus-keyword set for comparison.
func (q *SimilarityQuery) NormalizedKeywords() map[string]struct{} {
	return loweredSet(q.FocusKeywords)
}

// CandidateContext is the game view reconstructed from a stored record's
// metadata, used for scoring and display.
type CandidateContext struct {
	GameID   string
	Title    string
	Summary  string
	Tags     []string
	Genres   []string
	Keywords []string
	Extra    map[string]any
}

// CandidateFromMetadata rebuilds a CandidateContext from the open metadata
// mapping stored alongside the vectors. Well-known keys are lifted into
// fields; the whole mapping is kept as Extra for passthrough.
func CandidateFromMetadata(gameID string, metadata map[string]any) CandidateContext {
	return CandidateContext{
		GameID:   gameID,
		Title:    stringValue(metadata, "title"),
		Summary:  stringValue(metadata, "summary"),
		Tags:     dedupeTrimmed(stringSlice(metadata, "tags")),
		Genres:   dedupeTrimmed(stringSlice(metadata, "genres")),
		Keywords: dedupeTrimmed(stringSlice(metadata, "keywords")),
		Extra:    metadata,
	}
}

// NormalizedTags returns the lowercased tag set for comparison.
func (c *CandidateContext) NormalizedTags() map[string]struct{} { return loweredSet(c.Tags) }

// NormalizedGenres returns the lowercased genre set for comparison.
func (c *CandidateContext) NormalizedGenres() map[string]struct{} { return loweredSet(c.Genres) }

// NormalizedKeywords returns the lowercased keyword set for comparison.
func (c *CandidateContext) NormalizedKeywords() map[string]struct{} { return loweredSet(c.Keywords) }

// SimilarityMatch is one scored candidate.
type SimilarityMatch struct {
	Candidate CandidateContext
	Score     float64 // final, clamped to [0,1]
	BaseScore float64 // pre-adjustment
	Distance  float64 // raw metric value
	Reasons   []string
}

// SimilarityResult is the outcome of one FindSimilar call.
type SimilarityResult struct {
	Query          SimilarityQuery
	Matches        []SimilarityMatch // descending by Score
	EmbeddingModel string
	ComputedAt     time.Time
}

func dedupeTrimmed(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func dedupeLowered(values []string) []string {
	lowered := make([]string, 0, len(values))
	for _, v := range values {
		lowered = append(lowered, strings.ToLower(v))
	}
	return dedupeTrimmed(lowered)
}

func loweredSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[strings.ToLower(v)] = struct{}{}
	}
	return set
}

func stringValue(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

func stringSlice(m map[string]any, key string) []string {
	switch v := m[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
