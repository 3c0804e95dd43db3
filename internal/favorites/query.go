// Package favorites loads the user's favorite games and offers a
// filter/sort chain over them for building prompt evidence.
package favorites

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ludic-labs/gamerec/internal/domain"
)

// Favorite is one favorite joined with its catalog entry and, when
// available, its stored embedding record.
type Favorite struct {
	Game    domain.CatalogGame
	Tags    []domain.GameTag
	Notes   string
	AddedAt time.Time
	// Embedding is nil when the game was imported without vectors.
	Embedding *domain.StoredEmbedding
}

// TagKey identifies a tag across games: class plus external id, falling
// back to the slug for tags without one.
type TagKey struct {
	Class string
	ID    string
}

// TagKeysOf builds the key set of a tag list.
func TagKeysOf(tags []domain.GameTag) map[TagKey]struct{} {
	keys := make(map[TagKey]struct{}, len(tags))
	for _, tag := range tags {
		if key, ok := tagKey(tag); ok {
			keys[key] = struct{}{}
		}
	}
	return keys
}

func tagKey(tag domain.GameTag) (TagKey, bool) {
	class := strings.ToLower(strings.TrimSpace(tag.Class))
	if class == "" {
		return TagKey{}, false
	}
	if tag.IGDBID > 0 {
		return TagKey{Class: class, ID: strconv.FormatInt(tag.IGDBID, 10)}, true
	}
	if slug := strings.ToLower(strings.TrimSpace(tag.Slug)); slug != "" {
		return TagKey{Class: class, ID: slug}, true
	}
	return TagKey{}, false
}

// Strategy scores a favorite for descending sort.
type Strategy interface {
	Score(favorite Favorite) float64
}

// TagSimilarityStrategy ranks by Jaccard similarity of tag key sets.
type TagSimilarityStrategy struct {
	Target map[TagKey]struct{}
}

// Score implements Strategy.
func (s TagSimilarityStrategy) Score(favorite Favorite) float64 {
	candidate := TagKeysOf(favorite.Tags)
	if len(s.Target) == 0 || len(candidate) == 0 {
		return 0
	}
	return jaccard(s.Target, candidate)
}

func jaccard(a, b map[TagKey]struct{}) float64 {
	intersection := 0
	for key := range a {
		if _, ok := b[key]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// VectorSelector picks one embedding facet from a favorite, nil when the
// facet is unavailable.
type VectorSelector func(favorite Favorite) []float32

// TitleVector selects the title facet.
func TitleVector(favorite Favorite) []float32 {
	if favorite.Embedding == nil {
		return nil
	}
	return favorite.Embedding.TitleVector
}

// StorylineVector selects the storyline facet.
func StorylineVector(favorite Favorite) []float32 {
	if favorite.Embedding == nil {
		return nil
	}
	return favorite.Embedding.StorylineVector
}

// SummaryVector selects the summary facet.
func SummaryVector(favorite Favorite) []float32 {
	if favorite.Embedding == nil {
		return nil
	}
	return favorite.Embedding.SummaryVector
}

// EmbeddingSimilarityStrategy ranks by cosine similarity against a query
// vector. Favorites without the facet score negative infinity and sink to
// the bottom.
type EmbeddingSimilarityStrategy struct {
	QueryVector []float32
	Selector    VectorSelector
}

// Score implements Strategy.
func (s EmbeddingSimilarityStrategy) Score(favorite Favorite) float64 {
	vec := s.Selector(favorite)
	if vec == nil {
		return math.Inf(-1)
	}
	return cosineSimilarity(s.QueryVector, vec)
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return math.Inf(-1)
	}
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return math.Inf(-1)
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Query is a filter/sort chain over a favorite list. Chain methods return
// the receiver for fluent use; Get applies everything in order.
type Query struct {
	items      []Favorite
	filters    []func(Favorite) bool
	strategies []Strategy
	limit      int
}

// NewQuery starts a chain over items.
func NewQuery(items []Favorite) *Query {
	return &Query{items: items}
}

// FilterByTags keeps favorites containing every given tag key.
func (q *Query) FilterByTags(required map[TagKey]struct{}) *Query {
	if len(required) == 0 {
		return q
	}
	q.filters = append(q.filters, func(favorite Favorite) bool {
		keys := TagKeysOf(favorite.Tags)
		for key := range required {
			if _, ok := keys[key]; !ok {
				return false
			}
		}
		return true
	})
	return q
}

// SortWith appends a sort strategy. Strategies apply in order; later
// strategies dominate, earlier ones break their ties.
func (q *Query) SortWith(strategy Strategy) *Query {
	q.strategies = append(q.strategies, strategy)
	return q
}

// SortByTagSimilarity sorts by Jaccard tag similarity to target.
func (q *Query) SortByTagSimilarity(target map[TagKey]struct{}) *Query {
	return q.SortWith(TagSimilarityStrategy{Target: target})
}

// SortByEmbedding sorts by cosine similarity of the selected facet.
func (q *Query) SortByEmbedding(queryVector []float32, selector VectorSelector) *Query {
	return q.SortWith(EmbeddingSimilarityStrategy{QueryVector: queryVector, Selector: selector})
}

// Limit caps the result size. Non-positive values are ignored.
func (q *Query) Limit(n int) *Query {
	if n > 0 {
		q.limit = n
	}
	return q
}

// Get applies filters, sorts, and the limit.
func (q *Query) Get() []Favorite {
	results := make([]Favorite, 0, len(q.items))
	for _, item := range q.items {
		if q.keep(item) {
			results = append(results, item)
		}
	}

	for _, strategy := range q.strategies {
		type scored struct {
			item  Favorite
			score float64
		}
		ranked := make([]scored, len(results))
		for i, item := range results {
			ranked[i] = scored{item: item, score: safeScore(strategy, item)}
		}
		sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
		for i := range ranked {
			results[i] = ranked[i].item
		}
	}

	if q.limit > 0 && len(results) > q.limit {
		results = results[:q.limit]
	}
	return results
}

func (q *Query) keep(item Favorite) bool {
	for _, filter := range q.filters {
		if !filter(item) {
			return false
		}
	}
	return true
}

func safeScore(strategy Strategy, favorite Favorite) float64 {
	score := strategy.Score(favorite)
	if math.IsNaN(score) {
		return math.Inf(-1)
	}
	return score
}
