// Package similarity implements the query-side recommendation engine:
// embed the query, retrieve nearest candidates, re-rank with the scoring
// policy, return an ordered, truncated result.
package similarity

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ludic-labs/gamerec/internal/domain"
)

// Default engine limits, overridable via Config.
const (
	DefaultMaxLimit          = 20
	DefaultMinScoreThreshold = 0.05
)

// Config holds the engine settings.
type Config struct {
	MaxLimit          int
	MinScoreThreshold float64
}

// Service is the similarity engine. Collaborators are injected once at
// construction; there is no global provider registry.
type Service struct {
	store    Store
	embedder Embedder
	scorer   Scorer
	cfg      Config
	logger   *zap.Logger
}

// New creates the engine. Zero config fields fall back to defaults.
func New(store Store, embedder Embedder, scorer Scorer, cfg Config, logger *zap.Logger) *Service {
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = DefaultMaxLimit
	}
	if cfg.MinScoreThreshold <= 0 {
		cfg.MinScoreThreshold = DefaultMinScoreThreshold
	}
	return &Service{store: store, embedder: embedder, scorer: scorer, cfg: cfg, logger: logger}
}

// FindSimilar runs the full pipeline for one query. Any embedding or
// storage failure comes back as *ServiceError; validation failures surface
// as domain.ErrInvalidQuery. Ties on the final score keep retrieval order
// (stable sort); candidates whose metadata cannot be interpreted are
// skipped with a warning rather than aborting the query.
func (s *Service) FindSimilar(ctx context.Context, query domain.SimilarityQuery) (domain.SimilarityResult, error) {
	query.Normalize()
	if err := query.Validate(); err != nil {
		return domain.SimilarityResult{}, err
	}
	limit := query.Limit
	if limit > s.cfg.MaxLimit {
		limit = s.cfg.MaxLimit
	}

	embedded, err := s.embedder.Embed(ctx, compositeText(&query))
	if err != nil {
		return domain.SimilarityResult{}, s.fail("embed", err)
	}

	// Over-fetch to absorb exclusions and duplicates.
	fetchLimit := limit * 2
	if fetchLimit < limit {
		fetchLimit = limit
	}
	candidates, err := s.store.SearchSimilar(ctx, embedded.Embedding, fetchLimit)
	if err != nil {
		return domain.SimilarityResult{}, s.fail("search", err)
	}

	matches := s.scoreCandidates(&query, s.filterCandidates(&query, candidates), limit)

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > limit {
		matches = matches[:limit]
	}

	result := domain.SimilarityResult{
		Query:          query,
		Matches:        matches,
		EmbeddingModel: embedded.Model,
		ComputedAt:     time.Now().UTC(),
	}

	s.logger.Info("similarity completed",
		zap.String("query_title", query.Title),
		zap.Int("match_count", len(matches)),
		zap.Int("limit", limit),
		zap.String("embedding_model", embedded.Model),
	)
	return result, nil
}

// filterCandidates drops the query's own game, explicit exclusions, and
// duplicate ids (first occurrence wins). All comparisons case-insensitive.
func (s *Service) filterCandidates(query *domain.SimilarityQuery, candidates []domain.SearchHit) []domain.SearchHit {
	excluded := make(map[string]struct{}, len(query.ExcludedGameIDs)+1)
	for _, id := range query.ExcludedGameIDs {
		excluded[strings.ToLower(id)] = struct{}{}
	}
	if query.GameID != "" {
		excluded[strings.ToLower(query.GameID)] = struct{}{}
	}

	filtered := make([]domain.SearchHit, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for _, hit := range candidates {
		id := strings.ToLower(hit.Record.GameID)
		if _, drop := excluded[id]; drop {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		filtered = append(filtered, hit)
	}
	return filtered
}

func (s *Service) scoreCandidates(query *domain.SimilarityQuery, hits []domain.SearchHit, limit int) []domain.SimilarityMatch {
	matches := make([]domain.SimilarityMatch, 0, limit)
	for _, hit := range hits {
		if hit.Record.Metadata == nil {
			s.logger.Warn("skipping candidate without metadata",
				zap.String("game_id", hit.Record.GameID))
			continue
		}
		candidate := domain.CandidateFromMetadata(hit.Record.GameID, hit.Record.Metadata)
		final, base, reasons := s.scorer.Score(hit.Distance, query, &candidate)
		if final < s.cfg.MinScoreThreshold {
			continue
		}
		matches = append(matches, domain.SimilarityMatch{
			Candidate: candidate,
			Score:     final,
			BaseScore: base,
			Distance:  hit.Distance,
			Reasons:   reasons,
		})
		if len(matches) >= limit {
			break
		}
	}
	return matches
}

// compositeText builds the labeled embedding input from the non-empty
// query fields.
func compositeText(query *domain.SimilarityQuery) string {
	sections := []string{"Title: " + strings.TrimSpace(query.Title)}
	if query.Summary != "" {
		sections = append(sections, "Summary: "+strings.TrimSpace(query.Summary))
	}
	if len(query.Genres) > 0 {
		sections = append(sections, "Genres: "+strings.Join(query.Genres, ", "))
	}
	if len(query.Tags) > 0 {
		sections = append(sections, "Tags: "+strings.Join(query.Tags, ", "))
	}
	if len(query.FocusKeywords) > 0 {
		sections = append(sections, "Keywords: "+strings.Join(query.FocusKeywords, ", "))
	}
	return strings.Join(sections, "\n")
}

func (s *Service) fail(stage string, err error) error {
	s.logger.Error("similarity "+stage+" failed", zap.Error(err))
	return &ServiceError{Stage: stage, Err: err}
}
