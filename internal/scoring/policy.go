// Package scoring turns raw vector distance plus attribute overlap into a
// bounded, explainable relevance score.
package scoring

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/ludic-labs/gamerec/internal/domain"
)

// Bonus caps and increments. Each bonus is independently capped, so the
// final clamp to [0,1] is a hard guarantee, not a hope.
const (
	tagBonusCap   = 0.20
	tagBonusBase  = 0.05
	tagBonusSlope = 0.15

	genreBonusCap   = 0.15
	genreBonusBase  = 0.03
	genreBonusSlope = 0.12

	keywordBonusCap   = 0.10
	keywordBonusBase  = 0.02
	keywordBonusSlope = 0.08

	summaryBonusCap   = 0.20
	summaryBonusBase  = 0.02
	summaryBonusSlope = 0.10

	missingTagsPenalty    = 0.03
	missingGenresPenalty  = 0.03
	missingSummaryPenalty = 0.05
)

// Policy is a pure scoring function. It has no state and performs no I/O.
type Policy struct {
	// MinScoreThreshold doubles as the floor base score for malformed
	// distances, so broken candidates are deprioritized but not errors.
	MinScoreThreshold float64
}

// Score maps a distance and the query/candidate attributes to a final score
// in [0,1], the pre-adjustment base score, and an ordered list of reason
// tags for every adjustment that fired.
func (p Policy) Score(
	distance float64, query *domain.SimilarityQuery, candidate *domain.CandidateContext,
) (final, base float64, reasons []string) {
	base = p.baseSimilarity(distance)
	adjusted := base

	if bonus, reason := tagBonus(query, candidate); bonus > 0 {
		adjusted += bonus
		reasons = append(reasons, reason)
	}
	if bonus, reason := genreBonus(query, candidate); bonus > 0 {
		adjusted += bonus
		reasons = append(reasons, reason)
	}
	if bonus, reason := keywordBonus(query, candidate); bonus > 0 {
		adjusted += bonus
		reasons = append(reasons, reason)
	}
	if bonus, reason := summaryBonus(query.Summary, candidate.Summary); bonus > 0 {
		adjusted += bonus
		reasons = append(reasons, reason)
	}
	if penalty, reason := coveragePenalty(query, candidate); penalty > 0 {
		adjusted -= penalty
		reasons = append(reasons, reason)
	}

	return clamp(adjusted), base, reasons
}

// baseSimilarity is 1/(1+distance) for finite non-negative distances and the
// configured floor otherwise.
func (p Policy) baseSimilarity(distance float64) float64 {
	if math.IsNaN(distance) || math.IsInf(distance, 0) || distance < 0 {
		return p.MinScoreThreshold
	}
	return 1.0 / (1.0 + distance)
}

func tagBonus(query *domain.SimilarityQuery, candidate *domain.CandidateContext) (float64, string) {
	return overlapBonus(
		query.NormalizedTags(), candidate.NormalizedTags(),
		"tag_overlap", tagBonusCap, tagBonusBase, tagBonusSlope,
	)
}

func genreBonus(query *domain.SimilarityQuery, candidate *domain.CandidateContext) (float64, string) {
	return overlapBonus(
		query.NormalizedGenres(), candidate.NormalizedGenres(),
		"genre_overlap", genreBonusCap, genreBonusBase, genreBonusSlope,
	)
}

// keywordBonus matches focus keywords against the candidate's keywords and
// tags combined; catalogs frequently file the same concept under either.
func keywordBonus(query *domain.SimilarityQuery, candidate *domain.CandidateContext) (float64, string) {
	target := candidate.NormalizedKeywords()
	for tag := range candidate.NormalizedTags() {
		target[tag] = struct{}{}
	}
	return overlapBonus(
		query.NormalizedKeywords(), target,
		"keyword_overlap", keywordBonusCap, keywordBonusBase, keywordBonusSlope,
	)
}

func overlapBonus(
	querySet, candidateSet map[string]struct{},
	label string, ceiling, baseInc, slope float64,
) (float64, string) {
	if len(querySet) == 0 || len(candidateSet) == 0 {
		return 0, ""
	}
	overlap := intersect(querySet, candidateSet)
	if len(overlap) == 0 {
		return 0, ""
	}
	ratio := float64(len(overlap)) / float64(len(querySet))
	bonus := math.Min(ceiling, baseInc+slope*ratio)
	return bonus, label + ":" + strings.Join(sortedKeys(overlap), ",")
}

func summaryBonus(querySummary, candidateSummary string) (float64, string) {
	if querySummary == "" || candidateSummary == "" {
		return 0, ""
	}
	queryTokens := tokenize(querySummary)
	candidateTokens := tokenize(candidateSummary)
	if len(queryTokens) == 0 || len(candidateTokens) == 0 {
		return 0, ""
	}
	overlap := intersect(queryTokens, candidateTokens)
	if len(overlap) == 0 {
		return 0, ""
	}
	ratio := float64(len(overlap)) / float64(len(queryTokens))
	bonus := math.Min(summaryBonusCap, summaryBonusSlope*ratio+summaryBonusBase)
	return bonus, fmt.Sprintf("summary_overlap:%d", len(overlap))
}

// coveragePenalty is the sum of all applicable penalties, reported as a
// single penalty:<labels> reason.
func coveragePenalty(query *domain.SimilarityQuery, candidate *domain.CandidateContext) (float64, string) {
	var total float64
	var labels []string
	if len(query.Tags) > 0 && len(candidate.Tags) == 0 {
		total += missingTagsPenalty
		labels = append(labels, "missing_tags")
	}
	if len(query.Genres) > 0 && len(candidate.Genres) == 0 {
		total += missingGenresPenalty
		labels = append(labels, "missing_genres")
	}
	if query.Summary != "" && candidate.Summary == "" {
		total += missingSummaryPenalty
		labels = append(labels, "missing_summary")
	}
	if total == 0 {
		return 0, ""
	}
	return total, "penalty:" + strings.Join(labels, ",")
}

// tokenize splits text into lowercase alphanumeric runs.
func tokenize(text string) map[string]struct{} {
	tokens := make(map[string]struct{})
	var sb strings.Builder
	flush := func() {
		if sb.Len() > 0 {
			tokens[sb.String()] = struct{}{}
			sb.Reset()
		}
	}
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return tokens
}

func intersect(a, b map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{})
	for k := range a {
		if _, ok := b[k]; ok {
			out[k] = struct{}{}
		}
	}
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func clamp(v float64) float64 {
	return math.Max(0.0, math.Min(1.0, v))
}
