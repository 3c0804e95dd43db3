package scoring

import (
	"math"
	"strings"
	"testing"

	"github.com/ludic-labs/gamerec/internal/domain"
)

const epsilon = 1e-9

func newPolicy() Policy {
	return Policy{MinScoreThreshold: 0.05}
}

func TestBaseSimilarity(t *testing.T) {
	p := newPolicy()
	cases := []struct {
		name     string
		distance float64
		want     float64
	}{
		{"zero distance", 0, 1.0},
		{"unit distance", 1, 0.5},
		{"far", 9, 0.1},
		{"negative falls to floor", -0.5, 0.05},
		{"NaN falls to floor", math.NaN(), 0.05},
		{"+Inf falls to floor", math.Inf(1), 0.05},
		{"-Inf falls to floor", math.Inf(-1), 0.05},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := p.baseSimilarity(tc.distance); math.Abs(got-tc.want) > epsilon {
				t.Errorf("baseSimilarity(%v) = %v, want %v", tc.distance, got, tc.want)
			}
		})
	}
}

// Final score must stay in [0,1] for any distance and attribute combination.
func TestScoreBounds(t *testing.T) {
	p := newPolicy()
	distances := []float64{math.NaN(), math.Inf(1), math.Inf(-1), -1, -1e300, 0, 0.5, 1e300}

	fullQuery := domain.SimilarityQuery{
		Title:         "Probe",
		Summary:       "an epic quest through haunted ruins",
		Tags:          []string{"RPG", "Fantasy", "Roguelike"},
		Genres:        []string{"Adventure"},
		FocusKeywords: []string{"dragons", "ruins"},
		Limit:         5,
	}
	queries := []domain.SimilarityQuery{
		{Title: "Probe", Limit: 5},
		fullQuery,
	}
	candidates := []domain.CandidateContext{
		{GameID: "empty"},
		{
			GameID:   "full",
			Summary:  "an epic quest through haunted ruins",
			Tags:     []string{"rpg", "fantasy", "roguelike"},
			Genres:   []string{"adventure"},
			Keywords: []string{"dragons", "ruins"},
		},
	}

	for _, d := range distances {
		for qi := range queries {
			for ci := range candidates {
				final, _, _ := p.Score(d, &queries[qi], &candidates[ci])
				if final < 0 || final > 1 || math.IsNaN(final) {
					t.Errorf("Score(d=%v, q=%d, c=%d) = %v, out of [0,1]", d, qi, ci, final)
				}
			}
		}
	}
}

// Tag bonus is zero without query tags and grows strictly with the overlap
// ratio up to the 0.20 cap.
func TestTagBonusMonotonicity(t *testing.T) {
	noTags := domain.SimilarityQuery{Title: "q", Limit: 1}
	candidate := domain.CandidateContext{Tags: []string{"a", "b", "c", "d"}}
	if bonus, _ := tagBonus(&noTags, &candidate); bonus != 0 {
		t.Fatalf("tag bonus without query tags = %v, want 0", bonus)
	}

	allTags := []string{"a", "b", "c", "d"}
	prev := 0.0
	for n := 1; n <= len(allTags); n++ {
		query := domain.SimilarityQuery{Title: "q", Limit: 1, Tags: allTags}
		cand := domain.CandidateContext{Tags: allTags[:n]}
		bonus, _ := tagBonus(&query, &cand)
		if bonus <= prev {
			t.Errorf("bonus at overlap %d/4 = %v, not greater than %v", n, bonus, prev)
		}
		if bonus > tagBonusCap+epsilon {
			t.Errorf("bonus %v exceeds cap", bonus)
		}
		prev = bonus
	}
	if math.Abs(prev-tagBonusCap) > epsilon {
		t.Errorf("full-overlap bonus = %v, want cap %v", prev, tagBonusCap)
	}
}

// Spec scenario: shared tags, genre, and summary tokens lift a 0.4-distance
// candidate above its base score and record a tag_overlap reason.
func TestScoreWellMatchedCandidate(t *testing.T) {
	p := newPolicy()
	query := domain.SimilarityQuery{
		Title:   "Dragon Saga",
		Summary: "epic RPG quest with dragons",
		Tags:    []string{"RPG", "Fantasy"},
		Genres:  []string{"Adventure"},
		Limit:   5,
	}
	candidate := domain.CandidateContext{
		GameID:  "g1",
		Summary: "an epic quest: dragons, an RPG classic",
		Tags:    []string{"rpg", "fantasy"},
		Genres:  []string{"Adventure"},
	}

	final, base, reasons := p.Score(0.4, &query, &candidate)
	if math.Abs(base-1.0/1.4) > 1e-6 {
		t.Fatalf("base = %v, want %v", base, 1.0/1.4)
	}
	if final <= base {
		t.Errorf("final %v not greater than base %v", final, base)
	}
	var hasTagReason bool
	for _, r := range reasons {
		if strings.HasPrefix(r, "tag_overlap:") {
			hasTagReason = true
			if r != "tag_overlap:fantasy,rpg" {
				t.Errorf("tag reason = %q, want sorted comma-joined overlap", r)
			}
		}
	}
	if !hasTagReason {
		t.Errorf("reasons %v missing tag_overlap entry", reasons)
	}
}

// Spec scenario: a closer candidate with no tags, genres, or summary takes
// the full 0.11 coverage penalty.
func TestScoreCoveragePenalty(t *testing.T) {
	p := newPolicy()
	query := domain.SimilarityQuery{
		Title:   "Dragon Saga",
		Summary: "epic RPG quest with dragons",
		Tags:    []string{"RPG"},
		Genres:  []string{"Adventure"},
		Limit:   5,
	}
	candidate := domain.CandidateContext{GameID: "bare"}

	final, base, reasons := p.Score(0.2, &query, &candidate)
	wantBase := 1.0 / 1.2
	if math.Abs(base-wantBase) > 1e-6 {
		t.Fatalf("base = %v, want %v", base, wantBase)
	}
	if math.Abs(final-(wantBase-0.11)) > 1e-6 {
		t.Errorf("final = %v, want %v", final, wantBase-0.11)
	}
	if len(reasons) != 1 || reasons[0] != "penalty:missing_tags,missing_genres,missing_summary" {
		t.Errorf("reasons = %v, want single combined penalty", reasons)
	}
}

func TestKeywordBonusMatchesCandidateTags(t *testing.T) {
	query := domain.SimilarityQuery{Title: "q", Limit: 1, FocusKeywords: []string{"roguelike"}}
	candidate := domain.CandidateContext{Tags: []string{"Roguelike"}}
	bonus, reason := keywordBonus(&query, &candidate)
	if bonus <= 0 {
		t.Fatalf("keyword bonus via tags = %v, want > 0", bonus)
	}
	if reason != "keyword_overlap:roguelike" {
		t.Errorf("reason = %q", reason)
	}
}

func TestSummaryBonusZeroWhenEitherEmpty(t *testing.T) {
	if bonus, _ := summaryBonus("", "words here"); bonus != 0 {
		t.Errorf("bonus with empty query summary = %v", bonus)
	}
	if bonus, _ := summaryBonus("words here", ""); bonus != 0 {
		t.Errorf("bonus with empty candidate summary = %v", bonus)
	}
}

func TestTokenize(t *testing.T) {
	got := tokenize("Epic RPG-quest, with 2 dragons!")
	want := []string{"epic", "rpg", "quest", "with", "2", "dragons"}
	if len(got) != len(want) {
		t.Fatalf("tokenize produced %v, want %d tokens", got, len(want))
	}
	for _, w := range want {
		if _, ok := got[w]; !ok {
			t.Errorf("missing token %q in %v", w, got)
		}
	}
}
