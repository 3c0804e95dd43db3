package commands

import (
	"context"
	"fmt"
	"math"

	"github.com/ludic-labs/gamerec/internal/domain"
	"github.com/ludic-labs/gamerec/internal/favorites"
	"github.com/ludic-labs/gamerec/internal/ingest"
	"github.com/ludic-labs/gamerec/internal/prompting"
)

// buildDecisionPrompt assembles the agent prompt for one candidate game:
// the target is fetched and embedded, then ranked against the favorites
// four ways (tag overlap plus one ranking per embedding facet).
func buildDecisionPrompt(ctx context.Context, app *app, igdbID int64, perSection int) (string, *ingest.BuiltGame, error) {
	built, err := app.builder.Build(ctx, igdbID, true)
	if err != nil {
		return "", nil, fmt.Errorf("build game %d: %w", igdbID, err)
	}

	favs, err := app.favorites.Load(ctx)
	if err != nil {
		return "", nil, err
	}

	targetKeys := favorites.TagKeysOf(built.Tags)
	input := prompting.Input{
		Target: promptGameFromBuilt(&built),
		TagSimilar: topExamples(favs,
			favorites.TagSimilarityStrategy{Target: targetKeys}, perSection),
		TitleSimilar: topExamples(favs,
			favorites.EmbeddingSimilarityStrategy{
				QueryVector: built.Embedding.TitleVector,
				Selector:    favorites.TitleVector,
			}, perSection),
		StorylineSimilar: topExamples(favs,
			favorites.EmbeddingSimilarityStrategy{
				QueryVector: built.Embedding.StorylineVector,
				Selector:    favorites.StorylineVector,
			}, perSection),
		SummarySimilar: topExamples(favs,
			favorites.EmbeddingSimilarityStrategy{
				QueryVector: built.Embedding.SummaryVector,
				Selector:    favorites.SummaryVector,
			}, perSection),
	}

	prompt, err := app.prompts.Build(input)
	if err != nil {
		return "", nil, err
	}
	return prompt, &built, nil
}

// topExamples ranks favorites with one strategy and converts the best n
// into prompt evidence. Favorites the strategy cannot score keep their
// place in the list but render without a score.
func topExamples(favs []favorites.Favorite, strategy favorites.Strategy, n int) []prompting.SimilarExample {
	ranked := favorites.NewQuery(favs).SortWith(strategy).Limit(n).Get()

	examples := make([]prompting.SimilarExample, 0, len(ranked))
	for _, fav := range ranked {
		score := strategy.Score(fav)
		examples = append(examples, prompting.SimilarExample{
			Game:     promptGameFromFavorite(&fav),
			Score:    score,
			HasScore: !math.IsInf(score, -1) && !math.IsNaN(score),
			Note:     fav.Notes,
		})
	}
	return examples
}

func promptGameFromBuilt(built *ingest.BuiltGame) prompting.Game {
	return prompting.Game{
		Title:     built.Game.Title,
		Storyline: built.Storyline,
		Summary:   built.Summary,
		Tags:      tagLabels(built.Tags, ""),
		Keywords:  tagLabels(built.Tags, domain.TagClassKeyword),
	}
}

func promptGameFromFavorite(fav *favorites.Favorite) prompting.Game {
	return prompting.Game{
		Title:     fav.Game.Title,
		Storyline: fav.Game.Description,
		Summary:   fav.Game.Summary,
		Tags:      tagLabels(fav.Tags, ""),
		Keywords:  tagLabels(fav.Tags, domain.TagClassKeyword),
	}
}

// tagLabels collects tag labels, optionally restricted to one class.
func tagLabels(tags []domain.GameTag, class string) []string {
	var labels []string
	for _, tag := range tags {
		if class != "" && tag.Class != class {
			continue
		}
		labels = append(labels, tag.Label)
	}
	return labels
}
