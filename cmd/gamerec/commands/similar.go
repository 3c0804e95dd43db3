package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ludic-labs/gamerec/internal/discord"
	"github.com/ludic-labs/gamerec/internal/domain"
)

var (
	similarGameID   int64
	similarSummary  string
	similarTags     []string
	similarGenres   []string
	similarKeywords []string
	similarExclude  []string
	similarLimit    int
	similarNotify   bool
)

// NewSimilarCmd creates the similar command.
func NewSimilarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "similar [title]",
		Short: "Find stored games similar to a query",
		Long: `Run a similarity query against the stored embeddings. The query is
either described inline (title plus optional summary/tags/genres) or
seeded from an already imported game with --game.

Examples:
  gamerec similar "Celeste" --tags platformer --genres indie
  gamerec similar --game 1020 --limit 5 --notify`,
		Args: cobra.MaximumNArgs(1),
		RunE: runSimilar,
	}

	cmd.Flags().Int64Var(&similarGameID, "game", 0, "Seed the query from an imported game's IGDB id")
	cmd.Flags().StringVar(&similarSummary, "summary", "", "Query summary text")
	cmd.Flags().StringSliceVar(&similarTags, "tags", nil, "Query tags (comma-separated)")
	cmd.Flags().StringSliceVar(&similarGenres, "genres", nil, "Query genres (comma-separated)")
	cmd.Flags().StringSliceVar(&similarKeywords, "keywords", nil, "Focus keywords boosting matches (comma-separated)")
	cmd.Flags().StringSliceVar(&similarExclude, "exclude", nil, "Game ids to exclude from results")
	cmd.Flags().IntVar(&similarLimit, "limit", 10, "Maximum number of matches")
	cmd.Flags().BoolVar(&similarNotify, "notify", false, "Post the results to the configured Discord webhook")

	return cmd
}

func runSimilar(cmd *cobra.Command, args []string) error {
	if similarGameID == 0 && len(args) == 0 {
		return fmt.Errorf("provide a query title or --game <igdb-id>")
	}

	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := cmd.Context()
	query := domain.SimilarityQuery{
		Summary:         similarSummary,
		Tags:            similarTags,
		Genres:          similarGenres,
		FocusKeywords:   similarKeywords,
		ExcludedGameIDs: similarExclude,
		Limit:           similarLimit,
	}
	if len(args) > 0 {
		query.Title = args[0]
	}

	if similarGameID != 0 {
		if err := seedQueryFromCatalog(ctx, app, similarGameID, &query); err != nil {
			return err
		}
	}

	result, err := app.engine.FindSimilar(ctx, query)
	if err != nil {
		return err
	}

	printMatches(cmd, &result)

	if similarNotify {
		client, err := app.webhook()
		if err != nil {
			return err
		}
		messages := discord.BuildRecommendationMessages(&result, discord.MessageLimit)
		if err := client.SendAll(ctx, messages); err != nil {
			return fmt.Errorf("notify: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "posted to Discord")
	}
	return nil
}

// seedQueryFromCatalog fills empty query fields from an imported game and
// excludes the game itself from the results.
func seedQueryFromCatalog(ctx context.Context, app *app, igdbID int64, query *domain.SimilarityQuery) error {
	game, err := app.catalog.GetByIGDBID(ctx, igdbID)
	if err != nil {
		return fmt.Errorf("seed game %d: %w", igdbID, err)
	}
	tags, err := app.catalog.TagsForGame(ctx, game.ID)
	if err != nil {
		return fmt.Errorf("seed game %d tags: %w", igdbID, err)
	}

	if query.Title == "" {
		query.Title = game.Title
	}
	if query.Summary == "" {
		query.Summary = game.Summary
	}
	for _, tag := range tags {
		if tag.Class == domain.TagClassGenre {
			query.Genres = append(query.Genres, tag.Label)
		} else {
			query.Tags = append(query.Tags, tag.Label)
		}
	}
	query.GameID = strconv.FormatInt(igdbID, 10)
	return nil
}

func printMatches(cmd *cobra.Command, result *domain.SimilarityResult) {
	out := cmd.OutOrStdout()
	if len(result.Matches) == 0 {
		fmt.Fprintln(out, "no similar games found")
		return
	}

	fmt.Fprintf(out, "%d match(es) for %q (model %s):\n",
		len(result.Matches), result.Query.Title, result.EmbeddingModel)
	for i, match := range result.Matches {
		title := match.Candidate.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Fprintf(out, "%2d. %-40s score %.3f (base %.3f, distance %.3f)\n",
			i+1, title, match.Score, match.BaseScore, match.Distance)
		if len(match.Reasons) > 0 {
			fmt.Fprintf(out, "    %s\n", strings.Join(match.Reasons, ", "))
		}
	}
}
