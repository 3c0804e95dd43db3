package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ludic-labs/gamerec/internal/ingest"
)

var (
	importSkipEmbedding bool
	importAsFavorite    bool
	importNotes         string
)

// NewImportCmd creates the import command.
func NewImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <igdb-id>...",
		Short: "Import games from IGDB into the local catalog",
		Long: `Fetch one or more games from IGDB by id, resolve their tags, generate
the title/storyline/summary embeddings, and store everything locally.

Examples:
  gamerec import 1020
  gamerec import --favorite --notes "loved it" 1020
  gamerec import --skip-embedding 1020 2155 7346`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImport,
	}

	cmd.Flags().BoolVar(&importSkipEmbedding, "skip-embedding", false, "Import catalog data without generating embeddings")
	cmd.Flags().BoolVar(&importAsFavorite, "favorite", false, "Also mark the imported game(s) as favorites")
	cmd.Flags().StringVar(&importNotes, "notes", "", "Notes stored with the favorite (requires --favorite)")

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid IGDB id %q", arg)
		}
		ids = append(ids, id)
	}

	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := cmd.Context()
	for _, id := range ids {
		built, err := app.builder.Build(ctx, id, !importSkipEmbedding)
		if err != nil {
			return fmt.Errorf("import %d: %w", id, err)
		}
		if err := persistGame(cmd, app, &built); err != nil {
			return fmt.Errorf("import %d: %w", id, err)
		}
	}
	return nil
}

func persistGame(cmd *cobra.Command, app *app, built *ingest.BuiltGame) error {
	ctx := cmd.Context()

	game, err := app.catalog.UpsertGame(ctx, &built.Game)
	if err != nil {
		return err
	}

	tagIDs := make([]int64, 0, len(built.Tags))
	for _, tag := range built.Tags {
		tagIDs = append(tagIDs, tag.ID)
	}
	if err := app.catalog.ReplaceTagLinks(ctx, game.ID, tagIDs); err != nil {
		return err
	}

	if built.Embedding != nil {
		if _, err := app.embeddings.Upsert(ctx, built.Embedding); err != nil {
			return err
		}
	}

	if importAsFavorite {
		if err := app.catalog.AddFavorite(ctx, game.ID, importNotes); err != nil {
			return err
		}
	}

	status := "imported"
	if built.Embedding == nil {
		status = "imported (no embedding)"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (IGDB %d, %d tags)\n",
		status, game.Title, game.IGDBID, len(built.Tags))
	return nil
}
