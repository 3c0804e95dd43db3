package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ludic-labs/gamerec/internal/domain"
)

var favoriteNotes string

// NewFavoriteCmd creates the favorite command group.
func NewFavoriteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "favorite",
		Short: "Manage your favorite games",
	}

	addCmd := &cobra.Command{
		Use:   "add <igdb-id>",
		Short: "Mark an imported game as a favorite",
		Args:  cobra.ExactArgs(1),
		RunE:  runFavoriteAdd,
	}
	addCmd.Flags().StringVar(&favoriteNotes, "notes", "", "Notes stored with the favorite")

	cmd.AddCommand(addCmd)
	cmd.AddCommand(&cobra.Command{
		Use:   "remove <igdb-id>",
		Short: "Remove a game from your favorites",
		Args:  cobra.ExactArgs(1),
		RunE:  runFavoriteRemove,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List your favorites, newest first",
		Args:  cobra.NoArgs,
		RunE:  runFavoriteList,
	})

	return cmd
}

func runFavoriteAdd(cmd *cobra.Command, args []string) error {
	igdbID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || igdbID <= 0 {
		return fmt.Errorf("invalid IGDB id %q", args[0])
	}

	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := cmd.Context()
	game, err := app.catalog.GetByIGDBID(ctx, igdbID)
	if err != nil {
		return fmt.Errorf("game %d (import it first): %w", igdbID, err)
	}
	if err := app.catalog.AddFavorite(ctx, game.ID, favoriteNotes); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "favorite added: %s\n", game.Title)
	return nil
}

func runFavoriteRemove(cmd *cobra.Command, args []string) error {
	igdbID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || igdbID <= 0 {
		return fmt.Errorf("invalid IGDB id %q", args[0])
	}

	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := cmd.Context()
	game, err := app.catalog.GetByIGDBID(ctx, igdbID)
	if err != nil {
		return fmt.Errorf("game %d: %w", igdbID, err)
	}
	if err := app.catalog.RemoveFavorite(ctx, game.ID); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "favorite removed: %s\n", game.Title)
	return nil
}

func runFavoriteList(cmd *cobra.Command, _ []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	favs, err := app.catalog.ListFavorites(cmd.Context())
	if err != nil {
		return err
	}
	if len(favs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no favorites yet")
		return nil
	}

	out := cmd.OutOrStdout()
	for _, fav := range favs {
		fmt.Fprintf(out, "%-10d %s", fav.Game.IGDBID, fav.Game.Title)
		if genres := favoriteGenres(fav.Tags); genres != "" {
			fmt.Fprintf(out, " [%s]", genres)
		}
		if fav.Notes != "" {
			fmt.Fprintf(out, " (%s)", fav.Notes)
		}
		fmt.Fprintln(out)
	}
	return nil
}

func favoriteGenres(tags []domain.GameTag) string {
	var genres []string
	for _, tag := range tags {
		if tag.Class == domain.TagClassGenre {
			genres = append(genres, tag.Label)
		}
	}
	return strings.Join(genres, ", ")
}
