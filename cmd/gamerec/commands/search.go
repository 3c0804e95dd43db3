package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var searchLimit int

// NewSearchCmd creates the search command.
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <title>",
		Short: "Search IGDB for games by title",
		Long: `Search the IGDB catalog by title and print matching ids, for use with
the import command.

Example:
  gamerec search "hollow knight"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSearch,
	}

	cmd.Flags().IntVar(&searchLimit, "limit", 10, "Maximum number of results")

	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	title := strings.Join(args, " ")
	games, err := app.igdb.SearchGames(cmd.Context(), title, searchLimit)
	if err != nil {
		return err
	}
	if len(games) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no matches")
		return nil
	}

	for _, game := range games {
		release := game.ReleaseDate()
		if release == "" {
			release = "unreleased"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%-10d %s (%s)\n", game.ID, game.Name, release)
	}
	return nil
}
