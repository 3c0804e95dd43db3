// Package commands holds the cobra command tree. Each command wires its
// collaborators explicitly through the shared app composition root.
package commands

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gamerec",
		Short: "Game catalog import and similarity-based recommendations",
		Long: `gamerec imports games from the IGDB catalog, stores multi-facet
embeddings in a local SQLite database, and recommends games by vector
similarity against your favorites.

Configuration is read from configs/<ENV>.yaml (default ENV: local);
secrets can come from a .env file or the environment.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewImportCmd())
	cmd.AddCommand(NewSearchCmd())
	cmd.AddCommand(NewSimilarCmd())
	cmd.AddCommand(NewPromptCmd())
	cmd.AddCommand(NewRecommendCmd())
	cmd.AddCommand(NewFavoriteCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCmd().Execute()
}
