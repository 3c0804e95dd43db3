package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var promptExamples int

// NewPromptCmd creates the prompt command.
func NewPromptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompt <igdb-id>",
		Short: "Print the decision prompt for a game",
		Long: `Assemble and print the prompt that the recommend command would hand to
the decision agent, without running the agent. Useful for inspecting
what evidence the favorites provide.

Example:
  gamerec prompt 1020`,
		Args: cobra.ExactArgs(1),
		RunE: runPrompt,
	}

	cmd.Flags().IntVar(&promptExamples, "examples", 3, "Favorites shown per similarity section")

	return cmd
}

func runPrompt(cmd *cobra.Command, args []string) error {
	igdbID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || igdbID <= 0 {
		return fmt.Errorf("invalid IGDB id %q", args[0])
	}

	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	prompt, _, err := buildDecisionPrompt(cmd.Context(), app, igdbID, promptExamples)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), prompt)
	return nil
}
