package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ludic-labs/gamerec/internal/agents"
	"github.com/ludic-labs/gamerec/internal/discord"
)

var (
	recommendExamples int
	recommendNotify   bool
)

// NewRecommendCmd creates the recommend command.
func NewRecommendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recommend <igdb-id>",
		Short: "Ask the decision agent whether a game is worth playing",
		Long: `Build the decision prompt for a game, run the configured agent with the
prompt on stdin, and print its verdict. The agent must answer with a
JSON object containing "recommend" and "reason".

Examples:
  gamerec recommend 1020
  gamerec recommend --notify 1020`,
		Args: cobra.ExactArgs(1),
		RunE: runRecommend,
	}

	cmd.Flags().IntVar(&recommendExamples, "examples", 3, "Favorites shown per similarity section")
	cmd.Flags().BoolVar(&recommendNotify, "notify", false, "Post the verdict to the configured Discord webhook")

	return cmd
}

func runRecommend(cmd *cobra.Command, args []string) error {
	igdbID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || igdbID <= 0 {
		return fmt.Errorf("invalid IGDB id %q", args[0])
	}

	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	runner, err := app.agent()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	prompt, built, err := buildDecisionPrompt(ctx, app, igdbID, recommendExamples)
	if err != nil {
		return err
	}

	output, err := runner.Run(ctx, prompt)
	if err != nil {
		return err
	}
	decision, err := agents.ParseDecision(output)
	if err != nil {
		return err
	}

	verdict := "skip"
	if decision.Recommend {
		verdict = "recommend"
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %s\n", built.Game.Title, verdict)
	if decision.Reason != "" {
		fmt.Fprintf(out, "reason: %s\n", decision.Reason)
	}

	if recommendNotify {
		client, err := app.webhook()
		if err != nil {
			return err
		}
		if err := client.Send(ctx, verdictMessage(built.Game.Title, decision)); err != nil {
			return fmt.Errorf("notify: %w", err)
		}
		fmt.Fprintln(out, "posted to Discord")
	}
	return nil
}

func verdictMessage(title string, decision agents.Decision) string {
	var sb strings.Builder
	if decision.Recommend {
		sb.WriteString("👍 ")
	} else {
		sb.WriteString("👎 ")
	}
	fmt.Fprintf(&sb, "**%s**: ", title)
	if decision.Recommend {
		sb.WriteString("recommended")
	} else {
		sb.WriteString("not recommended")
	}
	if decision.Reason != "" {
		sb.WriteString("\n")
		sb.WriteString(decision.Reason)
	}
	return discord.TruncateText(sb.String(), discord.MessageLimit)
}
