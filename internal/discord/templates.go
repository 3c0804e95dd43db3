package discord

import (
	"fmt"
	"strings"

	"github.com/ludic-labs/gamerec/internal/domain"
)

// MessageLimit leaves headroom under Discord's 2000-character cap.
const MessageLimit = 1800

// TruncateText shortens long text for a message body.
func TruncateText(value string, limit int) string {
	if len(value) <= limit {
		return value
	}
	return strings.TrimRight(value[:limit-1], " ") + "…"
}

// ChunkMessage splits content into webhook-sized chunks on line boundaries.
// A single line longer than the limit is split mid-line.
func ChunkMessage(content string, limit int) []string {
	if content == "" {
		return nil
	}

	var chunks []string
	var buffer string

	for _, line := range strings.Split(content, "\n") {
		if buffer != "" && len(buffer)+1+len(line) > limit {
			chunks = append(chunks, buffer)
			buffer = ""
		}

		for len(line) > limit {
			chunks = append(chunks, line[:limit])
			line = line[limit:]
		}

		if buffer == "" {
			buffer = line
		} else {
			buffer += "\n" + line
		}
	}

	if buffer != "" {
		chunks = append(chunks, buffer)
	}
	return chunks
}

// BuildRecommendationMessages renders a similarity result into webhook
// messages. An empty match list still produces the header message.
func BuildRecommendationMessages(result *domain.SimilarityResult, limit int) []string {
	lines := []string{
		fmt.Sprintf("🎮 Recommendations (%s)", result.EmbeddingModel),
		"Query: " + result.Query.Title,
	}
	if len(result.Query.FocusKeywords) > 0 {
		lines = append(lines, "Focus keywords: "+strings.Join(result.Query.FocusKeywords, ", "))
	}
	if len(result.Query.Tags) > 0 {
		lines = append(lines, "Tags: "+strings.Join(result.Query.Tags, ", "))
	}
	if len(result.Query.Genres) > 0 {
		lines = append(lines, "Genres: "+strings.Join(result.Query.Genres, ", "))
	}
	lines = append(lines, "")

	for i, match := range result.Matches {
		lines = append(lines, buildMatchBlock(match, i+1))
	}

	return ChunkMessage(strings.TrimSpace(strings.Join(lines, "\n\n")), limit)
}

func buildMatchBlock(match domain.SimilarityMatch, rank int) string {
	candidate := match.Candidate
	title := candidate.Title
	if title == "" {
		title = "(untitled)"
	}

	lines := []string{
		fmt.Sprintf("%d. %s (ID: %s)", rank, title, candidate.GameID),
		fmt.Sprintf("- score: %.3f / base: %.3f / distance: %.3f",
			match.Score, match.BaseScore, match.Distance),
	}

	var details []string
	if len(candidate.Genres) > 0 {
		details = append(details, "genres: "+strings.Join(candidate.Genres, ", "))
	}
	if len(candidate.Tags) > 0 {
		details = append(details, "tags: "+strings.Join(candidate.Tags, ", "))
	}
	if len(details) > 0 {
		lines = append(lines, "- "+strings.Join(details, " | "))
	}

	if candidate.Summary != "" {
		lines = append(lines, "- summary: "+TruncateText(candidate.Summary, 280))
	}
	if len(match.Reasons) > 0 {
		lines = append(lines, "- reasons: "+strings.Join(match.Reasons, ", "))
	}

	return strings.Join(lines, "\n")
}
