// Package prompting renders the decision prompt handed to the external
// recommendation agent.
package prompting

import (
	"embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed templates/*.tmpl
var templates embed.FS

const defaultTemplateName = "recommendation.tmpl"

// OutputSchemaExample is the JSON shape the agent must answer with.
const OutputSchemaExample = `{"recommend": <bool>, "reason": "<string>"}`

const (
	targetDescriptionLimit  = 320
	similarDescriptionLimit = 200
)

// Game is the prompt-facing view of one game.
type Game struct {
	Title     string
	Storyline string
	Summary   string
	Tags      []string
	Keywords  []string
}

// SimilarExample is one ranked favorite shown as evidence.
type SimilarExample struct {
	Game  Game
	Score float64
	// HasScore distinguishes a real zero score from an unknown one.
	HasScore bool
	Note     string
}

// Input holds everything the prompt renders.
type Input struct {
	Target           Game
	TagSimilar       []SimilarExample
	TitleSimilar     []SimilarExample
	StorylineSimilar []SimilarExample
	SummarySimilar   []SimilarExample
}

// Builder renders decision prompts from the embedded template.
type Builder struct {
	tmpl *template.Template
}

// NewBuilder parses the embedded template set.
func NewBuilder() (*Builder, error) {
	tmpl, err := template.ParseFS(templates, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse prompt templates: %w", err)
	}
	return &Builder{tmpl: tmpl}, nil
}

type templateData struct {
	OutputSchema          string
	TargetOverview        string
	TagSimilar            []SimilarExample
	TagSimilarBlock       string
	TitleSimilar          []SimilarExample
	TitleSimilarBlock     string
	StorylineSimilar      []SimilarExample
	StorylineSimilarBlock string
	SummarySimilar        []SimilarExample
	SummarySimilarBlock   string
}

// Build renders the prompt.
func (b *Builder) Build(input Input) (string, error) {
	data := templateData{
		OutputSchema:          OutputSchemaExample,
		TargetOverview:        renderGame(input.Target, targetDescriptionLimit),
		TagSimilar:            input.TagSimilar,
		TagSimilarBlock:       renderSection(input.TagSimilar),
		TitleSimilar:          input.TitleSimilar,
		TitleSimilarBlock:     renderSection(input.TitleSimilar),
		StorylineSimilar:      input.StorylineSimilar,
		StorylineSimilarBlock: renderSection(input.StorylineSimilar),
		SummarySimilar:        input.SummarySimilar,
		SummarySimilarBlock:   renderSection(input.SummarySimilar),
	}

	var sb strings.Builder
	if err := b.tmpl.ExecuteTemplate(&sb, defaultTemplateName, data); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return strings.TrimSpace(sb.String()), nil
}

func renderSection(examples []SimilarExample) string {
	if len(examples) == 0 {
		return "none"
	}
	entries := make([]string, len(examples))
	for i, example := range examples {
		entries[i] = renderExample(example)
	}
	return strings.Join(entries, "\n\n")
}

func renderExample(example SimilarExample) string {
	scoreLine := "Similarity score: unknown"
	if example.HasScore {
		scoreLine = fmt.Sprintf("Similarity score: %.3f", example.Score)
	}
	if example.Note != "" {
		scoreLine += " (" + example.Note + ")"
	}
	return scoreLine + "\n" + renderGame(example.Game, similarDescriptionLimit)
}

func renderGame(game Game, descriptionLimit int) string {
	lines := []string{
		"Title: " + game.Title,
		"Storyline: " + orNone(sanitize(game.Storyline, descriptionLimit)),
		"Summary: " + orNone(sanitize(game.Summary, descriptionLimit)),
		"Tags: " + orNone(strings.Join(game.Tags, ", ")),
		"Keywords: " + orNone(strings.Join(game.Keywords, ", ")),
	}
	return strings.Join(lines, "\n")
}

// sanitize collapses whitespace and truncates at a word boundary.
func sanitize(text string, limit int) string {
	collapsed := strings.Join(strings.Fields(text), " ")
	if len(collapsed) <= limit {
		return collapsed
	}
	cut := collapsed[:limit]
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return cut + "..."
}

func orNone(value string) string {
	if value == "" {
		return "none"
	}
	return value
}
