package agents

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/ludic-labs/gamerec/internal/domain"
)

// Decision is the agent's verdict.
type Decision struct {
	Recommend bool   `json:"recommend"`
	Reason    string `json:"reason"`
}

// ParseDecision extracts the verdict from agent output. The output must be
// a JSON object with both recommend and reason; a surrounding markdown code
// fence is tolerated.
func ParseDecision(output string) (Decision, error) {
	text := stripCodeFence(strings.TrimSpace(output))

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return Decision{}, fmt.Errorf("%w: output is not a JSON object: %v", domain.ErrAgentFailed, err)
	}
	if _, ok := raw["recommend"]; !ok {
		return Decision{}, fmt.Errorf("%w: output missing recommend", domain.ErrAgentFailed)
	}
	if _, ok := raw["reason"]; !ok {
		return Decision{}, fmt.Errorf("%w: output missing reason", domain.ErrAgentFailed)
	}

	var decision Decision
	if err := json.Unmarshal([]byte(text), &decision); err != nil {
		return Decision{}, fmt.Errorf("%w: malformed decision: %v", domain.ErrAgentFailed, err)
	}
	return decision, nil
}

func stripCodeFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	lines := strings.Split(text, "\n")
	if len(lines) < 2 {
		return text
	}
	lines = lines[1:]
	if strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}
