package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/brightpath-advisory/concierge/internal/config"
	"github.com/brightpath-advisory/concierge/internal/llm"
	"github.com/brightpath-advisory/concierge/internal/utils"
)

// InfoAgent answers questions about services and pricing. No tools at all:
// this is the default, highest-volume route and must stay deterministic and
// cheap.
type InfoAgent struct {
	deps Deps
}

// NewInfoAgent creates the info specialist.
func NewInfoAgent(deps Deps) *InfoAgent {
	return &InfoAgent{deps: deps}
}

// Run implements Agent.
func (a *InfoAgent) Run(ctx context.Context, in Input) (string, error) {
	system := infoSystemPrompt + "\n\n" + businessKnowledge
	req := baseRequest(a.deps, system, in, answerBudget(in.Message))

	resp, err := a.deps.Client.Complete(ctx, req)
	if err != nil {
		return "", fmt.Errorf("model call: %w", err)
	}
	if a.deps.Track != nil {
		a.deps.Track(ctx, resp.Usage)
	}

	if text := resp.Text(); text != "" {
		return text, nil
	}
	return loopFallback, nil
}

var shortAnswerMarkers = []string{
	"how much", "price", "pricing", "cost", "tier",
}

var yesNoPrefixes = []string{
	"do you", "is ", "are ", "can i", "can you", "does ",
}

// answerBudget picks the output-length cap from a lightweight question
// heuristic: pricing and yes/no questions get a short budget, long or
// multi-part questions a large one.
func answerBudget(message string) int {
	text := utils.NormalizeSpace(message)

	for _, marker := range shortAnswerMarkers {
		if strings.Contains(text, marker) {
			return config.ShortAnswerTokens
		}
	}
	for _, prefix := range yesNoPrefixes {
		if strings.HasPrefix(text, prefix) {
			return config.ShortAnswerTokens
		}
	}

	if strings.Count(message, "?") > 1 || llm.EstimateTokens(message) > 60 {
		return config.LongAnswerTokens
	}
	return config.DefaultAnswerTokens
}
