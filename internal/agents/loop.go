// Bounded model/tool round loop shared by the tool-calling agents.
//
// DESIGN: An explicit finite-state machine, not recursion: awaitingModel ->
// executingTools -> awaitingModel, with the round cap as a guard condition.
// Cap exhaustion is a defined terminal state that returns the best trailing
// content, never an unbounded loop. Tool failures are structured results fed
// back to the model; only model-call failures propagate out.
package agents

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"

	"github.com/brightpath-advisory/concierge/internal/llm"
	"github.com/brightpath-advisory/concierge/internal/tools"
)

type loopState int

const (
	stateAwaitingModel loopState = iota
	stateExecutingTools
	stateDone
)

// loopFallback is returned when the loop terminates with no usable text.
const loopFallback = "I'm sorry, I couldn't complete that just now. Could you rephrase or try again?"

type loopConfig struct {
	client    llm.Client
	registry  *tools.Registry
	maxRounds int

	// Tool set and choice applied from the second model call onward. Lets
	// the booking agent force tools on round one and relax afterwards.
	followUpTools  []llm.Tool
	followUpChoice *llm.ToolChoice

	// interceptTool short-circuits the loop: when the model calls it, its
	// message argument is returned directly, skipping sibling tools and the
	// follow-up model call.
	interceptTool string

	// track is invoked once per model call with its usage counts.
	track func(ctx context.Context, u llm.Usage)
}

// runToolLoop drives req through the round loop and returns the final
// user-facing text.
func runToolLoop(ctx context.Context, req *llm.Request, cfg loopConfig) (string, error) {
	state := stateAwaitingModel
	rounds := 0
	lastText := ""

	for state != stateDone {
		resp, err := cfg.client.Complete(ctx, req)
		if err != nil {
			return "", fmt.Errorf("model call: %w", err)
		}
		if cfg.track != nil {
			cfg.track(ctx, resp.Usage)
		}
		if text := resp.Text(); text != "" {
			lastText = text
		}

		calls := resp.ToolCalls()
		if len(calls) == 0 {
			state = stateDone
			break
		}

		// The intercept is checked before the round cap: a user-directed
		// message is a terminal answer either way, and a better one than the
		// fallback when the cap is exhausted on the same round.
		if cfg.interceptTool != "" {
			for _, call := range calls {
				if call.Name == cfg.interceptTool {
					return gjson.GetBytes(call.Input, "message").String(), nil
				}
			}
		}

		if rounds >= cfg.maxRounds {
			log.Warn().Int("max_rounds", cfg.maxRounds).Msg("agents: round cap reached with pending tool calls")
			state = stateDone
			break
		}
		rounds++

		state = stateExecutingTools
		results := make([]llm.ContentBlock, 0, len(calls))
		for _, call := range calls {
			res := cfg.registry.Execute(ctx, call.Name, call.Input)
			results = append(results, llm.ContentBlock{
				Type:      llm.BlockToolResult,
				ToolUseID: call.ID,
				Content:   res.Content,
				IsError:   res.IsError,
			})
		}

		req.Messages = append(req.Messages, resp.AssistantMessage(), llm.Message{
			Role:    llm.RoleUser,
			Content: results,
		})
		req.Tools = cfg.followUpTools
		req.ToolChoice = cfg.followUpChoice
		state = stateAwaitingModel
	}

	if lastText == "" {
		return loopFallback, nil
	}
	return lastText, nil
}
