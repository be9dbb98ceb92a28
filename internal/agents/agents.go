// Package agents implements the three model-invoking specialists: info,
// booking, and ROI. They share message assembly and the bounded tool loop
// and differ only in tool policy.
package agents

import (
	"context"

	"github.com/brightpath-advisory/concierge/internal/llm"
	"github.com/brightpath-advisory/concierge/internal/session"
	"github.com/brightpath-advisory/concierge/internal/tools"
)

// Input is one orchestration pass handed to a specialist.
type Input struct {
	Message  string
	History  []session.Turn
	Language string
}

// Agent is the shared "run" capability. The set of specialists is closed;
// dispatch is a switch on the router's intent, not plugin registration.
type Agent interface {
	Run(ctx context.Context, in Input) (string, error)
}

// Deps are the collaborators shared by all specialists.
type Deps struct {
	Client   llm.Client
	Registry *tools.Registry
	Model    string

	// Track receives the usage counts of every model call for ledger
	// accounting. The request context carries the caller identifier.
	// May be nil in tests.
	Track func(ctx context.Context, u llm.Usage)
}

const defaultTemperature = 0.3

func baseRequest(deps Deps, system string, in Input, maxTokens int) *llm.Request {
	return &llm.Request{
		Model:       deps.Model,
		MaxTokens:   maxTokens,
		System:      withLanguage(system, in.Language),
		Messages:    buildMessages(in.History, in.Message),
		Temperature: defaultTemperature,
	}
}
