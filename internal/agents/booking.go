package agents

import (
	"context"

	"github.com/brightpath-advisory/concierge/internal/config"
	"github.com/brightpath-advisory/concierge/internal/llm"
	"github.com/brightpath-advisory/concierge/internal/tools"
)

// BookingAgent schedules consultations. Its first model call is structurally
// prevented from answering in plain text: the escape-hatch tool is withheld
// and tool use is forced, so the model must query live availability before
// saying anything. Follow-up rounds get the full tool set with tool use
// optional.
type BookingAgent struct {
	deps Deps
}

// NewBookingAgent creates the booking specialist.
func NewBookingAgent(deps Deps) *BookingAgent {
	return &BookingAgent{deps: deps}
}

// Run implements Agent.
func (a *BookingAgent) Run(ctx context.Context, in Input) (string, error) {
	req := baseRequest(a.deps, bookingSystemPrompt, in, config.DefaultAnswerTokens)
	req.Tools = a.deps.Registry.Definitions(tools.ToolRespondToUser, tools.ToolCalculateROI)
	req.ToolChoice = &llm.ToolChoice{Type: llm.ToolChoiceAny}

	return runToolLoop(ctx, req, loopConfig{
		client:         a.deps.Client,
		registry:       a.deps.Registry,
		maxRounds:      config.MaxToolRounds,
		followUpTools:  a.deps.Registry.Definitions(tools.ToolCalculateROI),
		followUpChoice: &llm.ToolChoice{Type: llm.ToolChoiceAuto},
		interceptTool:  tools.ToolRespondToUser,
		track:          a.deps.Track,
	})
}
