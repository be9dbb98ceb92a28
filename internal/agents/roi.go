package agents

import (
	"context"

	"github.com/brightpath-advisory/concierge/internal/config"
	"github.com/brightpath-advisory/concierge/internal/llm"
	"github.com/brightpath-advisory/concierge/internal/tools"
)

// ROIAgent estimates automation savings. Tools are optional from the first
// call: the model may answer conversationally while it gathers industry,
// headcount, and labor cost before invoking the calculation tool.
type ROIAgent struct {
	deps Deps
}

// NewROIAgent creates the ROI specialist.
func NewROIAgent(deps Deps) *ROIAgent {
	return &ROIAgent{deps: deps}
}

// Run implements Agent.
func (a *ROIAgent) Run(ctx context.Context, in Input) (string, error) {
	toolset := a.deps.Registry.Definitions(
		tools.ToolRespondToUser,
		tools.ToolGetAvailableDates,
		tools.ToolGetAvailableSlots,
		tools.ToolCreateBooking,
	)

	req := baseRequest(a.deps, roiSystemPrompt, in, config.DefaultAnswerTokens)
	req.Tools = toolset
	req.ToolChoice = &llm.ToolChoice{Type: llm.ToolChoiceAuto}

	return runToolLoop(ctx, req, loopConfig{
		client:         a.deps.Client,
		registry:       a.deps.Registry,
		maxRounds:      config.MaxToolRounds,
		followUpTools:  toolset,
		followUpChoice: &llm.ToolChoice{Type: llm.ToolChoiceAuto},
		track:          a.deps.Track,
	})
}
