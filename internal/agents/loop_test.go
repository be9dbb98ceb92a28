package agents

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightpath-advisory/concierge/internal/llm"
	"github.com/brightpath-advisory/concierge/internal/tools"
)

// recordedCall is a snapshot of one model request, taken at call time because
// the loop mutates the request between rounds.
type recordedCall struct {
	toolNames  []string
	toolChoice string
	maxTokens  int
	messages   int
	lastBlocks []llm.ContentBlock
}

// stubClient replays a scripted sequence of responses. When the script runs
// out it keeps answering with the final response.
type stubClient struct {
	mu     sync.Mutex
	script []*llm.Response
	err    error

	calls []recordedCall
}

func (s *stubClient) Complete(_ context.Context, req *llm.Request) (*llm.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	call := recordedCall{maxTokens: req.MaxTokens, messages: len(req.Messages)}
	for _, tool := range req.Tools {
		call.toolNames = append(call.toolNames, tool.Name)
	}
	if req.ToolChoice != nil {
		call.toolChoice = req.ToolChoice.Type
	}
	if n := len(req.Messages); n > 0 {
		call.lastBlocks = append([]llm.ContentBlock(nil), req.Messages[n-1].Content...)
	}
	s.calls = append(s.calls, call)

	if s.err != nil {
		return nil, s.err
	}
	resp := s.script[0]
	if len(s.script) > 1 {
		s.script = s.script[1:]
	}
	return resp, nil
}

func (s *stubClient) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func textResponse(text string) *llm.Response {
	return &llm.Response{
		Content:    []llm.ContentBlock{{Type: llm.BlockText, Text: text}},
		StopReason: llm.StopEndTurn,
		Usage:      llm.Usage{InputTokens: 100, OutputTokens: 50},
	}
}

func toolUseResponse(id, name, input string) *llm.Response {
	return &llm.Response{
		Content: []llm.ContentBlock{{
			Type:  llm.BlockToolUse,
			ID:    id,
			Name:  name,
			Input: json.RawMessage(input),
		}},
		StopReason: llm.StopToolUse,
		Usage:      llm.Usage{InputTokens: 100, OutputTokens: 30},
	}
}

// testRegistry registers the full tool-name set with stub handlers so the
// agents' Definitions-based tool policies can be observed.
func testRegistry(t *testing.T, handlers map[string]tools.Handler) *tools.Registry {
	t.Helper()

	r := tools.NewRegistry(time.Second)
	for _, name := range []string{
		tools.ToolGetAvailableDates,
		tools.ToolGetAvailableSlots,
		tools.ToolCreateBooking,
		tools.ToolCalculateROI,
		tools.ToolRespondToUser,
	} {
		h, ok := handlers[name]
		if !ok {
			h = func(ctx context.Context, args json.RawMessage) (tools.Result, error) {
				return tools.Result{Content: `{}`}, nil
			}
		}
		require.NoError(t, r.Register(llm.Tool{Name: name}, h))
	}
	return r
}

func TestRunToolLoop_RoundCapTerminates(t *testing.T) {
	client := &stubClient{script: []*llm.Response{
		toolUseResponse("t1", tools.ToolGetAvailableSlots, `{"date":"2026-09-15"}`),
	}}
	registry := testRegistry(t, nil)

	req := &llm.Request{Messages: []llm.Message{llm.TextMessage(llm.RoleUser, "book me in")}}
	reply, err := runToolLoop(context.Background(), req, loopConfig{
		client:    client,
		registry:  registry,
		maxRounds: 2,
	})
	require.NoError(t, err)

	// Initial call plus one per permitted round; the third batch of tool
	// calls hits the cap and the loop exits instead of executing it.
	assert.Equal(t, 3, client.callCount())
	assert.Equal(t, loopFallback, reply)
}

func TestRunToolLoop_InterceptWinsWhenCapIsReached(t *testing.T) {
	client := &stubClient{script: []*llm.Response{
		toolUseResponse("t1", tools.ToolGetAvailableSlots, `{"date":"2026-09-15"}`),
		toolUseResponse("t2", tools.ToolRespondToUser, `{"message":"Which day suits you best?"}`),
	}}
	registry := testRegistry(t, nil)

	req := &llm.Request{Messages: []llm.Message{llm.TextMessage(llm.RoleUser, "book me in")}}
	reply, err := runToolLoop(context.Background(), req, loopConfig{
		client:        client,
		registry:      registry,
		maxRounds:     1,
		interceptTool: tools.ToolRespondToUser,
	})
	require.NoError(t, err)

	// The cap is exhausted on the round where the model addresses the user
	// directly; that message still wins over the generic fallback.
	assert.Equal(t, "Which day suits you best?", reply)
	assert.Equal(t, 2, client.callCount())
}

func TestRunToolLoop_ToolErrorIsFedBackNotThrown(t *testing.T) {
	client := &stubClient{script: []*llm.Response{
		toolUseResponse("t1", tools.ToolCreateBooking, `{"date":"bad"}`),
		textResponse("That date didn't work, could you pick another?"),
	}}
	registry := testRegistry(t, map[string]tools.Handler{
		tools.ToolCreateBooking: func(ctx context.Context, args json.RawMessage) (tools.Result, error) {
			return tools.Result{}, assert.AnError
		},
	})

	req := &llm.Request{Messages: []llm.Message{llm.TextMessage(llm.RoleUser, "book me in")}}
	reply, err := runToolLoop(context.Background(), req, loopConfig{
		client:    client,
		registry:  registry,
		maxRounds: 5,
	})
	require.NoError(t, err, "tool failures must not surface as loop errors")
	assert.Equal(t, "That date didn't work, could you pick another?", reply)

	// The failure went back to the model as an error-flagged tool result.
	require.Equal(t, 2, client.callCount())
	second := client.calls[1]
	require.Len(t, second.lastBlocks, 1)
	assert.Equal(t, llm.BlockToolResult, second.lastBlocks[0].Type)
	assert.Equal(t, "t1", second.lastBlocks[0].ToolUseID)
	assert.True(t, second.lastBlocks[0].IsError)
}

func TestRunToolLoop_TracksEveryModelCall(t *testing.T) {
	client := &stubClient{script: []*llm.Response{
		toolUseResponse("t1", tools.ToolGetAvailableDates, `{}`),
		textResponse("done"),
	}}
	registry := testRegistry(t, nil)

	tracked := 0
	req := &llm.Request{Messages: []llm.Message{llm.TextMessage(llm.RoleUser, "hi")}}
	_, err := runToolLoop(context.Background(), req, loopConfig{
		client:    client,
		registry:  registry,
		maxRounds: 5,
		track: func(_ context.Context, u llm.Usage) {
			tracked++
			assert.NotZero(t, u.InputTokens)
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, tracked)
}

func TestRunToolLoop_ModelErrorPropagates(t *testing.T) {
	client := &stubClient{err: assert.AnError}
	registry := testRegistry(t, nil)

	req := &llm.Request{Messages: []llm.Message{llm.TextMessage(llm.RoleUser, "hi")}}
	_, err := runToolLoop(context.Background(), req, loopConfig{
		client:    client,
		registry:  registry,
		maxRounds: 5,
	})
	assert.Error(t, err)
}
