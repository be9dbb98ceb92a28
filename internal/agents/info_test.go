package agents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightpath-advisory/concierge/internal/config"
	"github.com/brightpath-advisory/concierge/internal/llm"
	"github.com/brightpath-advisory/concierge/internal/session"
)

func TestInfoAgent_NoToolsShortBudgetForPricing(t *testing.T) {
	client := &stubClient{script: []*llm.Response{
		textResponse("The Foundation tier is 1,500 EUR for a 2-week audit."),
	}}

	var tracked llm.Usage
	agent := NewInfoAgent(Deps{
		Client: client,
		Model:  "claude-sonnet-4-5",
		Track:  func(_ context.Context, u llm.Usage) { tracked = u },
	})

	reply, err := agent.Run(context.Background(), Input{Message: "How much does the Foundation tier cost?"})
	require.NoError(t, err)
	assert.Equal(t, "The Foundation tier is 1,500 EUR for a 2-week audit.", reply)

	require.Equal(t, 1, client.callCount())
	first := client.calls[0]
	assert.Empty(t, first.toolNames, "the info route never gets tools")
	assert.Equal(t, config.ShortAnswerTokens, first.maxTokens)
	assert.Equal(t, 100, tracked.InputTokens)
}

func TestInfoAgent_ReplaysHistoryInOrder(t *testing.T) {
	client := &stubClient{script: []*llm.Response{textResponse("Yes, we do.")}}
	agent := NewInfoAgent(Deps{Client: client, Model: "claude-sonnet-4-5"})

	history := []session.Turn{
		{Role: session.RoleUser, Content: "What do you offer?"},
		{Role: session.RoleAssistant, Content: "Audits, automation, and training."},
	}
	_, err := agent.Run(context.Background(), Input{Message: "Do you serve retail?", History: history})
	require.NoError(t, err)

	assert.Equal(t, 3, client.calls[0].messages)
}

func TestAnswerBudget(t *testing.T) {
	cases := []struct {
		name    string
		message string
		want    int
	}{
		{"pricing question", "How much does the Growth tier cost?", config.ShortAnswerTokens},
		{"yes/no question", "Do you offer staff training?", config.ShortAnswerTokens},
		{"multi-part question", "What do you do? How long does it take? Who runs it?", config.LongAnswerTokens},
		{"plain question", "Tell me more about the audit process", config.DefaultAnswerTokens},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, answerBudget(tc.message))
		})
	}
}

func TestWithLanguage(t *testing.T) {
	assert.Equal(t, "base", withLanguage("base", ""))
	assert.Contains(t, withLanguage("base", "Spanish"), "Always respond in Spanish.")
}
