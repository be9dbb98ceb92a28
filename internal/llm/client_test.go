package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClient_Complete(t *testing.T) {
	var gotHeader string
	var gotBody Request

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("x-api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		resp := Response{
			Content:    []ContentBlock{{Type: BlockText, Text: "hello"}},
			StopReason: StopEndTurn,
			Usage:      Usage{InputTokens: 12, OutputTokens: 3},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "sk-test", 5*time.Second)
	resp, err := client.Complete(context.Background(), &Request{
		Model:     "claude-sonnet-4-5",
		MaxTokens: 300,
		Messages:  []Message{TextMessage(RoleUser, "hi")},
	})
	require.NoError(t, err)

	assert.Equal(t, "sk-test", gotHeader)
	assert.Equal(t, "claude-sonnet-4-5", gotBody.Model)
	assert.Equal(t, "hello", resp.Text())
	assert.Equal(t, 12, resp.Usage.InputTokens)
}

func TestHTTPClient_ProviderErrorPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"type":"rate_limit_error","message":"slow down"}}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "sk-test", 5*time.Second)
	_, err := client.Complete(context.Background(), &Request{Model: "m"})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProvider)
	assert.Contains(t, err.Error(), "rate_limit_error")
}

func TestHTTPClient_NonJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "sk-test", 5*time.Second)
	_, err := client.Complete(context.Background(), &Request{Model: "m"})
	assert.ErrorIs(t, err, ErrProvider)
}

func TestResponseHelpers(t *testing.T) {
	resp := &Response{Content: []ContentBlock{
		{Type: BlockText, Text: "before "},
		{Type: BlockToolUse, ID: "t1", Name: "get_available_slots", Input: json.RawMessage(`{"date":"2026-09-15"}`)},
		{Type: BlockText, Text: "after"},
	}}

	assert.Equal(t, "before after", resp.Text())

	calls := resp.ToolCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "t1", calls[0].ID)
	assert.Equal(t, "get_available_slots", calls[0].Name)

	msg := resp.AssistantMessage()
	assert.Equal(t, RoleAssistant, msg.Role)
	assert.Len(t, msg.Content, 3)
}

func TestEstimateTokens(t *testing.T) {
	assert.Zero(t, EstimateTokens(""))
	short := EstimateTokens("How much does the Foundation tier cost?")
	long := EstimateTokens("We are a twelve person logistics company spending roughly twenty hours " +
		"per week on manual scheduling, invoicing, and driver paperwork across three depots.")
	assert.Greater(t, short, 0)
	assert.Greater(t, long, short)
}
