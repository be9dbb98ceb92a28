package tools

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/brightpath-advisory/concierge/internal/llm"
)

func okHandler(content string) Handler {
	return func(ctx context.Context, args json.RawMessage) (Result, error) {
		return Result{Content: content}, nil
	}
}

func TestRegistry_RegisterRejectsDuplicatesAndEmptyNames(t *testing.T) {
	r := NewRegistry(time.Second)

	require.NoError(t, r.Register(llm.Tool{Name: "echo"}, okHandler("ok")))
	assert.ErrorIs(t, r.Register(llm.Tool{Name: "echo"}, okHandler("ok")), ErrAlreadyExists)
	assert.ErrorIs(t, r.Register(llm.Tool{}, okHandler("ok")), ErrEmptyName)
}

func TestRegistry_DefinitionsPreserveOrderAndExclude(t *testing.T) {
	r := NewRegistry(time.Second)
	for _, name := range []string{"alpha", "beta", "gamma"} {
		require.NoError(t, r.Register(llm.Tool{Name: name}, okHandler("ok")))
	}

	all := r.Definitions()
	require.Len(t, all, 3)
	assert.Equal(t, "alpha", all[0].Name)
	assert.Equal(t, "gamma", all[2].Name)

	filtered := r.Definitions("beta")
	require.Len(t, filtered, 2)
	assert.Equal(t, "alpha", filtered[0].Name)
	assert.Equal(t, "gamma", filtered[1].Name)
}

func TestRegistry_ExecuteUnknownToolIsStructuredError(t *testing.T) {
	r := NewRegistry(time.Second)

	res := r.Execute(context.Background(), "nope", nil)

	assert.True(t, res.IsError)
	assert.Contains(t, gjson.Get(res.Content, "error").String(), "unknown tool")
}

func TestRegistry_ExecuteConvertsHandlerErrors(t *testing.T) {
	r := NewRegistry(time.Second)
	require.NoError(t, r.Register(llm.Tool{Name: "boom"}, func(ctx context.Context, args json.RawMessage) (Result, error) {
		return Result{}, errors.New("collaborator down")
	}))

	res := r.Execute(context.Background(), "boom", nil)

	assert.True(t, res.IsError)
	assert.Equal(t, "collaborator down", gjson.Get(res.Content, "error").String())
}

func TestRegistry_ExecuteRecoversPanics(t *testing.T) {
	r := NewRegistry(time.Second)
	require.NoError(t, r.Register(llm.Tool{Name: "panicky"}, func(ctx context.Context, args json.RawMessage) (Result, error) {
		panic("nil map write")
	}))

	res := r.Execute(context.Background(), "panicky", nil)

	assert.True(t, res.IsError)
	assert.Contains(t, gjson.Get(res.Content, "error").String(), "panicked")
}

func TestRegistry_ExecutePassesArguments(t *testing.T) {
	r := NewRegistry(time.Second)
	require.NoError(t, r.Register(llm.Tool{Name: "echo"}, func(ctx context.Context, args json.RawMessage) (Result, error) {
		return Result{Content: gjson.GetBytes(args, "value").String()}, nil
	}))

	res := r.Execute(context.Background(), "echo", json.RawMessage(`{"value":"42"}`))

	assert.False(t, res.IsError)
	assert.Equal(t, "42", res.Content)
}
