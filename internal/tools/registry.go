// Package tools maps tool names to handlers and executes model-requested
// tool calls.
//
// DESIGN: Handlers are pure adapters: validate arguments, call exactly one
// collaborator, return a JSON-serializable outcome. A handler failure is a
// local failure: Execute converts it into a structured error result that is
// fed back to the model, never an exception to the caller.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/brightpath-advisory/concierge/internal/llm"
	"github.com/brightpath-advisory/concierge/internal/utils"
)

// Sentinel errors for the registry.
var (
	ErrNotFound      = errors.New("tool not found")
	ErrAlreadyExists = errors.New("tool already registered")
	ErrEmptyName     = errors.New("tool name is empty")
)

// Handler is the function signature for tool implementations.
// Handlers receive the request context and JSON-encoded arguments from the
// model.
type Handler func(ctx context.Context, args json.RawMessage) (Result, error)

// Result is the tool execution output that feeds back into the next model
// round. IsError signals to the model that the invocation failed; the model
// may recover (e.g. suggest an alternate date).
type Result struct {
	Content string
	IsError bool
}

type entry struct {
	tool    llm.Tool
	handler Handler
}

// Registry is an instance-scoped tool registry. The tool set is fixed and
// small, so registration happens once at construction.
type Registry struct {
	mu          sync.RWMutex
	entries     map[string]entry
	order       []string
	toolTimeout time.Duration
}

// NewRegistry creates an empty registry. toolTimeout bounds each handler
// invocation independently.
func NewRegistry(toolTimeout time.Duration) *Registry {
	if toolTimeout <= 0 {
		toolTimeout = 10 * time.Second
	}
	return &Registry{
		entries:     make(map[string]entry),
		toolTimeout: toolTimeout,
	}
}

// Register adds a tool. Returns ErrAlreadyExists for duplicate names.
func (r *Registry) Register(tool llm.Tool, handler Handler) error {
	if tool.Name == "" {
		return ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[tool.Name]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, tool.Name)
	}
	r.entries[tool.Name] = entry{tool: tool, handler: handler}
	r.order = append(r.order, tool.Name)
	return nil
}

// Definitions returns the registered tool schemas in registration order,
// skipping any excluded names. Used to withhold the escape-hatch tool on the
// booking agent's first round.
func (r *Registry) Definitions(exclude ...string) []llm.Tool {
	skip := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		skip[name] = true
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]llm.Tool, 0, len(r.order))
	for _, name := range r.order {
		if skip[name] {
			continue
		}
		defs = append(defs, r.entries[name].tool)
	}
	return defs
}

// Execute runs one tool call under the per-tool timeout. Handler errors,
// panics, and timeouts all come back as structured error results.
func (r *Registry) Execute(ctx context.Context, name string, args json.RawMessage) Result {
	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()

	if !ok {
		return errorResult(fmt.Sprintf("unknown tool %q", name))
	}

	ctx, cancel := context.WithTimeout(ctx, r.toolTimeout)
	defer cancel()

	res, err := safeInvoke(ctx, e.handler, args)
	if err != nil {
		log.Warn().Str("tool", name).Err(err).Msg("tools: handler failed")
		return errorResult(err.Error())
	}
	return res
}

func safeInvoke(ctx context.Context, h Handler, args json.RawMessage) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tool panicked: %v", r)
		}
	}()
	return h(ctx, args)
}

// errorResult wraps a failure description so the model sees a parseable
// payload rather than a bare string.
func errorResult(msg string) Result {
	payload, _ := utils.MarshalNoEscape(map[string]string{"error": msg})
	return Result{Content: string(payload), IsError: true}
}
