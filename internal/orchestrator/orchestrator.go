// Package orchestrator is the entry point of the conversational core: it
// admits the request, loads history, routes intent, invokes the matching
// specialist, persists the turn, and returns the reply.
//
// Failure policy: admission rejections and the daily cost ceiling are
// terminal and reported with a machine-readable reason; tool failures are
// recovered below this layer; model failures are recovered here with a
// generic fallback reply. Nothing escapes Handle as an error the transport
// has to interpret.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/brightpath-advisory/concierge/internal/admission"
	"github.com/brightpath-advisory/concierge/internal/agents"
	"github.com/brightpath-advisory/concierge/internal/costcontrol"
	"github.com/brightpath-advisory/concierge/internal/llm"
	"github.com/brightpath-advisory/concierge/internal/monitoring"
	"github.com/brightpath-advisory/concierge/internal/router"
	"github.com/brightpath-advisory/concierge/internal/session"
	"github.com/brightpath-advisory/concierge/internal/tools"
	"github.com/brightpath-advisory/concierge/internal/utils"
)

// Rejection reasons surfaced to the caller, in addition to the admission
// package's reasons.
const ReasonDailyLimit = "daily_cost_limit"

// User-facing copy for terminal outcomes.
const (
	replyRateLimited = "You've sent quite a few messages in a short time. Please wait a bit and try again."
	replyDailyLimit  = "The assistant is unavailable right now. Please try again tomorrow or email us directly."
	replyFallback    = "I'm sorry, something went wrong on my end. Please try again in a moment."
)

// Request is one incoming message.
type Request struct {
	Message   string
	SessionID string
	Caller    string // Rate-limit identifier (e.g. client IP)
	Language  string // Optional language hint, e.g. "Spanish"
}

// Response is the single well-typed outcome of a pass.
type Response struct {
	Reply      string
	Route      router.Intent
	Rejected   bool
	Reason     string    // Machine-readable, set when Rejected
	RetryAfter time.Time // Set for rate-limit rejections
}

// Deps are the injected collaborators. All shared mutable state (limiter,
// ledger) is constructed once at process start and torn down on shutdown.
type Deps struct {
	Limiter  *admission.Limiter
	Ledger   *costcontrol.Ledger
	Store    session.Store
	Client   llm.Client
	Registry *tools.Registry
	Metrics  *monitoring.MetricsCollector

	Model    string
	CacheTTL time.Duration
}

// Orchestrator composes the conversational core.
type Orchestrator struct {
	deps  Deps
	cache *replyCache

	info    agents.Agent
	booking agents.Agent
	roi     agents.Agent
}

// New wires the three specialists. Each gets its own ledger closure so every
// model call is tracked under its route's endpoint.
func New(deps Deps) *Orchestrator {
	if deps.CacheTTL <= 0 {
		deps.CacheTTL = 15 * time.Minute
	}

	agentDeps := func(endpoint string) agents.Deps {
		return agents.Deps{
			Client:   deps.Client,
			Registry: deps.Registry,
			Model:    deps.Model,
			Track: func(ctx context.Context, u llm.Usage) {
				deps.Ledger.TrackUsage(endpoint, deps.Model, callerFromContext(ctx), u.InputTokens, u.OutputTokens, false)
			},
		}
	}

	return &Orchestrator{
		deps:    deps,
		cache:   newReplyCache(deps.CacheTTL),
		info:    agents.NewInfoAgent(agentDeps("info")),
		booking: agents.NewBookingAgent(agentDeps("booking")),
		roi:     agents.NewROIAgent(agentDeps("roi")),
	}
}

// Handle processes one message end to end.
func (o *Orchestrator) Handle(ctx context.Context, req Request) Response {
	caller := req.Caller
	if caller == "" {
		caller = "anonymous"
	}
	ctx = withCaller(ctx, caller)

	check := o.deps.Limiter.Check(caller)
	if !check.Allowed {
		o.deps.Metrics.RecordRejection()
		log.Info().
			Str("caller", caller).
			Str("reason", check.Reason).
			Time("reset_at", check.ResetAt).
			Msg("orchestrator: request rejected")
		return Response{
			Reply:      replyRateLimited,
			Rejected:   true,
			Reason:     check.Reason,
			RetryAfter: check.ResetAt,
		}
	}

	history, err := o.deps.Store.History(ctx, req.SessionID)
	if err != nil {
		// A failed history read degrades to a fresh conversation.
		log.Warn().Err(err).Str("session", req.SessionID).Msg("orchestrator: history load failed")
		history = nil
	}

	result := router.Classify(req.Message, history)
	o.deps.Metrics.RecordRoute(string(result.Intent))
	log.Debug().
		Str("route", string(result.Intent)).
		Float64("confidence", result.Confidence).
		Str("message", utils.Truncate(req.Message, 80)).
		Msg("orchestrator: routed")

	if result.Intent == router.IntentManagement {
		o.deps.Metrics.RecordRequest(true)
		return Response{Reply: o.managementSummary(), Route: result.Intent}
	}

	// Only history-free openers are cacheable: a follow-up answer depends on
	// its conversation and must not be replayed into another session.
	if result.Intent == router.IntentInfo && len(history) == 0 {
		if reply, usage, ok := o.cache.Get(req.Message, req.Language); ok {
			o.deps.Metrics.RecordCacheHit()
			o.deps.Ledger.TrackUsage("info", o.deps.Model, caller, usage.InputTokens, usage.OutputTokens, true)
			o.persistTurns(ctx, req.SessionID, req.Message, reply)
			o.deps.Metrics.RecordRequest(true)
			return Response{Reply: reply, Route: result.Intent}
		}
		o.deps.Metrics.RecordCacheMiss()
	}

	// The ceiling is consulted before any non-cached model call; a blocked
	// day incurs zero downstream cost.
	if o.deps.Ledger.IsOverDailyLimit() {
		o.deps.Metrics.RecordRejection()
		log.Warn().Str("caller", caller).Msg("orchestrator: daily cost ceiling reached")
		return Response{
			Reply:    replyDailyLimit,
			Route:    result.Intent,
			Rejected: true,
			Reason:   ReasonDailyLimit,
		}
	}

	in := agents.Input{Message: req.Message, History: history, Language: req.Language}

	var reply string
	switch result.Intent {
	case router.IntentBooking:
		reply, err = o.booking.Run(ctx, in)
	case router.IntentROI:
		reply, err = o.roi.Run(ctx, in)
	default:
		reply, err = o.runInfo(ctx, in)
	}

	if err != nil {
		o.deps.Metrics.RecordModelFailure()
		log.Error().Err(err).Str("route", string(result.Intent)).Msg("orchestrator: model call failed")
		reply = replyFallback
	}

	o.persistTurns(ctx, req.SessionID, req.Message, reply)
	o.deps.Metrics.RecordRequest(err == nil)
	return Response{Reply: reply, Route: result.Intent}
}

// runInfo runs the info agent and feeds successful history-free answers into
// the cache.
func (o *Orchestrator) runInfo(ctx context.Context, in agents.Input) (string, error) {
	reply, err := o.info.Run(ctx, in)
	if err != nil {
		return "", err
	}
	if len(in.History) == 0 {
		// Usage for the cached entry is re-estimated: the agent tracked the
		// real call already, and hits only need plausible token counts at
		// zero cost.
		o.cache.Put(in.Message, in.Language, reply, llm.Usage{
			InputTokens:  llm.EstimateTokens(in.Message),
			OutputTokens: llm.EstimateTokens(reply),
		})
	}
	return reply, nil
}

func (o *Orchestrator) persistTurns(ctx context.Context, sessionID, userMsg, assistantMsg string) {
	if _, err := o.deps.Store.Append(ctx, sessionID, session.RoleUser, userMsg); err != nil {
		log.Warn().Err(err).Str("session", sessionID).Msg("orchestrator: persist user turn failed")
	}
	if _, err := o.deps.Store.Append(ctx, sessionID, session.RoleAssistant, assistantMsg); err != nil {
		log.Warn().Err(err).Str("session", sessionID).Msg("orchestrator: persist assistant turn failed")
	}
}

type callerKey struct{}

func withCaller(ctx context.Context, caller string) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

func callerFromContext(ctx context.Context) string {
	caller, _ := ctx.Value(callerKey{}).(string)
	return caller
}

// managementSummary is the owner-only surface: a static operational summary,
// no model call.
func (o *Orchestrator) managementSummary() string {
	day := o.deps.Ledger.Summary(time.Now())
	stats := o.deps.Metrics.Stats()
	return fmt.Sprintf(
		"Today: %d model calls (%d cached), %d/%d input/output tokens, $%.4f spent. "+
			"Since start: %d requests, %d bookings routed, %d rejections.",
		day.Requests, day.CachedHits, day.InputTokens, day.OutputTokens, day.TotalCost,
		stats["requests"], stats["route_booking"], stats["rejections"],
	)
}
