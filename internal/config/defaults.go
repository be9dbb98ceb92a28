// Package config - defaults.go centralizes magic numbers and default values.
//
// DESIGN: All default values that appear in multiple places should be defined
// here. This makes configuration more maintainable and auditable.
package config

import "time"

// =============================================================================
// TOKEN ESTIMATION
// =============================================================================

// TokenEstimateRatio is the approximate number of characters per token.
// Used for rough token counting when the encoder is unavailable.
const TokenEstimateRatio = 4

// =============================================================================
// RATE LIMITING
// =============================================================================

// DefaultShortWindow is the burst-detection window.
const DefaultShortWindow = time.Minute

// DefaultShortLimit is the maximum requests per caller per short window.
const DefaultShortLimit = 10

// DefaultLongWindow is the sustained-usage window.
const DefaultLongWindow = time.Hour

// DefaultLongLimit is the maximum requests per caller per long window.
const DefaultLongLimit = 100

// DefaultBlockDuration is the penalty applied when the short window is blown.
const DefaultBlockDuration = time.Hour

// DefaultSweepInterval is the frequency for limiter garbage collection.
const DefaultSweepInterval = 5 * time.Minute

// =============================================================================
// COST CONTROL
// =============================================================================

// DefaultDailyLimitUSD is the global daily spend ceiling.
const DefaultDailyLimitUSD = 25.0

// DefaultMaxLedgerEntries caps the in-memory spend ledger.
const DefaultMaxLedgerEntries = 1000

// =============================================================================
// SESSIONS
// =============================================================================

// DefaultSessionTTL is how long an idle conversation is retained.
const DefaultSessionTTL = time.Hour

// DefaultMaxTurns is the rolling conversation window replayed to the model.
const DefaultMaxTurns = 10

// DefaultSessionSweepInterval is the memory driver's cleanup frequency.
const DefaultSessionSweepInterval = 5 * time.Minute

// =============================================================================
// MODEL CALLS
// =============================================================================

// DefaultModel is the provider model used when none is configured.
const DefaultModel = "claude-sonnet-4-5"

// DefaultModelTimeout bounds a single model call.
const DefaultModelTimeout = 60 * time.Second

// DefaultToolTimeout bounds a single tool handler invocation.
const DefaultToolTimeout = 10 * time.Second

// MaxToolRounds caps the model/tool round loop per request.
const MaxToolRounds = 5

// Output-length budgets for the info agent, chosen by question heuristic.
const (
	ShortAnswerTokens   = 300
	DefaultAnswerTokens = 600
	LongAnswerTokens    = 1024
)

// =============================================================================
// REPLY CACHE
// =============================================================================

// DefaultReplyCacheTTL is how long cached info-route answers are served.
const DefaultReplyCacheTTL = 15 * time.Minute

// =============================================================================
// SCHEDULING
// =============================================================================

// DefaultBookingWindowDays is how far ahead availability is offered.
const DefaultBookingWindowDays = 14

// DefaultSlotMinutes is the consultation slot length.
const DefaultSlotMinutes = 30
