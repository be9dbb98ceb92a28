// Package costcontrol implements the spend ledger and daily budget ceiling.
//
// DESIGN: Every model call is recorded exactly once, including cache hits at
// zero cost (accounting symmetry). The ledger is append-only and capped; the
// daily total is aggregated on demand. Enforcement is a hard stop: when the
// daily ceiling is reached the orchestrator refuses non-cached model calls.
package costcontrol

import (
	"fmt"
	"time"
)

// Config holds cost control settings.
type Config struct {
	DailyLimitUSD float64 `yaml:"daily_limit_usd"` // Global daily spend ceiling. 0 = use default.
	MaxEntries    int     `yaml:"max_entries"`     // In-memory ledger cap (oldest evicted).
	ArchivePath   string  `yaml:"archive_path"`    // Optional sqlite archive. Empty = memory only.
}

// Validate checks cost control configuration.
func (c *Config) Validate() error {
	if c.DailyLimitUSD < 0 {
		return fmt.Errorf("cost_control.daily_limit_usd must be >= 0, got %f", c.DailyLimitUSD)
	}
	if c.MaxEntries < 0 {
		return fmt.Errorf("cost_control.max_entries must be >= 0, got %d", c.MaxEntries)
	}
	return nil
}

// Entry is one immutable ledger record. Never mutated after insertion.
type Entry struct {
	Timestamp    time.Time
	Endpoint     string // Logical operation: "chat", "booking", "roi"
	Model        string
	InputTokens  int
	OutputTokens int
	Cost         float64
	Cached       bool // True for cache hits, recorded at zero cost
	Caller       string
}

// DaySummary is an on-demand aggregation of one UTC day.
type DaySummary struct {
	Day          string // YYYY-MM-DD
	Requests     int
	CachedHits   int
	InputTokens  int
	OutputTokens int
	TotalCost    float64
}
