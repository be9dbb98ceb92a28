package costcontrol

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Ledger tracks per-call API spend and enforces the daily ceiling.
type Ledger struct {
	cfg Config

	mu      sync.RWMutex
	entries []Entry

	// Spend recorded before this process started, restored from the
	// archive so the ceiling survives restarts.
	baselineDay  string
	baselineCost float64

	archive *Archive
}

// NewLedger creates a spend ledger. Pass a non-nil archive to mirror entries
// into sqlite and seed today's total from prior runs.
func NewLedger(cfg Config, archive *Archive) *Ledger {
	l := &Ledger{
		cfg:     cfg,
		archive: archive,
	}
	if archive != nil {
		day := dayKey(time.Now().UTC())
		total, err := archive.DailyTotal(day)
		if err != nil {
			log.Warn().Err(err).Msg("ledger: archive seed failed")
		} else {
			l.baselineDay = day
			l.baselineCost = total
		}
	}
	return l
}

// Track appends one entry. Cached entries are forced to zero cost.
// This is a mandatory post-condition of every model call, not optional logging.
func (l *Ledger) Track(e Entry) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	if e.Cached {
		e.Cost = 0
	}

	l.mu.Lock()
	l.entries = append(l.entries, e)
	if l.cfg.MaxEntries > 0 && len(l.entries) > l.cfg.MaxEntries {
		// Evict oldest first.
		over := len(l.entries) - l.cfg.MaxEntries
		l.entries = append([]Entry(nil), l.entries[over:]...)
	}
	l.mu.Unlock()

	if l.archive != nil {
		if err := l.archive.Insert(e); err != nil {
			log.Warn().Err(err).Str("endpoint", e.Endpoint).Msg("ledger: archive insert failed")
		}
	}
}

// TrackUsage computes cost from token counts and records the entry.
// Cache hits are recorded with zero cost regardless of token counts.
func (l *Ledger) TrackUsage(endpoint, model, caller string, inputTokens, outputTokens int, cached bool) {
	cost := 0.0
	if !cached {
		cost = CalculateCost(inputTokens, outputTokens, GetModelPricing(model))
	}
	l.Track(Entry{
		Endpoint:     endpoint,
		Model:        model,
		Caller:       caller,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		Cost:         cost,
		Cached:       cached,
	})
}

// DailyTotal returns total spend for the UTC day containing t, including any
// spend restored from the archive when t falls on the baseline day.
func (l *Ledger) DailyTotal(t time.Time) float64 {
	day := dayKey(t.UTC())

	l.mu.RLock()
	defer l.mu.RUnlock()

	total := 0.0
	if day == l.baselineDay {
		total = l.baselineCost
	}
	for _, e := range l.entries {
		if dayKey(e.Timestamp.UTC()) == day {
			total += e.Cost
		}
	}
	return total
}

// IsOverDailyLimit reports whether today's spend has reached the ceiling.
// Pure read: calling it twice without an intervening Track returns the same
// result.
func (l *Ledger) IsOverDailyLimit() bool {
	if l.cfg.DailyLimitUSD <= 0 {
		return false
	}
	return l.DailyTotal(time.Now()) >= l.cfg.DailyLimitUSD
}

// Summary aggregates the retained entries for the UTC day containing t.
func (l *Ledger) Summary(t time.Time) DaySummary {
	day := dayKey(t.UTC())

	l.mu.RLock()
	defer l.mu.RUnlock()

	s := DaySummary{Day: day}
	if day == l.baselineDay {
		s.TotalCost = l.baselineCost
	}
	for _, e := range l.entries {
		if dayKey(e.Timestamp.UTC()) != day {
			continue
		}
		s.Requests++
		if e.Cached {
			s.CachedHits++
		}
		s.InputTokens += e.InputTokens
		s.OutputTokens += e.OutputTokens
		s.TotalCost += e.Cost
	}
	return s
}

// Entries returns a snapshot of the retained ledger.
func (l *Ledger) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Close releases the archive, if any.
func (l *Ledger) Close() error {
	if l.archive != nil {
		return l.archive.Close()
	}
	return nil
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
