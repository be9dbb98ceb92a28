// Package admission implements per-caller rate limiting with an escalating
// block. Admission is evaluated before any model or tool work: a rejected
// caller incurs zero downstream cost.
package admission

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Limits configures the two counting windows and the penalty block.
type Limits struct {
	ShortWindow   time.Duration // Burst window, e.g. 60s
	ShortLimit    int           // Max requests per short window
	LongWindow    time.Duration // Sustained window, e.g. 1h
	LongLimit     int           // Max requests per long window
	BlockDuration time.Duration // Penalty when the short window is blown
	SweepInterval time.Duration // Garbage collection frequency
}

// Result is the outcome of one admission check.
type Result struct {
	Allowed   bool
	Remaining int       // Requests left in the short window
	ResetAt   time.Time // When the caller may retry
	Reason    string    // Machine-readable rejection reason
}

// Rejection reasons.
const (
	ReasonBlocked   = "blocked"
	ReasonBurst     = "rate_limited_burst"
	ReasonSustained = "rate_limited_sustained"
)

type window struct {
	count   int
	resetAt time.Time
}

type callerState struct {
	short        window
	long         window
	blockedUntil time.Time
}

// Limiter maintains per-caller counters behind one mutex. Counter updates are
// single-step, so coarse locking is sufficient.
type Limiter struct {
	limits  Limits
	mu      sync.Mutex
	callers map[string]*callerState
	stop    chan struct{}
	once    sync.Once
}

// NewLimiter creates a limiter and starts its sweep goroutine.
// Call Close on shutdown.
func NewLimiter(limits Limits) *Limiter {
	if limits.SweepInterval <= 0 {
		limits.SweepInterval = 5 * time.Minute
	}
	l := &Limiter{
		limits:  limits,
		callers: make(map[string]*callerState),
		stop:    make(chan struct{}),
	}
	go l.sweepLoop()
	return l
}

// Check admits or rejects one request from identifier.
//
// Order matters: an active block wins over counters; blowing the short window
// installs the block; the long window rejects without escalating. Both
// counters are incremented only on an allowed request.
func (l *Limiter) Check(identifier string) Result {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.callers[identifier]
	if !ok {
		c = &callerState{}
		l.callers[identifier] = c
	}

	if c.blockedUntil.After(now) {
		return Result{Allowed: false, ResetAt: c.blockedUntil, Reason: ReasonBlocked}
	}

	if now.After(c.short.resetAt) {
		c.short = window{resetAt: now.Add(l.limits.ShortWindow)}
	}
	if now.After(c.long.resetAt) {
		c.long = window{resetAt: now.Add(l.limits.LongWindow)}
	}

	if c.short.count >= l.limits.ShortLimit {
		c.blockedUntil = now.Add(l.limits.BlockDuration)
		log.Warn().Str("caller", identifier).Time("until", c.blockedUntil).Msg("admission: caller blocked")
		return Result{Allowed: false, ResetAt: c.blockedUntil, Reason: ReasonBurst}
	}

	if c.long.count >= l.limits.LongLimit {
		return Result{Allowed: false, ResetAt: c.long.resetAt, Reason: ReasonSustained}
	}

	c.short.count++
	c.long.count++

	return Result{
		Allowed:   true,
		Remaining: l.limits.ShortLimit - c.short.count,
		ResetAt:   c.short.resetAt,
	}
}

// Close stops the sweep goroutine.
func (l *Limiter) Close() {
	l.once.Do(func() { close(l.stop) })
}

func (l *Limiter) sweepLoop() {
	ticker := time.NewTicker(l.limits.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.sweep()
		}
	}
}

// sweep drops callers whose windows and block have all expired.
func (l *Limiter) sweep() {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	for id, c := range l.callers {
		if now.After(c.short.resetAt) && now.After(c.long.resetAt) && now.After(c.blockedUntil) {
			delete(l.callers, id)
		}
	}
}
