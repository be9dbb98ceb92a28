// Package session stores bounded conversation history.
//
// DESIGN: One Store interface, two drivers selected by deployment config:
// an in-process map for single-instance deployments and a Redis driver for
// multi-instance deployments. Callers never learn which driver is active.
// History is append-only except head trimming to the configured cap.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one immutable conversation turn. Insertion order is meaningful:
// history is replayed to the model as dialogue.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Session is a keyed conversation with a rolling history window.
type Session struct {
	ID             string    `json:"id"`
	History        []Turn    `json:"history"`
	CreatedAt      time.Time `json:"created_at"`
	LastAccessedAt time.Time `json:"last_accessed_at"`
}

// Store is the conversation history contract.
type Store interface {
	// History returns the retained turns for a session, oldest first.
	// A missing session yields an empty history, not an error.
	History(ctx context.Context, sessionID string) ([]Turn, error)

	// Append adds one turn, creating the session lazily on first write and
	// trimming the oldest turns beyond the cap.
	Append(ctx context.Context, sessionID, role, content string) (*Session, error)

	// Delete removes a session.
	Delete(ctx context.Context, sessionID string) error

	// Close releases driver resources.
	Close() error
}

// Sentinel errors for store construction.
var (
	ErrInvalidDriver = errors.New("unknown session driver")
	ErrInvalidConfig = errors.New("invalid session store config")
)

// Driver selects a Store implementation.
type Driver string

const (
	DriverMemory Driver = "memory"
	DriverRedis  Driver = "redis"
)

// Option is a functional option for configuring a session store.
type Option func(*storeConfig)

type storeConfig struct {
	ttl           time.Duration
	maxTurns      int
	sweepInterval time.Duration
	redisClient   *redis.Client
}

// WithTTL sets the idle expiry for sessions.
func WithTTL(ttl time.Duration) Option {
	return func(c *storeConfig) { c.ttl = ttl }
}

// WithMaxTurns sets the rolling history cap.
func WithMaxTurns(n int) Option {
	return func(c *storeConfig) { c.maxTurns = n }
}

// WithSweepInterval sets the memory driver's cleanup frequency.
func WithSweepInterval(d time.Duration) Option {
	return func(c *storeConfig) { c.sweepInterval = d }
}

// WithRedisClient sets the client for the redis driver.
func WithRedisClient(client *redis.Client) Option {
	return func(c *storeConfig) { c.redisClient = client }
}

// New creates a Store for the given driver.
func New(driver Driver, opts ...Option) (Store, error) {
	cfg := &storeConfig{
		ttl:           time.Hour,
		maxTurns:      10,
		sweepInterval: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.ttl <= 0 || cfg.maxTurns <= 0 {
		return nil, ErrInvalidConfig
	}

	switch driver {
	case DriverMemory:
		return newMemoryStore(cfg), nil
	case DriverRedis:
		if cfg.redisClient == nil {
			return nil, ErrInvalidConfig
		}
		return newRedisStore(cfg), nil
	default:
		return nil, ErrInvalidDriver
	}
}

// trimHead drops the oldest turns beyond cap, keeping original order.
func trimHead(turns []Turn, cap int) []Turn {
	if len(turns) <= cap {
		return turns
	}
	return turns[len(turns)-cap:]
}
