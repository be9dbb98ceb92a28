package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "conv:"

// redisStore persists sessions as JSON values with Redis-native TTL.
// Suitable for multi-instance deployments. Same-session concurrency is
// last-write-wins, which is acceptable for an inherently sequential
// conversation.
type redisStore struct {
	client   *redis.Client
	ttl      time.Duration
	maxTurns int
}

func newRedisStore(cfg *storeConfig) *redisStore {
	return &redisStore{
		client:   cfg.redisClient,
		ttl:      cfg.ttl,
		maxTurns: cfg.maxTurns,
	}
}

// History implements Store. Reads refresh the key TTL.
func (s *redisStore) History(ctx context.Context, sessionID string) ([]Turn, error) {
	sess, err := s.load(ctx, sessionID)
	if err != nil || sess == nil {
		return nil, err
	}

	sess.LastAccessedAt = time.Now()
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	return sess.History, nil
}

// Append implements Store.
func (s *redisStore) Append(ctx context.Context, sessionID, role, content string) (*Session, error) {
	now := time.Now()

	sess, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		sess = &Session{ID: sessionID, CreatedAt: now}
	}

	sess.History = trimHead(append(sess.History, Turn{Role: role, Content: content}), s.maxTurns)
	sess.LastAccessedAt = now

	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Delete implements Store.
func (s *redisStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, redisKeyPrefix+sessionID).Err()
}

// Close implements Store.
func (s *redisStore) Close() error {
	return s.client.Close()
}

func (s *redisStore) load(ctx context.Context, sessionID string) (*Session, error) {
	val, err := s.client.Get(ctx, redisKeyPrefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session load: %w", err)
	}

	var sess Session
	if err := json.Unmarshal([]byte(val), &sess); err != nil {
		return nil, fmt.Errorf("session decode: %w", err)
	}
	return &sess, nil
}

func (s *redisStore) save(ctx context.Context, sess *Session) error {
	val, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("session encode: %w", err)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+sess.ID, val, s.ttl).Err(); err != nil {
		return fmt.Errorf("session save: %w", err)
	}
	return nil
}
