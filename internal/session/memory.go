package session

import (
	"context"
	"sync"
	"time"
)

// memoryStore keeps sessions in a mutex-guarded map with a background TTL
// sweep. Suitable for a single-process deployment.
type memoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	ttl      time.Duration
	maxTurns int

	stop chan struct{}
	once sync.Once
}

func newMemoryStore(cfg *storeConfig) *memoryStore {
	s := &memoryStore{
		sessions: make(map[string]*Session),
		ttl:      cfg.ttl,
		maxTurns: cfg.maxTurns,
		stop:     make(chan struct{}),
	}
	go s.sweepLoop(cfg.sweepInterval)
	return s
}

// History implements Store. Reads refresh LastAccessedAt.
func (s *memoryStore) History(ctx context.Context, sessionID string) ([]Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	sess.LastAccessedAt = time.Now()

	// Copy so callers cannot mutate retained history.
	out := make([]Turn, len(sess.History))
	copy(out, sess.History)
	return out, nil
}

// Append implements Store.
func (s *memoryStore) Append(ctx context.Context, sessionID, role, content string) (*Session, error) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = &Session{ID: sessionID, CreatedAt: now}
		s.sessions[sessionID] = sess
	}
	sess.History = trimHead(append(sess.History, Turn{Role: role, Content: content}), s.maxTurns)
	sess.LastAccessedAt = now

	snapshot := *sess
	snapshot.History = make([]Turn, len(sess.History))
	copy(snapshot.History, sess.History)
	return &snapshot, nil
}

// Delete implements Store.
func (s *memoryStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
	return nil
}

// Close implements Store.
func (s *memoryStore) Close() error {
	s.once.Do(func() { close(s.stop) })
	return nil
}

func (s *memoryStore) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

// sweep removes sessions idle past the TTL.
func (s *memoryStore) sweep() {
	cutoff := time.Now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, sess := range s.sessions {
		if sess.LastAccessedAt.Before(cutoff) {
			delete(s.sessions, id)
		}
	}
}
