package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, opts ...Option) Store {
	t.Helper()
	store, err := New(DriverMemory, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestMemoryStore_MissingSessionYieldsEmptyHistory(t *testing.T) {
	store := newTestStore(t)

	turns, err := store.History(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestMemoryStore_AppendCreatesLazilyAndPreservesOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Append(ctx, "s1", RoleUser, "hello")
	require.NoError(t, err)
	_, err = store.Append(ctx, "s1", RoleAssistant, "hi there")
	require.NoError(t, err)

	turns, err := store.History(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, Turn{Role: RoleUser, Content: "hello"}, turns[0])
	assert.Equal(t, Turn{Role: RoleAssistant, Content: "hi there"}, turns[1])
}

func TestMemoryStore_HistoryNeverExceedsCap(t *testing.T) {
	store := newTestStore(t, WithMaxTurns(10))
	ctx := context.Background()

	for i := 1; i <= 15; i++ {
		sess, err := store.Append(ctx, "s1", RoleUser, fmt.Sprintf("turn %d", i))
		require.NoError(t, err)
		assert.LessOrEqual(t, len(sess.History), 10)
	}

	turns, err := store.History(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, turns, 10)

	// Oldest five were trimmed; the most recent ten remain in order.
	assert.Equal(t, "turn 6", turns[0].Content)
	assert.Equal(t, "turn 15", turns[9].Content)
}

func TestMemoryStore_HistoryReturnsACopy(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Append(ctx, "s1", RoleUser, "original")
	require.NoError(t, err)

	turns, err := store.History(ctx, "s1")
	require.NoError(t, err)
	turns[0].Content = "mutated"

	again, err := store.History(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "original", again[0].Content)
}

func TestMemoryStore_Delete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Append(ctx, "s1", RoleUser, "hello")
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, "s1"))

	turns, err := store.History(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestMemoryStore_SweepRemovesIdleSessions(t *testing.T) {
	store := newTestStore(t, WithTTL(time.Millisecond)).(*memoryStore)
	ctx := context.Background()

	_, err := store.Append(ctx, "s1", RoleUser, "hello")
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	store.sweep()

	turns, err := store.History(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestNew_RejectsBadConfig(t *testing.T) {
	_, err := New(Driver("etcd"))
	assert.ErrorIs(t, err, ErrInvalidDriver)

	_, err = New(DriverMemory, WithMaxTurns(0))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New(DriverRedis) // No client.
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
