package costcontrol

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestArchive(t *testing.T) (*Archive, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.db")
	a, err := OpenArchive(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a, path
}

func TestArchive_InsertAndDailyTotal(t *testing.T) {
	a, _ := openTestArchive(t)
	now := time.Now().UTC()

	require.NoError(t, a.Insert(Entry{Timestamp: now, Endpoint: "info", Model: "m", Cost: 0.25}))
	require.NoError(t, a.Insert(Entry{Timestamp: now, Endpoint: "booking", Model: "m", Cost: 0.75}))
	require.NoError(t, a.Insert(Entry{Timestamp: now.AddDate(0, 0, -2), Endpoint: "info", Model: "m", Cost: 9}))

	total, err := a.DailyTotal(dayKey(now))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, total, 1e-9)

	empty, err := a.DailyTotal("1999-01-01")
	require.NoError(t, err)
	assert.Zero(t, empty)
}

func TestLedger_SeedsBaselineFromArchiveAcrossRestarts(t *testing.T) {
	_, path := openTestArchive(t)

	first, err := OpenArchive(path)
	require.NoError(t, err)
	run1 := NewLedger(Config{DailyLimitUSD: 1}, first)
	run1.Track(Entry{Endpoint: "info", Cost: 0.8})
	require.NoError(t, run1.Close())

	// A restart re-opens the archive; prior spend still counts toward today.
	second, err := OpenArchive(path)
	require.NoError(t, err)
	run2 := NewLedger(Config{DailyLimitUSD: 1}, second)
	t.Cleanup(func() { _ = run2.Close() })

	assert.InDelta(t, 0.8, run2.DailyTotal(time.Now()), 1e-9)
	assert.False(t, run2.IsOverDailyLimit())

	run2.Track(Entry{Endpoint: "info", Cost: 0.3})
	assert.True(t, run2.IsOverDailyLimit())
}
