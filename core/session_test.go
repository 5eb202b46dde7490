package core_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"focus-cli/core"
	"focus-cli/errs"
)

func newStore(t *testing.T) *core.Store {
	return core.NewStore(filepath.Join(t.TempDir(), "session.lock"))
}

func TestStore_StartCreatesLock(t *testing.T) {
	s := newStore(t)
	now := time.Now()

	require.NoError(t, s.Start(now))
	assert.True(t, s.IsActive())
	assert.Equal(t, time.Duration(0), s.Duration(now))
}

func TestStore_StartWhileActiveFails(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Start(time.Now()))

	err := s.Start(time.Now())
	require.ErrorIs(t, err, errs.ErrAlreadyActive)
}

func TestStore_DurationMonotonic(t *testing.T) {
	s := newStore(t)
	now := time.Now()
	require.NoError(t, s.Start(now))

	prev := time.Duration(-1)
	for _, offset := range []time.Duration{0, time.Second, time.Minute, time.Hour} {
		d := s.Duration(now.Add(offset))
		assert.GreaterOrEqual(t, d, prev)
		prev = d
	}
	assert.Equal(t, time.Hour, prev)
}

func TestStore_DurationClampsClockSkew(t *testing.T) {
	s := newStore(t)
	now := time.Now()
	require.NoError(t, s.Start(now))

	assert.Equal(t, time.Duration(0), s.Duration(now.Add(-time.Hour)))
}

func TestStore_InactiveReportsZero(t *testing.T) {
	s := newStore(t)
	assert.False(t, s.IsActive())
	assert.Equal(t, time.Duration(0), s.Duration(time.Now()))
}

func TestStore_UnparseableTimestampStillActive(t *testing.T) {
	s := newStore(t)
	require.NoError(t, os.WriteFile(s.Path, []byte("not a timestamp\n"), 0644))

	assert.True(t, s.IsActive())
	assert.Equal(t, time.Duration(0), s.Duration(time.Now()))

	_, ok := s.StartTime()
	assert.False(t, ok)
}

func TestStore_EndIsIdempotent(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Start(time.Now()))

	require.NoError(t, s.End())
	assert.False(t, s.IsActive())
	require.NoError(t, s.End())
}

func TestStore_ExternalDeletionReadsAsInactive(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Start(time.Now()))
	require.NoError(t, os.Remove(s.Path))

	assert.False(t, s.IsActive())
	assert.Equal(t, time.Duration(0), s.Duration(time.Now()))
}

func TestStore_TimestampRoundTrips(t *testing.T) {
	s := newStore(t)
	now := time.Now()
	require.NoError(t, s.Start(now))

	start, ok := s.StartTime()
	require.True(t, ok)
	assert.True(t, start.Equal(now))
}

func TestStore_CreatesLockDirectory(t *testing.T) {
	s := core.NewStore(filepath.Join(t.TempDir(), "nested", "dir", "session.lock"))
	require.NoError(t, s.Start(time.Now()))
	assert.True(t, s.IsActive())
}
