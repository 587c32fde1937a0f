package runlock

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lockPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "run.lock")
}

func TestAcquireAndRelease(t *testing.T) {
	path := lockPath(t)
	l := New(path, time.Minute)

	require.NoError(t, l.Acquire())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	_, err = time.Parse(time.RFC3339, string(data[:len(data)-1]))
	assert.NoError(t, err, "marker should hold an RFC3339 timestamp")

	l.Release()
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "marker should be removed on release")
}

func TestSecondAcquireFails(t *testing.T) {
	path := lockPath(t)

	first := New(path, time.Minute)
	require.NoError(t, first.Acquire())
	defer first.Release()

	second := New(path, time.Minute)
	assert.ErrorIs(t, second.Acquire(), ErrHeld)
}

func TestReacquireAfterRelease(t *testing.T) {
	path := lockPath(t)

	first := New(path, time.Minute)
	require.NoError(t, first.Acquire())
	first.Release()

	second := New(path, time.Minute)
	assert.NoError(t, second.Acquire())
	second.Release()
}

func TestStaleHolderReclaimed(t *testing.T) {
	path := lockPath(t)

	hung := New(path, time.Minute)
	require.NoError(t, hung.Acquire())

	// Backdate the holder far past the TTL.
	stale := time.Now().Add(-2 * time.Hour).Format(time.RFC3339)
	require.NoError(t, os.WriteFile(path, []byte(stale+"\n"), 0o644))

	next := New(path, time.Minute)
	assert.NoError(t, next.Acquire(), "stale holder should be reclaimed")
	next.Release()
}

func TestFreshHolderNotReclaimed(t *testing.T) {
	path := lockPath(t)

	holder := New(path, time.Hour)
	require.NoError(t, holder.Acquire())
	defer holder.Release()

	next := New(path, time.Hour)
	assert.ErrorIs(t, next.Acquire(), ErrHeld)
}
