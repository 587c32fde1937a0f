package runlock

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

// ErrHeld is returned when another live run owns the lock. The caller is
// expected to abort the whole invocation.
var ErrHeld = errors.New("run lock already held by another process")

// Lock is the single-host mutual-exclusion marker guarding a pipeline run.
// It combines an OS advisory lock (released automatically if the holder
// crashes) with a stored owner timestamp, so a holder that hangs past TTL
// can be reclaimed by the next invocation.
type Lock struct {
	path string
	ttl  time.Duration
	fl   *flock.Flock
}

func New(path string, ttl time.Duration) *Lock {
	return &Lock{
		path: path,
		ttl:  ttl,
		fl:   flock.New(path),
	}
}

// Acquire takes the lock or fails with ErrHeld. A holder whose timestamp is
// older than the TTL is treated as stale: its marker is removed and the
// lock is taken over.
func (l *Lock) Acquire() error {
	err := l.tryAcquire()
	if err == nil || !errors.Is(err, ErrHeld) {
		return err
	}

	if !l.holderStale() {
		return ErrHeld
	}

	slog.Warn("run lock holder exceeded TTL, reclaiming", "path", l.path, "ttl", l.ttl)
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove stale lock: %w", err)
	}
	l.fl = flock.New(l.path)
	return l.tryAcquire()
}

func (l *Lock) tryAcquire() error {
	locked, err := l.fl.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire run lock: %w", err)
	}
	if !locked {
		return ErrHeld
	}

	if err := os.WriteFile(l.path, []byte(time.Now().Format(time.RFC3339)+"\n"), 0o644); err != nil {
		l.fl.Unlock()
		return fmt.Errorf("failed to write lock timestamp: %w", err)
	}
	return nil
}

// holderStale reports whether the current holder's stored timestamp is
// older than the TTL. Unreadable or malformed markers are not stale: a
// live flock without a valid timestamp still wins.
func (l *Lock) holderStale() bool {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return false
	}
	ts, err := time.Parse(time.RFC3339, strings.TrimSpace(string(data)))
	if err != nil {
		return false
	}
	return time.Since(ts) > l.ttl
}

// Release drops the advisory lock and removes the marker file. Safe to call
// unconditionally; it is deferred at run start so the lock never outlives a
// run, success or crash.
func (l *Lock) Release() {
	if err := l.fl.Unlock(); err != nil {
		slog.Warn("failed to release run lock", "path", l.path, "error", err)
	}
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to remove lock marker", "path", l.path, "error", err)
	}
}
