package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"focus-cli/config"
	"focus-cli/errs"
	"focus-cli/logging"
)

// Store manages the session lock file. The file's existence is the single
// source of truth for "a session is active"; its content is the RFC 3339
// session start time. No other process mutates it, but external deletion
// (manual cleanup after a crash) is tolerated and reads as "inactive".
type Store struct {
	Path string
}

// NewStore returns a store over the given lock file path.
func NewStore(path string) *Store {
	return &Store{Path: path}
}

// DefaultLockPath is the well-known lock file location.
func DefaultLockPath() string {
	return filepath.Join(config.Dir(), "session.lock")
}

// IsActive reports whether a session lock file exists.
func (s *Store) IsActive() bool {
	_, err := os.Stat(s.Path)
	return err == nil
}

// Start records now as the session start. The lock file is created with
// O_EXCL so two near-simultaneous activations cannot both succeed; losing
// the race reports ErrAlreadyActive.
func (s *Store) Start(now time.Time) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0755); err != nil {
		return fmt.Errorf("create lock dir: %w", err)
	}

	f, err := os.OpenFile(s.Path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if os.IsExist(err) {
			return errs.ErrAlreadyActive.WithMessage("a session is already active")
		}
		return fmt.Errorf("create lock: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(now.Format(time.RFC3339Nano) + "\n"); err != nil {
		os.Remove(s.Path)
		return fmt.Errorf("write lock: %w", err)
	}
	return f.Sync()
}

// StartTime returns the recorded session start. ok is false when no session
// is active or the stored timestamp does not parse; an unparseable lock file
// still counts as active, just with an unknown duration.
func (s *Store) StartTime() (time.Time, bool) {
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(string(raw)))
	if err != nil {
		logging.Warn("lock file timestamp is unparseable; duration unknown",
			map[string]any{"path": s.Path, "error": err.Error()})
		return time.Time{}, false
	}
	return t, true
}

// Duration reports how long the session has been active as of now. Inactive
// sessions and unreadable start times report zero; a start time in the
// future (clock skew) is clamped to zero. Never fails.
func (s *Store) Duration(now time.Time) time.Duration {
	start, ok := s.StartTime()
	if !ok {
		return 0
	}
	d := now.Sub(start)
	if d < 0 {
		return 0
	}
	return d
}

// End removes the lock file. Ending an already-inactive session is a no-op,
// not an error, so deactivation stays idempotent.
func (s *Store) End() error {
	if err := os.Remove(s.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove lock: %w", err)
	}
	return nil
}
