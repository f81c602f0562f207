package proxy

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// openSessionLog creates (if necessary) dir and returns a handle to a new
// per-session log file named session_<id>_<YYYYMMDD_HHMMSS>.log. The first
// call for a given dir also seeds dir/.gitignore with "*\n" if it does not
// already exist, so log output never gets accidentally committed.
func openSessionLog(dir string, sessionID int64, opened time.Time) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory %q: %w", dir, err)
	}

	if err := ensureGitignore(dir); err != nil {
		return nil, err
	}

	name := fmt.Sprintf("session_%d_%s.log", sessionID, opened.Format("20060102_150405"))
	path := filepath.Join(dir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file %q: %w", path, err)
	}

	return f, nil
}

func ensureGitignore(dir string) error {
	path := filepath.Join(dir, ".gitignore")

	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("checking %q: %w", path, err)
	}

	if err := os.WriteFile(path, []byte("*\n"), 0o644); err != nil {
		return fmt.Errorf("writing %q: %w", path, err)
	}

	return nil
}
