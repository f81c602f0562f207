package proxy

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gotest.tools/v3/assert"
)

func TestOpenSessionLog_NamesAndSeedsGitignore(t *testing.T) {
	dir := t.TempDir()
	logDir := filepath.Join(dir, "gdbproxy_logs")

	opened := time.Date(2026, 7, 31, 14, 5, 9, 0, time.UTC)

	f, err := openSessionLog(logDir, 42, opened)
	assert.NilError(t, err)
	defer f.Close()

	assert.Equal(t, filepath.Base(f.Name()), "session_42_20260731_140509.log")

	gitignore, err := os.ReadFile(filepath.Join(logDir, ".gitignore"))
	assert.NilError(t, err)
	assert.Equal(t, string(gitignore), "*\n")
}

func TestOpenSessionLog_DoesNotOverwriteExistingGitignore(t *testing.T) {
	dir := t.TempDir()

	assert.NilError(t, os.MkdirAll(dir, 0o755))
	assert.NilError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("custom\n"), 0o644))

	f, err := openSessionLog(dir, 1, time.Now())
	assert.NilError(t, err)
	defer f.Close()

	gitignore, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	assert.NilError(t, err)
	assert.Equal(t, string(gitignore), "custom\n")
}

func TestOpenSessionLog_SecondSessionReusesDirectory(t *testing.T) {
	dir := t.TempDir()
	logDir := filepath.Join(dir, "logs")

	f1, err := openSessionLog(logDir, 1, time.Now())
	assert.NilError(t, err)
	f1.Close()

	f2, err := openSessionLog(logDir, 2, time.Now())
	assert.NilError(t, err)
	defer f2.Close()

	assert.Assert(t, f1.Name() != f2.Name())
}
