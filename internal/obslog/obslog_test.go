package obslog

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestOpenLogFileNamesByDomainAndTimestamp(t *testing.T) {
	chdirTemp(t)
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	f, path, err := OpenLogFile("domains/coin_toss.yaml", now)
	if err != nil {
		t.Fatalf("OpenLogFile: %v", err)
	}
	defer f.Close()

	want := filepath.Join("log", "coin_toss_20260102_030405.log")
	if path != want {
		t.Fatalf("path = %q, want %q", path, want)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected log file to exist: %v", err)
	}
}

func TestOpenLogFileAvoidsCollisions(t *testing.T) {
	chdirTemp(t)
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	f1, path1, err := OpenLogFile("coin_toss.yaml", now)
	if err != nil {
		t.Fatalf("OpenLogFile #1: %v", err)
	}
	f1.Close()

	f2, path2, err := OpenLogFile("coin_toss.yaml", now)
	if err != nil {
		t.Fatalf("OpenLogFile #2: %v", err)
	}
	defer f2.Close()

	if path1 == path2 {
		t.Fatalf("expected distinct paths, both were %q", path1)
	}
	want := filepath.Join("log", "coin_toss_20260102_030405_1.log")
	if path2 != want {
		t.Fatalf("path2 = %q, want %q", path2, want)
	}
}

func TestNewFileWritesJSON(t *testing.T) {
	dir := t.TempDir()
	f, err := os.Create(filepath.Join(dir, "out.log"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer f.Close()

	logger := NewFile(f)
	logger.Info().Str("k", "v").Msg("hello")

	info, err := f.Stat()
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Size() == 0 {
		t.Fatalf("expected log output to be written to file")
	}
}
