package logging

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestNewLogger_CreatesDirAndLogger(t *testing.T) {
	dir := t.TempDir()
	log, err := NewLogger(dir)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	defer func() { _ = log.Sync() }()

	// Directory should exist
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("log dir missing: %v", err)
	}

	log.Info("test_message_from_logging_test")

	// Best-effort: a file might not be flushed immediately; don't fail on it.
	if entries, _ := os.ReadDir(dir); len(entries) == 0 {
		t.Logf("no files yet in %s (ok; async writers may delay)", dir)
	}
}

func TestNewLogger_TeesToConsole(t *testing.T) {
	var buf bytes.Buffer
	log, err := newLogger(t.TempDir(), &buf)
	if err != nil {
		t.Fatalf("newLogger: %v", err)
	}
	log.Info("no_search_key")
	_ = log.Sync()

	if !strings.Contains(buf.String(), "no_search_key") {
		t.Fatalf("console output missing message: %q", buf.String())
	}
}
