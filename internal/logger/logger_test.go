package logger

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLevelsAndErrorFormatting(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf)

	l.Info("connected")
	l.Warn("  ")
	l.Error("query failed", errors.New("invalid object name"))
	l.Error("", errors.New("bare"))
	l.Success("committed")

	out := buf.String()
	for _, want := range []string{
		"[INFO] connected",
		"[ERROR] query failed: invalid object name",
		"[ERROR] bare",
		"[OK] committed",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in log output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "[WARN]") {
		t.Fatalf("blank messages must be dropped:\n%s", out)
	}
}

func TestNewWritesFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	l, err := New(dir, false)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	l.Info("hello")
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	b, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(b), "[INFO] hello") {
		t.Fatalf("unexpected log content: %s", b)
	}
}
