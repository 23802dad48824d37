package memory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestProbeExplicitPath(t *testing.T) {
	te := newTestEngine(t)
	bin := fakeBackend(t)

	path, ok := te.probe(context.Background(), bin)
	if !ok {
		t.Fatal("Expected backend to be found")
	}
	if path != bin {
		t.Errorf("Expected resolved path %q, got %q", bin, path)
	}

	// The result is cached; a second probe must not re-invoke the backend.
	before := len(te.calls)
	if _, ok := te.probe(context.Background(), bin); !ok {
		t.Fatal("Cached probe should still report found")
	}
	if len(te.calls) != before {
		t.Error("Cached probe must not invoke the backend again")
	}
}

func TestProbeNotFound(t *testing.T) {
	te := newTestEngine(t)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("PATH", t.TempDir())

	missing := filepath.Join(t.TempDir(), "no-such-csearch")
	if _, ok := te.probe(context.Background(), missing); ok {
		t.Fatal("Expected backend to be unavailable")
	}

	logged := te.logBuf.String()
	if !strings.Contains(logged, "not found") {
		t.Errorf("Unavailability should be logged, got %q", logged)
	}

	// Unavailability warning is emitted once per process lifetime.
	te.probe(context.Background(), missing)
	if n := strings.Count(te.logBuf.String(), "not found"); n != 1 {
		t.Errorf("Expected a single unavailability warning, got %d", n)
	}
}

func TestProbeSkipsFailingCandidate(t *testing.T) {
	te := newTestEngine(t)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("PATH", t.TempDir())
	bin := fakeBackend(t)

	te.respond = func(call recordedCall) ([]byte, error) {
		return nil, fmt.Errorf("exec format error")
	}

	if _, ok := te.probe(context.Background(), bin); ok {
		t.Fatal("A candidate failing the help invocation must not be adopted")
	}
}

func TestNoExpandSupported(t *testing.T) {
	te := newTestEngine(t)
	home := t.TempDir()
	t.Setenv("HOME", home)

	localBin := filepath.Join(home, ".local", "bin")
	if err := os.MkdirAll(localBin, 0755); err != nil {
		t.Fatal(err)
	}

	withMarker := filepath.Join(localBin, "csearch")
	if err := os.WriteFile(withMarker, []byte("#!/bin/sh\n# honors "+noExpandEnv+"\n"), 0755); err != nil {
		t.Fatal(err)
	}
	withoutMarker := filepath.Join(localBin, "csearch-old")
	if err := os.WriteFile(withoutMarker, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatal(err)
	}

	if !te.noExpandSupported(withMarker) {
		t.Error("Install carrying the env marker should support suppression")
	}
	if te.noExpandSupported(withoutMarker) {
		t.Error("Install without the marker should not support suppression")
	}
	if te.noExpandSupported("/usr/local/bin/csearch") {
		t.Error("Capability detection only applies to the user-local install")
	}
}
