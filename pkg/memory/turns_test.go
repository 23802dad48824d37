package memory

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWriteAndReadTurnFile(t *testing.T) {
	dir := t.TempDir()
	ts := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	path, err := writeTurnFile(dir, Turn{
		AgentID:   "dev-bot",
		AgentName: "Dev Bot",
		Channel:   "general",
		Sender:    "alice",
		MessageID: "msg-1",
		UserText:  "what is the api key?",
		Assistant: "The key is ABC-123-XYZ",
		Timestamp: ts,
	})
	if err != nil {
		t.Fatalf("writeTurnFile failed: %v", err)
	}

	rec, err := readTurnFile(path)
	if err != nil {
		t.Fatalf("readTurnFile failed: %v", err)
	}

	if rec.AgentID != "dev-bot" {
		t.Errorf("AgentID: got %q", rec.AgentID)
	}
	if rec.Channel != "general" {
		t.Errorf("Channel: got %q", rec.Channel)
	}
	if rec.Sender != "alice" {
		t.Errorf("Sender: got %q", rec.Sender)
	}
	if rec.MessageID != "msg-1" {
		t.Errorf("MessageID: got %q", rec.MessageID)
	}
	if rec.UserText != "what is the api key?" {
		t.Errorf("UserText: got %q", rec.UserText)
	}
	if rec.Assistant != "The key is ABC-123-XYZ" {
		t.Errorf("Assistant: got %q", rec.Assistant)
	}
}

func TestWriteTurnFileGeneratesMessageID(t *testing.T) {
	dir := t.TempDir()

	path, err := writeTurnFile(dir, Turn{AgentID: "a", UserText: "hi", Assistant: "hello"})
	if err != nil {
		t.Fatalf("writeTurnFile failed: %v", err)
	}

	rec, err := readTurnFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if rec.MessageID == "" {
		t.Error("Missing message id should be generated")
	}
}

func TestTurnFileNameSortsByTime(t *testing.T) {
	early := turnFileName(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), "zzz")
	late := turnFileName(time.Date(2026, 1, 2, 3, 4, 6, 0, time.UTC), "aaa")

	if !(early < late) {
		t.Errorf("File names must sort lexically by time: %q vs %q", early, late)
	}
}

func TestTurnTextCapped(t *testing.T) {
	dir := t.TempDir()
	long := strings.Repeat("x", turnUserCap+500)

	path, err := writeTurnFile(dir, Turn{AgentID: "a", UserText: long, Assistant: "ok"})
	if err != nil {
		t.Fatal(err)
	}

	rec, err := readTurnFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.UserText) > turnUserCap+10 {
		t.Errorf("User text not capped: %d chars", len(rec.UserText))
	}
	if !strings.HasSuffix(rec.UserText, "...") {
		t.Error("Capped text should carry the truncation marker")
	}
}

func TestReadTurnFileMissing(t *testing.T) {
	_, err := readTurnFile(filepath.Join(t.TempDir(), "nope.md"))
	if err == nil {
		t.Error("Expected error for missing file")
	}
	if !os.IsNotExist(err) {
		t.Errorf("Expected not-exist error, got %v", err)
	}
}
