package memory

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Per-field caps for persisted turn text.
const (
	turnUserCap      = 4000
	turnAssistantCap = 8000
)

const (
	turnUserHeader      = "## User"
	turnAssistantHeader = "## Assistant"
)

// turnFileName derives a filesystem-safe name that sorts lexically by
// time and stays unique through the message id.
func turnFileName(ts time.Time, messageID string) string {
	stamp := ts.UTC().Format("20060102T150405") + fmt.Sprintf(".%09d", ts.Nanosecond())
	return stamp + "-" + sanitizeAgentID(messageID) + ".md"
}

// writeTurnFile persists one exchange under dir. A missing message id is
// replaced with a fresh uuid so file names stay unique.
func writeTurnFile(dir string, t Turn) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create turns directory: %w", err)
	}

	if t.MessageID == "" {
		t.MessageID = uuid.NewString()
	}
	if t.Timestamp.IsZero() {
		t.Timestamp = time.Now()
	}

	var b strings.Builder
	b.WriteString("# tinyclaw turn\n\n")
	b.WriteString("- Agent: " + t.AgentID + "\n")
	b.WriteString("- Name: " + t.AgentName + "\n")
	b.WriteString("- Time: " + t.Timestamp.UTC().Format(time.RFC3339) + "\n")
	b.WriteString("- Channel: " + t.Channel + "\n")
	b.WriteString("- Sender: " + t.Sender + "\n")
	b.WriteString("- Message-ID: " + t.MessageID + "\n\n")
	b.WriteString(turnUserHeader + "\n")
	b.WriteString(truncateText(strings.TrimSpace(t.UserText), turnUserCap) + "\n\n")
	b.WriteString(turnAssistantHeader + "\n")
	b.WriteString(truncateText(strings.TrimSpace(t.Assistant), turnAssistantCap) + "\n")

	path := filepath.Join(dir, turnFileName(t.Timestamp, t.MessageID))
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return "", fmt.Errorf("failed to write turn file: %w", err)
	}
	return path, nil
}

// readTurnFile parses a turn record back from disk.
func readTurnFile(path string) (*TurnRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	rec := &TurnRecord{}
	lines := strings.Split(string(data), "\n")

	section := ""
	var user, assistant []string
	for _, line := range lines {
		switch {
		case line == turnUserHeader:
			section = "user"
			continue
		case line == turnAssistantHeader:
			section = "assistant"
			continue
		}

		switch section {
		case "user":
			user = append(user, line)
		case "assistant":
			assistant = append(assistant, line)
		default:
			key, value, found := strings.Cut(strings.TrimPrefix(line, "- "), ": ")
			if !found {
				continue
			}
			switch key {
			case "Agent":
				rec.AgentID = value
			case "Name":
				rec.AgentName = value
			case "Time":
				rec.Timestamp = value
			case "Channel":
				rec.Channel = value
			case "Sender":
				rec.Sender = value
			case "Message-ID":
				rec.MessageID = value
			}
		}
	}

	rec.UserText = strings.TrimSpace(strings.Join(user, "\n"))
	rec.Assistant = strings.TrimSpace(strings.Join(assistant, "\n"))
	return rec, nil
}

// truncateText caps s at max runes, appending a marker when cut.
func truncateText(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
