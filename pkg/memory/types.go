// Package memory retrieves relevant excerpts from prior conversation
// turns through an external search backend and persists new turns so
// future requests can find them. Retrieval is best-effort: every failure
// collapses to "no memory available" and the original message passes
// through unmodified.
package memory

import "time"

// Hit is one parsed search result from the backend, before ranking.
type Hit struct {
	// Score is the backend relevance score, adjusted in place by ranking.
	Score float64 `json:"score"`
	// Snippet is the matched text, possibly replaced after hydration.
	Snippet string `json:"snippet"`
	// Source is a path-like locator of the originating turn record.
	Source string `json:"source,omitempty"`
}

// Turn describes one completed exchange to persist.
type Turn struct {
	AgentID   string
	AgentName string
	Channel   string
	Sender    string
	MessageID string
	UserText  string
	Assistant string
	Timestamp time.Time
}

// TurnRecord is a turn read back from durable storage during hydration.
type TurnRecord struct {
	AgentID   string
	AgentName string
	Channel   string
	Sender    string
	MessageID string
	Timestamp string
	UserText  string
	Assistant string
}
