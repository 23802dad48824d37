package memory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// agentState tracks per-agent collection state. Its mutex is held across
// the backend calls so concurrent enrichment calls for the same agent
// serialize: registration happens at most once, refresh at most once per
// interval.
type agentState struct {
	mu          sync.Mutex
	registered  bool
	lastRefresh time.Time
}

// sanitizeAgentID maps an agent identifier to a backend-safe slug:
// lowercased, runs of non-alphanumerics collapsed to a single dash.
func sanitizeAgentID(agentID string) string {
	lower := strings.ToLower(strings.TrimSpace(agentID))
	var b strings.Builder
	lastDash := true
	for _, r := range lower {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		slug = "agent"
	}
	return slug
}

// collectionName derives the backend collection name for an agent.
func collectionName(agentID string) string {
	return "tinyclaw-" + sanitizeAgentID(agentID)
}

// turnsDir returns the durable turn-history directory for an agent.
func (e *Engine) turnsDir(agentID string) string {
	return filepath.Join(e.dataDir, sanitizeAgentID(agentID), "turns")
}

func (e *Engine) agentState(agentID string) *agentState {
	key := sanitizeAgentID(agentID)
	e.mu.Lock()
	defer e.mu.Unlock()
	st, ok := e.agents[key]
	if !ok {
		st = &agentState{}
		e.agents[key] = st
	}
	return st
}

// ensureCollection makes sure the agent's turn directory exists and its
// backend collection is registered. Registration happens once per agent
// per process lifetime; a backend "already exists" complaint counts as
// success so re-registration stays idempotent.
func (e *Engine) ensureCollection(ctx context.Context, bin, agentID string, timeout time.Duration) (string, error) {
	st := e.agentState(agentID)
	st.mu.Lock()
	defer st.mu.Unlock()

	name := collectionName(agentID)
	dir := e.turnsDir(agentID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create turns directory: %w", err)
	}

	if st.registered {
		return name, nil
	}

	args := []string{"collection", "add", dir, "--name", name, "--mask", "*.md"}
	if _, err := e.run(ctx, bin, args, nil, timeout); err != nil {
		if !strings.Contains(err.Error(), "already exists") {
			return "", fmt.Errorf("register collection %s: %w", name, err)
		}
	}
	st.registered = true
	return name, nil
}

// maybeRefresh asks the backend to update the collection index, at most
// once per interval. The refresh timestamp only advances on success, so
// a failed refresh is retried on the next eligible call.
func (e *Engine) maybeRefresh(ctx context.Context, bin, agentID, collection string, interval, timeout time.Duration) error {
	st := e.agentState(agentID)
	st.mu.Lock()
	defer st.mu.Unlock()

	if !st.lastRefresh.IsZero() && e.now().Sub(st.lastRefresh) < interval {
		return nil
	}

	if _, err := e.run(ctx, bin, []string{"update", "--collections", collection}, nil, timeout); err != nil {
		return fmt.Errorf("refresh collection %s: %w", collection, err)
	}
	st.lastRefresh = e.now()
	return nil
}
