package memory

import (
	"math"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// writeTestTurn writes a turn record and returns its file name relative
// to dir, the way backend hits reference it.
func writeTestTurn(t *testing.T, dir, user, assistant string) string {
	t.Helper()
	path, err := writeTurnFile(dir, Turn{
		AgentID:   "test",
		Channel:   "general",
		Sender:    "alice",
		UserText:  user,
		Assistant: assistant,
		Timestamp: time.Now(),
	})
	if err != nil {
		t.Fatalf("writeTurnFile failed: %v", err)
	}
	return filepath.Base(path)
}

func TestRankHitsCodeTokenBoost(t *testing.T) {
	dir := t.TempDir()
	source := writeTestTurn(t, dir, "what is the api key?", "The key is ABC-123-XYZ")

	baseline := []Hit{{Score: 0.5, Snippet: "raw", Source: ""}}
	hydratedIn := []Hit{{Score: 0.5, Snippet: "raw", Source: source}}

	plain := rankHits(baseline, "what is the api key?", dir, 5)
	boosted := rankHits(hydratedIn, "what is the api key?", dir, 5)

	delta := boosted[0].Score - plain[0].Score
	if delta < codeTokenBoost {
		t.Errorf("Hydrated hit with a code token should gain at least %.2f, gained %.2f", codeTokenBoost, delta)
	}
}

func TestRankHitsLowConfidenceNeverOutranks(t *testing.T) {
	dir := t.TempDir()
	confident := writeTestTurn(t, dir, "favorite color", "Your favorite color is blue")
	hedged := writeTestTurn(t, dir, "favorite color", "Your favorite color is blue but I'm not sure")

	hits := rankHits([]Hit{
		{Score: 0.7, Snippet: "a", Source: hedged},
		{Score: 0.7, Snippet: "b", Source: confident},
	}, "favorite color", dir, 5)

	if hits[0].Source != confident {
		t.Errorf("Low-confidence hit must not outrank the otherwise-identical confident one")
	}
}

func TestRankHitsSnippetHydration(t *testing.T) {
	dir := t.TempDir()
	source := writeTestTurn(t, dir, "where do I deploy?", "Deploy to the staging cluster first")

	hits := rankHits([]Hit{{Score: 0.4, Snippet: "raw backend snippet", Source: source}}, "deploy", dir, 5)

	if !strings.Contains(hits[0].Snippet, "User: where do I deploy?") {
		t.Errorf("Hydrated snippet should carry the user line, got %q", hits[0].Snippet)
	}
	if !strings.Contains(hits[0].Snippet, "Assistant: Deploy to the staging cluster first") {
		t.Errorf("Hydrated snippet should carry the assistant line, got %q", hits[0].Snippet)
	}
}

func TestRankHitsUnhydratablePassThrough(t *testing.T) {
	dir := t.TempDir()

	hits := rankHits([]Hit{{Score: 0.9, Snippet: "keep me", Source: "does-not-exist.md"}}, "query", dir, 5)

	if hits[0].Score != 0.9 || hits[0].Snippet != "keep me" {
		t.Errorf("Hit without a readable source must pass through unchanged: %+v", hits[0])
	}
}

func TestRankHitsTermOverlap(t *testing.T) {
	dir := t.TempDir()
	source := writeTestTurn(t, dir, "the deploy target", "use the staging cluster")

	// Terms: "staging" and "cluster" both appear; "zebra" does not.
	hits := rankHits([]Hit{{Score: 0.0, Snippet: "s", Source: source}}, "staging cluster zebra", dir, 5)

	want := 2 * termOverlapPerHit
	if math.Abs(hits[0].Score-want) > 1e-9 {
		t.Errorf("Expected score %.2f from two overlapping terms, got %.2f", want, hits[0].Score)
	}
}

func TestRankHitsHydrationCap(t *testing.T) {
	dir := t.TempDir()
	source := writeTestTurn(t, dir, "q", "The code is ABC-123-XYZ")

	hits := rankHits([]Hit{
		{Score: 1.0, Snippet: "first", Source: source},
		{Score: 0.9, Snippet: "second", Source: source},
	}, "q", dir, 1)

	// Only the first hit is hydrated; the second keeps its raw snippet.
	if hits[len(hits)-1].Snippet != "second" {
		t.Errorf("Hydration must stop after the cap, got %+v", hits)
	}
}

func TestRankHitsStableSort(t *testing.T) {
	hits := rankHits([]Hit{
		{Score: 0.5, Snippet: "a"},
		{Score: 0.5, Snippet: "b"},
		{Score: 0.8, Snippet: "c"},
	}, "query", t.TempDir(), 5)

	if hits[0].Snippet != "c" || hits[1].Snippet != "a" || hits[2].Snippet != "b" {
		t.Errorf("Sort must be descending and stable, got %+v", hits)
	}
}
