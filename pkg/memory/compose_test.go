package memory

import (
	"strings"
	"testing"
)

func TestComposePromptEmpty(t *testing.T) {
	if got := composePrompt(nil, 2000); got != "" {
		t.Errorf("No snippets should compose to empty string, got %q", got)
	}
}

func TestComposePromptWithinBudget(t *testing.T) {
	hits := []Hit{
		{Score: 0.9, Snippet: "first snippet", Source: "a.md"},
		{Score: 0.5, Snippet: "second snippet", Source: "b.md"},
	}

	got := composePrompt(hits, 2000)
	if got == "" {
		t.Fatal("Expected non-empty prompt")
	}
	if len(got) > 2000 {
		t.Errorf("Prompt exceeds budget: %d chars", len(got))
	}
	if !strings.HasPrefix(got, promptPreamble) {
		t.Error("Prompt should start with the preamble")
	}
	if !strings.Contains(got, "first snippet") || !strings.Contains(got, "second snippet") {
		t.Errorf("Prompt should contain both snippets: %q", got)
	}
	if !strings.Contains(got, "source=a.md") {
		t.Errorf("Prompt should label the source: %q", got)
	}
}

func TestComposePromptBudgetDropsTail(t *testing.T) {
	long := strings.Repeat("x", 400)
	hits := []Hit{
		{Score: 0.9, Snippet: long, Source: "a.md"},
		{Score: 0.5, Snippet: long, Source: "b.md"},
		{Score: 0.4, Snippet: long, Source: "c.md"},
	}

	got := composePrompt(hits, 600)
	if got == "" {
		t.Fatal("Top-ranked snippet fits and must be included")
	}
	if len(got) > 600 {
		t.Errorf("Prompt exceeds budget: %d chars", len(got))
	}
	if !strings.Contains(got, "source=a.md") {
		t.Error("Top-ranked snippet must be present")
	}
	if strings.Contains(got, "source=b.md") || strings.Contains(got, "source=c.md") {
		t.Error("Snippets beyond the budget must be dropped")
	}
}

func TestComposePromptFirstBlockTooLarge(t *testing.T) {
	hits := []Hit{{Score: 0.9, Snippet: strings.Repeat("x", 5000), Source: "a.md"}}

	if got := composePrompt(hits, 500); got != "" {
		t.Errorf("When even the first block exceeds the budget the result is empty, got %d chars", len(got))
	}
}

func TestComposePromptUnknownSource(t *testing.T) {
	got := composePrompt([]Hit{{Score: 0.3, Snippet: "s"}}, 2000)
	if !strings.Contains(got, "source=unknown") {
		t.Errorf("Missing source should render as unknown: %q", got)
	}
}
