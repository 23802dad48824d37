package memory

import (
	"strings"

	"github.com/tidwall/gjson"
)

// snippetFields and sourceFields are the accepted aliases in backend
// output, tried in order.
var (
	snippetFields = []string{"snippet", "context", "text", "content"}
	sourceFields  = []string{"path", "file", "source", "title"}
)

// parseHits normalizes raw backend output into typed hits. The backend
// emits either a bare JSON array or an object with a "results" field.
// Rows lacking any snippet text are dropped; a missing score defaults to
// zero. Malformed output parses to an empty slice, never an error.
func parseHits(raw []byte) []Hit {
	data := strings.TrimSpace(string(raw))
	if data == "" || !gjson.Valid(data) {
		return nil
	}

	parsed := gjson.Parse(data)
	rows := parsed
	if parsed.IsObject() {
		rows = parsed.Get("results")
	}
	if !rows.IsArray() {
		return nil
	}

	var hits []Hit
	rows.ForEach(func(_, row gjson.Result) bool {
		if !row.IsObject() {
			return true
		}
		snippet := firstString(row, snippetFields)
		if snippet == "" {
			return true
		}
		hits = append(hits, Hit{
			Score:   row.Get("score").Float(),
			Snippet: snippet,
			Source:  firstString(row, sourceFields),
		})
		return true
	})
	return hits
}

func firstString(row gjson.Result, fields []string) string {
	for _, f := range fields {
		if v := row.Get(f); v.Type == gjson.String && v.String() != "" {
			return v.String()
		}
	}
	return ""
}
