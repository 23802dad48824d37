package memory

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

const snippetDisplayLen = 200

var (
	// Structured code-like token: three hyphen-delimited segments of
	// uppercase letters/digits, e.g. ABC-123-XYZ.
	codeTokenPattern = regexp.MustCompile(`\b[A-Z0-9]{3,}(?:-[A-Z0-9]{3,}){2,}\b`)

	// Identity / preference cues, multilingual.
	identityCuePattern = regexp.MustCompile(`(?i)(my name is|i am |i'm |i like|i prefer|call me)|我是|我叫|我喜欢|我的名字|偏好`)

	// Low-confidence / don't-know phrases, multilingual.
	lowConfidencePattern = regexp.MustCompile(`(?i)(i don't know|i do not know|not sure|no idea|can't recall|cannot recall)|我不知道|不知道|不确定|不清楚|不记得`)

	// Query terms: Latin/digit words or short ideographic runs.
	queryTermPattern = regexp.MustCompile(`[A-Za-z0-9]+|\p{Han}{1,2}`)
)

// Ranking weights. Linear-additive over pattern matches on the hydrated
// turn's assistant text.
const (
	codeTokenBoost     = 0.5
	identityCueBoost   = 0.2
	lowConfidencePen   = 0.5
	termOverlapPerHit  = 0.04
)

// rankHits hydrates hits that reference on-disk turn records, adjusts
// their scores with content heuristics, and re-orders by adjusted score.
// Hydration attempts are capped at maxHydrate; hits without a readable
// source pass through unchanged. The sort is stable so equal scores keep
// backend order.
func rankHits(hits []Hit, query, turnsDir string, maxHydrate int) []Hit {
	terms := queryTerms(query)

	hydrated := 0
	for i := range hits {
		if hydrated >= maxHydrate || hits[i].Source == "" {
			continue
		}
		rec, ok := hydrateSource(turnsDir, hits[i].Source)
		if !ok {
			continue
		}
		hydrated++
		adjustHit(&hits[i], rec, terms)
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	return hits
}

// hydrateSource resolves a hit's source locator against the agent's turn
// directory and reads the record back. A missing or unparsable file
// skips hydration; it is not an error.
func hydrateSource(turnsDir, source string) (*TurnRecord, bool) {
	path := source
	if !filepath.IsAbs(path) {
		path = filepath.Join(turnsDir, path)
	}
	rec, err := readTurnFile(path)
	if err != nil {
		return nil, false
	}
	return rec, true
}

func adjustHit(h *Hit, rec *TurnRecord, terms []string) {
	assistant := strings.TrimSpace(rec.Assistant)
	if assistant != "" {
		h.Snippet = "User: " + truncateText(strings.TrimSpace(rec.UserText), snippetDisplayLen) +
			"\nAssistant: " + truncateText(assistant, snippetDisplayLen)
	}

	if codeTokenPattern.MatchString(assistant) {
		h.Score += codeTokenBoost
	}
	if identityCuePattern.MatchString(assistant) {
		h.Score += identityCueBoost
	}
	if lowConfidencePattern.MatchString(assistant) {
		h.Score -= lowConfidencePen
	}

	full := strings.ToLower(rec.UserText + "\n" + assistant)
	for _, term := range terms {
		if strings.Contains(full, term) {
			h.Score += termOverlapPerHit
		}
	}
}

// queryTerms tokenizes the query into distinct lowercase terms.
func queryTerms(query string) []string {
	raw := queryTermPattern.FindAllString(strings.ToLower(query), -1)
	seen := make(map[string]bool, len(raw))
	terms := make([]string, 0, len(raw))
	for _, t := range raw {
		if seen[t] {
			continue
		}
		seen[t] = true
		terms = append(terms, t)
	}
	return terms
}
