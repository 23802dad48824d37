package memory

import (
	"regexp"
	"strings"
)

var (
	punctPattern = regexp.MustCompile(`[!-/:-@\[-` + "`" + `{-~。，！？；：、「」『』（）【】…]+`)
	// Leading Latin question words; stripping one generalizes
	// "what is the api key" to "is the api key".
	questionWordPattern = regexp.MustCompile(`(?i)^(what|who|whom|whose|where|when|why|how|which)\s+`)
)

// cjkParticleReplacer drops ideographic question particles and markers.
var cjkParticleReplacer = strings.NewReplacer(
	"什么", "",
	"什麼", "",
	"吗", "",
	"嗎", "",
	"呢", "",
	"么", "",
	"麼", "",
	"吧", "",
	"？", "",
)

// queryVariants derives alternate lexical phrasings of message to improve
// recall against a keyword index. The raw trimmed message always comes
// first; more general forms follow so fallback search tries the most
// specific candidate first. Empty candidates and duplicates are dropped.
func queryVariants(message string) []string {
	base := strings.TrimSpace(message)
	if base == "" {
		return nil
	}

	noPunct := strings.TrimSpace(punctPattern.ReplaceAllString(base, " "))
	noPunct = collapseSpaces(noPunct)
	noParticles := strings.TrimSpace(cjkParticleReplacer.Replace(noPunct))
	noQuestion := strings.TrimSpace(questionWordPattern.ReplaceAllString(noParticles, ""))
	hyphens := collapseSpaces(strings.TrimSpace(strings.ReplaceAll(base, "-", " ")))

	candidates := []string{base, noPunct, noParticles, noQuestion, hyphens}

	seen := make(map[string]bool, len(candidates))
	variants := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		variants = append(variants, c)
	}
	return variants
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
