package novelty

import (
	"fmt"
	"strings"

	"mysteryforge/internal/types"
)

// Audit scores the case model against every seed and returns a verdict.
// Similarity is the Jaccard index over the solution-logic token sets; a
// score at or above threshold fails the audit and yields avoidance
// patterns derived from the nearest seed.
func Audit(cm types.CaseModel, seeds []SeedCase, threshold float64) types.NoveltyAudit {
	audit := types.NoveltyAudit{Verdict: "pass"}
	target := features(cm)
	for _, seed := range seeds {
		sim := jaccard(target, features(seed.CaseModel))
		if sim > audit.MaxSimilarity {
			audit.MaxSimilarity = sim
			audit.NearestLabel = seed.Label
		}
	}
	if len(seeds) > 0 && audit.MaxSimilarity >= threshold {
		audit.Verdict = "fail"
		audit.AvoidancePatterns = avoidancePatterns(cm, audit.NearestLabel)
	}
	return audit
}

// features tokenizes the fields that define the solution logic, not the
// dressing: method, motive, discriminating test and solution.
func features(cm types.CaseModel) map[string]bool {
	text := strings.ToLower(strings.Join([]string{
		cm.Crime.Method,
		cm.Crime.Motive,
		cm.DiscriminatingTest.Method,
		cm.DiscriminatingTest.Description,
		cm.Solution,
	}, " "))
	set := make(map[string]bool)
	for _, tok := range strings.FieldsFunc(text, func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	}) {
		if len(tok) > 3 { // skip stopword-sized tokens
			set[tok] = true
		}
	}
	return set
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for t := range a {
		if b[t] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func avoidancePatterns(cm types.CaseModel, nearest string) []string {
	return []string{
		fmt.Sprintf("Avoid reproducing the plot of %q.", nearest),
		fmt.Sprintf("Do not reuse the murder method %q; choose a structurally different method.", cm.Crime.Method),
		fmt.Sprintf("Do not reuse the discriminating test %q; design a different test mechanism.", cm.DiscriminatingTest.Method),
	}
}
