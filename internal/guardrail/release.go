package guardrail

import (
	"fmt"
	"sort"
	"strings"

	"mysteryforge/internal/types"
)

// Residual mojibake and replacement characters that sometimes survive
// generation. Their presence is a release warning, never a blocker.
var encodingArtifacts = []string{
	"�", "â€™", "â€œ", "â€", "â€“", "â€”", "â€¦", "Ã©", "Ã¨", "Ã¼",
}

// ContainsEncodingArtifacts reports whether text carries residual encoding
// damage.
func ContainsEncodingArtifacts(text string) bool {
	return containsAny(text, encodingArtifacts)
}

// ReleaseCheck aggregates residual quality signals from the finished bundle
// into human-readable release warnings. It never blocks completion.
func ReleaseCheck(arts *types.Artifacts) []string {
	var warnings []string
	if arts == nil {
		return warnings
	}

	if rep := arts.ValidationReport; rep != nil {
		counts := make(map[string]int)
		for _, e := range rep.Errors {
			counts[e.Type]++
		}
		kinds := make([]string, 0, len(counts))
		for k := range counts {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)
		for _, k := range kinds {
			warnings = append(warnings, fmt.Sprintf("release: validation reported %d %s error(s)", counts[k], k))
		}
	}

	if p := arts.Prose; p != nil {
		damaged := 0
		for _, ch := range p.Chapters {
			if ContainsEncodingArtifacts(ch.Text()) {
				damaged++
			}
		}
		if damaged > 0 {
			warnings = append(warnings, fmt.Sprintf("release: %d chapter(s) contain residual encoding artifacts", damaged))
		}
	}

	if arts.NarrativeOutline != nil && arts.CaseModel != nil {
		cov := CheckOutlineCoverage(*arts.NarrativeOutline, *arts.CaseModel)
		for _, iss := range cov.Issues {
			warnings = append(warnings, "release: outline coverage: "+iss.Message)
		}
	}

	if a := arts.FairPlayAudit; a != nil && !strings.EqualFold(a.Status, "pass") {
		warnings = append(warnings, "release: fair-play audit did not pass")
	}

	return warnings
}
