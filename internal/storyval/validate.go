// Package storyval is the narrative-consistency checker: it verifies that
// the finished prose actually realizes the case model's solution logic, and
// repairs mechanical encoding damage. It is deterministic and lexical; it
// never calls the generation backend.
package storyval

import (
	"fmt"
	"strings"

	"mysteryforge/internal/types"
)

var (
	testLanguage        = []string{"test", "trap", "re-enactment", "reenactment", "experiment", "demonstration"}
	exclusionLanguage   = []string{"ruled out", "eliminated", "excluded", "cleared", "cannot be the culprit"}
	evidentiaryLanguage = []string{"because", "evidence", "proved", "proof"}
)

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// RecoverableErrorTypes lists the validation error types a targeted prose
// repair can fix.
var RecoverableErrorTypes = map[string]bool{
	types.ValErrMissingDiscriminatingTest:   true,
	types.ValErrTestNotRealized:             true,
	types.ValErrSuspectClosureMissing:       true,
	types.ValErrCulpritEvidenceChainMissing: true,
}

// Validate checks the story view against the case model and returns a
// report with typed errors.
func Validate(view types.StoryView, cm types.CaseModel) types.ValidationReport {
	var rep types.ValidationReport

	sceneTexts := make([]string, len(view.Scenes))
	for i, sc := range view.Scenes {
		sceneTexts[i] = strings.ToLower(sc.Title + "\n" + sc.Text)
	}

	// Discriminating test: some scene must stage it with on-page exclusion.
	testScene := -1
	for i, text := range sceneTexts {
		if containsAny(text, testLanguage) && containsAny(text, exclusionLanguage) && containsAny(text, evidentiaryLanguage) {
			testScene = i
			break
		}
	}
	if testScene < 0 {
		rep.Errors = append(rep.Errors, types.ValidationError{
			Type:    types.ValErrMissingDiscriminatingTest,
			Message: "no scene stages a discriminating test with explicit elimination reasoning",
		})
	} else if !testRealized(sceneTexts, cm.DiscriminatingTest) {
		rep.Errors = append(rep.Errors, types.ValidationError{
			Type:    types.ValErrTestNotRealized,
			Message: fmt.Sprintf("the case model's discriminating test (%s) is never realized on the page", cm.DiscriminatingTest.Method),
			Scene:   testScene + 1,
		})
	}

	// Suspect closure: every non-culprit must be excluded somewhere.
	for _, name := range cm.NonCulpritSuspects() {
		closed := false
		for _, text := range sceneTexts {
			if strings.Contains(text, strings.ToLower(name)) && containsAny(text, exclusionLanguage) {
				closed = true
				break
			}
		}
		if !closed {
			rep.Errors = append(rep.Errors, types.ValidationError{
				Type:    types.ValErrSuspectClosureMissing,
				Message: fmt.Sprintf("suspect %s is never explicitly ruled out", name),
			})
		}
	}

	// Culprit evidence chain: the culprit must be tied to evidence on page.
	if cm.Culprit != "" {
		chained := false
		for _, text := range sceneTexts {
			if strings.Contains(text, strings.ToLower(cm.Culprit)) && containsAny(text, evidentiaryLanguage) {
				chained = true
				break
			}
		}
		if !chained {
			rep.Errors = append(rep.Errors, types.ValidationError{
				Type:    types.ValErrCulpritEvidenceChainMissing,
				Message: fmt.Sprintf("no scene ties %s to the evidence chain", cm.Culprit),
			})
		}
	}

	// Encoding damage is only a warning.
	for i, sc := range view.Scenes {
		if containsAny(sc.Text, mojibakeMarkers()) {
			rep.Warnings = append(rep.Warnings, types.ValidationError{
				Type:    types.ValErrEncodingArtifacts,
				Message: "scene text contains residual encoding artifacts",
				Scene:   i + 1,
			})
		}
	}

	rep.Summary = types.ValidationSummary{Critical: len(rep.Errors), Warnings: len(rep.Warnings)}
	if len(rep.Errors) == 0 {
		rep.Status = "passed"
	} else {
		rep.Status = "failed"
	}
	return rep
}

// testRealized looks for the test's own vocabulary in a scene that also
// carries exclusion language.
func testRealized(sceneTexts []string, test types.DiscriminatingTest) bool {
	keywords := make([]string, 0, 4)
	for _, tok := range strings.Fields(strings.ToLower(test.Method)) {
		if len(tok) > 3 {
			keywords = append(keywords, tok)
		}
	}
	if len(keywords) == 0 {
		return true
	}
	for _, text := range sceneTexts {
		if containsAny(text, keywords) && containsAny(text, exclusionLanguage) {
			return true
		}
	}
	return false
}

// Improved reports whether the repaired report is strictly better than the
// original: fewer criticals, fewer errors, or an outright pass.
func Improved(repaired, original types.ValidationReport) bool {
	return repaired.Summary.Critical < original.Summary.Critical ||
		len(repaired.Errors) < len(original.Errors) ||
		repaired.Status == "passed"
}

// RepairDirectives translates recoverable validation errors into explicit
// prose-repair guardrails.
func RepairDirectives(rep types.ValidationReport) []string {
	var out []string
	if rep.HasErrorType(types.ValErrMissingDiscriminatingTest) || rep.HasErrorType(types.ValErrTestNotRealized) {
		out = append(out,
			"Include a clear discriminating test scene where multiple plausible suspects are explicitly evaluated and at least one suspect is ruled out using on-page evidence.",
			"Use explicit elimination language such as 'ruled out', 'cannot be the culprit', or 'excluded by the timeline/evidence'.")
	}
	if rep.HasErrorType(types.ValErrSuspectClosureMissing) || rep.HasErrorType(types.ValErrCulpritEvidenceChainMissing) {
		out = append(out,
			"In the solution sequence, close every major suspect thread with explicit reasoning and evidence-backed elimination.",
			"Provide a complete culprit evidence chain from clue discovery to final proof without relying on off-page information.")
	}
	return out
}

// HasRecoverableGaps reports whether any error belongs to the recoverable
// subset that a targeted prose repair can address.
func HasRecoverableGaps(rep types.ValidationReport) bool {
	for _, e := range rep.Errors {
		if RecoverableErrorTypes[e.Type] {
			return true
		}
	}
	return false
}
