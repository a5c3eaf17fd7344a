package guardrail

import (
	"fmt"
	"strings"

	"mysteryforge/internal/types"
)

// Coverage issue codes emitted by CheckOutlineCoverage.
const (
	CodeMissingDiscriminatingTestScene = "missing_discriminating_test_scene"
	CodeMissingSuspectClosureScene     = "missing_suspect_closure_scene"
)

var (
	testLanguage = []string{
		"test", "trap", "re-enactment", "reenactment", "experiment", "demonstration",
	}
	exclusionLanguage = []string{
		"ruled out", "eliminated", "excluded", "cleared", "cannot be the culprit",
	}
	evidentiaryLanguage = []string{
		"because", "evidence", "proved", "proof",
	}
)

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// CheckOutlineCoverage scans every scene's title/purpose/summary/revelation
// for two structural beats the outline must plan:
//
//   - a discriminating-test scene: test/trap/re-enactment language
//     co-occurring with exclusion and evidentiary language;
//   - a suspect-closure scene: exclusion language for every non-culprit
//     suspect.
//
// Every issue on this gate requires repair, so both are emitted as critical
// together with a natural-language repair directive referencing the case
// model's discriminating test and culprit list.
func CheckOutlineCoverage(outline types.NarrativeOutline, cm types.CaseModel) Result {
	var res Result

	hasTestScene := false
	for _, sc := range outline.Scenes {
		text := strings.ToLower(sc.Text())
		if containsAny(text, testLanguage) &&
			containsAny(text, exclusionLanguage) &&
			containsAny(text, evidentiaryLanguage) {
			hasTestScene = true
			break
		}
	}
	if !hasTestScene {
		res.critical(CodeMissingDiscriminatingTestScene,
			"no scene stages the discriminating test with on-page exclusion reasoning")
		res.Directives = append(res.Directives, fmt.Sprintf(
			"Add a scene that stages the discriminating test (%s) in which suspects are explicitly evaluated and at least one is ruled out using on-page evidence.",
			cm.DiscriminatingTest.Method))
	}

	unclosed := make([]string, 0)
	for _, name := range cm.NonCulpritSuspects() {
		closed := false
		for _, sc := range outline.Scenes {
			text := strings.ToLower(sc.Text())
			if strings.Contains(text, strings.ToLower(name)) && containsAny(text, exclusionLanguage) {
				closed = true
				break
			}
		}
		if !closed {
			unclosed = append(unclosed, name)
		}
	}
	if len(unclosed) > 0 {
		res.critical(CodeMissingSuspectClosureScene,
			fmt.Sprintf("no scene closes the threads of: %s", strings.Join(unclosed, ", ")))
		res.Directives = append(res.Directives, fmt.Sprintf(
			"Add a closure scene that explicitly rules out every non-culprit suspect (%s) before naming %s as the culprit.",
			strings.Join(cm.NonCulpritSuspects(), ", "), cm.Culprit))
	}

	return res
}
