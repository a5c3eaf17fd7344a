package guardrail

import (
	"fmt"
	"strings"

	"mysteryforge/internal/types"
)

var (
	confessionLanguage = []string{
		"confess", "confession", "arrest", "taken into custody", "admitted to the murder",
	}
	roleEpithets = []string{
		"the killer", "the murderer", "the culprit", "the guilty party",
	}
)

// CheckIdentityContinuity verifies that once a chapter contains
// confession/arrest language, every later chapter refers to the culprit by
// name rather than by role-only epithets, unless the name also appears in
// that chapter. A violation is a continuity break (critical).
func CheckIdentityContinuity(p types.Prose, cm types.CaseModel) Result {
	var res Result
	culprit := strings.ToLower(cm.Culprit)
	if culprit == "" {
		return res
	}

	revealed := -1
	for i, ch := range p.Chapters {
		if containsAny(strings.ToLower(ch.Text()), confessionLanguage) {
			revealed = i
			break
		}
	}
	if revealed < 0 {
		return res
	}

	for i := revealed + 1; i < len(p.Chapters); i++ {
		text := strings.ToLower(p.Chapters[i].Text())
		if !containsAny(text, roleEpithets) {
			continue
		}
		if strings.Contains(text, culprit) {
			continue
		}
		res.critical("identity_continuity_break", fmt.Sprintf(
			"chapter %d refers to the culprit only by epithet after the reveal; name %s explicitly", i+1, cm.Culprit))
		res.Directives = append(res.Directives, fmt.Sprintf(
			"After the confession, always refer to the culprit by name (%s) instead of epithets like 'the killer'.", cm.Culprit))
	}
	return res
}
