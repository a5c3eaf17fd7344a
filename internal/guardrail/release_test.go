package guardrail

import (
	"strings"
	"testing"

	"mysteryforge/internal/tester"
	"mysteryforge/internal/types"
)

func TestReleaseCheckCleanBundle(t *testing.T) {
	cm := testCaseModel()
	arts := &types.Artifacts{
		CaseModel:        &cm,
		FairPlayAudit:    &types.FairPlayAudit{Status: "pass"},
		ValidationReport: &types.ValidationReport{Status: "passed"},
	}
	tester.Eq(t, len(ReleaseCheck(arts)), 0)
}

func TestReleaseCheckCountsValidationErrorsByType(t *testing.T) {
	arts := &types.Artifacts{
		ValidationReport: &types.ValidationReport{
			Status: "failed",
			Errors: []types.ValidationError{
				{Type: types.ValErrSuspectClosureMissing, Message: "a"},
				{Type: types.ValErrSuspectClosureMissing, Message: "b"},
				{Type: types.ValErrMissingDiscriminatingTest, Message: "c"},
			},
		},
	}
	warnings := ReleaseCheck(arts)
	tester.Eq(t, len(warnings), 2)
	// Sorted by error type for stable output.
	tester.Contains(t, warnings[0], "1 missing_discriminating_test")
	tester.Contains(t, warnings[1], "2 suspect_closure_missing")
}

func TestReleaseCheckFlagsEncodingDamage(t *testing.T) {
	arts := &types.Artifacts{
		Prose: &types.Prose{Chapters: []types.Chapter{
			{Title: "One", Paragraphs: []string{"She said â€œneverâ€ and left."}},
			{Title: "Two", Paragraphs: []string{"Clean text."}},
		}},
	}
	warnings := ReleaseCheck(arts)
	found := false
	for _, w := range warnings {
		if strings.Contains(w, "encoding artifacts") {
			found = true
			tester.Contains(t, w, "1 chapter(s)")
		}
	}
	tester.True(t, found, "expected encoding warning")
}

func TestReleaseCheckFlagsFailedFairPlay(t *testing.T) {
	arts := &types.Artifacts{FairPlayAudit: &types.FairPlayAudit{Status: "fail"}}
	warnings := ReleaseCheck(arts)
	tester.Eq(t, len(warnings), 1)
	tester.Contains(t, warnings[0], "fair-play audit did not pass")
}
