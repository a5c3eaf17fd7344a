package storyval

import (
	"testing"

	"mysteryforge/internal/tester"
	"mysteryforge/internal/types"
)

func caseModel() types.CaseModel {
	return types.CaseModel{
		Crime: types.Crime{Victim: "the squire", Method: "poison", Location: "study"},
		Suspects: []types.Suspect{
			{Name: "Alice Grey"},
			{Name: "Brian Holt"},
			{Name: "Clara Voss"},
		},
		Culprit:            "Clara Voss",
		DiscriminatingTest: types.DiscriminatingTest{Method: "tasting re-enactment", Description: "only the poisoner avoids the glass"},
		Solution:           "Clara Voss swapped the glasses",
	}
}

func view(texts ...string) types.StoryView {
	v := types.StoryView{ID: "run-1", ProjectID: "run-1"}
	for i, text := range texts {
		v.Scenes = append(v.Scenes, types.StoryScene{Number: i + 1, Title: "Scene", Text: text})
	}
	return v
}

func completeStory() types.StoryView {
	return view(
		"The squire was found dead in the study.",
		"The inspector staged a tasting re-enactment; Alice Grey was ruled out because the evidence of the servants cleared her.",
		"Brian Holt was eliminated when his alibi proved sound, and the evidence of the swapped glasses pointed to Clara Voss.",
	)
}

func TestValidatePassesCompleteStory(t *testing.T) {
	rep := Validate(completeStory(), caseModel())
	tester.Eq(t, rep.Status, "passed")
	tester.Eq(t, rep.Summary.Critical, 0)
}

func TestValidateDetectsMissingTest(t *testing.T) {
	rep := Validate(view(
		"The squire was found dead.",
		"Alice Grey was ruled out because of the evidence; Brian Holt was eliminated because of the proof; the evidence pointed to Clara Voss.",
	), caseModel())
	tester.Eq(t, rep.Status, "failed")
	tester.True(t, rep.HasErrorType(types.ValErrMissingDiscriminatingTest))
}

func TestValidateDetectsUnrealizedTest(t *testing.T) {
	// A generic trap scene exists, but the case model's own test vocabulary
	// ("tasting") never appears.
	rep := Validate(view(
		"The inspector set a trap; Alice Grey was ruled out because the evidence cleared her.",
		"Brian Holt was eliminated; the evidence pointed to Clara Voss.",
	), caseModel())
	tester.True(t, rep.HasErrorType(types.ValErrTestNotRealized))
}

func TestValidateDetectsMissingSuspectClosure(t *testing.T) {
	rep := Validate(view(
		"The inspector staged a tasting re-enactment; Alice Grey was ruled out because the evidence cleared her.",
		"The evidence pointed to Clara Voss.",
	), caseModel())
	tester.True(t, rep.HasErrorType(types.ValErrSuspectClosureMissing))
	tester.False(t, rep.HasErrorType(types.ValErrCulpritEvidenceChainMissing))
}

func TestValidateDetectsMissingEvidenceChain(t *testing.T) {
	rep := Validate(view(
		"The inspector staged a tasting re-enactment; Alice Grey was ruled out because the evidence cleared her, and Brian Holt was eliminated because the proof held.",
		"Clara Voss wept quietly in the corner.",
	), caseModel())
	tester.True(t, rep.HasErrorType(types.ValErrCulpritEvidenceChainMissing))
}

func TestValidateEncodingDamageIsWarningOnly(t *testing.T) {
	v := completeStory()
	v.Scenes[0].Text += " She said â€œneverâ€."
	rep := Validate(v, caseModel())
	tester.Eq(t, rep.Status, "passed")
	tester.Eq(t, rep.Summary.Warnings, 1)
}

func TestRepairDirectivesCoverRecoverableTypes(t *testing.T) {
	rep := types.ValidationReport{Errors: []types.ValidationError{
		{Type: types.ValErrTestNotRealized},
		{Type: types.ValErrSuspectClosureMissing},
	}}
	dirs := RepairDirectives(rep)
	tester.Eq(t, len(dirs), 4)
	tester.Contains(t, dirs[0], "discriminating test scene")
	tester.Contains(t, dirs[2], "suspect thread")

	tester.True(t, HasRecoverableGaps(rep))
	tester.False(t, HasRecoverableGaps(types.ValidationReport{Errors: []types.ValidationError{
		{Type: types.ValErrEncodingArtifacts},
	}}))
}

func TestImproved(t *testing.T) {
	failed2 := types.ValidationReport{Status: "failed", Summary: types.ValidationSummary{Critical: 2},
		Errors: []types.ValidationError{{Type: "a"}, {Type: "b"}}}
	failed1 := types.ValidationReport{Status: "failed", Summary: types.ValidationSummary{Critical: 1},
		Errors: []types.ValidationError{{Type: "a"}}}
	passed := types.ValidationReport{Status: "passed"}

	tester.True(t, Improved(failed1, failed2))
	tester.True(t, Improved(passed, failed1))
	tester.False(t, Improved(failed2, failed1))
	tester.False(t, Improved(failed1, failed1))
}

func TestFixTextRepairsMojibake(t *testing.T) {
	got := FixText("Itâ€™s cold â€” said AndrÃ©")
	tester.Eq(t, got, "It's cold — said André")
}

func TestSanitizeProse(t *testing.T) {
	p := SanitizeProse(types.Prose{Chapters: []types.Chapter{
		{Title: "CafÃ©", Paragraphs: []string{"A broken � rune."}},
	}})
	tester.Eq(t, p.Chapters[0].Title, "Café")
	tester.Eq(t, p.Chapters[0].Paragraphs[0], "A broken  rune.")
}
