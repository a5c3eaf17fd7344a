package guardrail

import (
	"testing"

	"mysteryforge/internal/tester"
	"mysteryforge/internal/types"
)

func clue(id string, placement string, essential bool) types.Clue {
	return types.Clue{ID: id, Description: "the " + id + " was found in the hall", Placement: placement, Essential: essential}
}

func TestCheckCluesAcceptsWellFormedDistribution(t *testing.T) {
	dist := types.ClueDistribution{Clues: []types.Clue{
		clue("c1", types.PlacementEarly, true),
		clue("c2", types.PlacementMid, true),
		clue("c3", types.PlacementMid, true),
		clue("c4", types.PlacementLate, false),
	}}
	out, res := CheckClues(dist, 3)
	tester.False(t, res.HasCritical(), "expected no critical issues")
	tester.Eq(t, len(res.Fixes), 0)
	tester.Eq(t, len(out.Clues), 4)
}

func TestCheckCluesMovesLateEssentialsForward(t *testing.T) {
	dist := types.ClueDistribution{Clues: []types.Clue{
		clue("c1", types.PlacementLate, true),
		clue("c2", types.PlacementLate, true),
		clue("c3", types.PlacementLate, true),
		clue("c4", types.PlacementLate, false),
	}}
	out, res := CheckClues(dist, 3)

	// Round-robin: early, mid, early.
	tester.Eq(t, out.Clues[0].Placement, types.PlacementEarly)
	tester.Eq(t, out.Clues[1].Placement, types.PlacementMid)
	tester.Eq(t, out.Clues[2].Placement, types.PlacementEarly)
	tester.Eq(t, out.Clues[3].Placement, types.PlacementLate)
	tester.Eq(t, len(res.Fixes), 3)

	// After the fix no essential clue sits in the late band and both early
	// bands are populated, so nothing critical remains.
	tester.False(t, res.HasCritical())

	// The input distribution is untouched.
	tester.Eq(t, dist.Clues[0].Placement, types.PlacementLate)
}

func TestCheckCluesInsufficientEssentials(t *testing.T) {
	dist := types.ClueDistribution{Clues: []types.Clue{
		clue("c1", types.PlacementEarly, true),
		clue("c2", types.PlacementMid, false),
	}}
	_, res := CheckClues(dist, 3)
	tester.True(t, res.HasCritical())
	tester.Eq(t, res.Criticals()[0].Code, "insufficient_essential_clues")
	tester.True(t, len(res.Directives) > 0, "expected a corrective directive")
}

func TestCheckCluesEmptyBands(t *testing.T) {
	dist := types.ClueDistribution{Clues: []types.Clue{
		clue("c1", types.PlacementEarly, true),
		clue("c2", types.PlacementEarly, true),
		clue("c3", types.PlacementEarly, true),
	}}
	_, res := CheckClues(dist, 3)

	codes := map[string]bool{}
	for _, iss := range res.Criticals() {
		codes[iss.Code] = true
	}
	tester.True(t, codes["empty_mid_band"], "expected empty_mid_band critical")
	tester.False(t, codes["empty_late_band"], "late band emptiness must not be critical")

	warned := false
	for _, iss := range res.Warnings() {
		if iss.Code == "empty_late_band" {
			warned = true
		}
	}
	tester.True(t, warned, "expected empty_late_band warning")
}

func TestCheckCluesDuplicateIDs(t *testing.T) {
	dist := types.ClueDistribution{Clues: []types.Clue{
		clue("c1", types.PlacementEarly, true),
		clue("c1", types.PlacementMid, true),
		clue("c2", types.PlacementMid, true),
	}}
	_, res := CheckClues(dist, 3)
	found := false
	for _, iss := range res.Criticals() {
		if iss.Code == "duplicate_clue_id" {
			found = true
		}
	}
	tester.True(t, found, "expected duplicate_clue_id critical")
}

func TestCheckCluesDetectiveOnlyKnowledge(t *testing.T) {
	dist := types.ClueDistribution{Clues: []types.Clue{
		{ID: "c1", Description: "A detail known only to the detective.", Placement: types.PlacementEarly, Essential: true},
		clue("c2", types.PlacementMid, true),
		clue("c3", types.PlacementMid, true),
	}}
	_, res := CheckClues(dist, 3)
	found := false
	for _, iss := range res.Criticals() {
		if iss.Code == "detective_only_knowledge" {
			found = true
		}
	}
	tester.True(t, found, "expected detective_only_knowledge critical")
}
