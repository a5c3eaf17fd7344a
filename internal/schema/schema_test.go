package schema

import (
	"testing"

	"mysteryforge/internal/tester"
	"mysteryforge/internal/types"
)

func validCaseModel() types.CaseModel {
	return types.CaseModel{
		Crime: types.Crime{Victim: "v", Method: "m", Location: "l"},
		Suspects: []types.Suspect{
			{Name: "A", Motive: "x", Alibi: "y"},
			{Name: "B", Motive: "x", Alibi: "y"},
		},
		Culprit:            "B",
		DiscriminatingTest: types.DiscriminatingTest{Method: "test", Description: "desc"},
		Solution:           "B did it",
		Timeline:           []types.CaseTimelineEvent{{When: "noon", Event: "lunch"}},
	}
}

func TestValidateCaseModelAccepts(t *testing.T) {
	cm := validCaseModel()
	res := Validate(types.KindCaseModel, &cm)
	tester.True(t, res.Valid)
	tester.Eq(t, len(res.Warnings), 0)
}

func TestValidateCaseModelCulpritMustBeSuspect(t *testing.T) {
	cm := validCaseModel()
	cm.Culprit = "Nobody"
	res := Validate(types.KindCaseModel, &cm)
	tester.False(t, res.Valid)
	tester.Contains(t, res.Errors[0], "not among the suspects")
}

func TestValidateCaseModelNeedsTwoSuspects(t *testing.T) {
	cm := validCaseModel()
	cm.Suspects = cm.Suspects[1:]
	res := Validate(types.KindCaseModel, &cm)
	tester.False(t, res.Valid)
}

func TestValidateCaseModelEmptyTimelineWarnsOnly(t *testing.T) {
	cm := validCaseModel()
	cm.Timeline = nil
	res := Validate(types.KindCaseModel, &cm)
	tester.True(t, res.Valid, "empty timeline must not invalidate")
	tester.Eq(t, len(res.Warnings), 1)
}

func TestValidateSettingRequiresLocationAndDescription(t *testing.T) {
	res := Validate(types.KindSetting, &types.Setting{Era: "1920s"})
	tester.False(t, res.Valid)
	tester.Eq(t, len(res.Errors), 2)
}

func TestValidateCastRejectsDuplicates(t *testing.T) {
	res := Validate(types.KindCast, &types.Cast{Members: []types.CastMember{
		{Name: "Twin", Role: "suspect"},
		{Name: "Twin", Role: "suspect"},
	}})
	tester.False(t, res.Valid)
	tester.Contains(t, res.Errors[0], "duplicate member name")
}

func TestValidateDescriptiveKindsOnlyWarn(t *testing.T) {
	res := Validate(types.KindBackgroundContext, &types.BackgroundContext{})
	tester.True(t, res.Valid)
	tester.Eq(t, len(res.Warnings), 1)

	res = Validate(types.KindHardLogicDevices, &types.HardLogicDevices{})
	tester.True(t, res.Valid)
	tester.Eq(t, len(res.Warnings), 1)
}

func TestValidateUnknownKindWarns(t *testing.T) {
	res := Validate(types.Kind("mystery_sauce"), struct{}{})
	tester.True(t, res.Valid)
	tester.Eq(t, len(res.Warnings), 1)
}
