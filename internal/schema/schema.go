// Package schema provides per-artifact-kind structural validation. It only
// checks shape and internal references, never narrative quality; those
// concerns belong to the guardrails and the story validator.
package schema

import (
	"fmt"
	"strings"

	"mysteryforge/internal/types"
)

// Result is the outcome of validating one artifact.
type Result struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

func (r *Result) errf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Result) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Validate checks the artifact against its kind's structural rules.
// Unknown kinds validate as a warning so new stages degrade gracefully.
func Validate(kind types.Kind, artifact any) Result {
	var res Result
	switch kind {
	case types.KindSetting:
		validateSetting(artifact, &res)
	case types.KindCast:
		validateCast(artifact, &res)
	case types.KindCaseModel:
		validateCaseModel(artifact, &res)
	case types.KindClueDistribution:
		validateClues(artifact, &res)
	case types.KindNarrativeOutline:
		validateOutline(artifact, &res)
	case types.KindProse:
		validateProse(artifact, &res)
	case types.KindCharacterProfiles, types.KindLocationProfiles, types.KindTemporalContext,
		types.KindBackgroundContext, types.KindHardLogicDevices:
		validateDescriptive(kind, artifact, &res)
	default:
		res.warnf("no structural rules registered for kind %q", kind)
	}
	res.Valid = len(res.Errors) == 0
	return res
}

func validateSetting(artifact any, res *Result) {
	s, ok := artifact.(*types.Setting)
	if !ok {
		res.errf("setting: unexpected artifact type %T", artifact)
		return
	}
	if strings.TrimSpace(s.Location) == "" {
		res.errf("setting: location is empty")
	}
	if strings.TrimSpace(s.Description) == "" {
		res.errf("setting: description is empty")
	}
}

func validateCast(artifact any, res *Result) {
	c, ok := artifact.(*types.Cast)
	if !ok {
		res.errf("cast: unexpected artifact type %T", artifact)
		return
	}
	if len(c.Members) == 0 {
		res.errf("cast: no members")
		return
	}
	seen := make(map[string]bool, len(c.Members))
	for i, m := range c.Members {
		name := strings.TrimSpace(m.Name)
		if name == "" {
			res.errf("cast: member %d has no name", i)
			continue
		}
		if seen[name] {
			res.errf("cast: duplicate member name %q", name)
		}
		seen[name] = true
	}
}

func validateCaseModel(artifact any, res *Result) {
	cm, ok := artifact.(*types.CaseModel)
	if !ok {
		res.errf("case model: unexpected artifact type %T", artifact)
		return
	}
	if strings.TrimSpace(cm.Crime.Victim) == "" {
		res.errf("case model: crime.victim is empty")
	}
	if strings.TrimSpace(cm.Crime.Method) == "" {
		res.errf("case model: crime.method is empty")
	}
	if strings.TrimSpace(cm.Crime.Location) == "" {
		res.errf("case model: crime.location is empty")
	}
	if len(cm.Suspects) < 2 {
		res.errf("case model: need at least 2 suspects, have %d", len(cm.Suspects))
	}
	culprit := strings.TrimSpace(cm.Culprit)
	if culprit == "" {
		res.errf("case model: culprit is empty")
	} else {
		found := false
		for _, s := range cm.Suspects {
			if s.Name == culprit {
				found = true
				break
			}
		}
		if !found {
			res.errf("case model: culprit %q is not among the suspects", culprit)
		}
	}
	if strings.TrimSpace(cm.DiscriminatingTest.Method) == "" {
		res.errf("case model: discriminating_test.method is empty")
	}
	if strings.TrimSpace(cm.DiscriminatingTest.Description) == "" {
		res.errf("case model: discriminating_test.description is empty")
	}
	if strings.TrimSpace(cm.Solution) == "" {
		res.errf("case model: solution is empty")
	}
	if len(cm.Timeline) == 0 {
		res.warnf("case model: timeline is empty")
	}
}

func validateClues(artifact any, res *Result) {
	d, ok := artifact.(*types.ClueDistribution)
	if !ok {
		res.errf("clue distribution: unexpected artifact type %T", artifact)
		return
	}
	if len(d.Clues) == 0 {
		res.errf("clue distribution: no clues")
		return
	}
	for i, c := range d.Clues {
		if strings.TrimSpace(c.ID) == "" {
			res.errf("clue distribution: clue %d has no id", i)
		}
		if strings.TrimSpace(c.Description) == "" {
			res.errf("clue distribution: clue %q has no description", c.ID)
		}
		switch c.Placement {
		case types.PlacementEarly, types.PlacementMid, types.PlacementLate:
		default:
			res.errf("clue distribution: clue %q has invalid placement %q", c.ID, c.Placement)
		}
	}
}

func validateOutline(artifact any, res *Result) {
	o, ok := artifact.(*types.NarrativeOutline)
	if !ok {
		res.errf("outline: unexpected artifact type %T", artifact)
		return
	}
	if len(o.Scenes) == 0 {
		res.errf("outline: no scenes")
		return
	}
	for i, sc := range o.Scenes {
		if strings.TrimSpace(sc.Title) == "" {
			res.errf("outline: scene %d has no title", i+1)
		}
		if strings.TrimSpace(sc.Summary) == "" {
			res.errf("outline: scene %d has no summary", i+1)
		}
	}
}

func validateProse(artifact any, res *Result) {
	p, ok := artifact.(*types.Prose)
	if !ok {
		res.errf("prose: unexpected artifact type %T", artifact)
		return
	}
	if len(p.Chapters) == 0 {
		res.errf("prose: no chapters")
		return
	}
	for i, ch := range p.Chapters {
		if len(ch.Paragraphs) == 0 {
			res.errf("prose: chapter %d (%q) has no paragraphs", i+1, ch.Title)
		}
	}
}

// Descriptive artifacts only warn on emptiness; their gate policy treats
// schema validity as non-fatal.
func validateDescriptive(kind types.Kind, artifact any, res *Result) {
	switch a := artifact.(type) {
	case *types.BackgroundContext:
		if strings.TrimSpace(a.Summary) == "" {
			res.warnf("%s: summary is empty", kind)
		}
	case *types.HardLogicDevices:
		if len(a.Devices) == 0 {
			res.warnf("%s: no devices", kind)
		}
	case *types.CharacterProfiles:
		if len(a.Profiles) == 0 {
			res.warnf("%s: no profiles", kind)
		}
	case *types.LocationProfiles:
		if len(a.Profiles) == 0 {
			res.warnf("%s: no profiles", kind)
		}
	case *types.TemporalContext:
		if len(a.Timeline) == 0 {
			res.warnf("%s: timeline is empty", kind)
		}
	default:
		res.errf("%s: unexpected artifact type %T", kind, artifact)
	}
}
