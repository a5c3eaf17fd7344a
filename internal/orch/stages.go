package orch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mysteryforge/internal/gate"
	"mysteryforge/internal/guardrail"
	"mysteryforge/internal/novelty"
	"mysteryforge/internal/progress"
	"mysteryforge/internal/stage"
	"mysteryforge/internal/storyval"
	"mysteryforge/internal/types"
)

func (o *Orchestrator) runSetting(ctx context.Context, run *runState) error {
	out, meta, err := o.setting.Run(ctx, stage.SettingIn{Request: run.req})
	run.ledger.Record(stage.NameSetting, meta)
	if err != nil {
		return err
	}
	o.recordSchema(run, types.KindSetting, &out)
	run.arts.Setting = &out
	o.persist(ctx, run, types.KindSetting, &out)
	return nil
}

func (o *Orchestrator) runCast(ctx context.Context, run *runState) error {
	out, meta, err := o.cast.Run(ctx, stage.CastIn{Request: run.req, Setting: *run.arts.Setting})
	run.ledger.Record(stage.NameCast, meta)
	if err != nil {
		return err
	}
	o.recordSchema(run, types.KindCast, &out)
	run.arts.Cast = &out
	o.persist(ctx, run, types.KindCast, &out)
	return nil
}

func (o *Orchestrator) runBackground(ctx context.Context, run *runState) error {
	out, meta, err := o.background.Run(ctx, stage.BackgroundIn{
		Request: run.req,
		Setting: *run.arts.Setting,
		Cast:    *run.arts.Cast,
	})
	run.ledger.Record(stage.NameBackground, meta)
	if err != nil {
		return err
	}
	o.recordSchema(run, types.KindBackgroundContext, &out)
	run.arts.BackgroundContext = &out
	o.persist(ctx, run, types.KindBackgroundContext, &out)
	return nil
}

func (o *Orchestrator) runDevices(ctx context.Context, run *runState) error {
	out, meta, err := o.devices.Run(ctx, stage.DevicesIn{
		PrimaryAxis: run.req.PrimaryAxis,
		Setting:     *run.arts.Setting,
		Cast:        *run.arts.Cast,
	})
	run.ledger.Record(stage.NameDevices, meta)
	if err != nil {
		return err
	}
	o.recordSchema(run, types.KindHardLogicDevices, &out)
	run.arts.HardLogicDevices = &out
	o.persist(ctx, run, types.KindHardLogicDevices, &out)
	return nil
}

// generateCaseModel runs the case-model stage with its internal schema
// retry loop; shared by the initial generation and the novelty repair.
func (o *Orchestrator) generateCaseModel(ctx context.Context, run *runState, directives []string) (types.CaseModel, error) {
	cm, meta, err := o.caseModel.Run(ctx, stage.CaseModelIn{
		Request:    run.req,
		Setting:    *run.arts.Setting,
		Cast:       *run.arts.Cast,
		Background: *run.arts.BackgroundContext,
		Devices:    *run.arts.HardLogicDevices,
		Directives: directives,
	})
	run.ledger.Record(stage.NameCaseModel, meta)
	return cm, err
}

func (o *Orchestrator) runCaseModel(ctx context.Context, run *runState) error {
	cm, err := o.generateCaseModel(ctx, run, nil)
	if err != nil {
		return err
	}
	run.arts.CaseModel = &cm
	o.persist(ctx, run, types.KindCaseModel, &cm)
	return nil
}

// noveltyCandidate pairs a case model with its audit so the audit computed
// during invocation is available to the check without a second scoring pass.
type noveltyCandidate struct {
	cm    types.CaseModel
	audit types.NoveltyAudit
	seeds []novelty.SeedCase
	th    float64
}

func (o *Orchestrator) runNovelty(ctx context.Context, run *runState) error {
	if !run.req.NoveltyEnabled() {
		// The skip is an observable pipeline event; no artifact is produced.
		progress.Emit(ctx, stage.NameNovelty, "Novelty check skipped", stage.Percent(stage.NameNovelty))
		return nil
	}

	seeds, err := o.corpus.Load(run.req.SeedCorpusPath)
	if err != nil {
		return err
	}
	threshold := run.req.EffectiveThreshold()
	progress.Emit(ctx, stage.NameNovelty, "Auditing novelty against seed corpus", stage.Percent(stage.NameNovelty))

	pol := gate.Policy{Name: stage.NameNovelty, MaxAttempts: 2, OnExhausted: gate.DowngradeToWarning}
	accepted, rep, err := gate.Run(ctx, pol,
		func(ctx context.Context, directives []string) (noveltyCandidate, error) {
			cand := noveltyCandidate{cm: *run.arts.CaseModel, seeds: seeds, th: threshold}
			if len(directives) == 0 {
				return cand, nil
			}
			// Regenerate the case model with avoidance patterns folded in.
			cm, err := o.generateCaseModel(ctx, run, directives)
			if err != nil {
				return cand, err
			}
			cand.cm = cm
			return cand, nil
		},
		func(c noveltyCandidate) (noveltyCandidate, guardrail.Result) {
			var res guardrail.Result
			c.audit = novelty.Audit(c.cm, c.seeds, c.th)
			if c.audit.Verdict == "fail" {
				res.Issues = append(res.Issues, guardrail.Issue{
					Severity: guardrail.SeverityCritical,
					Code:     "insufficient_novelty",
					Message: fmt.Sprintf("case model is %.0f%% similar to %q (threshold %.0f%%)",
						c.audit.MaxSimilarity*100, c.audit.NearestLabel, c.th*100),
				})
				res.Directives = c.audit.AvoidancePatterns
			}
			return c, res
		})
	if err != nil {
		return err
	}

	run.warnings = append(run.warnings, rep.Warnings...)
	// The accepted case model replaces the previous one; exactly one case
	// model is current at any time.
	run.arts.CaseModel = &accepted.cm
	run.arts.NoveltyAudit = &accepted.audit
	if rep.Attempts > 1 {
		o.persist(ctx, run, types.KindCaseModel, &accepted.cm)
	}
	o.persist(ctx, run, types.KindNoveltyAudit, &accepted.audit)
	return nil
}

func (o *Orchestrator) runClues(ctx context.Context, run *runState) error {
	pol := gate.Policy{
		Name:        stage.NameClues,
		MaxAttempts: 2,
		OnExhausted: gate.EscalateFatal,
		FatalHint:   "deterministic fair-play guardrails",
	}
	dist, rep, err := gate.Run(ctx, pol,
		func(ctx context.Context, directives []string) (types.ClueDistribution, error) {
			out, meta, err := o.clues.Run(ctx, stage.CluesIn{
				CaseModel:  *run.arts.CaseModel,
				Directives: directives,
			})
			run.ledger.Record(stage.NameClues, meta)
			return out, err
		},
		func(d types.ClueDistribution) (types.ClueDistribution, guardrail.Result) {
			return guardrail.CheckClues(d, o.minEssential())
		})
	if err != nil {
		return err
	}

	run.warnings = append(run.warnings, rep.Warnings...)
	run.arts.ClueDistribution = &dist
	o.persist(ctx, run, types.KindClueDistribution, &dist)
	return nil
}

// fairPlayCandidate pairs a clue distribution with its audit, mirroring the
// novelty gate: the backend audit runs during invocation, the check only
// inspects the verdict.
type fairPlayCandidate struct {
	dist  types.ClueDistribution
	audit types.FairPlayAudit
}

func (o *Orchestrator) runFairPlay(ctx context.Context, run *runState) error {
	audit := func(ctx context.Context, dist types.ClueDistribution) (types.FairPlayAudit, error) {
		out, meta, err := o.fairPlay.Run(ctx, stage.FairPlayIn{
			CaseModel: *run.arts.CaseModel,
			Clues:     dist,
		})
		run.ledger.Record(stage.NameFairPlay, meta)
		return out, err
	}

	pol := gate.Policy{Name: stage.NameFairPlay, MaxAttempts: 2, OnExhausted: gate.DowngradeToWarning}
	accepted, rep, err := gate.Run(ctx, pol,
		func(ctx context.Context, directives []string) (fairPlayCandidate, error) {
			dist := *run.arts.ClueDistribution
			if len(directives) > 0 {
				regen, meta, err := o.clues.Run(ctx, stage.CluesIn{
					CaseModel:  *run.arts.CaseModel,
					Directives: directives,
				})
				run.ledger.Record(stage.NameClues, meta)
				if err != nil {
					return fairPlayCandidate{}, err
				}
				// Regenerated clues still honor the placement rules; the
				// deterministic auto-fix applies, its criticals do not re-gate.
				regen, _ = guardrail.CheckClues(regen, o.minEssential())
				dist = regen
			}
			a, err := audit(ctx, dist)
			if err != nil {
				return fairPlayCandidate{}, err
			}
			return fairPlayCandidate{dist: dist, audit: a}, nil
		},
		func(c fairPlayCandidate) (fairPlayCandidate, guardrail.Result) {
			var res guardrail.Result
			if !strings.EqualFold(c.audit.Status, "pass") {
				res.Issues = append(res.Issues, guardrail.Issue{
					Severity: guardrail.SeverityCritical,
					Code:     "fair_play_violation",
					Message:  "fair-play audit failed: " + strings.Join(c.audit.Findings, "; "),
				})
				res.Directives = append(res.Directives,
					"Regenerate the clue distribution so every solution step is grounded in a disclosed clue.")
				res.Directives = append(res.Directives, c.audit.Findings...)
			}
			return c, res
		})
	if err != nil {
		return err
	}

	run.warnings = append(run.warnings, rep.Warnings...)
	run.arts.ClueDistribution = &accepted.dist
	run.arts.FairPlayAudit = &accepted.audit
	if rep.Attempts > 1 {
		o.persist(ctx, run, types.KindClueDistribution, &accepted.dist)
	}
	o.persist(ctx, run, types.KindFairPlayAudit, &accepted.audit)
	return nil
}

func (o *Orchestrator) runOutline(ctx context.Context, run *runState) error {
	pol := gate.Policy{
		Name:        stage.NameOutline,
		MaxAttempts: 2,
		OnExhausted: gate.DowngradeToWarning,
		KeepBest:    true,
	}
	outline, rep, err := gate.Run(ctx, pol,
		func(ctx context.Context, directives []string) (types.NarrativeOutline, error) {
			out, meta, err := o.outline.Run(ctx, stage.OutlineIn{
				Request:    run.req,
				CaseModel:  *run.arts.CaseModel,
				Clues:      *run.arts.ClueDistribution,
				Cast:       *run.arts.Cast,
				Directives: directives,
			})
			run.ledger.Record(stage.NameOutline, meta)
			return out, err
		},
		func(outline types.NarrativeOutline) (types.NarrativeOutline, guardrail.Result) {
			return outline, guardrail.CheckOutlineCoverage(outline, *run.arts.CaseModel)
		})
	if err != nil {
		return err
	}

	run.warnings = append(run.warnings, rep.Warnings...)
	run.arts.NarrativeOutline = &outline
	o.persist(ctx, run, types.KindNarrativeOutline, &outline)
	return nil
}

func (o *Orchestrator) runCharacterProfiles(ctx context.Context, run *runState) error {
	out, meta, err := o.charProf.Run(ctx, stage.CharacterProfilesIn{
		Cast:      *run.arts.Cast,
		CaseModel: *run.arts.CaseModel,
	})
	run.ledger.Record(stage.NameCharacterProfiles, meta)
	if err != nil {
		return err
	}
	o.recordSchema(run, types.KindCharacterProfiles, &out)
	run.arts.CharacterProfiles = &out
	o.persist(ctx, run, types.KindCharacterProfiles, &out)
	return nil
}

func (o *Orchestrator) runLocationProfiles(ctx context.Context, run *runState) error {
	out, meta, err := o.locProf.Run(ctx, stage.LocationProfilesIn{
		Setting:   *run.arts.Setting,
		CaseModel: *run.arts.CaseModel,
	})
	run.ledger.Record(stage.NameLocationProfiles, meta)
	if err != nil {
		return err
	}
	o.recordSchema(run, types.KindLocationProfiles, &out)
	run.arts.LocationProfiles = &out
	o.persist(ctx, run, types.KindLocationProfiles, &out)
	return nil
}

func (o *Orchestrator) runTemporal(ctx context.Context, run *runState) error {
	out, meta, err := o.temporal.Run(ctx, stage.TemporalIn{
		CaseModel: *run.arts.CaseModel,
		Devices:   *run.arts.HardLogicDevices,
	})
	run.ledger.Record(stage.NameTemporal, meta)
	if err != nil {
		return err
	}
	o.recordSchema(run, types.KindTemporalContext, &out)
	run.arts.TemporalContext = &out
	o.persist(ctx, run, types.KindTemporalContext, &out)
	return nil
}

func (o *Orchestrator) generateProse(ctx context.Context, run *runState, guardrails []string) (types.Prose, error) {
	out, meta, err := o.prose.Run(ctx, stage.ProseIn{
		CaseModel:         *run.arts.CaseModel,
		Outline:           *run.arts.NarrativeOutline,
		Cast:              *run.arts.Cast,
		CharacterProfiles: *run.arts.CharacterProfiles,
		LocationProfiles:  *run.arts.LocationProfiles,
		TemporalContext:   *run.arts.TemporalContext,
		TargetLength:      run.req.TargetLength,
		NarrativeStyle:    run.req.NarrativeStyle,
		QualityGuardrails: guardrails,
		RunID:             run.req.RunID,
		ProjectID:         run.req.ProjectID,
	})
	run.ledger.Record(stage.NameProse, meta)
	if err != nil {
		return types.Prose{}, err
	}
	return storyval.SanitizeProse(out), nil
}

// runProse generates the prose and gates it on identity continuity: after
// the reveal, the culprit must be named, not referred to by epithet alone.
func (o *Orchestrator) runProse(ctx context.Context, run *runState) error {
	pol := gate.Policy{Name: stage.NameProse, MaxAttempts: 2, OnExhausted: gate.EscalateFatal}
	prose, rep, err := gate.Run(ctx, pol,
		func(ctx context.Context, directives []string) (types.Prose, error) {
			return o.generateProse(ctx, run, directives)
		},
		func(p types.Prose) (types.Prose, guardrail.Result) {
			return p, guardrail.CheckIdentityContinuity(p, *run.arts.CaseModel)
		})
	if err != nil {
		return err
	}

	run.warnings = append(run.warnings, rep.Warnings...)
	run.arts.Prose = &prose
	o.persist(ctx, run, types.KindProse, &prose)
	return nil
}

// runValidation runs the deterministic narrative-consistency check, with at
// most one targeted prose repair for recoverable gaps. Validation outcomes
// never fail the run; a failed report is recorded as a non-blocking warning.
func (o *Orchestrator) runValidation(ctx context.Context, run *runState) error {
	progress.Emit(ctx, stage.NameValidation, "Validating story consistency", stage.Percent(stage.NameValidation))

	validate := func(p types.Prose) types.ValidationReport {
		start := time.Now()
		rep := storyval.Validate(types.StoryViewOf(run.req.RunID, run.req.ProjectID, p), *run.arts.CaseModel)
		run.ledger.Record(stage.NameValidation, stage.Meta{DurationMS: time.Since(start).Milliseconds()})
		return rep
	}

	report := validate(*run.arts.Prose)
	if storyval.HasRecoverableGaps(report) {
		if directives := storyval.RepairDirectives(report); len(directives) > 0 {
			run.warn("Story validation detected coverage gaps; running one prose repair retry")
			progress.Emit(ctx, stage.NameProse, "Regenerating prose to repair validation coverage gaps", 95)
			repaired, err := o.generateProse(ctx, run, directives)
			if err != nil {
				run.warn("Prose repair retry failed: %v; continuing with original", err)
			} else if rep2 := validate(repaired); storyval.Improved(rep2, report) {
				run.warn("Prose repair retry improved validation outcomes")
				run.arts.Prose = &repaired
				o.persist(ctx, run, types.KindProse, &repaired)
				report = rep2
			} else {
				run.warn("Prose repair retry did not improve validation; continuing with original")
			}
		}
	}

	run.arts.ValidationReport = &report
	o.persist(ctx, run, types.KindValidationReport, &report)
	if report.Status != "passed" {
		run.warn("Story validation: failed - %d critical errors (non-blocking)", report.Summary.Critical)
		progress.Emit(ctx, stage.NameValidation, "Story validation flagged issues (non-blocking)", 98)
	}
	return nil
}

func (o *Orchestrator) runRelease(ctx context.Context, run *runState) error {
	run.warnings = append(run.warnings, guardrail.ReleaseCheck(run.arts)...)
	progress.Emit(ctx, stage.NameRelease, "Finalizing release bundle", stage.Percent(stage.NameRelease))
	return nil
}
