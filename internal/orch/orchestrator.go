// Package orch sequences the generation pipeline: it runs stages in fixed
// dependency order, threads derived inputs from completed artifacts into
// later stages, applies quality gates with bounded repair loops, aggregates
// cost/duration/warnings/errors, and emits progress notifications.
package orch

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"mysteryforge/internal/guardrail"
	"mysteryforge/internal/llm"
	"mysteryforge/internal/novelty"
	"mysteryforge/internal/progress"
	"mysteryforge/internal/schema"
	"mysteryforge/internal/stage"
	"mysteryforge/internal/store"
	"mysteryforge/internal/types"
)

// Orchestrator owns no cross-run state; one instance may serve many
// sequential runs, and all per-run state lives in the run itself.
type Orchestrator struct {
	// Store, when set, receives every accepted artifact and progress event.
	// Store errors are logged, never fatal.
	Store store.RunStore
	// MinEssentialClues overrides the fair-play floor when > 0.
	MinEssentialClues int
	// Logger defaults to log.Default().
	Logger *log.Logger

	corpus *novelty.Loader

	setting    *stage.SettingStage
	cast       *stage.CastStage
	background *stage.BackgroundStage
	devices    *stage.DevicesStage
	caseModel  *stage.CaseModelStage
	clues      *stage.CluesStage
	fairPlay   *stage.FairPlayStage
	outline    *stage.OutlineStage
	charProf   *stage.CharacterProfilesStage
	locProf    *stage.LocationProfilesStage
	temporal   *stage.TemporalStage
	prose      *stage.ProseStage
}

// New builds an orchestrator on top of a generation backend client.
func New(cli llm.Client) *Orchestrator {
	return &Orchestrator{
		corpus:     novelty.NewLoader(),
		setting:    stage.NewSettingStage(cli),
		cast:       stage.NewCastStage(cli),
		background: stage.NewBackgroundStage(cli),
		devices:    stage.NewDevicesStage(cli),
		caseModel:  stage.NewCaseModelStage(cli),
		clues:      stage.NewCluesStage(cli),
		fairPlay:   stage.NewFairPlayStage(cli),
		outline:    stage.NewOutlineStage(cli),
		charProf:   stage.NewCharacterProfilesStage(cli),
		locProf:    stage.NewLocationProfilesStage(cli),
		temporal:   stage.NewTemporalStage(cli),
		prose:      stage.NewProseStage(cli),
	}
}

func (o *Orchestrator) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.Default()
}

// runState is the per-run mutable state; it never crosses runs.
type runState struct {
	req      types.GenerationRequest
	arts     *types.Artifacts
	ledger   Ledger
	warnings []string
	errors   []string
	current  string
}

func (r *runState) warn(format string, args ...any) {
	r.warnings = append(r.warnings, fmt.Sprintf(format, args...))
}

// Run executes one full pipeline for the request. It returns a Result on
// completion, or a *GenerationFailure carrying the accumulated diagnostics
// when any gate escalates fatally.
func (o *Orchestrator) Run(ctx context.Context, req types.GenerationRequest, emit progress.Emitter) (*Result, error) {
	if req.RunID == "" {
		req.RunID = uuid.NewString()
	}
	run := &runState{req: req, arts: &types.Artifacts{}}
	ctx = progress.WithEmitter(ctx, o.tee(req.RunID, emit))

	start := time.Now()
	if err := o.runStages(ctx, run); err != nil {
		run.errors = append(run.errors, err.Error())
		return nil, &GenerationFailure{
			Stage:    run.current,
			Warnings: run.warnings,
			Errors:   run.errors,
			Err:      err,
		}
	}

	return &Result{
		Artifacts: run.arts,
		Status:    DeriveStatus(run.errors, run.warnings),
		Warnings:  run.warnings,
		Errors:    run.errors,
		Metadata: Metadata{
			RunID:              req.RunID,
			ProjectID:          req.ProjectID,
			TotalCost:          run.ledger.TotalCost(),
			TotalDurationMS:    time.Since(start).Milliseconds(),
			PerStageCost:       run.ledger.PerStageCost(),
			PerStageDurationMS: run.ledger.PerStageDuration(),
		},
	}, nil
}

// runStages advances the fixed state order; a state advances only when its
// gate accepts, and any fatal gate aborts the whole run.
func (o *Orchestrator) runStages(ctx context.Context, run *runState) error {
	steps := []struct {
		name string
		fn   func(context.Context, *runState) error
	}{
		{stage.NameSetting, o.runSetting},
		{stage.NameCast, o.runCast},
		{stage.NameBackground, o.runBackground},
		{stage.NameDevices, o.runDevices},
		{stage.NameCaseModel, o.runCaseModel},
		{stage.NameNovelty, o.runNovelty},
		{stage.NameClues, o.runClues},
		{stage.NameFairPlay, o.runFairPlay},
		{stage.NameOutline, o.runOutline},
		{stage.NameCharacterProfiles, o.runCharacterProfiles},
		{stage.NameLocationProfiles, o.runLocationProfiles},
		{stage.NameTemporal, o.runTemporal},
		{stage.NameProse, o.runProse},
		{stage.NameValidation, o.runValidation},
		{stage.NameRelease, o.runRelease},
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			run.current = step.name
			return err
		}
		run.current = step.name
		if err := step.fn(ctx, run); err != nil {
			return err
		}
	}
	progress.Emit(ctx, "complete", "Generation complete", 100)
	return nil
}

// tee forwards progress events to the caller's emitter and, when a store is
// configured, persists them. The orchestrator never blocks on either beyond
// normal call/return.
func (o *Orchestrator) tee(runID string, next progress.Emitter) progress.Emitter {
	return progress.Func(func(ev progress.Event) {
		if next != nil {
			next.Emit(ev)
		}
		if o.Store != nil {
			if err := o.Store.AppendProgress(context.Background(), runID, ev); err != nil {
				o.logger().Printf("store: append progress: %v", err)
			}
		}
	})
}

func (o *Orchestrator) persist(ctx context.Context, run *runState, kind types.Kind, artifact any) {
	if o.Store == nil {
		return
	}
	if err := o.Store.AppendArtifact(ctx, run.req.RunID, kind, artifact); err != nil {
		o.logger().Printf("store: append %s artifact: %v", kind, err)
	}
}

// recordSchema validates a descriptive artifact; violations are warnings,
// never fatal (only the case model's gate treats schema validity as fatal,
// and that check lives inside its invoker).
func (o *Orchestrator) recordSchema(run *runState, kind types.Kind, artifact any) {
	res := schema.Validate(kind, artifact)
	for _, e := range res.Errors {
		run.warn("schema %s: %s", kind, e)
	}
	for _, w := range res.Warnings {
		run.warn("schema %s: %s", kind, w)
	}
}

func (o *Orchestrator) minEssential() int {
	if o.MinEssentialClues > 0 {
		return o.MinEssentialClues
	}
	return guardrail.DefaultMinEssentialClues
}
