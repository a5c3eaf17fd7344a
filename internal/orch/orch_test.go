package orch

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"mysteryforge/internal/llm"
	"mysteryforge/internal/novelty"
	"mysteryforge/internal/progress"
	"mysteryforge/internal/stage"
	"mysteryforge/internal/store"
	"mysteryforge/internal/types"
)

// overrideClient wraps the deterministic fake backend and lets a test swap
// out the response of selected stages per call number.
type overrideClient struct {
	base      llm.Client
	calls     map[string]int
	overrides map[string]func(call int) (any, bool)
}

func newOverrideClient() *overrideClient {
	return &overrideClient{
		base:      llm.NewFakeClient(),
		calls:     map[string]int{},
		overrides: map[string]func(call int) (any, bool){},
	}
}

func (c *overrideClient) Name() string { return "override" }
func (c *overrideClient) Close() error { return nil }

func (c *overrideClient) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	st := llm.StageFrom(ctx)
	c.calls[st]++
	if f, ok := c.overrides[st]; ok {
		if obj, hit := f(c.calls[st]); hit {
			return json.Marshal(obj)
		}
	}
	return c.base.GenerateJSON(ctx, prompt, input)
}

func baseRequest() types.GenerationRequest {
	return types.GenerationRequest{
		RunID:     "run-test",
		ProjectID: "proj-test",
		Theme:     "country house poisoning",
	}
}

func TestRunHappyPathIsCleanAndComplete(t *testing.T) {
	mem := store.NewMemoryStore()
	rec := &progress.Recorder{}

	o := New(llm.NewFakeClient())
	o.Store = mem

	res, err := o.Run(context.Background(), baseRequest(), rec)
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, res.Status)
	require.Empty(t, res.Warnings, "deterministic backend must yield a warning-free run")
	require.Empty(t, res.Errors)

	// Every artifact kind is present exactly once.
	for _, kind := range types.Kinds() {
		require.NotNil(t, res.Artifacts.ByKind(kind), "missing artifact %s", kind)
	}
	require.Equal(t, len(types.Kinds()), mem.ArtifactCount("run-test"))

	// Accounting: the total is exactly the per-stage sum.
	require.Equal(t, "run-test", res.Metadata.RunID)
	require.Greater(t, res.Metadata.TotalCost, 0.0)
	sum := 0.0
	for _, c := range res.Metadata.PerStageCost {
		sum += c
	}
	require.InDelta(t, res.Metadata.TotalCost, sum, 1e-12)

	// Progress starts at the first stage and ends at completion.
	stages := rec.Stages()
	require.Equal(t, stage.NameSetting, stages[0])
	require.Equal(t, "complete", stages[len(stages)-1])
	require.Equal(t, 100, rec.Events[len(rec.Events)-1].Percentage)

	// Every event was mirrored into the store.
	require.Equal(t, len(rec.Events), len(mem.Events("run-test")))
}

func TestRunSecondRunIsIdenticallyClean(t *testing.T) {
	o := New(llm.NewFakeClient())

	first, err := o.Run(context.Background(), baseRequest(), nil)
	require.NoError(t, err)
	second, err := o.Run(context.Background(), baseRequest(), nil)
	require.NoError(t, err)

	require.Equal(t, first.Status, second.Status)
	require.Equal(t, first.Artifacts.CaseModel, second.Artifacts.CaseModel)
	require.Equal(t, first.Artifacts.Prose, second.Artifacts.Prose)
}

func TestRunSkipNoveltyCheck(t *testing.T) {
	rec := &progress.Recorder{}
	o := New(llm.NewFakeClient())

	req := baseRequest()
	req.SkipNoveltyCheck = true

	res, err := o.Run(context.Background(), req, rec)
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, res.Status)
	require.Nil(t, res.Artifacts.NoveltyAudit, "skipped stage must not produce an artifact")

	skipped := false
	for _, ev := range rec.Events {
		if ev.Stage == stage.NameNovelty && ev.Message == "Novelty check skipped" {
			skipped = true
		}
	}
	require.True(t, skipped, "skip must still be an observable pipeline event")
}

func TestRunThresholdAtOneDisablesNovelty(t *testing.T) {
	o := New(llm.NewFakeClient())
	req := baseRequest()
	req.SimilarityThreshold = 1.0

	res, err := o.Run(context.Background(), req, nil)
	require.NoError(t, err)
	require.Nil(t, res.Artifacts.NoveltyAudit)
}

func TestRunCluesGateEscalatesFatal(t *testing.T) {
	cli := newOverrideClient()
	cli.overrides[stage.NameClues] = func(call int) (any, bool) {
		// Never enough essential clues, whatever the directives say.
		return types.ClueDistribution{Clues: []types.Clue{
			{ID: "c1", Description: "a scrap of paper", Placement: types.PlacementEarly},
			{ID: "c2", Description: "a broken latch", Placement: types.PlacementMid},
		}}, true
	}

	o := New(cli)
	_, err := o.Run(context.Background(), baseRequest(), nil)
	require.Error(t, err)

	var gf *GenerationFailure
	require.ErrorAs(t, err, &gf)
	require.Equal(t, stage.NameClues, gf.Stage)
	require.Contains(t, err.Error(), "deterministic fair-play guardrails")
	require.Equal(t, 2, cli.calls[stage.NameClues], "one regeneration, then escalation")
}

func TestRunFairPlayRecoversWithOneWarning(t *testing.T) {
	cli := newOverrideClient()
	cli.overrides[stage.NameFairPlay] = func(call int) (any, bool) {
		if call == 1 {
			return types.FairPlayAudit{
				Status:   "fail",
				Findings: []string{"the cellar access is never disclosed to the reader"},
			}, true
		}
		return nil, false
	}

	o := New(cli)
	res, err := o.Run(context.Background(), baseRequest(), nil)
	require.NoError(t, err)
	require.Equal(t, StatusWarning, res.Status)
	require.Len(t, res.Warnings, 1)
	require.Contains(t, res.Warnings[0], "fairplay: regenerating after 1 critical issue(s)")

	require.Equal(t, "pass", res.Artifacts.FairPlayAudit.Status)
	require.Equal(t, 2, cli.calls[stage.NameClues], "failed audit must regenerate the clue distribution")
	require.Equal(t, 2, cli.calls[stage.NameFairPlay])

	// The retried clue generation is paid for: more clue spend than a
	// single-attempt run of the same backend.
	clean, err := New(llm.NewFakeClient()).Run(context.Background(), baseRequest(), nil)
	require.NoError(t, err)
	require.Greater(t, res.Metadata.PerStageCost[stage.NameClues], clean.Metadata.PerStageCost[stage.NameClues])
}

func TestRunNoveltyDowngradesAfterRetry(t *testing.T) {
	// Seed the corpus with the backend's own case model so the audit is
	// guaranteed to fail on both attempts.
	corpus := []novelty.SeedCase{{
		Label: "The Blackwood Decanter",
		CaseModel: types.CaseModel{
			Crime: types.Crime{
				Method: "poisoned brandy",
				Motive: "the forged paintings were about to be exposed",
			},
			DiscriminatingTest: types.DiscriminatingTest{
				Method:      "re-enactment of the nightcap ritual",
				Description: "Only the person who poured the brandy knew which decanter was in use that night.",
			},
			Solution: "Edmund Vale poisoned the decanter he had given Sir Charles as a gift.",
		},
	}}
	raw, err := json.Marshal(corpus)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "corpus.json")
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	cli := newOverrideClient()
	o := New(cli)

	req := baseRequest()
	req.SeedCorpusPath = path

	res, err := o.Run(context.Background(), req, nil)
	require.NoError(t, err, "novelty exhaustion must downgrade, not abort")
	require.Equal(t, StatusWarning, res.Status)

	require.Equal(t, 2, cli.calls[stage.NameCaseModel], "one avoidance-directed regeneration")
	require.Equal(t, "fail", res.Artifacts.NoveltyAudit.Verdict)
	require.Equal(t, "The Blackwood Decanter", res.Artifacts.NoveltyAudit.NearestLabel)

	var regen, residual bool
	for _, w := range res.Warnings {
		if strings.Contains(w, "novelty: regenerating") {
			regen = true
		}
		if strings.Contains(w, "novelty (non-blocking)") {
			residual = true
		}
	}
	require.True(t, regen, "expected regeneration warning, got %v", res.Warnings)
	require.True(t, residual, "expected residual downgrade warning, got %v", res.Warnings)
}

func TestRunValidationRepairRetry(t *testing.T) {
	cli := newOverrideClient()
	cli.overrides[stage.NameProse] = func(call int) (any, bool) {
		if call > 1 {
			return nil, false // repaired prose comes from the clean backend
		}
		// First draft never rules out Thomas Reed.
		return types.Prose{Chapters: []types.Chapter{
			{Title: "The Locked Study", Paragraphs: []string{
				"Sir Charles Blackwood was found dead behind the locked study door; a second decanter sat unused on the sideboard.",
			}},
			{Title: "The Re-enactment", Paragraphs: []string{
				"Inspector Hale staged a re-enactment of the nightcap ritual, and Margaret Ashworth was ruled out because the evidence of the kitchen timings excluded her.",
			}},
			{Title: "The Solution", Paragraphs: []string{
				"Edmund Vale confessed; the chain of evidence ran from the decanter to the forged paintings, and Edmund Vale was arrested.",
			}},
		}}, true
	}

	rec := &progress.Recorder{}
	o := New(cli)

	res, err := o.Run(context.Background(), baseRequest(), rec)
	require.NoError(t, err)
	require.Equal(t, StatusWarning, res.Status)
	require.Equal(t, 2, cli.calls[stage.NameProse], "exactly one repair retry")
	require.Equal(t, "passed", res.Artifacts.ValidationReport.Status)

	var gap, improved bool
	for _, w := range res.Warnings {
		if strings.Contains(w, "Story validation detected coverage gaps") {
			gap = true
		}
		if strings.Contains(w, "Prose repair retry improved validation outcomes") {
			improved = true
		}
	}
	require.True(t, gap, "expected gap warning, got %v", res.Warnings)
	require.True(t, improved, "expected improvement warning, got %v", res.Warnings)

	repairEvent := false
	for _, ev := range rec.Events {
		if ev.Stage == stage.NameProse && ev.Percentage == 95 {
			repairEvent = true
		}
	}
	require.True(t, repairEvent, "repair retry must be announced as progress")
}

func TestRunAssignsRunIDWhenAbsent(t *testing.T) {
	o := New(llm.NewFakeClient())
	req := baseRequest()
	req.RunID = ""

	res, err := o.Run(context.Background(), req, nil)
	require.NoError(t, err)
	require.NotEmpty(t, res.Metadata.RunID)
}

func TestRunStopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(llm.NewFakeClient()).Run(ctx, baseRequest(), nil)
	require.Error(t, err)
	require.True(t, errors.Is(err, context.Canceled))
}

