package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"mysteryforge/internal/progress"
	"mysteryforge/internal/tester"
	"mysteryforge/internal/types"
)

func TestMemoryStoreLatestWins(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	tester.NoErr(t, s.AppendArtifact(ctx, "run-1", types.KindCaseModel, map[string]string{"version": "first"}))
	tester.NoErr(t, s.AppendArtifact(ctx, "run-1", types.KindCaseModel, map[string]string{"version": "second"}))

	raw, ok, err := s.LatestArtifact(ctx, "run-1", types.KindCaseModel)
	tester.NoErr(t, err)
	tester.True(t, ok)

	var got map[string]string
	tester.NoErr(t, json.Unmarshal(raw, &got))
	tester.Eq(t, got["version"], "second")

	tester.Eq(t, s.ArtifactCount("run-1"), 2)
}

func TestMemoryStoreMissingArtifact(t *testing.T) {
	s := NewMemoryStore()
	_, ok, err := s.LatestArtifact(context.Background(), "run-1", types.KindProse)
	tester.NoErr(t, err)
	tester.False(t, ok)
}

func TestMemoryStoreRunsAreIsolated(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	tester.NoErr(t, s.AppendArtifact(ctx, "run-1", types.KindSetting, map[string]int{"n": 1}))

	_, ok, err := s.LatestArtifact(ctx, "run-2", types.KindSetting)
	tester.NoErr(t, err)
	tester.False(t, ok)
}

func TestMemoryStoreProgress(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	tester.NoErr(t, s.AppendProgress(ctx, "run-1", progress.Event{Stage: "setting", Percentage: 5, Timestamp: time.Now()}))
	tester.NoErr(t, s.AppendProgress(ctx, "run-1", progress.Event{Stage: "cast", Percentage: 12, Timestamp: time.Now()}))

	events := s.Events("run-1")
	tester.Eq(t, len(events), 2)
	tester.Eq(t, events[0].Stage, "setting")
	tester.Eq(t, events[1].Stage, "cast")
}

func TestFanoutAppendsToAllAndReadsFirst(t *testing.T) {
	ctx := context.Background()
	a, b := NewMemoryStore(), NewMemoryStore()
	f := NewFanout(a, b)

	tester.NoErr(t, f.AppendArtifact(ctx, "run-1", types.KindSetting, map[string]int{"n": 1}))
	tester.Eq(t, a.ArtifactCount("run-1"), 1)
	tester.Eq(t, b.ArtifactCount("run-1"), 1)

	_, ok, err := f.LatestArtifact(ctx, "run-1", types.KindSetting)
	tester.NoErr(t, err)
	tester.True(t, ok)
}

func TestFanoutFallsThroughToLaterStore(t *testing.T) {
	ctx := context.Background()
	a, b := NewMemoryStore(), NewMemoryStore()
	tester.NoErr(t, b.AppendArtifact(ctx, "run-1", types.KindProse, map[string]int{"n": 2}))

	_, ok, err := NewFanout(a, b).LatestArtifact(ctx, "run-1", types.KindProse)
	tester.NoErr(t, err)
	tester.True(t, ok)
}
