// Package store holds the caller-side persistence contract the orchestrator
// depends on. The orchestrator only ever appends artifacts and progress
// events and reads back the latest artifact of a kind; everything else about
// storage is the adapter's business.
package store

import (
	"context"
	"encoding/json"

	"mysteryforge/internal/progress"
	"mysteryforge/internal/types"
)

// RunStore is the narrow persistence contract for one pipeline run.
// Implementations must tolerate repeated appends of the same kind: the
// latest append wins for LatestArtifact.
type RunStore interface {
	AppendArtifact(ctx context.Context, runID string, kind types.Kind, artifact any) error
	AppendProgress(ctx context.Context, runID string, ev progress.Event) error
	LatestArtifact(ctx context.Context, runID string, kind types.Kind) (json.RawMessage, bool, error)
}
