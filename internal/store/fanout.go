package store

import (
	"context"
	"encoding/json"
	"errors"

	"mysteryforge/internal/progress"
	"mysteryforge/internal/types"
)

// Fanout appends to every backing store and reads from the first one that
// has the artifact. It lets a run persist to the database and mirror to
// object storage at the same time.
type Fanout struct {
	stores []RunStore
}

func NewFanout(stores ...RunStore) *Fanout {
	return &Fanout{stores: stores}
}

func (f *Fanout) AppendArtifact(ctx context.Context, runID string, kind types.Kind, artifact any) error {
	var errs []error
	for _, s := range f.stores {
		if err := s.AppendArtifact(ctx, runID, kind, artifact); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f *Fanout) AppendProgress(ctx context.Context, runID string, ev progress.Event) error {
	var errs []error
	for _, s := range f.stores {
		if err := s.AppendProgress(ctx, runID, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f *Fanout) LatestArtifact(ctx context.Context, runID string, kind types.Kind) (json.RawMessage, bool, error) {
	var firstErr error
	for _, s := range f.stores {
		raw, ok, err := s.LatestArtifact(ctx, runID, kind)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if ok {
			return raw, true, nil
		}
	}
	return nil, false, firstErr
}
