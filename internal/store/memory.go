package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"mysteryforge/internal/progress"
	"mysteryforge/internal/types"
)

// MemoryStore keeps everything in process memory. Used by tests and CLI
// runs without a configured backend.
type MemoryStore struct {
	mu        sync.RWMutex
	artifacts map[string][]memArtifact
	events    map[string][]progress.Event
}

type memArtifact struct {
	kind types.Kind
	raw  json.RawMessage
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		artifacts: make(map[string][]memArtifact),
		events:    make(map[string][]progress.Event),
	}
}

func (s *MemoryStore) AppendArtifact(_ context.Context, runID string, kind types.Kind, artifact any) error {
	raw, err := json.Marshal(artifact)
	if err != nil {
		return fmt.Errorf("store: marshal %s artifact: %w", kind, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.artifacts[runID] = append(s.artifacts[runID], memArtifact{kind: kind, raw: raw})
	return nil
}

func (s *MemoryStore) AppendProgress(_ context.Context, runID string, ev progress.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[runID] = append(s.events[runID], ev)
	return nil
}

func (s *MemoryStore) LatestArtifact(_ context.Context, runID string, kind types.Kind) (json.RawMessage, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	arts := s.artifacts[runID]
	for i := len(arts) - 1; i >= 0; i-- {
		if arts[i].kind == kind {
			return arts[i].raw, true, nil
		}
	}
	return nil, false, nil
}

// Events returns the recorded progress events for a run, in append order.
func (s *MemoryStore) Events(runID string) []progress.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]progress.Event, len(s.events[runID]))
	copy(out, s.events[runID])
	return out
}

// ArtifactCount returns how many artifacts were appended for a run,
// retried attempts included.
func (s *MemoryStore) ArtifactCount(runID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.artifacts[runID])
}
