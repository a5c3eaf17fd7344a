// Package novelty checks a generated case model against a read-only corpus
// of seed cases, so the pipeline does not reproduce a well-known plot.
package novelty

import (
	"encoding/json"
	"fmt"
	"os"

	lru "github.com/hashicorp/golang-lru/v2"

	"mysteryforge/internal/types"
)

// SeedCase is one labeled entry of the seed corpus.
type SeedCase struct {
	Label     string          `json:"label"`
	CaseModel types.CaseModel `json:"case_model"`
}

// Loader reads seed corpora from disk, caching parsed files by path.
type Loader struct {
	cache *lru.Cache[string, []SeedCase]
}

func NewLoader() *Loader {
	cache, _ := lru.New[string, []SeedCase](16)
	return &Loader{cache: cache}
}

// Load returns the corpus at path, parsing it at most once per cache
// lifetime. A missing path yields an empty corpus, not an error; the audit
// then trivially passes.
func (l *Loader) Load(path string) ([]SeedCase, error) {
	if path == "" {
		return nil, nil
	}
	if seeds, ok := l.cache.Get(path); ok {
		return seeds, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("novelty: read corpus: %w", err)
	}
	var seeds []SeedCase
	if err := json.Unmarshal(b, &seeds); err != nil {
		return nil, fmt.Errorf("novelty: parse corpus %s: %w", path, err)
	}
	l.cache.Add(path, seeds)
	return seeds, nil
}
