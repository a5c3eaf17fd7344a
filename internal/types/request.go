package types

// GenerationRequest carries the user preferences for one pipeline run.
// It is immutable for the duration of the run.
type GenerationRequest struct {
	RunID     string `json:"run_id"`
	ProjectID string `json:"project_id,omitempty"`

	Theme          string   `json:"theme"`
	Era            string   `json:"era,omitempty"`
	LocationPreset string   `json:"location_preset,omitempty"`
	Tone           string   `json:"tone,omitempty"`
	PrimaryAxis    string   `json:"primary_axis,omitempty"` // e.g. "whodunit", "howdunit", "alibi"
	CastSize       int      `json:"cast_size,omitempty"`
	CastNames      []string `json:"cast_names,omitempty"`
	TargetLength   int      `json:"target_length,omitempty"` // approximate word count
	NarrativeStyle string   `json:"narrative_style,omitempty"`

	// Novelty controls. A threshold >= 1.0 disables the check entirely.
	SkipNoveltyCheck    bool    `json:"skip_novelty_check,omitempty"`
	SimilarityThreshold float64 `json:"similarity_threshold,omitempty"`
	SeedCorpusPath      string  `json:"seed_corpus_path,omitempty"`
}

// NoveltyEnabled reports whether the novelty audit stage should run.
func (r GenerationRequest) NoveltyEnabled() bool {
	if r.SkipNoveltyCheck {
		return false
	}
	if r.SimilarityThreshold >= 1.0 {
		return false
	}
	return true
}

// EffectiveThreshold returns the similarity threshold with the default applied.
func (r GenerationRequest) EffectiveThreshold() float64 {
	if r.SimilarityThreshold <= 0 {
		return 0.72
	}
	return r.SimilarityThreshold
}
