package stage

import (
	"context"

	"mysteryforge/internal/llm"
	"mysteryforge/internal/types"
)

const promptProse = `You write the full prose of a fair-play mystery from its
outline and supporting profiles.
` + jsonRules + `

Schema:
{
  "chapters": [
    {"title": "string", "paragraphs": ["string"]}
  ]
}

Rules:
- One chapter per outline scene, in order, titles matching.
- Disclose every clue on the page in its assigned scene.
- After the confession or arrest, refer to the culprit by name, never only
  by epithets like "the killer".
- Honor the requested narrative style and approximate target length.
- Obey every quality guardrail directive you are given.`

// ProseStage produces the chapter prose.
type ProseStage struct{ invoker }

func NewProseStage(cli llm.Client) *ProseStage {
	return &ProseStage{invoker{LLM: cli}}
}

type ProseIn struct {
	CaseModel         types.CaseModel         `json:"case_model"`
	Outline           types.NarrativeOutline  `json:"outline"`
	Cast              types.Cast              `json:"cast"`
	CharacterProfiles types.CharacterProfiles `json:"character_profiles"`
	LocationProfiles  types.LocationProfiles  `json:"location_profiles"`
	TemporalContext   types.TemporalContext   `json:"temporal_context"`
	TargetLength      int                     `json:"target_length,omitempty"`
	NarrativeStyle    string                  `json:"narrative_style,omitempty"`
	// QualityGuardrails carries repair directives on regeneration.
	QualityGuardrails []string `json:"quality_guardrails,omitempty"`
	RunID             string   `json:"run_id"`
	ProjectID         string   `json:"project_id,omitempty"`
}

func (s *ProseStage) Run(ctx context.Context, in ProseIn) (types.Prose, Meta, error) {
	var out types.Prose
	meta, err := s.call(ctx, NameProse, "Generating prose", promptProse, in, &out)
	return out, meta, err
}
