package stage

import (
	"context"

	"mysteryforge/internal/llm"
	"mysteryforge/internal/types"
)

const promptOutline = `You plan the scene-by-scene outline of a fair-play
mystery.
` + jsonRules + `

Schema:
{
  "scenes": [
    {"number": 1, "title": "string", "purpose": "string", "summary": "string", "revelation": "string"}
  ]
}

Rules:
- Place every clue's revelation in a scene matching its placement band.
- Include a discriminating-test scene where suspects are explicitly
  evaluated and at least one is ruled out using on-page evidence.
- Include a closure scene that rules out every non-culprit suspect with
  explicit elimination language before the culprit is named.`

// OutlineStage produces the narrative outline.
type OutlineStage struct{ invoker }

func NewOutlineStage(cli llm.Client) *OutlineStage {
	return &OutlineStage{invoker{LLM: cli}}
}

type OutlineIn struct {
	Request   types.GenerationRequest `json:"request"`
	CaseModel types.CaseModel         `json:"case_model"`
	Clues     types.ClueDistribution  `json:"clues"`
	Cast      types.Cast              `json:"cast"`
	// Directives carry coverage-repair instructions on regeneration.
	Directives []string `json:"directives,omitempty"`
}

func (s *OutlineStage) Run(ctx context.Context, in OutlineIn) (types.NarrativeOutline, Meta, error) {
	var out types.NarrativeOutline
	meta, err := s.call(ctx, NameOutline, "Generating narrative outline", promptOutline, in, &out)
	return out, meta, err
}
