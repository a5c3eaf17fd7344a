package stage

import (
	"context"

	"mysteryforge/internal/llm"
	"mysteryforge/internal/types"
)

const promptClues = `You distribute the clues of a fair-play mystery across
the narrative.
` + jsonRules + `

Schema:
{
  "clues": [
    {"id": "string", "description": "string", "placement": "early|mid|late", "essential": true, "points_to": "string"}
  ]
}

Rules:
- At least three clues must be essential to reaching the solution.
- Essential clues belong in the early or mid bands; the reader must be able
  to solve the case before the solution is revealed.
- Every clue id must be unique.
- Describe only information disclosed on the page; never reference what the
  detective privately knows.`

// CluesStage produces the clue distribution.
type CluesStage struct{ invoker }

func NewCluesStage(cli llm.Client) *CluesStage {
	return &CluesStage{invoker{LLM: cli}}
}

type CluesIn struct {
	CaseModel types.CaseModel `json:"case_model"`
	// Directives carry corrective instructions from a failed guardrail or
	// fair-play audit.
	Directives []string `json:"directives,omitempty"`
}

func (s *CluesStage) Run(ctx context.Context, in CluesIn) (types.ClueDistribution, Meta, error) {
	var out types.ClueDistribution
	meta, err := s.call(ctx, NameClues, "Distributing clues", promptClues, in, &out)
	return out, meta, err
}

const promptFairPlay = `You audit a mystery's clue distribution for fair play:
all information needed to solve the case must be disclosed to the reader
before the solution.
` + jsonRules + `

Schema:
{
  "status": "pass|fail",
  "findings": ["string"]
}

Fail the audit when any step of the solution depends on information absent
from the clues, and say exactly which step in the findings.`

// FairPlayStage audits the clue distribution against the case model.
type FairPlayStage struct{ invoker }

func NewFairPlayStage(cli llm.Client) *FairPlayStage {
	return &FairPlayStage{invoker{LLM: cli}}
}

type FairPlayIn struct {
	CaseModel types.CaseModel        `json:"case_model"`
	Clues     types.ClueDistribution `json:"clues"`
}

func (s *FairPlayStage) Run(ctx context.Context, in FairPlayIn) (types.FairPlayAudit, Meta, error) {
	var out types.FairPlayAudit
	meta, err := s.call(ctx, NameFairPlay, "Auditing fair play", promptFairPlay, in, &out)
	return out, meta, err
}
