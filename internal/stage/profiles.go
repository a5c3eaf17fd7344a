package stage

import (
	"context"

	"mysteryforge/internal/llm"
	"mysteryforge/internal/types"
)

const promptCharacterProfiles = `You deepen a mystery's cast into prose-ready
character profiles.
` + jsonRules + `

Schema:
{
  "profiles": [
    {"name": "string", "voice": "string", "background": "string", "arc": "string"}
  ]
}

Profile every cast member by exact name. Voices must be distinct enough to
carry dialogue.`

type CharacterProfilesStage struct{ invoker }

func NewCharacterProfilesStage(cli llm.Client) *CharacterProfilesStage {
	return &CharacterProfilesStage{invoker{LLM: cli}}
}

type CharacterProfilesIn struct {
	Cast      types.Cast      `json:"cast"`
	CaseModel types.CaseModel `json:"case_model"`
}

func (s *CharacterProfilesStage) Run(ctx context.Context, in CharacterProfilesIn) (types.CharacterProfiles, Meta, error) {
	var out types.CharacterProfiles
	meta, err := s.call(ctx, NameCharacterProfiles, "Generating character profiles", promptCharacterProfiles, in, &out)
	return out, meta, err
}

const promptLocationProfiles = `You detail the locations of a mystery for
prose generation.
` + jsonRules + `

Schema:
{
  "profiles": [
    {"name": "string", "description": "string", "significance": "string"}
  ]
}

Cover at least the crime scene and every location named in the timeline.`

type LocationProfilesStage struct{ invoker }

func NewLocationProfilesStage(cli llm.Client) *LocationProfilesStage {
	return &LocationProfilesStage{invoker{LLM: cli}}
}

type LocationProfilesIn struct {
	Setting   types.Setting   `json:"setting"`
	CaseModel types.CaseModel `json:"case_model"`
}

func (s *LocationProfilesStage) Run(ctx context.Context, in LocationProfilesIn) (types.LocationProfiles, Meta, error) {
	var out types.LocationProfiles
	meta, err := s.call(ctx, NameLocationProfiles, "Generating location profiles", promptLocationProfiles, in, &out)
	return out, meta, err
}

const promptTemporal = `You pin a mystery's events to a concrete timeline for
prose generation.
` + jsonRules + `

Schema:
{
  "timeline": [{"label": "string", "when": "string"}],
  "pacing": "string"
}

The timeline must be consistent with the case model's timeline and every
device constraint.`

type TemporalStage struct{ invoker }

func NewTemporalStage(cli llm.Client) *TemporalStage {
	return &TemporalStage{invoker{LLM: cli}}
}

type TemporalIn struct {
	CaseModel types.CaseModel        `json:"case_model"`
	Devices   types.HardLogicDevices `json:"devices"`
}

func (s *TemporalStage) Run(ctx context.Context, in TemporalIn) (types.TemporalContext, Meta, error) {
	var out types.TemporalContext
	meta, err := s.call(ctx, NameTemporal, "Generating temporal context", promptTemporal, in, &out)
	return out, meta, err
}
