package stage

import (
	"context"

	"mysteryforge/internal/llm"
	"mysteryforge/internal/types"
)

const promptSetting = `You design the setting of a classic fair-play mystery.
` + jsonRules + `

Schema:
{
  "era": "string",
  "location": "string",
  "atmosphere": "string",
  "description": "string"
}

Ground the setting in the requested theme, era and location preset. The
description must be concrete enough to anchor later stages.`

// SettingStage produces the story's time and place.
type SettingStage struct{ invoker }

func NewSettingStage(cli llm.Client) *SettingStage {
	return &SettingStage{invoker{LLM: cli}}
}

type SettingIn struct {
	Request types.GenerationRequest `json:"request"`
}

func (s *SettingStage) Run(ctx context.Context, in SettingIn) (types.Setting, Meta, error) {
	var out types.Setting
	meta, err := s.call(ctx, NameSetting, "Generating setting", promptSetting, in, &out)
	return out, meta, err
}

const promptCast = `You cast the characters of a classic fair-play mystery.
` + jsonRules + `

Schema:
{
  "members": [
    {"name": "string", "role": "string", "age": 0, "occupation": "string", "secret": "string"}
  ]
}

Honor the requested cast size and any requested names. Exactly one member
must have role "detective"; the rest are suspects or supporting cast. Give
every suspect a plausible secret.`

// CastStage produces the character roster.
type CastStage struct{ invoker }

func NewCastStage(cli llm.Client) *CastStage {
	return &CastStage{invoker{LLM: cli}}
}

type CastIn struct {
	Request types.GenerationRequest `json:"request"`
	Setting types.Setting           `json:"setting"`
}

func (s *CastStage) Run(ctx context.Context, in CastIn) (types.Cast, Meta, error) {
	var out types.Cast
	meta, err := s.call(ctx, NameCast, "Generating cast", promptCast, in, &out)
	return out, meta, err
}

const promptBackground = `You write the social backdrop a mystery's crime is embedded in.
` + jsonRules + `

Schema:
{
  "summary": "string",
  "relationships": ["string"],
  "tensions": ["string"]
}

Describe the relationships and tensions among the cast that make the crime
credible without revealing who committed it.`

// BackgroundStage produces the background context.
type BackgroundStage struct{ invoker }

func NewBackgroundStage(cli llm.Client) *BackgroundStage {
	return &BackgroundStage{invoker{LLM: cli}}
}

type BackgroundIn struct {
	Request types.GenerationRequest `json:"request"`
	Setting types.Setting           `json:"setting"`
	Cast    types.Cast              `json:"cast"`
}

func (s *BackgroundStage) Run(ctx context.Context, in BackgroundIn) (types.BackgroundContext, Meta, error) {
	var out types.BackgroundContext
	meta, err := s.call(ctx, NameBackground, "Generating background context", promptBackground, in, &out)
	return out, meta, err
}

const promptDevices = `You pick the hard-logic devices for a fair-play mystery.
` + jsonRules + `

Schema:
{
  "devices": [
    {"name": "string", "category": "string", "constraint": "string"}
  ]
}

Choose devices (locked room, alibi trick, timing mechanism, ...) that suit
the setting and the requested primary axis. Each constraint must be a hard
rule later stages can rely on.`

// DevicesStage produces the hard-logic devices.
type DevicesStage struct{ invoker }

func NewDevicesStage(cli llm.Client) *DevicesStage {
	return &DevicesStage{invoker{LLM: cli}}
}

type DevicesIn struct {
	PrimaryAxis string        `json:"primary_axis"`
	Setting     types.Setting `json:"setting"`
	Cast        types.Cast    `json:"cast"`
}

func (s *DevicesStage) Run(ctx context.Context, in DevicesIn) (types.HardLogicDevices, Meta, error) {
	var out types.HardLogicDevices
	meta, err := s.call(ctx, NameDevices, "Generating hard-logic devices", promptDevices, in, &out)
	return out, meta, err
}
