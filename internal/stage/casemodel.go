package stage

import (
	"context"
	"fmt"
	"strings"

	"mysteryforge/internal/llm"
	"mysteryforge/internal/schema"
	"mysteryforge/internal/types"
)

const promptCaseModel = `You construct the case model of a fair-play mystery:
the ground-truth crime, suspects, culprit and solution logic.
` + jsonRules + `

Schema:
{
  "crime": {"victim": "string", "method": "string", "location": "string", "time": "string", "motive": "string"},
  "suspects": [{"name": "string", "motive": "string", "alibi": "string"}],
  "culprit": "string",
  "discriminating_test": {"method": "string", "description": "string"},
  "solution": "string",
  "timeline": [{"when": "string", "event": "string"}]
}

Rules:
- The culprit must be one of the suspects, by exact name.
- Every suspect needs a motive and an alibi; exactly one alibi is breakable.
- The discriminating test must conclusively separate the culprit from all
  other suspects using in-story evidence.
- Respect every hard-logic device constraint you are given.`

// maxSchemaAttempts bounds the internal error-correction loop: each failed
// attempt produces a correction request built from the prior attempt's
// validation errors.
const maxSchemaAttempts = 5

// CaseModelStage produces the case model, retrying internally until the
// artifact passes structural validation or the attempt budget runs out.
type CaseModelStage struct{ invoker }

func NewCaseModelStage(cli llm.Client) *CaseModelStage {
	return &CaseModelStage{invoker{LLM: cli}}
}

type CaseModelIn struct {
	Request    types.GenerationRequest `json:"request"`
	Setting    types.Setting           `json:"setting"`
	Cast       types.Cast              `json:"cast"`
	Background types.BackgroundContext `json:"background"`
	Devices    types.HardLogicDevices  `json:"devices"`
	// Directives carry corrective instructions, e.g. novelty avoidance
	// patterns from a failed audit.
	Directives []string `json:"directives,omitempty"`
}

func (s *CaseModelStage) Run(ctx context.Context, in CaseModelIn) (types.CaseModel, Meta, error) {
	var total Meta
	input := map[string]any{
		"request":    in.Request,
		"setting":    in.Setting,
		"cast":       in.Cast,
		"background": in.Background,
		"devices":    in.Devices,
	}
	if len(in.Directives) > 0 {
		input["directives"] = in.Directives
	}

	var lastErrs []string
	for attempt := 1; attempt <= maxSchemaAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return types.CaseModel{}, total, err
		}
		var cm types.CaseModel
		meta, err := s.call(ctx, NameCaseModel, "Generating case model", promptCaseModel, input, &cm)
		total.Add(meta)
		if err != nil {
			return types.CaseModel{}, total, err
		}

		res := schema.Validate(types.KindCaseModel, &cm)
		if res.Valid {
			return cm, total, nil
		}
		lastErrs = res.Errors

		// Fold the validation errors into an error-correction request.
		input["previous_attempt"] = cm
		input["schema_errors"] = res.Errors
		input["correction"] = "The previous case model failed structural validation. Fix every listed error and return the full corrected case model."
	}

	return types.CaseModel{}, total, fmt.Errorf("stage %s: schema validation failed after %d attempts: %s",
		NameCaseModel, maxSchemaAttempts, strings.Join(lastErrs, "; "))
}
