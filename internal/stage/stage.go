// Package stage wraps the generation backend into typed pipeline stages.
// Each invoker corresponds to one stage: it emits a progress event before
// and after the call, sends a prompt plus structured input, normalizes the
// returned JSON into the stage's artifact type, and reports cost/duration
// metadata. Retry policy does not live here; that belongs to the gates.
package stage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"mysteryforge/internal/llm"
	"mysteryforge/internal/progress"
)

// Stage names, also used as ledger keys and fake-client routing keys.
const (
	NameSetting           = "setting"
	NameCast              = "cast"
	NameBackground        = "background"
	NameDevices           = "devices"
	NameCaseModel         = "case_model"
	NameNovelty           = "novelty"
	NameClues             = "clues"
	NameFairPlay          = "fairplay"
	NameOutline           = "outline"
	NameCharacterProfiles = "character_profiles"
	NameLocationProfiles  = "location_profiles"
	NameTemporal          = "temporal"
	NameProse             = "prose"
	NameValidation        = "validation"
	NameRelease           = "release"
)

// Pipeline-wide progress percentages per stage, in fixed stage order.
var stagePercent = map[string]int{
	NameSetting:           5,
	NameCast:              12,
	NameBackground:        18,
	NameDevices:           24,
	NameCaseModel:         32,
	NameNovelty:           38,
	NameClues:             45,
	NameFairPlay:          52,
	NameOutline:           60,
	NameCharacterProfiles: 68,
	NameLocationProfiles:  72,
	NameTemporal:          76,
	NameProse:             88,
	NameValidation:        96,
	NameRelease:           99,
}

// Percent returns the progress percentage assigned to a stage.
func Percent(name string) int { return stagePercent[name] }

// Meta carries the cost/duration measurement of one stage invocation.
// Costs of retried attempts accumulate, they never replace.
type Meta struct {
	Cost       float64 `json:"cost"`
	DurationMS int64   `json:"duration_ms"`
}

func (m *Meta) Add(other Meta) {
	m.Cost += other.Cost
	m.DurationMS += other.DurationMS
}

// invoker is embedded by every stage to share the call plumbing.
type invoker struct {
	LLM llm.Client
}

// Nominal cost per estimated token; byte-length/4 is the same token
// estimate the backend clients use.
const costPerToken = 2e-6

func estimateCost(promptLen, responseLen int) float64 {
	return float64(promptLen+responseLen) / 4.0 * costPerToken
}

// call runs one backend request for the named stage and decodes the
// response into out. It emits the start/end progress pair and returns the
// cost/duration of this single attempt.
func (v invoker) call(ctx context.Context, name, message, prompt string, input, out any) (Meta, error) {
	pct := Percent(name)
	progress.Emit(ctx, name, message, pct)
	start := time.Now()

	ctx = llm.WithStage(ctx, name)
	raw, err := v.LLM.GenerateJSON(ctx, prompt, input)
	meta := Meta{DurationMS: time.Since(start).Milliseconds()}
	if err != nil {
		return meta, fmt.Errorf("stage %s: generation failed: %w", name, err)
	}
	meta.Cost = estimateCost(len(prompt), len(raw))

	if err := json.Unmarshal(stripFences(raw), out); err != nil {
		return meta, fmt.Errorf("stage %s: %w: %v", name, llm.ErrInvalidJSON, err)
	}
	progress.Emit(ctx, name, message+" done", pct)
	return meta, nil
}

// stripFences removes a surrounding markdown code fence some models emit
// despite the JSON MIME type.
func stripFences(raw json.RawMessage) json.RawMessage {
	s := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(s, "```") {
		return raw
	}
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return json.RawMessage(strings.TrimSpace(s))
}

const jsonRules = `You MUST output STRICT JSON that exactly matches the schema below.
No comments, no trailing commas, no backticks. If something is unknown,
return an empty string or array explicitly. JSON only; no Markdown, no
prose outside the JSON object.`
