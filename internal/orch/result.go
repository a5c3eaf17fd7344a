package orch

import (
	"fmt"
	"strings"

	"mysteryforge/internal/types"
)

// Status is the overall outcome of a completed run.
type Status string

const (
	StatusSuccess Status = "success"
	StatusWarning Status = "warning"
	StatusFailure Status = "failure"
)

// Metadata aggregates the run's accounting.
type Metadata struct {
	RunID              string             `json:"run_id"`
	ProjectID          string             `json:"project_id,omitempty"`
	TotalCost          float64            `json:"total_cost"`
	TotalDurationMS    int64              `json:"total_duration_ms"`
	PerStageCost       map[string]float64 `json:"per_stage_cost"`
	PerStageDurationMS map[string]int64   `json:"per_stage_duration_ms"`
}

// Result is the final outcome of one pipeline run.
type Result struct {
	Artifacts *types.Artifacts `json:"artifacts"`
	Metadata  Metadata         `json:"metadata"`
	Status    Status           `json:"status"`
	Warnings  []string         `json:"warnings,omitempty"`
	Errors    []string         `json:"errors,omitempty"`
}

// DeriveStatus applies the fixed precedence: failure if any error was
// recorded, else warning if any warning was recorded, else success.
func DeriveStatus(errors, warnings []string) Status {
	if len(errors) > 0 {
		return StatusFailure
	}
	if len(warnings) > 0 {
		return StatusWarning
	}
	return StatusSuccess
}

// GenerationFailure is the single failure shape a fatally aborted run
// surfaces, whichever stage failed. It carries the warnings and errors
// accumulated up to the abort for diagnostics.
type GenerationFailure struct {
	Stage    string
	Warnings []string
	Errors   []string
	Err      error
}

func (e *GenerationFailure) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "generation failed at stage %s: %v", e.Stage, e.Err)
	if len(e.Warnings) > 0 {
		fmt.Fprintf(&b, " (%d warning(s) accumulated)", len(e.Warnings))
	}
	return b.String()
}

func (e *GenerationFailure) Unwrap() error { return e.Err }
