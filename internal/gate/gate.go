// Package gate composes a stage invocation with its guardrails and a
// bounded regeneration policy. Every quality gate in the pipeline is an
// instance of the same repair loop: run guardrails, fold the issues into
// corrective directives, re-invoke, re-check, and on exhaustion either
// escalate to a fatal error or downgrade to warnings.
package gate

import (
	"context"
	"fmt"
	"strings"

	"mysteryforge/internal/guardrail"
)

// Escalation decides what happens when the attempt budget is exhausted
// while critical issues remain.
type Escalation int

const (
	// EscalateFatal aborts the run with an error.
	EscalateFatal Escalation = iota
	// DowngradeToWarning records the residual issues and continues with the
	// best artifact seen. Used where a best-effort artifact is preferred to
	// aborting a paid, multi-stage run.
	DowngradeToWarning
)

// Policy configures one gate.
type Policy struct {
	Name        string
	MaxAttempts int // total invocations; 1 means no regeneration
	OnExhausted Escalation
	// KeepBest keeps the attempt with strictly the fewest critical issues;
	// a retry that does not improve is discarded.
	KeepBest bool
	// FatalHint, when set, is woven into the fatal error message.
	FatalHint string
}

// Report accumulates what happened inside a gate.
type Report struct {
	Attempts int
	Warnings []string
	Fixes    []string
	// Residual holds the issues still attached to the accepted artifact.
	Residual []guardrail.Issue
}

// Invoke produces a candidate artifact. The directives carry corrective
// instructions folded in from the previous attempt's issues; they are empty
// on the first attempt.
type Invoke[T any] func(ctx context.Context, directives []string) (T, error)

// Check evaluates a candidate and may return an auto-corrected copy.
type Check[T any] func(T) (T, guardrail.Result)

// Run executes the repair loop. It returns the accepted artifact, the gate
// report, and a non-nil error only when the policy escalates fatally or the
// backend fails.
func Run[T any](ctx context.Context, pol Policy, invoke Invoke[T], check Check[T]) (T, Report, error) {
	var zero T
	if pol.MaxAttempts < 1 {
		pol.MaxAttempts = 1
	}
	rep := Report{}

	var (
		best       T
		bestRes    guardrail.Result
		bestCrit   = -1
		directives []string
	)

	for attempt := 1; attempt <= pol.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, rep, err
		}
		rep.Attempts = attempt

		candidate, err := invoke(ctx, directives)
		if err != nil {
			return zero, rep, fmt.Errorf("gate %s: %w", pol.Name, err)
		}
		candidate, res := check(candidate)
		rep.Fixes = append(rep.Fixes, res.Fixes...)

		crit := len(res.Criticals())
		if bestCrit < 0 || !pol.KeepBest || crit < bestCrit {
			best, bestRes, bestCrit = candidate, res, crit
		}

		if crit == 0 {
			for _, w := range res.Warnings() {
				rep.Warnings = append(rep.Warnings, fmt.Sprintf("%s: %s", pol.Name, w.Message))
			}
			rep.Residual = res.Warnings()
			return candidate, rep, nil
		}

		if attempt < pol.MaxAttempts {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf(
				"%s: regenerating after %d critical issue(s): %s",
				pol.Name, crit, res.Criticals()[0].Message))
			directives = res.Directives
		}
	}

	// Budget exhausted with criticals remaining on every attempt.
	if pol.OnExhausted == DowngradeToWarning {
		for _, iss := range bestRes.Issues {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("%s (non-blocking): %s", pol.Name, iss.Message))
		}
		rep.Residual = bestRes.Issues
		return best, rep, nil
	}

	msgs := make([]string, 0, len(bestRes.Criticals()))
	for _, iss := range bestRes.Criticals() {
		msgs = append(msgs, iss.Message)
	}
	if pol.FatalHint != "" {
		return zero, rep, fmt.Errorf("gate %s: rejected by %s after %d attempt(s): %s",
			pol.Name, pol.FatalHint, rep.Attempts, strings.Join(msgs, "; "))
	}
	return zero, rep, fmt.Errorf("gate %s: critical issues remain after %d attempt(s): %s",
		pol.Name, rep.Attempts, strings.Join(msgs, "; "))
}
