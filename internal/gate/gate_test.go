package gate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"mysteryforge/internal/guardrail"
)

func passing(v string) Check[string] {
	return func(s string) (string, guardrail.Result) { return s, guardrail.Result{} }
}

func failingWith(code string) guardrail.Result {
	return guardrail.Result{
		Issues:     []guardrail.Issue{{Severity: guardrail.SeverityCritical, Code: code, Message: code}},
		Directives: []string{"fix " + code},
	}
}

func TestRunAcceptsFirstCleanAttempt(t *testing.T) {
	calls := 0
	got, rep, err := Run(context.Background(),
		Policy{Name: "g", MaxAttempts: 3},
		func(ctx context.Context, directives []string) (string, error) {
			calls++
			return "artifact", nil
		},
		passing("artifact"))
	require.NoError(t, err)
	require.Equal(t, "artifact", got)
	require.Equal(t, 1, rep.Attempts)
	require.Equal(t, 1, calls)
	require.Empty(t, rep.Warnings)
}

func TestRunRegeneratesWithDirectives(t *testing.T) {
	var seen [][]string
	got, rep, err := Run(context.Background(),
		Policy{Name: "g", MaxAttempts: 2},
		func(ctx context.Context, directives []string) (string, error) {
			seen = append(seen, directives)
			if len(seen) == 1 {
				return "bad", nil
			}
			return "good", nil
		},
		func(s string) (string, guardrail.Result) {
			if s == "bad" {
				return s, failingWith("broken")
			}
			return s, guardrail.Result{}
		})
	require.NoError(t, err)
	require.Equal(t, "good", got)
	require.Equal(t, 2, rep.Attempts)

	// Second attempt received the first attempt's directives.
	require.Nil(t, seen[0])
	require.Equal(t, []string{"fix broken"}, seen[1])

	// The regeneration itself is recorded as a warning.
	require.Len(t, rep.Warnings, 1)
	require.Contains(t, rep.Warnings[0], "g: regenerating after 1 critical issue(s)")
}

func TestRunEscalatesFatalWithHint(t *testing.T) {
	_, rep, err := Run(context.Background(),
		Policy{Name: "clues", MaxAttempts: 2, OnExhausted: EscalateFatal, FatalHint: "deterministic fair-play guardrails"},
		func(ctx context.Context, directives []string) (string, error) { return "bad", nil },
		func(s string) (string, guardrail.Result) { return s, failingWith("broken") })
	require.Error(t, err)
	require.Equal(t, 2, rep.Attempts)
	require.Contains(t, err.Error(), "deterministic fair-play guardrails")
	require.Contains(t, err.Error(), "after 2 attempt(s)")
}

func TestRunDowngradesToWarning(t *testing.T) {
	got, rep, err := Run(context.Background(),
		Policy{Name: "fairplay", MaxAttempts: 2, OnExhausted: DowngradeToWarning},
		func(ctx context.Context, directives []string) (string, error) { return "best-effort", nil },
		func(s string) (string, guardrail.Result) { return s, failingWith("still broken") })
	require.NoError(t, err)
	require.Equal(t, "best-effort", got)
	require.NotEmpty(t, rep.Residual)

	found := false
	for _, w := range rep.Warnings {
		if w == "fairplay (non-blocking): still broken" {
			found = true
		}
	}
	require.True(t, found, "expected non-blocking residual warning, got %v", rep.Warnings)
}

func TestRunKeepBestRetainsEarlierAttempt(t *testing.T) {
	attempt := 0
	results := []guardrail.Result{
		{Issues: []guardrail.Issue{
			{Severity: guardrail.SeverityCritical, Message: "one"},
		}},
		{Issues: []guardrail.Issue{
			{Severity: guardrail.SeverityCritical, Message: "one"},
			{Severity: guardrail.SeverityCritical, Message: "two"},
		}},
	}
	got, _, err := Run(context.Background(),
		Policy{Name: "outline", MaxAttempts: 2, OnExhausted: DowngradeToWarning, KeepBest: true},
		func(ctx context.Context, directives []string) (string, error) {
			attempt++
			if attempt == 1 {
				return "first", nil
			}
			return "second", nil
		},
		func(s string) (string, guardrail.Result) {
			if s == "first" {
				return s, results[0]
			}
			return s, results[1]
		})
	require.NoError(t, err)
	require.Equal(t, "first", got, "retry with more criticals must be discarded")
}

func TestRunPropagatesInvokeError(t *testing.T) {
	boom := errors.New("backend down")
	_, _, err := Run(context.Background(),
		Policy{Name: "g", MaxAttempts: 3},
		func(ctx context.Context, directives []string) (string, error) { return "", boom },
		passing(""))
	require.ErrorIs(t, err, boom)
	require.Contains(t, err.Error(), "gate g:")
}

func TestRunHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := Run(ctx,
		Policy{Name: "g", MaxAttempts: 2},
		func(ctx context.Context, directives []string) (string, error) { return "x", nil },
		passing("x"))
	require.ErrorIs(t, err, context.Canceled)
}
