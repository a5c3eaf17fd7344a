package guardrail

// Severity classifies a guardrail issue. Critical issues trigger
// regeneration (or escalate when the attempt budget is exhausted);
// warnings are recorded and the pipeline proceeds.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
)

// Issue is one deterministic rule violation found in an artifact.
type Issue struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code,omitempty"`
	Message  string   `json:"message"`
}

// Result is the outcome of running one evaluator over one artifact.
// Fixes describe auto-corrections already applied to the returned artifact;
// Directives are corrective instructions for a regeneration attempt.
type Result struct {
	Issues     []Issue
	Fixes      []string
	Directives []string
}

// HasCritical reports whether any issue is critical.
func (r Result) HasCritical() bool {
	for _, i := range r.Issues {
		if i.Severity == SeverityCritical {
			return true
		}
	}
	return false
}

// Criticals returns the critical issues only.
func (r Result) Criticals() []Issue {
	var out []Issue
	for _, i := range r.Issues {
		if i.Severity == SeverityCritical {
			out = append(out, i)
		}
	}
	return out
}

// Warnings returns the warning-level issues only.
func (r Result) Warnings() []Issue {
	var out []Issue
	for _, i := range r.Issues {
		if i.Severity == SeverityWarning {
			out = append(out, i)
		}
	}
	return out
}

func (r *Result) critical(code, msg string) {
	r.Issues = append(r.Issues, Issue{Severity: SeverityCritical, Code: code, Message: msg})
}

func (r *Result) warning(code, msg string) {
	r.Issues = append(r.Issues, Issue{Severity: SeverityWarning, Code: code, Message: msg})
}
