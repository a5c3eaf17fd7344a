package types

import "strings"

// Scene is one planned beat of the narrative outline.
type Scene struct {
	Number     int    `json:"number"`
	Title      string `json:"title"`
	Purpose    string `json:"purpose,omitempty"`
	Summary    string `json:"summary"`
	Revelation string `json:"revelation,omitempty"`
}

// Text concatenates every textual field of the scene for lexical checks.
func (s Scene) Text() string {
	return strings.Join([]string{s.Title, s.Purpose, s.Summary, s.Revelation}, "\n")
}

type NarrativeOutline struct {
	Scenes []Scene `json:"scenes"`
}

// Chapter is one generated prose chapter.
type Chapter struct {
	Title      string   `json:"title"`
	Paragraphs []string `json:"paragraphs"`
}

// Text joins the chapter paragraphs with blank lines.
func (c Chapter) Text() string {
	return strings.Join(c.Paragraphs, "\n\n")
}

type Prose struct {
	Chapters []Chapter `json:"chapters"`
}

// StoryView is the flattened, scene-per-chapter view handed to the
// narrative-consistency checker.
type StoryView struct {
	ID        string       `json:"id"`
	ProjectID string       `json:"project_id"`
	Scenes    []StoryScene `json:"scenes"`
}

type StoryScene struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	Text   string `json:"text"`
}

// StoryViewOf flattens prose chapters into the validation view.
func StoryViewOf(runID, projectID string, p Prose) StoryView {
	if projectID == "" {
		projectID = runID
	}
	view := StoryView{ID: runID, ProjectID: projectID}
	for i, ch := range p.Chapters {
		view.Scenes = append(view.Scenes, StoryScene{
			Number: i + 1,
			Title:  ch.Title,
			Text:   ch.Text(),
		})
	}
	return view
}

// Validation error types the consistency checker can emit. The recoverable
// subset drives the targeted prose repair cycle.
const (
	ValErrMissingDiscriminatingTest   = "missing_discriminating_test"
	ValErrTestNotRealized             = "cml_test_not_realized"
	ValErrSuspectClosureMissing       = "suspect_closure_missing"
	ValErrCulpritEvidenceChainMissing = "culprit_evidence_chain_missing"
	ValErrEncodingArtifacts           = "encoding_artifacts"
)

type ValidationError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Scene   int    `json:"scene,omitempty"`
}

type ValidationSummary struct {
	Critical int `json:"critical"`
	Warnings int `json:"warnings"`
}

// ValidationReport is the outcome of the narrative-consistency check.
type ValidationReport struct {
	Status   string            `json:"status"` // "passed" or "failed"
	Errors   []ValidationError `json:"errors,omitempty"`
	Warnings []ValidationError `json:"warnings,omitempty"`
	Summary  ValidationSummary `json:"summary"`
}

// HasErrorType reports whether any error of the given type is present.
func (r ValidationReport) HasErrorType(t string) bool {
	for _, e := range r.Errors {
		if e.Type == t {
			return true
		}
	}
	return false
}
