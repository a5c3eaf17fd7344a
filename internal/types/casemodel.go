package types

// CaseModel is the structured ground truth for the mystery: crime, suspects,
// solution logic and the discriminating test that separates the culprit from
// everyone else. Downstream stages treat it as read-only.
type CaseModel struct {
	Crime              Crime               `json:"crime"`
	Suspects           []Suspect           `json:"suspects"`
	Culprit            string              `json:"culprit"`
	DiscriminatingTest DiscriminatingTest  `json:"discriminating_test"`
	Solution           string              `json:"solution"`
	Timeline           []CaseTimelineEvent `json:"timeline,omitempty"`
}

type Crime struct {
	Victim   string `json:"victim"`
	Method   string `json:"method"`
	Location string `json:"location"`
	Time     string `json:"time,omitempty"`
	Motive   string `json:"motive,omitempty"`
}

type Suspect struct {
	Name   string `json:"name"`
	Motive string `json:"motive,omitempty"`
	Alibi  string `json:"alibi,omitempty"`
}

// DiscriminatingTest describes the mechanism that conclusively singles out
// the culprit using in-story evidence.
type DiscriminatingTest struct {
	Method      string `json:"method"`
	Description string `json:"description"`
}

type CaseTimelineEvent struct {
	When  string `json:"when"`
	Event string `json:"event"`
}

// SuspectNames returns all suspect names in declaration order.
func (c CaseModel) SuspectNames() []string {
	out := make([]string, 0, len(c.Suspects))
	for _, s := range c.Suspects {
		out = append(out, s.Name)
	}
	return out
}

// NonCulpritSuspects returns every suspect name except the culprit.
func (c CaseModel) NonCulpritSuspects() []string {
	out := make([]string, 0, len(c.Suspects))
	for _, s := range c.Suspects {
		if s.Name != c.Culprit {
			out = append(out, s.Name)
		}
	}
	return out
}

// Clue placement bands within the narrative.
const (
	PlacementEarly = "early"
	PlacementMid   = "mid"
	PlacementLate  = "late"
)

// Clue is one piece of disclosed evidence.
type Clue struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Placement   string `json:"placement"` // early | mid | late
	Essential   bool   `json:"essential"`
	PointsTo    string `json:"points_to,omitempty"`
}

// ClueDistribution assigns clues to narrative bands.
type ClueDistribution struct {
	Clues []Clue `json:"clues"`
}

// CountBy returns how many clues sit in the given placement band.
func (d ClueDistribution) CountBy(placement string) int {
	n := 0
	for _, c := range d.Clues {
		if c.Placement == placement {
			n++
		}
	}
	return n
}

// EssentialCount returns the number of clues marked essential.
func (d ClueDistribution) EssentialCount() int {
	n := 0
	for _, c := range d.Clues {
		if c.Essential {
			n++
		}
	}
	return n
}
