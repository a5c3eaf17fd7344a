package types

// Kind identifies one artifact type produced by the pipeline.
type Kind string

const (
	KindSetting           Kind = "setting"
	KindCast              Kind = "cast"
	KindBackgroundContext Kind = "background_context"
	KindHardLogicDevices  Kind = "hard_logic_devices"
	KindCaseModel         Kind = "case_model"
	KindClueDistribution  Kind = "clue_distribution"
	KindFairPlayAudit     Kind = "fair_play_audit"
	KindNarrativeOutline  Kind = "narrative_outline"
	KindCharacterProfiles Kind = "character_profiles"
	KindLocationProfiles  Kind = "location_profiles"
	KindTemporalContext   Kind = "temporal_context"
	KindProse             Kind = "prose"
	KindNoveltyAudit      Kind = "novelty_audit"
	KindValidationReport  Kind = "validation_report"
)

// Kinds lists every artifact kind in pipeline order.
func Kinds() []Kind {
	return []Kind{
		KindSetting, KindCast, KindBackgroundContext, KindHardLogicDevices,
		KindCaseModel, KindNoveltyAudit, KindClueDistribution, KindFairPlayAudit,
		KindNarrativeOutline, KindCharacterProfiles, KindLocationProfiles,
		KindTemporalContext, KindProse, KindValidationReport,
	}
}

// Setting is the opening stage artifact: where and when the story happens.
type Setting struct {
	Era         string `json:"era"`
	Location    string `json:"location"`
	Atmosphere  string `json:"atmosphere,omitempty"`
	Description string `json:"description"`
}

// CastMember is one character in the story's cast.
type CastMember struct {
	Name       string `json:"name"`
	Role       string `json:"role"`
	Age        int    `json:"age,omitempty"`
	Occupation string `json:"occupation,omitempty"`
	Secret     string `json:"secret,omitempty"`
}

type Cast struct {
	Members []CastMember `json:"members"`
}

// Names returns the cast member names in declaration order.
func (c Cast) Names() []string {
	out := make([]string, 0, len(c.Members))
	for _, m := range c.Members {
		out = append(out, m.Name)
	}
	return out
}

// BackgroundContext holds the social backdrop the case is embedded in.
type BackgroundContext struct {
	Summary       string   `json:"summary"`
	Relationships []string `json:"relationships,omitempty"`
	Tensions      []string `json:"tensions,omitempty"`
}

// LogicDevice is one hard-logic mechanism (locked room, alibi trick, ...).
type LogicDevice struct {
	Name       string `json:"name"`
	Category   string `json:"category"`
	Constraint string `json:"constraint"`
}

type HardLogicDevices struct {
	Devices []LogicDevice `json:"devices"`
}

// CharacterProfile deepens one cast member for prose generation.
type CharacterProfile struct {
	Name       string `json:"name"`
	Voice      string `json:"voice,omitempty"`
	Background string `json:"background,omitempty"`
	Arc        string `json:"arc,omitempty"`
}

type CharacterProfiles struct {
	Profiles []CharacterProfile `json:"profiles"`
}

type LocationProfile struct {
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	Significance string `json:"significance,omitempty"`
}

type LocationProfiles struct {
	Profiles []LocationProfile `json:"profiles"`
}

// TemporalContext pins the story events to a concrete timeline.
type TemporalContext struct {
	Timeline []TimelineEntry `json:"timeline"`
	Pacing   string          `json:"pacing,omitempty"`
}

type TimelineEntry struct {
	Label string `json:"label"`
	When  string `json:"when"`
}

// FairPlayAudit records the audit verdict on clue disclosure.
type FairPlayAudit struct {
	Status   string   `json:"status"` // "pass" or "fail"
	Findings []string `json:"findings,omitempty"`
}

// NoveltyAudit records how close the case model sits to the seed corpus.
type NoveltyAudit struct {
	MaxSimilarity     float64  `json:"max_similarity"`
	NearestLabel      string   `json:"nearest_label,omitempty"`
	Verdict           string   `json:"verdict"` // "pass" or "fail"
	AvoidancePatterns []string `json:"avoidance_patterns,omitempty"`
}

// Artifacts collects every artifact produced by a run, one slot per kind.
// A nil slot means the stage did not run (e.g. a skipped novelty audit).
type Artifacts struct {
	Setting           *Setting           `json:"setting,omitempty"`
	Cast              *Cast              `json:"cast,omitempty"`
	BackgroundContext *BackgroundContext `json:"background_context,omitempty"`
	HardLogicDevices  *HardLogicDevices  `json:"hard_logic_devices,omitempty"`
	CaseModel         *CaseModel         `json:"case_model,omitempty"`
	ClueDistribution  *ClueDistribution  `json:"clue_distribution,omitempty"`
	FairPlayAudit     *FairPlayAudit     `json:"fair_play_audit,omitempty"`
	NarrativeOutline  *NarrativeOutline  `json:"narrative_outline,omitempty"`
	CharacterProfiles *CharacterProfiles `json:"character_profiles,omitempty"`
	LocationProfiles  *LocationProfiles  `json:"location_profiles,omitempty"`
	TemporalContext   *TemporalContext   `json:"temporal_context,omitempty"`
	Prose             *Prose             `json:"prose,omitempty"`
	NoveltyAudit      *NoveltyAudit      `json:"novelty_audit,omitempty"`
	ValidationReport  *ValidationReport  `json:"validation_report,omitempty"`
}

// ByKind returns the artifact stored under kind, or nil when absent.
func (a *Artifacts) ByKind(k Kind) any {
	if a == nil {
		return nil
	}
	switch k {
	case KindSetting:
		if a.Setting != nil {
			return a.Setting
		}
	case KindCast:
		if a.Cast != nil {
			return a.Cast
		}
	case KindBackgroundContext:
		if a.BackgroundContext != nil {
			return a.BackgroundContext
		}
	case KindHardLogicDevices:
		if a.HardLogicDevices != nil {
			return a.HardLogicDevices
		}
	case KindCaseModel:
		if a.CaseModel != nil {
			return a.CaseModel
		}
	case KindClueDistribution:
		if a.ClueDistribution != nil {
			return a.ClueDistribution
		}
	case KindFairPlayAudit:
		if a.FairPlayAudit != nil {
			return a.FairPlayAudit
		}
	case KindNarrativeOutline:
		if a.NarrativeOutline != nil {
			return a.NarrativeOutline
		}
	case KindCharacterProfiles:
		if a.CharacterProfiles != nil {
			return a.CharacterProfiles
		}
	case KindLocationProfiles:
		if a.LocationProfiles != nil {
			return a.LocationProfiles
		}
	case KindTemporalContext:
		if a.TemporalContext != nil {
			return a.TemporalContext
		}
	case KindProse:
		if a.Prose != nil {
			return a.Prose
		}
	case KindNoveltyAudit:
		if a.NoveltyAudit != nil {
			return a.NoveltyAudit
		}
	case KindValidationReport:
		if a.ValidationReport != nil {
			return a.ValidationReport
		}
	}
	return nil
}
