package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"mysteryforge/internal/types"
)

// FakeClient returns deterministic, guardrail-clean payloads per stage for
// offline runs and tests. The same stage always yields the same document.
type FakeClient struct{}

func NewFakeClient() *FakeClient { return &FakeClient{} }

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }

func (f *FakeClient) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	stage := StageFrom(ctx)
	obj := fakePayload(stage)
	if obj == nil {
		return nil, fmt.Errorf("llm: fake client has no payload for stage %q", stage)
	}
	b, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(b), nil
}

func fakePayload(stage string) any {
	switch stage {
	case "setting":
		return types.Setting{
			Era:         "1925",
			Location:    "Blackwood Manor, Yorkshire",
			Atmosphere:  "storm-bound country house",
			Description: "A remote manor cut off by flooded roads, hosting an uneasy family gathering.",
		}
	case "cast":
		return types.Cast{Members: []types.CastMember{
			{Name: "Margaret Ashworth", Role: "suspect", Occupation: "estate manager", Secret: "gambling debts"},
			{Name: "Thomas Reed", Role: "suspect", Occupation: "chauffeur", Secret: "forged references"},
			{Name: "Edmund Vale", Role: "suspect", Occupation: "art dealer", Secret: "sells forgeries"},
			{Name: "Inspector Hale", Role: "detective", Occupation: "police inspector"},
		}}
	case "background":
		return types.BackgroundContext{
			Summary:       "Sir Charles Blackwood summoned his associates to announce a change to his will.",
			Relationships: []string{"Margaret manages the estate accounts", "Edmund sold Sir Charles several paintings"},
			Tensions:      []string{"the new will disinherits the household"},
		}
	case "devices":
		return types.HardLogicDevices{Devices: []types.LogicDevice{
			{Name: "locked study", Category: "locked_room", Constraint: "only two keys exist"},
			{Name: "stopped clock", Category: "time_of_death", Constraint: "clock stopped at 11:40 by the struggle"},
		}}
	case "case_model":
		return types.CaseModel{
			Crime: types.Crime{
				Victim:   "Sir Charles Blackwood",
				Method:   "poisoned brandy",
				Location: "the locked study",
				Time:     "11:40 pm",
				Motive:   "the forged paintings were about to be exposed",
			},
			Suspects: []types.Suspect{
				{Name: "Margaret Ashworth", Motive: "debts", Alibi: "in the kitchen with the cook"},
				{Name: "Thomas Reed", Motive: "dismissal", Alibi: "garaging the car"},
				{Name: "Edmund Vale", Motive: "exposure", Alibi: "claims he was asleep"},
			},
			Culprit: "Edmund Vale",
			DiscriminatingTest: types.DiscriminatingTest{
				Method:      "re-enactment of the nightcap ritual",
				Description: "Only the person who poured the brandy knew which decanter was in use that night.",
			},
			Solution: "Edmund Vale poisoned the decanter he had given Sir Charles as a gift.",
			Timeline: []types.CaseTimelineEvent{
				{When: "10:15 pm", Event: "household retires"},
				{When: "11:40 pm", Event: "Sir Charles drinks the nightcap"},
			},
		}
	case "clues":
		return types.ClueDistribution{Clues: []types.Clue{
			{ID: "clue-decanter", Description: "A second decanter sits unused on the sideboard.", Placement: types.PlacementEarly, Essential: true, PointsTo: "Edmund Vale"},
			{ID: "clue-glove", Description: "A monogrammed glove is found near the cellar stairs.", Placement: types.PlacementMid, Essential: true, PointsTo: "Edmund Vale"},
			{ID: "clue-ledger", Description: "The gallery ledger shows payments stopped in March.", Placement: types.PlacementMid, Essential: true},
			{ID: "clue-clock", Description: "The study clock stopped at 11:40.", Placement: types.PlacementEarly, Essential: false},
			{ID: "clue-mud", Description: "Dried mud on the terrace matches the garden path.", Placement: types.PlacementLate, Essential: false},
		}}
	case "fairplay":
		return types.FairPlayAudit{Status: "pass"}
	case "outline":
		return types.NarrativeOutline{Scenes: []types.Scene{
			{Number: 1, Title: "Arrival at Blackwood Manor", Summary: "Guests gather as the storm closes the roads."},
			{Number: 2, Title: "The Locked Study", Summary: "Sir Charles is found dead behind a locked door.", Revelation: "A second decanter sits unused on the sideboard."},
			{Number: 3, Title: "Questions Below Stairs", Summary: "Inspector Hale interviews the household.", Revelation: "A monogrammed glove is found near the cellar stairs; the gallery ledger shows payments stopped in March."},
			{Number: 4, Title: "The Re-enactment", Purpose: "discriminating test",
				Summary: "Inspector Hale stages a re-enactment of the nightcap ritual. Margaret Ashworth is ruled out because the evidence of the kitchen timings excludes her, and Thomas Reed is eliminated because the garage log proves his movements."},
			{Number: 5, Title: "The Solution", Purpose: "suspect closure",
				Summary: "Every thread is closed: Margaret Ashworth is ruled out, Thomas Reed is eliminated, and the chain of evidence leads to Edmund Vale, who confesses."},
		}}
	case "character_profiles":
		return types.CharacterProfiles{Profiles: []types.CharacterProfile{
			{Name: "Margaret Ashworth", Voice: "clipped, defensive", Arc: "from suspect to ally"},
			{Name: "Thomas Reed", Voice: "deferential", Arc: "cleared by routine"},
			{Name: "Edmund Vale", Voice: "urbane", Arc: "mask slips under pressure"},
		}}
	case "location_profiles":
		return types.LocationProfiles{Profiles: []types.LocationProfile{
			{Name: "the locked study", Description: "oak-panelled, one window painted shut", Significance: "scene of the crime"},
			{Name: "the cellar stairs", Significance: "where the glove was dropped"},
		}}
	case "temporal":
		return types.TemporalContext{
			Timeline: []types.TimelineEntry{
				{Label: "household retires", When: "10:15 pm"},
				{Label: "nightcap poured", When: "11:30 pm"},
				{Label: "clock stops", When: "11:40 pm"},
			},
			Pacing: "single night plus the following day",
		}
	case "prose":
		return types.Prose{Chapters: []types.Chapter{
			{Title: "Arrival at Blackwood Manor", Paragraphs: []string{
				"The storm had already closed the north road when the last car reached Blackwood Manor.",
				"Sir Charles Blackwood received his guests with a thin smile and a full decanter, while a second decanter sat unused on the sideboard.",
			}},
			{Title: "The Locked Study", Paragraphs: []string{
				"They found him behind the locked study door at dawn, the clock on the mantel stopped at 11:40.",
				"Inspector Hale noted the brandy glass, the painted-shut window, and the two keys that should have made the room inviolable.",
			}},
			{Title: "Questions Below Stairs", Paragraphs: []string{
				"A monogrammed glove lay near the cellar stairs, and the gallery ledger showed the payments had stopped in March.",
				"Margaret Ashworth answered sharply; Thomas Reed hardly answered at all.",
			}},
			{Title: "The Re-enactment", Paragraphs: []string{
				"Inspector Hale staged a re-enactment of the nightcap ritual in the study.",
				"Margaret Ashworth was ruled out because the evidence of the kitchen timings excluded her, and Thomas Reed was eliminated because the garage log proved where he had been.",
				"Only one guest reached without hesitation for the decanter that had been in use that night.",
			}},
			{Title: "The Solution", Paragraphs: []string{
				"Confronted with the glove, the ledger, and the decanter, Edmund Vale confessed to poisoning the brandy.",
				"The chain of evidence ran unbroken from the sideboard to the forged paintings, and Edmund Vale was arrested before the roads reopened.",
			}},
			{Title: "After the Storm", Paragraphs: []string{
				"By noon the flood had receded, and Edmund Vale was taken down the drive under escort.",
				"Blackwood Manor settled back into silence, its study unlocked at last.",
			}},
		}}
	}
	return nil
}
