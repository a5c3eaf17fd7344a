package guardrail

import (
	"fmt"
	"regexp"
	"strings"

	"mysteryforge/internal/types"
)

// DefaultMinEssentialClues is the fair-play floor for essential clues.
const DefaultMinEssentialClues = 3

// Lexical patterns implying knowledge the reader never gets to see.
var detectiveOnlyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)only the (detective|inspector)`),
	regexp.MustCompile(`(?i)(detective|inspector)'?s? (private|secret) (note|knowledge|observation)`),
	regexp.MustCompile(`(?i)not (revealed|shown|disclosed) to the reader`),
	regexp.MustCompile(`(?i)known only to (the )?(detective|inspector)`),
	regexp.MustCompile(`(?i)off[- ]page`),
}

// CheckClues enforces the clue-placement rules and returns a possibly
// corrected copy of the distribution:
//
//   - at least minEssential essential clues (critical)
//   - at least one clue each in the early and mid bands (critical);
//     an empty late band is only a warning
//   - pairwise-distinct clue IDs (critical)
//   - no clue text implying detective-only knowledge (critical)
//
// Essential clues placed in the late band are deterministically moved to
// early/mid (round-robin); that is a correction, not a regeneration trigger.
func CheckClues(dist types.ClueDistribution, minEssential int) (types.ClueDistribution, Result) {
	if minEssential <= 0 {
		minEssential = DefaultMinEssentialClues
	}
	var res Result

	out := dist
	out.Clues = make([]types.Clue, len(dist.Clues))
	copy(out.Clues, dist.Clues)

	// Auto-fix first so the band counts reflect the corrected artifact.
	next := types.PlacementEarly
	for i := range out.Clues {
		c := &out.Clues[i]
		if c.Essential && c.Placement == types.PlacementLate {
			c.Placement = next
			if next == types.PlacementEarly {
				next = types.PlacementMid
			} else {
				next = types.PlacementEarly
			}
			res.Fixes = append(res.Fixes, fmt.Sprintf("moved essential clue %q from late to %s", c.ID, c.Placement))
		}
	}

	if n := out.EssentialCount(); n < minEssential {
		res.critical("insufficient_essential_clues",
			fmt.Sprintf("only %d essential clues, need at least %d", n, minEssential))
		res.Directives = append(res.Directives,
			fmt.Sprintf("Mark at least %d clues as essential to the solution.", minEssential))
	}
	if out.CountBy(types.PlacementEarly) < 1 {
		res.critical("empty_early_band", "no clues placed in the early band")
		res.Directives = append(res.Directives, "Place at least one clue in the early portion of the story.")
	}
	if out.CountBy(types.PlacementMid) < 1 {
		res.critical("empty_mid_band", "no clues placed in the mid band")
		res.Directives = append(res.Directives, "Place at least one clue in the middle portion of the story.")
	}
	if out.CountBy(types.PlacementLate) < 1 {
		res.warning("empty_late_band", "no clues placed in the late band")
	}

	seen := make(map[string]bool, len(out.Clues))
	for _, c := range out.Clues {
		id := strings.TrimSpace(c.ID)
		if seen[id] {
			res.critical("duplicate_clue_id", fmt.Sprintf("duplicate clue identifier %q", id))
			res.Directives = append(res.Directives, "Give every clue a unique identifier.")
		}
		seen[id] = true
	}

	for _, c := range out.Clues {
		for _, p := range detectiveOnlyPatterns {
			if p.MatchString(c.Description) {
				res.critical("detective_only_knowledge",
					fmt.Sprintf("clue %q implies knowledge withheld from the reader", c.ID))
				res.Directives = append(res.Directives,
					"Phrase every clue as information disclosed on the page; avoid wording like "+p.String()+".")
				break
			}
		}
	}

	return out, res
}
