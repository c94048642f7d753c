// Package progression implements experience-driven skill unlocking
// across repeating 44-point cycles.
package progression

import "github.com/darkroot-games/warband-api/internal/entities"

// CycleLength is the experience span of one full cycle
const CycleLength int32 = 44

// Tier thresholds within a normalized cycle. Blue covers 0-6 and never
// unlocks anything.
const (
	YellowThreshold int32 = 7
	OrangeThreshold int32 = 19
	RedThreshold    int32 = 43
)

// Per-tier unlock ceilings across the whole campaign, and how many of
// those unlocks require a manual choice before auto-grants take over.
var (
	tierMax    = map[entities.SkillTier]int{entities.SkillTierYellow: 1, entities.SkillTierOrange: 2, entities.SkillTierRed: 3}
	tierManual = map[entities.SkillTier]int{entities.SkillTierYellow: 0, entities.SkillTierOrange: 1, entities.SkillTierRed: 2}
)

// Cycle returns the 1-based cycle number for an absolute xp value
func Cycle(xp int32) int32 {
	return xp/CycleLength + 1
}

// NormalizedXP maps absolute xp back into the 0-43 range
func NormalizedXP(xp int32) int32 {
	return xp % CycleLength
}

// TierFor returns the tier band a normalized xp value sits in
func TierFor(normalized int32) entities.SkillTier {
	switch {
	case normalized >= RedThreshold:
		return entities.SkillTierRed
	case normalized >= OrangeThreshold:
		return entities.SkillTierOrange
	case normalized >= YellowThreshold:
		return entities.SkillTierYellow
	}
	return entities.SkillTierBlue
}

func threshold(tier entities.SkillTier) int32 {
	switch tier {
	case entities.SkillTierYellow:
		return YellowThreshold
	case entities.SkillTierOrange:
		return OrangeThreshold
	case entities.SkillTierRed:
		return RedThreshold
	}
	return 0
}

// timesReached counts the cycles in which a threshold counts as hit.
// Every completed cycle reached every threshold, and once that has
// happened the current cycle counts from its boundary; only in the
// first cycle does normalized xp have to cross the threshold itself.
func timesReached(xp, thresh int32) int {
	completed := int(xp / CycleLength)
	if completed > 0 || NormalizedXP(xp) >= thresh {
		return completed + 1
	}
	return 0
}

// Entitled returns how many skills of a tier the xp total has earned,
// capped at the tier's campaign ceiling.
func Entitled(xp int32, tier entities.SkillTier) int {
	if tier == entities.SkillTierBlue {
		return 0
	}
	n := timesReached(xp, threshold(tier))
	if ceiling := tierMax[tier]; n > ceiling {
		return ceiling
	}
	return n
}

// manualEntitled returns how many of a tier's earned unlocks must be
// chosen by the player rather than auto-granted.
func manualEntitled(xp int32, tier entities.SkillTier) int {
	n := Entitled(xp, tier)
	if ceiling := tierManual[tier]; n > ceiling {
		return ceiling
	}
	return n
}

// pendingSelection reports whether a tier is waiting on a manual choice
func pendingSelection(session *entities.GameSession, tier entities.SkillTier) bool {
	selected := len(session.SelectedSkills.Tier(tier))
	if selected >= len(session.AvailableSkills.Tier(tier)) {
		return false
	}
	return selected < manualEntitled(session.CurrentExperience, tier)
}

// WhichTierNeedsSelection returns the tier awaiting a manual choice,
// orange before red, or blue when nothing is pending.
func WhichTierNeedsSelection(session *entities.GameSession) entities.SkillTier {
	for _, tier := range []entities.SkillTier{entities.SkillTierOrange, entities.SkillTierRed} {
		if pendingSelection(session, tier) {
			return tier
		}
	}
	return entities.SkillTierBlue
}

// autoGrants returns the skills a tier should receive without a choice:
// the yellow single, and whatever remains of a tier's pool once the
// earned unlock count covers every skill still unselected. Granted
// skills stay granted; this never proposes removals.
func autoGrants(session *entities.GameSession, tier entities.SkillTier) []entities.SkillID {
	available := session.AvailableSkills.Tier(tier)
	selected := session.SelectedSkills.Tier(tier)

	var remaining []entities.SkillID
	for _, id := range available {
		if !session.SelectedSkills.Contains(tier, id) {
			remaining = append(remaining, id)
		}
	}
	if len(remaining) == 0 {
		return nil
	}

	entitled := Entitled(session.CurrentExperience, tier)
	if entitled-len(selected) == len(remaining) {
		return remaining
	}
	return nil
}
