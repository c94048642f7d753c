package progression

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/darkroot-games/warband-api/internal/entities"
)

func TestCycleBoundaries(t *testing.T) {
	tests := []struct {
		xp         int32
		cycle      int32
		normalized int32
	}{
		{0, 1, 0},
		{43, 1, 43},
		{44, 2, 0},
		{87, 2, 43},
		{88, 3, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.cycle, Cycle(tt.xp), "cycle at xp %d", tt.xp)
		assert.Equal(t, tt.normalized, NormalizedXP(tt.xp), "normalized at xp %d", tt.xp)
	}
}

func TestTierBands(t *testing.T) {
	tests := []struct {
		normalized int32
		tier       entities.SkillTier
	}{
		{0, entities.SkillTierBlue},
		{6, entities.SkillTierBlue},
		{7, entities.SkillTierYellow},
		{18, entities.SkillTierYellow},
		{19, entities.SkillTierOrange},
		{42, entities.SkillTierOrange},
		{43, entities.SkillTierRed},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.tier, TierFor(tt.normalized), "tier at %d", tt.normalized)
	}
}

func TestEntitled(t *testing.T) {
	tests := []struct {
		name string
		xp   int32
		tier entities.SkillTier
		want int
	}{
		{"no yellow below threshold", 6, entities.SkillTierYellow, 0},
		{"yellow at threshold", 7, entities.SkillTierYellow, 1},
		{"yellow capped at one across cycles", 100, entities.SkillTierYellow, 1},
		{"no orange below threshold", 18, entities.SkillTierOrange, 0},
		{"one orange in cycle one", 19, entities.SkillTierOrange, 1},
		{"second orange at the cycle boundary", 44, entities.SkillTierOrange, 2},
		{"second orange below the cycle two threshold", 62, entities.SkillTierOrange, 2},
		{"orange capped at two", 500, entities.SkillTierOrange, 2},
		{"no red below cycle top", 42, entities.SkillTierRed, 0},
		{"first red at cycle top", 43, entities.SkillTierRed, 1},
		{"second red at the cycle boundary", 44, entities.SkillTierRed, 2},
		{"third red at the next boundary", 88, entities.SkillTierRed, 3},
		{"red capped at three", 1000, entities.SkillTierRed, 3},
		{"blue never unlocks", 1000, entities.SkillTierBlue, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Entitled(tt.xp, tt.tier))
		})
	}
}
