// Package stats derives the combat constants used by the simulation from a
// validated character definition. Every formula is exact integer arithmetic:
// both peers must compute identical constants from identical definitions.
package stats

import "ringside/internal/character"

// Derived holds the per-match combat constants. Positions and speeds are in
// simulation units (100 units = 1 display pixel); rates are per frame.
type Derived struct {
	MaxHealth    int32
	AttackPower  int32
	DefensePower int32
	RunSpeed     int32
	JumpImpulse  int32
	MeterGain    int32
	MeleeReach   int32

	ProjectileSpeed  int32
	ProjectileLife   int32
	ProjectileExtent int32

	BodyWidth  int32
	BodyHeight int32
}

const (
	baseHealth      = 80
	healthPerVit    = 12
	baseAttack      = 10
	attackPerStr    = 2
	baseDefense     = 10
	baseRunSpeed    = 160
	speedPerAgility = 18
	baseJump        = 900
	jumpPerLeap     = 55
	baseMeterGain   = 10
	gainPerFocus    = 2
	baseReach       = 6000
	reachPerPoint   = 500

	baseProjSpeed    = 300
	projSpeedPerStep = 60
	baseProjLife     = 36
	projLifePerSize  = 6
	baseProjExtent   = 500
	projExtentPer    = 200

	bodyWidthBase  = 5200
	bodyWidthPer   = 150
	bodyWidthMin   = 4600
	bodyWidthMax   = 6400
	bodyHeightBase = 15400
	bodyHeightPer  = 120
	bodyHeightMin  = 15400
	bodyHeightMax  = 16600
)

// Derive computes the combat constants for one fighter. Pure: the same
// definition always yields the same constants, and raising any single stat
// never lowers its derived value.
func Derive(def character.Definition) Derived {
	s := def.Stats
	m := def.Moves

	return Derived{
		MaxHealth:    int32(baseHealth + s.Vitality*healthPerVit),
		AttackPower:  int32(baseAttack + s.Strength*attackPerStr),
		DefensePower: int32(baseDefense + s.Guard),
		RunSpeed:     int32(baseRunSpeed + s.Agility*speedPerAgility),
		JumpImpulse:  int32(baseJump + s.Leap*jumpPerLeap),
		MeterGain:    int32(baseMeterGain + s.Focus*gainPerFocus),
		MeleeReach:   int32(baseReach + s.Reach*reachPerPoint),

		ProjectileSpeed:  int32(baseProjSpeed + m.ProjectileSpeed*projSpeedPerStep),
		ProjectileLife:   int32(baseProjLife + m.ProjectileSize*projLifePerSize),
		ProjectileExtent: int32(baseProjExtent + m.ProjectileSize*projExtentPer),

		BodyWidth: clamp(
			int32(bodyWidthBase+(s.Vitality+s.Guard-s.Agility)*bodyWidthPer),
			bodyWidthMin, bodyWidthMax,
		),
		BodyHeight: clamp(
			int32(bodyHeightBase+s.Leap*bodyHeightPer),
			bodyHeightMin, bodyHeightMax,
		),
	}
}

func clamp(v, min, max int32) int32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
