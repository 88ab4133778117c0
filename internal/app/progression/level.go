// Package progression maps cumulative XP to levels and derives weekly
// totals from the trip history. Everything here is a pure function.
package progression

// MaxLevel is the highest reachable level.
const MaxLevel = 10

// thresholds[i] is the cumulative XP at which level i+1 begins.
var thresholds = [MaxLevel]int64{0, 100, 250, 450, 700, 1000, 1350, 1750, 2200, 2700}

// Thresholds returns a copy of the level threshold table.
func Thresholds() []int64 {
	out := make([]int64, len(thresholds))
	copy(out, thresholds[:])
	return out
}

// XPForLevel returns the cumulative XP required to reach a given level.
// Levels outside [1, MaxLevel] are clamped.
func XPForLevel(level int) int64 {
	if level <= 1 {
		return 0
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	return thresholds[level-1]
}

// LevelForXP returns the level for a given XP amount. Negative XP is
// treated as 0.
func LevelForXP(xp int64) int {
	level := 1
	for i := 1; i < MaxLevel; i++ {
		if xp < thresholds[i] {
			break
		}
		level = i + 1
	}
	return level
}

// ProgressPct returns whole-percent progress toward the next level, in
// [0, 99]. At MaxLevel it returns 100, which is a sentinel and not a ratio.
func ProgressPct(xp int64) int {
	if xp < 0 {
		xp = 0
	}
	level := LevelForXP(xp)
	if level >= MaxLevel {
		return 100
	}
	floor := thresholds[level-1]
	span := thresholds[level] - floor
	return int(100 * (xp - floor) / span)
}

// XPToNextLevel returns XP remaining until the next level, 0 at MaxLevel.
func XPToNextLevel(xp int64) int64 {
	if xp < 0 {
		xp = 0
	}
	level := LevelForXP(xp)
	if level >= MaxLevel {
		return 0
	}
	return thresholds[level] - xp
}
