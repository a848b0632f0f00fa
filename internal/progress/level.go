package progress

import (
	"os"
	"strconv"
)

// DefaultLevelStepXP is the cumulative XP required per level: level n needs
// n * step XP. The curve is a tunable constant, not a business rule —
// override with the LEVEL_STEP_XP environment variable.
const DefaultLevelStepXP = 250

// LevelStepFromEnv returns the configured level step, or the default.
func LevelStepFromEnv() int64 {
	if v := os.Getenv("LEVEL_STEP_XP"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return n
		}
	}
	return DefaultLevelStepXP
}

// Level returns the highest level n such that totalXP >= n * stepXP.
func Level(totalXP, stepXP int64) int {
	if stepXP <= 0 || totalXP <= 0 {
		return 0
	}
	return int(totalXP / stepXP)
}

// LevelProgress returns the percentage of the way from the current level
// threshold to the next, clamped to [0, 100].
func LevelProgress(totalXP, stepXP int64) int {
	if stepXP <= 0 {
		return 0
	}
	if totalXP < 0 {
		return 0
	}
	into := totalXP % stepXP
	p := int(100 * into / stepXP)
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// NextLevelXP returns the cumulative XP threshold of the next level.
func NextLevelXP(totalXP, stepXP int64) int64 {
	if stepXP <= 0 {
		return 0
	}
	return (int64(Level(totalXP, stepXP)) + 1) * stepXP
}
