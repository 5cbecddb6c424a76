// Package progression maps cumulative XP to levels and mastery tiers, and
// computes XP penalties for missed logging days.
package progression

// Level is a sub-level inside a mastery tier.
type Level string

// Levels in promotion order.
const (
	Bronze   Level = "bronze"
	Silver   Level = "silver"
	Gold     Level = "gold"
	Platinum Level = "platinum"
)

// XPPerMastery is the cumulative XP that completes one mastery tier.
const XPPerMastery = 2000

// LevelProgress locates an XP total within its mastery tier.
type LevelProgress struct {
	Level     Level `json:"level"`
	Progress  int   `json:"progress"`   // XP past the current band's lower bound
	NextLevel int   `json:"next_level"` // XP threshold of the next band within the tier
	Mastery   int   `json:"mastery"`
}

type levelBand struct {
	level Level
	lower int
	upper int
}

var levelBands = []levelBand{
	{Bronze, 0, 500},
	{Silver, 500, 1000},
	{Gold, 1000, 1500},
	{Platinum, 1500, XPPerMastery},
}

// CalculateLevel maps cumulative XP to level progress. Negative XP counts as zero.
func CalculateLevel(xp int) LevelProgress {
	if xp < 0 {
		xp = 0
	}
	within := xp % XPPerMastery
	mastery := xp/XPPerMastery + 1

	for _, b := range levelBands {
		if within < b.upper {
			return LevelProgress{
				Level:     b.level,
				Progress:  within - b.lower,
				NextLevel: b.upper,
				Mastery:   mastery,
			}
		}
	}
	// unreachable: within < XPPerMastery
	last := levelBands[len(levelBands)-1]
	return LevelProgress{Level: last.level, Progress: within - last.lower, NextLevel: last.upper, Mastery: mastery}
}
