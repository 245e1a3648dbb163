package training

import (
	"strings"
)

// Goal is the user's declared fitness goal.
type Goal string

// Goal constants.
const (
	GoalStrength       Goal = "strength"
	GoalHypertrophy    Goal = "hypertrophy"
	GoalEndurance      Goal = "endurance"
	GoalFatLoss        Goal = "fat_loss"
	GoalGeneralFitness Goal = "general_fitness"
)

// GoalProfile describes how a goal translates into set prescriptions for one
// movement class.
type GoalProfile struct {
	RepRangeLow     int
	RepRangeHigh    int
	TargetWeightPct float64
	SetCount        int
}

// goalProfiles maps each goal to its compound and isolation profiles.
//
//nolint:gochecknoglobals // static lookup table
var goalProfiles = map[Goal]struct{ compound, isolation GoalProfile }{
	GoalStrength: {
		compound:  GoalProfile{RepRangeLow: 3, RepRangeHigh: 5, TargetWeightPct: 0.85, SetCount: 5},
		isolation: GoalProfile{RepRangeLow: 5, RepRangeHigh: 8, TargetWeightPct: 0.75, SetCount: 3},
	},
	GoalHypertrophy: {
		compound:  GoalProfile{RepRangeLow: 8, RepRangeHigh: 12, TargetWeightPct: 0.75, SetCount: 4},
		isolation: GoalProfile{RepRangeLow: 10, RepRangeHigh: 15, TargetWeightPct: 0.65, SetCount: 3},
	},
	GoalEndurance: {
		compound:  GoalProfile{RepRangeLow: 12, RepRangeHigh: 20, TargetWeightPct: 0.5, SetCount: 3},
		isolation: GoalProfile{RepRangeLow: 15, RepRangeHigh: 20, TargetWeightPct: 0.4, SetCount: 3},
	},
	GoalFatLoss: {
		compound:  GoalProfile{RepRangeLow: 10, RepRangeHigh: 15, TargetWeightPct: 0.6, SetCount: 4},
		isolation: GoalProfile{RepRangeLow: 12, RepRangeHigh: 20, TargetWeightPct: 0.5, SetCount: 3},
	},
	GoalGeneralFitness: {
		compound:  GoalProfile{RepRangeLow: 8, RepRangeHigh: 12, TargetWeightPct: 0.7, SetCount: 3},
		isolation: GoalProfile{RepRangeLow: 10, RepRangeHigh: 15, TargetWeightPct: 0.6, SetCount: 3},
	},
}

// ParseGoal maps a user-facing goal label to a Goal. The mapping is total:
// unrecognized labels fall back to general fitness instead of erroring.
func ParseGoal(label string) Goal {
	normalized := strings.ToLower(strings.TrimSpace(label))
	normalized = strings.ReplaceAll(normalized, "-", " ")
	normalized = strings.ReplaceAll(normalized, "_", " ")

	switch normalized {
	case "strength", "get stronger", "powerlifting":
		return GoalStrength
	case "hypertrophy", "build muscle", "muscle gain", "bodybuilding":
		return GoalHypertrophy
	case "endurance", "muscular endurance", "stamina":
		return GoalEndurance
	case "fat loss", "lose fat", "lose weight", "weight loss", "cutting":
		return GoalFatLoss
	default:
		return GoalGeneralFitness
	}
}

// ProfileFor returns the goal profile for a goal label and movement class.
// Unknown labels resolve through the general fitness profile, so the result
// is always usable.
func ProfileFor(label string, compound bool) GoalProfile {
	profiles, ok := goalProfiles[ParseGoal(label)]
	if !ok {
		profiles = goalProfiles[GoalGeneralFitness]
	}
	if compound {
		return profiles.compound
	}
	return profiles.isolation
}
