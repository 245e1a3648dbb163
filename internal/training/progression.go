package training

import (
	"math"
	"math/rand/v2"
	"strings"
)

// Progression constants.
const (
	// weightProgressionFactor is the run-over-run load increase applied to a
	// set that has prior history.
	weightProgressionFactor = 1.025

	// Default starting weights in kilograms by equipment.
	barbellDefaultWeightKg    = 20
	dumbbellDefaultWeightKg   = 2.5
	machineDefaultWeightKg    = 10
	compoundFallbackWeightKg  = 20
	isolationFallbackWeightKg = 10
)

// planSets produces the working-set plan for an exercise: profile.SetCount
// sets, each with target reps and weight.
//
// Sets with a matching entry in the prior performance progress from it: one
// more rep and 2.5% more load, rounded to the nearest 0.5 kg. Sets without
// history start at a goal-appropriate random rep count and a default weight
// scaled by the profile's target percentage. All planned sets are working
// sets; warm-ups are added only through explicit user action.
func planSets(exercise Exercise, profile GoalProfile, history []ExerciseSeries) []PlannedSet {
	sets := make([]PlannedSet, profile.SetCount)
	for i := range sets {
		if i < len(history) {
			sets[i] = progressSet(exercise, profile, history[i])
			continue
		}
		sets[i] = coldStartSet(exercise, profile)
	}
	return sets
}

// progressSet advances one set from its prior performance.
func progressSet(exercise Exercise, profile GoalProfile, prior ExerciseSeries) PlannedSet {
	var set PlannedSet

	if prior.Reps != nil {
		set.Reps = *prior.Reps + 1
	} else {
		set.Reps = profile.RepRangeLow
	}

	if prior.Weight != nil {
		set.Weight = roundToHalf(*prior.Weight * weightProgressionFactor)
	} else {
		set.Weight = roundToHalf(defaultWeight(exercise) * profile.TargetWeightPct)
	}

	return set
}

// coldStartSet produces a set for an exercise the user has no history for at
// this slot.
func coldStartSet(exercise Exercise, profile GoalProfile) PlannedSet {
	return PlannedSet{
		Reps:   profile.RepRangeLow + rand.IntN(profile.RepRangeHigh-profile.RepRangeLow+1),
		Weight: roundToHalf(defaultWeight(exercise) * profile.TargetWeightPct),
	}
}

// defaultWeight estimates a sensible starting load from the exercise's
// equipment: an empty barbell, the lightest dumbbell pair, a low machine pin,
// and otherwise a guess based on movement class.
func defaultWeight(exercise Exercise) float64 {
	for _, equipment := range exercise.Equipment {
		if strings.EqualFold(equipment, "barbell") {
			return barbellDefaultWeightKg
		}
	}
	for _, equipment := range exercise.Equipment {
		if strings.Contains(strings.ToLower(equipment), "dumbbell") {
			return dumbbellDefaultWeightKg
		}
	}
	for _, equipment := range exercise.Equipment {
		if strings.EqualFold(equipment, "machine") {
			return machineDefaultWeightKg
		}
	}
	if exercise.Compound {
		return compoundFallbackWeightKg
	}
	return isolationFallbackWeightKg
}

// roundToHalf rounds to the nearest 0.5, matching plate math.
func roundToHalf(weight float64) float64 {
	return math.Round(weight*2) / 2
}

// estimateOneRepMax computes the Epley one-rep-max estimate rounded to the
// nearest whole kilogram. Returns 0 when reps or weight are missing or zero.
func estimateOneRepMax(reps int, weight float64) float64 {
	if reps <= 0 || weight <= 0 {
		return 0
	}
	return math.Round(weight * (1 + float64(reps)/30))
}
