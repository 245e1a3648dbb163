package training

import (
	"math"
	"time"
)

// caloriesPerMinute is the flat burn rate credited for resistance training.
const caloriesPerMinute = 6

// summarize computes the aggregate for a session being finalized. Only
// completed working sets contribute; warm-ups and untouched sets are ignored.
// The catalog maps exercise ids to their catalog entries for muscle
// attribution.
func summarize(sess TrainingSession, catalog map[int64]Exercise, endTime time.Time) Summary {
	summary := Summary{
		SessionID: sess.ID,
		Records:   map[int64]float64{},
	}

	var muscles []string
	seenMuscles := map[string]bool{}
	addMuscle := func(muscle string) {
		if muscle == "" || seenMuscles[muscle] {
			return
		}
		seenMuscles[muscle] = true
		muscles = append(muscles, muscle)
	}

	for _, exercise := range sess.Exercises {
		exerciseWorked := false

		for _, series := range exercise.Series {
			if series.IsWarmup || series.CompletedAt == nil {
				continue
			}

			exerciseWorked = true
			summary.TotalSets++

			var reps int
			if series.Reps != nil {
				reps = *series.Reps
			}
			summary.TotalReps += reps

			var weight float64
			if series.Weight != nil {
				weight = *series.Weight
			}
			summary.TotalVolume += float64(reps) * weight

			if oneRepMax := estimateOneRepMax(reps, weight); oneRepMax > summary.Records[exercise.ExerciseID] {
				summary.Records[exercise.ExerciseID] = oneRepMax
			}
		}

		if exerciseWorked {
			entry := catalog[exercise.ExerciseID]
			addMuscle(entry.PrimaryMuscle)
			for _, muscle := range entry.SecondaryMuscles {
				addMuscle(muscle)
			}
		}
	}

	summary.MusclesWorked = muscles

	start := sess.CreatedAt
	if sess.StartTime != nil {
		start = *sess.StartTime
	}
	if endTime.After(start) {
		summary.DurationSeconds = int(endTime.Sub(start).Seconds())
	}

	if sess.CaloriesBurned != nil {
		summary.CaloriesBurned = *sess.CaloriesBurned
	} else {
		summary.CaloriesBurned = int(math.Round(float64(summary.DurationSeconds) / 60 * caloriesPerMinute))
	}

	return summary
}
