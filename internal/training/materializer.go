package training

import (
	"context"
	"fmt"
	"slices"
)

// materializeExercises turns a planned workout into concrete training
// exercises. Each planned exercise becomes a training exercise whose working
// sets come from the progression engine, seeded with the user's last recorded
// series for that exercise. Excluded exercises are dropped.
func (s *Service) materializeExercises(
	ctx context.Context,
	plan PlannedWorkout,
	settings Settings,
) ([]TrainingExercise, error) {
	var exercises []TrainingExercise
	position := 0

	for _, planned := range plan.Exercises {
		if slices.Contains(settings.ExcludedExercises, planned.ExerciseID) {
			continue
		}

		exercise, err := s.materializeExercise(ctx, planned, settings, position)
		if err != nil {
			return nil, err
		}

		exercises = append(exercises, exercise)
		position++
	}

	return exercises, nil
}

// materializeExercise builds one training exercise from its plan entry.
func (s *Service) materializeExercise(
	ctx context.Context,
	planned PlannedExercise,
	settings Settings,
	position int,
) (TrainingExercise, error) {
	exercise, err := s.repo.exercises.Get(ctx, planned.ExerciseID)
	if err != nil {
		return TrainingExercise{}, fmt.Errorf("get exercise %d: %w", planned.ExerciseID, err)
	}

	profile := ProfileFor(string(settings.Goal), exercise.Compound)
	if planned.Overrides.SetCount != nil {
		profile.SetCount = *planned.Overrides.SetCount
	}

	history, err := s.repo.sessions.LastSeries(ctx, exercise.ID)
	if err != nil {
		return TrainingExercise{}, fmt.Errorf("get series history for exercise %d: %w", exercise.ID, err)
	}

	sets := planSets(exercise, profile, history)
	series := make([]ExerciseSeries, len(sets))
	for i, set := range sets {
		reps := set.Reps
		weight := set.Weight
		series[i] = ExerciseSeries{
			SetNumber: i + 1,
			Reps:      &reps,
			Weight:    &weight,
		}
	}

	return TrainingExercise{
		ExerciseID: exercise.ID,
		Position:   position,
		Series:     series,
	}, nil
}
