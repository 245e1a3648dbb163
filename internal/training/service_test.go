package training_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rafatrikUOC/soloprogress/internal/contexthelpers"
	"github.com/rafatrikUOC/soloprogress/internal/sqlite"
	"github.com/rafatrikUOC/soloprogress/internal/training"
)

// newTestService spins up an in-memory database with an authenticated user
// and a training service on top of it.
func newTestService(t *testing.T) (context.Context, *training.Service, *sqlite.Database) {
	t.Helper()

	ctx := t.Context()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level:       slog.LevelDebug,
		AddSource:   false,
		ReplaceAttr: nil,
	}))

	db, err := sqlite.NewDatabase(ctx, ":memory:", logger)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if closeErr := db.Close(); closeErr != nil {
			t.Errorf("Failed to close test database: %v", closeErr)
		}
	})

	result, err := db.ReadWrite.ExecContext(ctx,
		"INSERT INTO users (display_name) VALUES (?)", "Test User")
	if err != nil {
		t.Fatalf("Failed to insert test user: %v", err)
	}
	userID, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("Failed to get user ID: %v", err)
	}

	ctx = context.WithValue(ctx, contexthelpers.AuthenticatedUserIDContextKey, userID)
	ctx = context.WithValue(ctx, contexthelpers.IsAuthenticatedContextKey, true)

	return ctx, training.NewService(db, logger), db
}

// createTestExercise inserts a catalog exercise and returns its id.
func createTestExercise(
	ctx context.Context,
	t *testing.T,
	db *sqlite.Database,
	name string,
	compound bool,
	primaryMuscle string,
	secondaryMuscles string,
) int64 {
	t.Helper()

	result, err := db.ReadWrite.ExecContext(ctx, `
		INSERT INTO exercises (name, compound, equipment, primary_muscle, secondary_muscles)
		VALUES (?, ?, ?, ?, ?)`,
		name, compound, `["barbell"]`, primaryMuscle, secondaryMuscles)
	if err != nil {
		t.Fatalf("Failed to insert exercise: %v", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("Failed to get exercise ID: %v", err)
	}
	return id
}

func countOpenSessions(ctx context.Context, t *testing.T, db *sqlite.Database) int {
	t.Helper()
	var count int
	err := db.ReadOnly.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM training_sessions WHERE end_time IS NULL").Scan(&count)
	if err != nil {
		t.Fatalf("Failed to count open sessions: %v", err)
	}
	return count
}

func Test_StartSession_ReusesOpenSession(t *testing.T) {
	ctx, svc, db := newTestService(t)

	exerciseID := createTestExercise(ctx, t, db, "Session Bench Press", true, "Chest", `["Triceps"]`)
	setCount := 3
	err := svc.SavePlannedWorkout(ctx, training.PlannedWorkout{
		SplitID:      1,
		SessionIndex: 0,
		Title:        "Push",
		Exercises: []training.PlannedExercise{
			{ExerciseID: exerciseID, Overrides: training.ExerciseOverrides{SetCount: &setCount}},
		},
	})
	if err != nil {
		t.Fatalf("Failed to save planned workout: %v", err)
	}

	target := training.SplitContext(1, 0)

	first, err := svc.StartSession(ctx, target)
	if err != nil {
		t.Fatalf("Failed to start session: %v", err)
	}
	if len(first.Exercises) != 1 {
		t.Fatalf("Expected 1 materialized exercise, got %d", len(first.Exercises))
	}
	if len(first.Exercises[0].Series) != setCount {
		t.Errorf("Expected %d working sets, got %d", setCount, len(first.Exercises[0].Series))
	}
	for _, series := range first.Exercises[0].Series {
		if series.CompletedAt != nil {
			t.Error("Materialized series should not be completed")
		}
		if series.Reps == nil || series.Weight == nil {
			t.Error("Materialized series should carry planned reps and weight")
		}
	}

	second, err := svc.StartSession(ctx, target)
	if err != nil {
		t.Fatalf("Failed to start session again: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("Expected the open session to be reused, got %s and %s", first.ID, second.ID)
	}
	if got := countOpenSessions(ctx, t, db); got != 1 {
		t.Errorf("Expected 1 open session, got %d", got)
	}
}

func Test_StartSession_DiscardsStaleContext(t *testing.T) {
	ctx, svc, db := newTestService(t)

	first, err := svc.StartSession(ctx, training.SplitContext(1, 0))
	if err != nil {
		t.Fatalf("Failed to start first session: %v", err)
	}

	second, err := svc.StartSession(ctx, training.SplitContext(1, 1))
	if err != nil {
		t.Fatalf("Failed to start second session: %v", err)
	}

	if second.ID == first.ID {
		t.Error("Expected a fresh session for the new context")
	}
	if got := countOpenSessions(ctx, t, db); got != 1 {
		t.Errorf("Expected stale session to be discarded, got %d open sessions", got)
	}

	// The stale session is gone entirely, not just closed.
	_, err = svc.GetSession(ctx, first.ID)
	if !errors.Is(err, training.ErrNotFound) {
		t.Errorf("Expected stale session to be deleted, got error %v", err)
	}
}

func Test_StartSession_FreeDiscardsTaggedSession(t *testing.T) {
	ctx, svc, db := newTestService(t)

	tagged, err := svc.StartSession(ctx, training.SplitContext(7, 2))
	if err != nil {
		t.Fatalf("Failed to start split session: %v", err)
	}

	free, err := svc.StartSession(ctx, training.FreeContext())
	if err != nil {
		t.Fatalf("Failed to start free session: %v", err)
	}

	if free.ID == tagged.ID {
		t.Error("Expected the free session to be distinct from the split session")
	}
	if got := countOpenSessions(ctx, t, db); got != 1 {
		t.Errorf("Expected 1 open session, got %d", got)
	}
}

func Test_FinishSession_CountsOnlyCompletedWorkingSets(t *testing.T) {
	ctx, svc, db := newTestService(t)

	exerciseID := createTestExercise(ctx, t, db, "Summary Squat", true, "Quads", `["Glutes"]`)
	setCount := 5
	err := svc.SavePlannedWorkout(ctx, training.PlannedWorkout{
		SplitID:      1,
		SessionIndex: 0,
		Title:        "Legs",
		Exercises: []training.PlannedExercise{
			{ExerciseID: exerciseID, Overrides: training.ExerciseOverrides{SetCount: &setCount}},
		},
	})
	if err != nil {
		t.Fatalf("Failed to save planned workout: %v", err)
	}

	session, err := svc.StartSession(ctx, training.SplitContext(1, 0))
	if err != nil {
		t.Fatalf("Failed to start session: %v", err)
	}

	// A completed warm-up must not show up in the totals.
	warmupReps := 10
	warmupWeight := 20.0
	err = svc.AddWarmupSeries(ctx, session.ID, exerciseID, training.ExerciseSeries{
		Reps:   &warmupReps,
		Weight: &warmupWeight,
	})
	if err != nil {
		t.Fatalf("Failed to add warmup series: %v", err)
	}

	// Complete 3 of the 5 working sets.
	reps := 10
	weight := 60.0
	for setNumber := 1; setNumber <= 3; setNumber++ {
		err = svc.CompleteSeries(ctx, session.ID, exerciseID, setNumber, training.ExerciseSeries{
			Reps:   &reps,
			Weight: &weight,
		})
		if err != nil {
			t.Fatalf("Failed to complete series %d: %v", setNumber, err)
		}
	}

	summary, err := svc.FinishSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("Failed to finish session: %v", err)
	}

	if summary.TotalSets != 3 {
		t.Errorf("TotalSets = %d, want 3", summary.TotalSets)
	}
	if summary.TotalReps != 30 {
		t.Errorf("TotalReps = %d, want 30", summary.TotalReps)
	}
	if summary.TotalVolume != 1800 {
		t.Errorf("TotalVolume = %v, want 1800", summary.TotalVolume)
	}
	// Epley estimate: round(60 * (1 + 10/30)) = 80.
	if summary.Records[exerciseID] != 80 {
		t.Errorf("Records[%d] = %v, want 80", exerciseID, summary.Records[exerciseID])
	}
	if len(summary.MusclesWorked) != 2 || summary.MusclesWorked[0] != "Quads" || summary.MusclesWorked[1] != "Glutes" {
		t.Errorf("MusclesWorked = %v, want [Quads Glutes]", summary.MusclesWorked)
	}

	// The summary is persisted onto the session as its performance snapshot.
	finalized, err := svc.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("Failed to get finalized session: %v", err)
	}
	if finalized.Performance == nil {
		t.Fatal("Expected a performance snapshot on the finalized session")
	}
	if diff := cmp.Diff(summary, *finalized.Performance); diff != "" {
		t.Errorf("Performance snapshot mismatch (-summary +stored):\n%s", diff)
	}

	// A finalized session is immutable.
	if _, err = svc.FinishSession(ctx, session.ID); !errors.Is(err, training.ErrSessionFinalized) {
		t.Errorf("Expected ErrSessionFinalized on second finish, got %v", err)
	}
	if err = svc.CompleteSeries(ctx, session.ID, exerciseID, 4, training.ExerciseSeries{
		Reps:   &reps,
		Weight: &weight,
	}); !errors.Is(err, training.ErrSessionFinalized) {
		t.Errorf("Expected ErrSessionFinalized on series completion, got %v", err)
	}
}

func Test_ProgressionFromLastSession(t *testing.T) {
	ctx, svc, db := newTestService(t)

	exerciseID := createTestExercise(ctx, t, db, "Progression Row", true, "Back", `["Biceps"]`)
	setCount := 1
	err := svc.SavePlannedWorkout(ctx, training.PlannedWorkout{
		SplitID:      1,
		SessionIndex: 0,
		Exercises: []training.PlannedExercise{
			{ExerciseID: exerciseID, Overrides: training.ExerciseOverrides{SetCount: &setCount}},
		},
	})
	if err != nil {
		t.Fatalf("Failed to save planned workout: %v", err)
	}

	first, err := svc.StartSession(ctx, training.SplitContext(1, 0))
	if err != nil {
		t.Fatalf("Failed to start first session: %v", err)
	}

	reps := 8
	weight := 20.0
	if err = svc.CompleteSeries(ctx, first.ID, exerciseID, 1, training.ExerciseSeries{
		Reps:   &reps,
		Weight: &weight,
	}); err != nil {
		t.Fatalf("Failed to complete series: %v", err)
	}
	if _, err = svc.FinishSession(ctx, first.ID); err != nil {
		t.Fatalf("Failed to finish first session: %v", err)
	}

	second, err := svc.StartSession(ctx, training.SplitContext(1, 0))
	if err != nil {
		t.Fatalf("Failed to start second session: %v", err)
	}
	if len(second.Exercises) != 1 || len(second.Exercises[0].Series) != 1 {
		t.Fatalf("Unexpected session shape: %+v", second.Exercises)
	}

	series := second.Exercises[0].Series[0]
	if series.Reps == nil || *series.Reps != 9 {
		t.Errorf("Progressed reps = %v, want 9", series.Reps)
	}
	// 20 * 1.025 = 20.5.
	if series.Weight == nil || *series.Weight != 20.5 {
		t.Errorf("Progressed weight = %v, want 20.5", series.Weight)
	}
}

func Test_RecordSkip_KeepsOnlyLatestPerSplit(t *testing.T) {
	ctx, svc, _ := newTestService(t)

	if err := svc.RecordSkip(ctx, 1, 0); err != nil {
		t.Fatalf("Failed to record first skip: %v", err)
	}
	if err := svc.RecordSkip(ctx, 1, 2); err != nil {
		t.Fatalf("Failed to record second skip: %v", err)
	}
	if err := svc.RecordSkip(ctx, 9, 1); err != nil {
		t.Fatalf("Failed to record skip for other split: %v", err)
	}

	settings, err := svc.Settings(ctx)
	if err != nil {
		t.Fatalf("Failed to get settings: %v", err)
	}

	var splitOneSkips []training.SkipRecord
	for _, skip := range settings.SkippedSessions {
		if skip.SplitID != nil && *skip.SplitID == 1 {
			splitOneSkips = append(splitOneSkips, skip)
		}
	}
	if len(splitOneSkips) != 1 {
		t.Fatalf("Expected 1 skip for split 1, got %d", len(splitOneSkips))
	}
	if splitOneSkips[0].Session != 2 {
		t.Errorf("Expected the latest skip (session 2) to survive, got %d", splitOneSkips[0].Session)
	}
	if len(settings.SkippedSessions) != 2 {
		t.Errorf("Expected 2 skips total, got %d", len(settings.SkippedSessions))
	}
}

func Test_NextWorkout_TieBreaksCompletionAndSkip(t *testing.T) {
	ctx, svc, db := newTestService(t)

	exerciseID := createTestExercise(ctx, t, db, "Resolver Press", true, "Shoulders", `[]`)
	const splitID = int64(1)
	const planCount = 6
	setCount := 1
	for index := range planCount {
		err := svc.SavePlannedWorkout(ctx, training.PlannedWorkout{
			SplitID:      splitID,
			SessionIndex: index,
			Exercises: []training.PlannedExercise{
				{ExerciseID: exerciseID, Overrides: training.ExerciseOverrides{SetCount: &setCount}},
			},
		})
		if err != nil {
			t.Fatalf("Failed to save planned workout %d: %v", index, err)
		}
	}

	settings, err := svc.Settings(ctx)
	if err != nil {
		t.Fatalf("Failed to get settings: %v", err)
	}
	active := splitID
	settings.ActiveSplitID = &active
	if err = svc.UpdateSettings(ctx, settings); err != nil {
		t.Fatalf("Failed to update settings: %v", err)
	}

	// Fresh split starts at the first workout.
	next, err := svc.NextWorkout(ctx)
	if err != nil {
		t.Fatalf("Failed to resolve next workout: %v", err)
	}
	if next.SessionIndex != 0 {
		t.Errorf("Fresh split: next index = %d, want 0", next.SessionIndex)
	}

	// Complete workout 2. The next workout follows it.
	session, err := svc.StartSession(ctx, training.SplitContext(splitID, 2))
	if err != nil {
		t.Fatalf("Failed to start session: %v", err)
	}
	if _, err = svc.FinishSession(ctx, session.ID); err != nil {
		t.Fatalf("Failed to finish session: %v", err)
	}

	next, err = svc.NextWorkout(ctx)
	if err != nil {
		t.Fatalf("Failed to resolve next workout: %v", err)
	}
	if next.SessionIndex != 3 {
		t.Errorf("After completing 2: next index = %d, want 3", next.SessionIndex)
	}

	// A later skip of workout 4 outweighs the completion.
	time.Sleep(5 * time.Millisecond)
	if err = svc.RecordSkip(ctx, splitID, 4); err != nil {
		t.Fatalf("Failed to record skip: %v", err)
	}

	next, err = svc.NextWorkout(ctx)
	if err != nil {
		t.Fatalf("Failed to resolve next workout: %v", err)
	}
	if next.SessionIndex != 5 {
		t.Errorf("After skipping 4: next index = %d, want 5", next.SessionIndex)
	}

	// Skipping the last workout wraps around to the first.
	time.Sleep(5 * time.Millisecond)
	if err = svc.RecordSkip(ctx, splitID, 5); err != nil {
		t.Fatalf("Failed to record skip: %v", err)
	}

	next, err = svc.NextWorkout(ctx)
	if err != nil {
		t.Fatalf("Failed to resolve next workout: %v", err)
	}
	if next.SessionIndex != 0 {
		t.Errorf("After skipping the last workout: next index = %d, want 0", next.SessionIndex)
	}
}

func Test_NextWorkout_RequiresActiveSplit(t *testing.T) {
	ctx, svc, _ := newTestService(t)

	_, err := svc.NextWorkout(ctx)
	if !errors.Is(err, training.ErrNoActiveSplit) {
		t.Errorf("Expected ErrNoActiveSplit, got %v", err)
	}
}

func Test_PlanEdits_SyncOpenSession(t *testing.T) {
	ctx, svc, db := newTestService(t)

	firstID := createTestExercise(ctx, t, db, "Plan Curl", false, "Biceps", `[]`)
	secondID := createTestExercise(ctx, t, db, "Plan Extension", false, "Triceps", `[]`)
	thirdID := createTestExercise(ctx, t, db, "Plan Raise", false, "Shoulders", `[]`)

	setCount := 2
	err := svc.SavePlannedWorkout(ctx, training.PlannedWorkout{
		SplitID:      1,
		SessionIndex: 0,
		Exercises: []training.PlannedExercise{
			{ExerciseID: firstID, Overrides: training.ExerciseOverrides{SetCount: &setCount}},
		},
	})
	if err != nil {
		t.Fatalf("Failed to save planned workout: %v", err)
	}

	session, err := svc.StartSession(ctx, training.SplitContext(1, 0))
	if err != nil {
		t.Fatalf("Failed to start session: %v", err)
	}

	// Adding to the plan lands in the open session too.
	if err = svc.AddPlannedExercise(ctx, 1, 0, secondID, training.ExerciseOverrides{}); err != nil {
		t.Fatalf("Failed to add planned exercise: %v", err)
	}
	session, err = svc.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("Failed to reload session: %v", err)
	}
	if !sessionHasExercise(session, secondID) {
		t.Error("Added exercise missing from the open session")
	}

	// Replacing swaps the exercise in the open session.
	if err = svc.ReplacePlannedExercise(ctx, 1, 0, secondID, thirdID); err != nil {
		t.Fatalf("Failed to replace planned exercise: %v", err)
	}
	session, err = svc.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("Failed to reload session: %v", err)
	}
	if sessionHasExercise(session, secondID) {
		t.Error("Replaced exercise still present in the open session")
	}
	if !sessionHasExercise(session, thirdID) {
		t.Error("Replacement exercise missing from the open session")
	}

	// Removing drops it from both.
	if err = svc.RemovePlannedExercise(ctx, 1, 0, thirdID); err != nil {
		t.Fatalf("Failed to remove planned exercise: %v", err)
	}
	session, err = svc.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("Failed to reload session: %v", err)
	}
	if sessionHasExercise(session, thirdID) {
		t.Error("Removed exercise still present in the open session")
	}
}

func sessionHasExercise(session training.TrainingSession, exerciseID int64) bool {
	for _, exercise := range session.Exercises {
		if exercise.ExerciseID == exerciseID {
			return true
		}
	}
	return false
}

func Test_Settings_DefaultsWithoutRow(t *testing.T) {
	ctx, svc, _ := newTestService(t)

	settings, err := svc.Settings(ctx)
	if err != nil {
		t.Fatalf("Failed to get settings: %v", err)
	}

	if settings.Goal != training.GoalGeneralFitness {
		t.Errorf("Default goal = %q, want %q", settings.Goal, training.GoalGeneralFitness)
	}
	if settings.ActiveSplitID != nil {
		t.Errorf("Default active split = %v, want nil", settings.ActiveSplitID)
	}
	if settings.WorkoutMinutes != 60 {
		t.Errorf("Default workout minutes = %d, want 60", settings.WorkoutMinutes)
	}
	if settings.ExcludedExercises == nil || settings.SkippedSessions == nil {
		t.Error("Default settings should have empty, non-nil lists")
	}
}
