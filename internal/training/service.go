package training

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rafatrikUOC/soloprogress/internal/sqlite"
)

// ErrSessionFinalized is returned when a mutation targets a session that has
// already been finalized.
var ErrSessionFinalized = errors.New("session already finalized")

// ErrAlreadyPlanned is returned when an exercise is added to a planned workout
// that already contains it.
var ErrAlreadyPlanned = errors.New("exercise already planned")

// ErrSessionNotStarted is returned when a session without a start time is
// finalized.
var ErrSessionNotStarted = errors.New("session has not been started")

// Service handles the business logic for training sessions.
type Service struct {
	repo   *repository
	logger *slog.Logger
}

// NewService creates a new training service.
func NewService(db *sqlite.Database, logger *slog.Logger) *Service {
	return &Service{
		repo:   newRepository(db, logger),
		logger: logger,
	}
}

// StartSession opens a training session for the given context, reusing an
// open one when the user already has a session going in that context.
//
// Split sessions are materialized from the planned workout at the context's
// session index. Other contexts start empty and gain exercises as the user
// adds them.
func (s *Service) StartSession(ctx context.Context, target Context) (TrainingSession, error) {
	build := func() ([]TrainingExercise, error) { return nil, nil }

	if target.Kind == ContextSplit {
		build = func() ([]TrainingExercise, error) {
			settings, err := s.repo.settings.Get(ctx)
			if err != nil {
				return nil, fmt.Errorf("get settings: %w", err)
			}

			plan, err := s.repo.plans.Get(ctx, target.SplitID, target.SessionIndex)
			if err != nil {
				if errors.Is(err, ErrNotFound) {
					return nil, nil
				}
				return nil, fmt.Errorf("get planned workout: %w", err)
			}

			return s.materializeExercises(ctx, plan, settings)
		}
	}

	session, err := s.resolveOpenSession(ctx, target, build)
	if err != nil {
		return TrainingSession{}, fmt.Errorf("resolve open session: %w", err)
	}

	return session, nil
}

// GetSession retrieves a training session by id.
func (s *Service) GetSession(ctx context.Context, sessionID string) (TrainingSession, error) {
	session, err := s.repo.sessions.Get(ctx, sessionID)
	if err != nil {
		return TrainingSession{}, fmt.Errorf("get session %s: %w", sessionID, err)
	}
	return session, nil
}

// CompleteSeries marks a working set done with the performed values and stamps
// the estimated one-rep max on it.
func (s *Service) CompleteSeries(
	ctx context.Context,
	sessionID string,
	exerciseID int64,
	setNumber int,
	series ExerciseSeries,
) error {
	session, err := s.repo.sessions.Get(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("get session %s: %w", sessionID, err)
	}
	if !session.Open() {
		return ErrSessionFinalized
	}

	if series.CompletedAt == nil {
		now := time.Now().UTC()
		series.CompletedAt = &now
	}

	if series.Reps != nil && series.Weight != nil {
		if oneRepMax := estimateOneRepMax(*series.Reps, *series.Weight); oneRepMax > 0 {
			series.Record = &oneRepMax
		}
	}

	if err = s.repo.sessions.CompleteSeries(ctx, sessionID, exerciseID, setNumber, series); err != nil {
		return fmt.Errorf("complete series: %w", err)
	}

	return nil
}

// AddWarmupSeries records a completed warm-up set before the working sets of
// an exercise. Warm-up sets never count toward the session summary.
func (s *Service) AddWarmupSeries(
	ctx context.Context,
	sessionID string,
	exerciseID int64,
	series ExerciseSeries,
) error {
	session, err := s.repo.sessions.Get(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("get session %s: %w", sessionID, err)
	}
	if !session.Open() {
		return ErrSessionFinalized
	}

	series.IsWarmup = true
	series.SetNumber = nextWarmupNumber(session, exerciseID)
	if series.CompletedAt == nil {
		now := time.Now().UTC()
		series.CompletedAt = &now
	}

	if err = s.repo.sessions.AddWarmupSeries(ctx, sessionID, exerciseID, series); err != nil {
		return fmt.Errorf("add warmup series: %w", err)
	}

	return nil
}

// nextWarmupNumber returns the next free warm-up set number for an exercise.
func nextWarmupNumber(session TrainingSession, exerciseID int64) int {
	highest := 0
	for _, exercise := range session.Exercises {
		if exercise.ExerciseID != exerciseID {
			continue
		}
		for _, series := range exercise.Series {
			if series.IsWarmup && series.SetNumber > highest {
				highest = series.SetNumber
			}
		}
	}
	return highest + 1
}

// FinishSession finalizes an open session and returns its summary. Finishing
// an already finalized session is an error.
func (s *Service) FinishSession(ctx context.Context, sessionID string) (Summary, error) {
	session, err := s.repo.sessions.Get(ctx, sessionID)
	if err != nil {
		return Summary{}, fmt.Errorf("get session %s: %w", sessionID, err)
	}
	if !session.Open() {
		return Summary{}, ErrSessionFinalized
	}
	if session.StartTime == nil {
		return Summary{}, ErrSessionNotStarted
	}

	catalog, err := s.sessionCatalog(ctx, session)
	if err != nil {
		return Summary{}, err
	}

	endTime := time.Now().UTC()
	summary := summarize(session, catalog, endTime)

	if err = s.repo.sessions.Finalize(ctx, sessionID, endTime, summary); err != nil {
		return Summary{}, fmt.Errorf("finalize session %s: %w", sessionID, err)
	}

	return summary, nil
}

// sessionCatalog loads the catalog entries for the exercises in a session.
func (s *Service) sessionCatalog(ctx context.Context, session TrainingSession) (map[int64]Exercise, error) {
	catalog := make(map[int64]Exercise, len(session.Exercises))
	for _, exercise := range session.Exercises {
		if _, ok := catalog[exercise.ExerciseID]; ok {
			continue
		}
		entry, err := s.repo.exercises.Get(ctx, exercise.ExerciseID)
		if err != nil {
			return nil, fmt.Errorf("get exercise %d: %w", exercise.ExerciseID, err)
		}
		catalog[exercise.ExerciseID] = entry
	}
	return catalog, nil
}

// AddPlannedExercise appends an exercise to a planned workout. When the user
// has an open session in that slot, the exercise is materialized into it as
// well.
func (s *Service) AddPlannedExercise(
	ctx context.Context,
	splitID int64,
	sessionIndex int,
	exerciseID int64,
	overrides ExerciseOverrides,
) error {
	if _, err := s.repo.exercises.Get(ctx, exerciseID); err != nil {
		return fmt.Errorf("get exercise %d: %w", exerciseID, err)
	}

	plan, err := s.repo.plans.Get(ctx, splitID, sessionIndex)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("get planned workout: %w", err)
	}
	plan.SplitID = splitID
	plan.SessionIndex = sessionIndex

	for _, planned := range plan.Exercises {
		if planned.ExerciseID == exerciseID {
			return ErrAlreadyPlanned
		}
	}

	plan.Exercises = append(plan.Exercises, PlannedExercise{ExerciseID: exerciseID, Overrides: overrides})
	if err = s.repo.plans.Set(ctx, plan); err != nil {
		return fmt.Errorf("save planned workout: %w", err)
	}

	return s.syncOpenSession(ctx, splitID, sessionIndex, func(session TrainingSession) error {
		settings, err := s.repo.settings.Get(ctx)
		if err != nil {
			return fmt.Errorf("get settings: %w", err)
		}

		planned := PlannedExercise{ExerciseID: exerciseID, Overrides: overrides}
		exercise, err := s.materializeExercise(ctx, planned, settings, len(session.Exercises))
		if err != nil {
			return err
		}

		if err = s.repo.sessions.AddExercise(ctx, session.ID, exercise); err != nil {
			return fmt.Errorf("add exercise to session: %w", err)
		}
		return nil
	})
}

// RemovePlannedExercise drops an exercise from a planned workout and from the
// open session in that slot, if any.
func (s *Service) RemovePlannedExercise(
	ctx context.Context,
	splitID int64,
	sessionIndex int,
	exerciseID int64,
) error {
	plan, err := s.repo.plans.Get(ctx, splitID, sessionIndex)
	if err != nil {
		return fmt.Errorf("get planned workout: %w", err)
	}

	kept := plan.Exercises[:0]
	found := false
	for _, planned := range plan.Exercises {
		if planned.ExerciseID == exerciseID {
			found = true
			continue
		}
		kept = append(kept, planned)
	}
	if !found {
		return ErrNotFound
	}
	plan.Exercises = kept

	if err = s.repo.plans.Set(ctx, plan); err != nil {
		return fmt.Errorf("save planned workout: %w", err)
	}

	return s.syncOpenSession(ctx, splitID, sessionIndex, func(session TrainingSession) error {
		err := s.repo.sessions.RemoveExercise(ctx, session.ID, exerciseID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("remove exercise from session: %w", err)
		}
		return nil
	})
}

// ReplacePlannedExercise swaps an exercise in a planned workout for another
// one, keeping the entry's overrides. The open session in that slot, if any,
// gets the replacement materialized in place of the original.
func (s *Service) ReplacePlannedExercise(
	ctx context.Context,
	splitID int64,
	sessionIndex int,
	currentExerciseID int64,
	newExerciseID int64,
) error {
	if _, err := s.repo.exercises.Get(ctx, newExerciseID); err != nil {
		return fmt.Errorf("get replacement exercise %d: %w", newExerciseID, err)
	}

	plan, err := s.repo.plans.Get(ctx, splitID, sessionIndex)
	if err != nil {
		return fmt.Errorf("get planned workout: %w", err)
	}

	var overrides ExerciseOverrides
	found := false
	for i, planned := range plan.Exercises {
		if planned.ExerciseID == currentExerciseID {
			overrides = planned.Overrides
			plan.Exercises[i].ExerciseID = newExerciseID
			found = true
			break
		}
	}
	if !found {
		return ErrNotFound
	}

	if err = s.repo.plans.Set(ctx, plan); err != nil {
		return fmt.Errorf("save planned workout: %w", err)
	}

	return s.syncOpenSession(ctx, splitID, sessionIndex, func(session TrainingSession) error {
		position := len(session.Exercises)
		for _, exercise := range session.Exercises {
			if exercise.ExerciseID == currentExerciseID {
				position = exercise.Position
				break
			}
		}

		err := s.repo.sessions.RemoveExercise(ctx, session.ID, currentExerciseID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("remove exercise from session: %w", err)
		}

		settings, err := s.repo.settings.Get(ctx)
		if err != nil {
			return fmt.Errorf("get settings: %w", err)
		}

		planned := PlannedExercise{ExerciseID: newExerciseID, Overrides: overrides}
		exercise, err := s.materializeExercise(ctx, planned, settings, position)
		if err != nil {
			return err
		}

		if err = s.repo.sessions.AddExercise(ctx, session.ID, exercise); err != nil {
			return fmt.Errorf("add replacement exercise to session: %w", err)
		}
		return nil
	})
}

// syncOpenSession applies a mutation to the user's open session in the given
// split slot. No open session in that slot is a no-op.
func (s *Service) syncOpenSession(
	ctx context.Context,
	splitID int64,
	sessionIndex int,
	apply func(session TrainingSession) error,
) error {
	open, err := s.repo.sessions.ListOpen(ctx)
	if err != nil {
		return fmt.Errorf("list open sessions: %w", err)
	}

	target := SplitContext(splitID, sessionIndex)
	for _, session := range open {
		if session.Context.Equal(target) {
			return apply(session)
		}
	}

	return nil
}

// Settings retrieves the user's settings.
func (s *Service) Settings(ctx context.Context) (Settings, error) {
	settings, err := s.repo.settings.Get(ctx)
	if err != nil {
		return Settings{}, fmt.Errorf("get settings: %w", err)
	}
	return settings, nil
}

// UpdateSettings saves the user's settings.
func (s *Service) UpdateSettings(ctx context.Context, settings Settings) error {
	if err := s.repo.settings.Set(ctx, settings); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// ListExercises returns the exercise catalog.
func (s *Service) ListExercises(ctx context.Context) ([]Exercise, error) {
	exercises, err := s.repo.exercises.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	return exercises, nil
}

// GetExercise retrieves a catalog exercise by id.
func (s *Service) GetExercise(ctx context.Context, id int64) (Exercise, error) {
	exercise, err := s.repo.exercises.Get(ctx, id)
	if err != nil {
		return Exercise{}, fmt.Errorf("get exercise %d: %w", id, err)
	}
	return exercise, nil
}

// PlannedWorkouts lists the planned workouts of a split.
func (s *Service) PlannedWorkouts(ctx context.Context, splitID int64) ([]PlannedWorkout, error) {
	plans, err := s.repo.plans.List(ctx, splitID)
	if err != nil {
		return nil, fmt.Errorf("list planned workouts: %w", err)
	}
	return plans, nil
}

// SavePlannedWorkout upserts a planned workout.
func (s *Service) SavePlannedWorkout(ctx context.Context, plan PlannedWorkout) error {
	if err := s.repo.plans.Set(ctx, plan); err != nil {
		return fmt.Errorf("save planned workout: %w", err)
	}
	return nil
}
