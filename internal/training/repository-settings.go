package training

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rafatrikUOC/soloprogress/internal/contexthelpers"
	"github.com/rafatrikUOC/soloprogress/internal/sqlite"
)

// Setting defaults applied when the user has no stored row yet.
const (
	defaultWorkoutMinutes       = 60
	defaultCompoundRestSeconds  = 180
	defaultIsolationRestSeconds = 90
)

// sqliteSettingsRepository implements settingsRepository.
type sqliteSettingsRepository struct {
	baseRepository
}

func newSQLiteSettingsRepository(db *sqlite.Database, logger *slog.Logger) *sqliteSettingsRepository {
	return &sqliteSettingsRepository{
		baseRepository: newBaseRepository(db, logger),
	}
}

// defaultSettings is what a user gets before they have saved anything.
func defaultSettings() Settings {
	return Settings{
		Goal:                 GoalGeneralFitness,
		WorkoutMinutes:       defaultWorkoutMinutes,
		CompoundRestSeconds:  defaultCompoundRestSeconds,
		IsolationRestSeconds: defaultIsolationRestSeconds,
		ExcludedExercises:    []int64{},
		SkippedSessions:      []SkipRecord{},
	}
}

// Get retrieves the user's settings, falling back to defaults when no row
// exists.
func (r *sqliteSettingsRepository) Get(ctx context.Context) (Settings, error) {
	userID := contexthelpers.AuthenticatedUserID(ctx)

	var (
		settings             Settings
		goalStr              string
		activeSplitID        sql.NullInt64
		excludedExercisesStr sql.NullString
		skippedSessionsStr   sql.NullString
	)
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT fitness_goal, active_split_id, workout_minutes,
		       compound_rest_seconds, isolation_rest_seconds,
		       excluded_exercises, skipped_sessions
		FROM user_settings
		WHERE user_id = ?`, userID).Scan(
		&goalStr,
		&activeSplitID,
		&settings.WorkoutMinutes,
		&settings.CompoundRestSeconds,
		&settings.IsolationRestSeconds,
		&excludedExercisesStr,
		&skippedSessionsStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return defaultSettings(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("query user settings: %w", err)
	}

	settings.Goal = ParseGoal(goalStr)
	if activeSplitID.Valid {
		settings.ActiveSplitID = &activeSplitID.Int64
	}

	settings.ExcludedExercises = []int64{}
	if err = unmarshalJSONColumn(excludedExercisesStr, &settings.ExcludedExercises); err != nil {
		return Settings{}, fmt.Errorf("unmarshal excluded exercises: %w", err)
	}
	settings.SkippedSessions = []SkipRecord{}
	if err = unmarshalJSONColumn(skippedSessionsStr, &settings.SkippedSessions); err != nil {
		return Settings{}, fmt.Errorf("unmarshal skipped sessions: %w", err)
	}

	return settings, nil
}

// Set saves the user's settings as a whole row.
func (r *sqliteSettingsRepository) Set(ctx context.Context, settings Settings) error {
	userID := contexthelpers.AuthenticatedUserID(ctx)

	excludedExercisesStr, err := marshalJSONColumn(settings.ExcludedExercises)
	if err != nil {
		return fmt.Errorf("marshal excluded exercises: %w", err)
	}
	skippedSessionsStr, err := marshalJSONColumn(settings.SkippedSessions)
	if err != nil {
		return fmt.Errorf("marshal skipped sessions: %w", err)
	}

	var activeSplitID sql.NullInt64
	if settings.ActiveSplitID != nil {
		activeSplitID = sql.NullInt64{Int64: *settings.ActiveSplitID, Valid: true}
	}

	_, err = r.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO user_settings (
			user_id, fitness_goal, active_split_id, workout_minutes,
			compound_rest_seconds, isolation_rest_seconds,
			excluded_exercises, skipped_sessions
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			fitness_goal = excluded.fitness_goal,
			active_split_id = excluded.active_split_id,
			workout_minutes = excluded.workout_minutes,
			compound_rest_seconds = excluded.compound_rest_seconds,
			isolation_rest_seconds = excluded.isolation_rest_seconds,
			excluded_exercises = excluded.excluded_exercises,
			skipped_sessions = excluded.skipped_sessions`,
		userID,
		string(settings.Goal),
		activeSplitID,
		settings.WorkoutMinutes,
		settings.CompoundRestSeconds,
		settings.IsolationRestSeconds,
		excludedExercisesStr,
		skippedSessionsStr,
	)
	if err != nil {
		return fmt.Errorf("save user settings: %w", err)
	}

	return nil
}
