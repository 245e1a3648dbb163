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

// sqlitePlanRepository implements planRepository.
type sqlitePlanRepository struct {
	baseRepository
}

func newSQLitePlanRepository(db *sqlite.Database, logger *slog.Logger) *sqlitePlanRepository {
	return &sqlitePlanRepository{
		baseRepository: newBaseRepository(db, logger),
	}
}

// Get retrieves the planned workout at a session index within a split.
func (r *sqlitePlanRepository) Get(ctx context.Context, splitID int64, sessionIndex int) (PlannedWorkout, error) {
	userID := contexthelpers.AuthenticatedUserID(ctx)

	var (
		plan         PlannedWorkout
		exercisesStr sql.NullString
	)
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT id, user_id, split_id, session_index, title, exercises
		FROM planned_workouts
		WHERE user_id = ? AND split_id = ? AND session_index = ?`,
		userID, splitID, sessionIndex).Scan(
		&plan.ID, &plan.UserID, &plan.SplitID, &plan.SessionIndex, &plan.Title, &exercisesStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return PlannedWorkout{}, ErrNotFound
		}
		return PlannedWorkout{}, fmt.Errorf("query planned workout: %w", err)
	}

	if err = unmarshalJSONColumn(exercisesStr, &plan.Exercises); err != nil {
		return PlannedWorkout{}, fmt.Errorf("unmarshal planned exercises: %w", err)
	}

	return plan, nil
}

// List retrieves all planned workouts of a split ordered by session index.
func (r *sqlitePlanRepository) List(ctx context.Context, splitID int64) (_ []PlannedWorkout, err error) {
	userID := contexthelpers.AuthenticatedUserID(ctx)

	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id, user_id, split_id, session_index, title, exercises
		FROM planned_workouts
		WHERE user_id = ? AND split_id = ?
		ORDER BY session_index`,
		userID, splitID)
	if err != nil {
		return nil, fmt.Errorf("query planned workouts: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var plans []PlannedWorkout
	for rows.Next() {
		var (
			plan         PlannedWorkout
			exercisesStr sql.NullString
		)
		if err = rows.Scan(&plan.ID, &plan.UserID, &plan.SplitID, &plan.SessionIndex, &plan.Title, &exercisesStr); err != nil {
			return nil, fmt.Errorf("scan planned workout: %w", err)
		}
		if err = unmarshalJSONColumn(exercisesStr, &plan.Exercises); err != nil {
			return nil, fmt.Errorf("unmarshal planned exercises: %w", err)
		}
		plans = append(plans, plan)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return plans, nil
}

// Set upserts a planned workout keyed by (split, session index).
func (r *sqlitePlanRepository) Set(ctx context.Context, plan PlannedWorkout) error {
	userID := contexthelpers.AuthenticatedUserID(ctx)

	exercisesStr, err := marshalJSONColumn(plan.Exercises)
	if err != nil {
		return fmt.Errorf("marshal planned exercises: %w", err)
	}

	_, err = r.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO planned_workouts (user_id, split_id, session_index, title, exercises)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, split_id, session_index) DO UPDATE SET
			title = excluded.title,
			exercises = excluded.exercises`,
		userID, plan.SplitID, plan.SessionIndex, plan.Title, exercisesStr)
	if err != nil {
		return fmt.Errorf("save planned workout: %w", err)
	}

	return nil
}

// Count returns the number of planned workouts in a split.
func (r *sqlitePlanRepository) Count(ctx context.Context, splitID int64) (int, error) {
	userID := contexthelpers.AuthenticatedUserID(ctx)

	var count int
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM planned_workouts
		WHERE user_id = ? AND split_id = ?`,
		userID, splitID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count planned workouts: %w", err)
	}

	return count, nil
}
