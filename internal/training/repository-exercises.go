package training

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rafatrikUOC/soloprogress/internal/sqlite"
)

// sqliteExerciseRepository implements exerciseRepository. The exercise catalog
// is seeded from fixtures and read-only at runtime.
type sqliteExerciseRepository struct {
	baseRepository
}

func newSQLiteExerciseRepository(db *sqlite.Database, logger *slog.Logger) *sqliteExerciseRepository {
	return &sqliteExerciseRepository{
		baseRepository: newBaseRepository(db, logger),
	}
}

// Get retrieves a single exercise by ID.
func (r *sqliteExerciseRepository) Get(ctx context.Context, id int64) (Exercise, error) {
	var (
		exercise            Exercise
		equipmentStr        sql.NullString
		secondaryMusclesStr sql.NullString
	)

	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT id, name, compound, equipment, primary_muscle, secondary_muscles
		FROM exercises
		WHERE id = ?`, id).Scan(
		&exercise.ID,
		&exercise.Name,
		&exercise.Compound,
		&equipmentStr,
		&exercise.PrimaryMuscle,
		&secondaryMusclesStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Exercise{}, ErrNotFound
		}
		return Exercise{}, fmt.Errorf("query exercise: %w", err)
	}

	if err = unmarshalJSONColumn(equipmentStr, &exercise.Equipment); err != nil {
		return Exercise{}, fmt.Errorf("unmarshal equipment: %w", err)
	}
	if err = unmarshalJSONColumn(secondaryMusclesStr, &exercise.SecondaryMuscles); err != nil {
		return Exercise{}, fmt.Errorf("unmarshal secondary muscles: %w", err)
	}

	return exercise, nil
}

// List returns the whole exercise catalog ordered by id.
func (r *sqliteExerciseRepository) List(ctx context.Context) (_ []Exercise, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id, name, compound, equipment, primary_muscle, secondary_muscles
		FROM exercises
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query exercises: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var exercises []Exercise
	for rows.Next() {
		var (
			exercise            Exercise
			equipmentStr        sql.NullString
			secondaryMusclesStr sql.NullString
		)
		err = rows.Scan(
			&exercise.ID, &exercise.Name, &exercise.Compound,
			&equipmentStr, &exercise.PrimaryMuscle, &secondaryMusclesStr,
		)
		if err != nil {
			return nil, fmt.Errorf("scan exercise: %w", err)
		}

		if err = unmarshalJSONColumn(equipmentStr, &exercise.Equipment); err != nil {
			return nil, fmt.Errorf("unmarshal equipment: %w", err)
		}
		if err = unmarshalJSONColumn(secondaryMusclesStr, &exercise.SecondaryMuscles); err != nil {
			return nil, fmt.Errorf("unmarshal secondary muscles: %w", err)
		}

		exercises = append(exercises, exercise)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return exercises, nil
}
