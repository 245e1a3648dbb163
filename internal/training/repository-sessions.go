package training

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rafatrikUOC/soloprogress/internal/contexthelpers"
	"github.com/rafatrikUOC/soloprogress/internal/sqlite"
)

// sqliteSessionRepository implements sessionRepository.
type sqliteSessionRepository struct {
	baseRepository
}

func newSQLiteSessionRepository(db *sqlite.Database, logger *slog.Logger) *sqliteSessionRepository {
	return &sqliteSessionRepository{
		baseRepository: newBaseRepository(db, logger),
	}
}

// Get retrieves a training session by id, including exercises and series.
func (r *sqliteSessionRepository) Get(ctx context.Context, sessionID string) (TrainingSession, error) {
	userID := contexthelpers.AuthenticatedUserID(ctx)

	var (
		session        TrainingSession
		splitID        sql.NullInt64
		sessionIndex   sql.NullInt64
		routineID      sql.NullString
		punctualID     sql.NullString
		createdAtStr   string
		startTimeStr   sql.NullString
		endTimeStr     sql.NullString
		volume         sql.NullFloat64
		caloriesBurned sql.NullInt64
		musclesWorked  sql.NullString
		performance    sql.NullString
	)

	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT id, user_id, split_id, session_index, routine_id, punctual_id,
		       created_at, start_time, end_time, volume, calories_burned, muscles_worked,
		       performance_data
		FROM training_sessions
		WHERE id = ? AND user_id = ?`,
		sessionID, userID).Scan(
		&session.ID, &session.UserID, &splitID, &sessionIndex, &routineID, &punctualID,
		&createdAtStr, &startTimeStr, &endTimeStr, &volume, &caloriesBurned, &musclesWorked,
		&performance,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return TrainingSession{}, ErrNotFound
		}
		return TrainingSession{}, fmt.Errorf("query training session: %w", err)
	}

	session, err = r.hydrateSession(
		session, splitID, sessionIndex, routineID, punctualID,
		createdAtStr, startTimeStr, endTimeStr, volume, caloriesBurned, musclesWorked, performance,
	)
	if err != nil {
		return TrainingSession{}, err
	}

	exercises, err := r.loadExercises(ctx, session.ID)
	if err != nil {
		return TrainingSession{}, err
	}
	session.Exercises = exercises

	return session, nil
}

// ListOpen retrieves all of the user's open sessions, oldest first.
func (r *sqliteSessionRepository) ListOpen(ctx context.Context) (_ []TrainingSession, err error) {
	userID := contexthelpers.AuthenticatedUserID(ctx)

	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id, user_id, split_id, session_index, routine_id, punctual_id,
		       created_at, start_time, end_time, volume, calories_burned, muscles_worked,
		       performance_data
		FROM training_sessions
		WHERE user_id = ? AND end_time IS NULL
		ORDER BY created_at`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("query open sessions: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var sessions []TrainingSession
	for rows.Next() {
		var (
			session        TrainingSession
			splitID        sql.NullInt64
			sessionIndex   sql.NullInt64
			routineID      sql.NullString
			punctualID     sql.NullString
			createdAtStr   string
			startTimeStr   sql.NullString
			endTimeStr     sql.NullString
			volume         sql.NullFloat64
			caloriesBurned sql.NullInt64
			musclesWorked  sql.NullString
			performance    sql.NullString
		)

		err = rows.Scan(
			&session.ID, &session.UserID, &splitID, &sessionIndex, &routineID, &punctualID,
			&createdAtStr, &startTimeStr, &endTimeStr, &volume, &caloriesBurned, &musclesWorked,
			&performance,
		)
		if err != nil {
			return nil, fmt.Errorf("scan open session: %w", err)
		}

		session, err = r.hydrateSession(
			session, splitID, sessionIndex, routineID, punctualID,
			createdAtStr, startTimeStr, endTimeStr, volume, caloriesBurned, musclesWorked, performance,
		)
		if err != nil {
			return nil, err
		}

		sessions = append(sessions, session)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	for i := range sessions {
		var exercises []TrainingExercise
		exercises, err = r.loadExercises(ctx, sessions[i].ID)
		if err != nil {
			return nil, err
		}
		sessions[i].Exercises = exercises
	}

	return sessions, nil
}

// Create inserts a session together with its exercises and series.
func (r *sqliteSessionRepository) Create(ctx context.Context, sess TrainingSession) (err error) {
	userID := contexthelpers.AuthenticatedUserID(ctx)
	splitID, sessionIndex, routineID, punctualID := contextColumns(sess.Context)

	tx, err := r.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			err = errors.Join(err, fmt.Errorf("rollback transaction: %w", rollbackErr))
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO training_sessions (
			id, user_id, split_id, session_index, routine_id, punctual_id,
			created_at, start_time
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, userID, splitID, sessionIndex, routineID, punctualID,
		sess.CreatedAt.UTC().Format(timestampFormat), formatTimestamp(sess.StartTime))
	if err != nil {
		return fmt.Errorf("insert training session: %w", err)
	}

	for _, exercise := range sess.Exercises {
		if err = insertTrainingExercise(ctx, tx, sess.ID, exercise); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// Delete removes a session. Exercises and series go with it through the
// cascading foreign keys.
func (r *sqliteSessionRepository) Delete(ctx context.Context, sessionID string) error {
	userID := contexthelpers.AuthenticatedUserID(ctx)

	_, err := r.db.ReadWrite.ExecContext(ctx, `
		DELETE FROM training_sessions
		WHERE id = ? AND user_id = ?`,
		sessionID, userID)
	if err != nil {
		return fmt.Errorf("delete training session: %w", err)
	}

	return nil
}

// AddExercise appends an exercise with its planned series to an open session.
func (r *sqliteSessionRepository) AddExercise(
	ctx context.Context,
	sessionID string,
	exercise TrainingExercise,
) (err error) {
	tx, err := r.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			err = errors.Join(err, fmt.Errorf("rollback transaction: %w", rollbackErr))
		}
	}()

	if err = insertTrainingExercise(ctx, tx, sessionID, exercise); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// RemoveExercise deletes an exercise and its series from a session.
func (r *sqliteSessionRepository) RemoveExercise(ctx context.Context, sessionID string, exerciseID int64) error {
	result, err := r.db.ReadWrite.ExecContext(ctx, `
		DELETE FROM training_exercises
		WHERE training_id = ? AND exercise_id = ?`,
		sessionID, exerciseID)
	if err != nil {
		return fmt.Errorf("delete training exercise: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// CompleteSeries marks one working set done and records the performed values.
func (r *sqliteSessionRepository) CompleteSeries(
	ctx context.Context,
	sessionID string,
	exerciseID int64,
	setNumber int,
	series ExerciseSeries,
) error {
	completedAt := time.Now()
	if series.CompletedAt != nil {
		completedAt = *series.CompletedAt
	}

	result, err := r.db.ReadWrite.ExecContext(ctx, `
		UPDATE exercise_series
		SET reps = ?, weight = ?, time_seconds = ?, distance = ?, completed_at = ?, record = ?
		WHERE training_exercise_id = (
			SELECT id FROM training_exercises
			WHERE training_id = ? AND exercise_id = ?
		)
		AND set_number = ? AND is_warmup = 0`,
		series.Reps, series.Weight, series.TimeSeconds, series.Distance,
		completedAt.UTC().Format(timestampFormat), series.Record,
		sessionID, exerciseID, setNumber)
	if err != nil {
		return fmt.Errorf("complete series: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// AddWarmupSeries inserts a completed warm-up set for an exercise in a session.
func (r *sqliteSessionRepository) AddWarmupSeries(
	ctx context.Context,
	sessionID string,
	exerciseID int64,
	series ExerciseSeries,
) error {
	_, err := r.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO exercise_series (
			training_exercise_id, set_number, is_warmup,
			reps, weight, time_seconds, distance, completed_at
		)
		SELECT id, ?, 1, ?, ?, ?, ?, ?
		FROM training_exercises
		WHERE training_id = ? AND exercise_id = ?`,
		series.SetNumber, series.Reps, series.Weight, series.TimeSeconds, series.Distance,
		formatTimestamp(series.CompletedAt),
		sessionID, exerciseID)
	if err != nil {
		return fmt.Errorf("insert warmup series: %w", err)
	}

	return nil
}

// Finalize stamps the end time, summary figures, and the performance snapshot
// on an open session. It refuses to touch a session that is already finalized.
func (r *sqliteSessionRepository) Finalize(
	ctx context.Context,
	sessionID string,
	endTime time.Time,
	summary Summary,
) error {
	userID := contexthelpers.AuthenticatedUserID(ctx)

	musclesWorked, err := marshalJSONColumn(summary.MusclesWorked)
	if err != nil {
		return err
	}

	performance, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal performance snapshot: %w", err)
	}

	result, err := r.db.ReadWrite.ExecContext(ctx, `
		UPDATE training_sessions
		SET end_time = ?, volume = ?, calories_burned = ?, muscles_worked = ?, performance_data = ?
		WHERE id = ? AND user_id = ? AND end_time IS NULL`,
		endTime.UTC().Format(timestampFormat), summary.TotalVolume, summary.CaloriesBurned, musclesWorked,
		string(performance),
		sessionID, userID)
	if err != nil {
		return fmt.Errorf("finalize training session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// LastCompletedSplitSession returns the session index and end time of the
// user's most recently completed session within a split. ErrNotFound means the
// user has not completed any session of that split yet.
func (r *sqliteSessionRepository) LastCompletedSplitSession(
	ctx context.Context,
	splitID int64,
) (int, time.Time, error) {
	userID := contexthelpers.AuthenticatedUserID(ctx)

	var (
		sessionIndex int
		endTimeStr   string
	)
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT session_index, end_time
		FROM training_sessions
		WHERE user_id = ? AND split_id = ? AND end_time IS NOT NULL
		ORDER BY end_time DESC
		LIMIT 1`,
		userID, splitID).Scan(&sessionIndex, &endTimeStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, time.Time{}, ErrNotFound
		}
		return 0, time.Time{}, fmt.Errorf("query last completed split session: %w", err)
	}

	endTime, err := time.Parse(timestampFormat, endTimeStr)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("parse end_time: %w", err)
	}

	return sessionIndex, endTime, nil
}

// LastSeries returns the working series the user performed the last time they
// trained the exercise, ordered by set number. An empty result means no
// history.
func (r *sqliteSessionRepository) LastSeries(ctx context.Context, exerciseID int64) (_ []ExerciseSeries, err error) {
	userID := contexthelpers.AuthenticatedUserID(ctx)

	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT es.set_number, es.reps, es.weight, es.time_seconds, es.distance, es.completed_at, es.record
		FROM exercise_series es
		JOIN training_exercises te ON te.id = es.training_exercise_id
		WHERE te.exercise_id = ? AND es.is_warmup = 0 AND te.training_id = (
			SELECT ts.id
			FROM training_sessions ts
			JOIN training_exercises inner_te ON inner_te.training_id = ts.id
			WHERE ts.user_id = ? AND inner_te.exercise_id = ? AND ts.end_time IS NOT NULL
			ORDER BY COALESCE(ts.end_time, ts.start_time, ts.created_at) DESC
			LIMIT 1
		)
		ORDER BY es.set_number`,
		exerciseID, userID, exerciseID)
	if err != nil {
		return nil, fmt.Errorf("query last series: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var series []ExerciseSeries
	for rows.Next() {
		var (
			s              ExerciseSeries
			reps           sql.NullInt64
			weight         sql.NullFloat64
			timeSeconds    sql.NullInt64
			distance       sql.NullFloat64
			completedAtStr sql.NullString
			record         sql.NullFloat64
		)

		if err = rows.Scan(&s.SetNumber, &reps, &weight, &timeSeconds, &distance, &completedAtStr, &record); err != nil {
			return nil, fmt.Errorf("scan series row: %w", err)
		}

		if s, err = hydrateSeries(s, false, reps, weight, timeSeconds, distance, completedAtStr, record); err != nil {
			return nil, err
		}

		series = append(series, s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return series, nil
}

// loadExercises fetches a session's exercises with their series, warm-ups
// first within each exercise.
func (r *sqliteSessionRepository) loadExercises(
	ctx context.Context,
	sessionID string,
) (_ []TrainingExercise, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT te.id, te.exercise_id, te.position,
		       es.set_number, es.is_warmup, es.reps, es.weight,
		       es.time_seconds, es.distance, es.completed_at, es.record
		FROM training_exercises te
		LEFT JOIN exercise_series es ON es.training_exercise_id = te.id
		WHERE te.training_id = ?
		ORDER BY te.position, es.is_warmup DESC, es.set_number`,
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("query training exercises: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var exercises []TrainingExercise
	var current *TrainingExercise

	for rows.Next() {
		var (
			exercise       TrainingExercise
			setNumber      sql.NullInt64
			isWarmup       sql.NullBool
			reps           sql.NullInt64
			weight         sql.NullFloat64
			timeSeconds    sql.NullInt64
			distance       sql.NullFloat64
			completedAtStr sql.NullString
			record         sql.NullFloat64
		)

		err = rows.Scan(
			&exercise.ID, &exercise.ExerciseID, &exercise.Position,
			&setNumber, &isWarmup, &reps, &weight,
			&timeSeconds, &distance, &completedAtStr, &record,
		)
		if err != nil {
			return nil, fmt.Errorf("scan training exercise: %w", err)
		}

		if current == nil || current.ID != exercise.ID {
			if current != nil {
				exercises = append(exercises, *current)
			}
			exercise.Series = []ExerciseSeries{}
			current = &exercise
		}

		// A LEFT JOIN row without series columns is an exercise with no sets.
		if !setNumber.Valid {
			continue
		}

		s := ExerciseSeries{SetNumber: int(setNumber.Int64)}
		if s, err = hydrateSeries(s, isWarmup.Bool, reps, weight, timeSeconds, distance, completedAtStr, record); err != nil {
			return nil, err
		}
		current.Series = append(current.Series, s)
	}

	if current != nil {
		exercises = append(exercises, *current)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return exercises, nil
}

// hydrateSession fills the parsed and typed fields of a scanned session row.
func (r *sqliteSessionRepository) hydrateSession(
	session TrainingSession,
	splitID, sessionIndex sql.NullInt64,
	routineID, punctualID sql.NullString,
	createdAtStr string,
	startTimeStr, endTimeStr sql.NullString,
	volume sql.NullFloat64,
	caloriesBurned sql.NullInt64,
	musclesWorked sql.NullString,
	performanceData sql.NullString,
) (TrainingSession, error) {
	session.Context = contextFromColumns(splitID, sessionIndex, routineID, punctualID)

	createdAt, err := time.Parse(timestampFormat, createdAtStr)
	if err != nil {
		return TrainingSession{}, fmt.Errorf("parse created_at: %w", err)
	}
	session.CreatedAt = createdAt

	if session.StartTime, err = parseTimestamp(startTimeStr); err != nil {
		return TrainingSession{}, fmt.Errorf("parse start_time: %w", err)
	}
	if session.EndTime, err = parseTimestamp(endTimeStr); err != nil {
		return TrainingSession{}, fmt.Errorf("parse end_time: %w", err)
	}

	if volume.Valid {
		session.Volume = &volume.Float64
	}
	if caloriesBurned.Valid {
		calories := int(caloriesBurned.Int64)
		session.CaloriesBurned = &calories
	}
	if err = unmarshalJSONColumn(musclesWorked, &session.MusclesWorked); err != nil {
		return TrainingSession{}, fmt.Errorf("unmarshal muscles_worked: %w", err)
	}

	if performanceData.Valid && performanceData.String != "" {
		var performance Summary
		if err = json.Unmarshal([]byte(performanceData.String), &performance); err != nil {
			return TrainingSession{}, fmt.Errorf("unmarshal performance_data: %w", err)
		}
		session.Performance = &performance
	}

	return session, nil
}

// hydrateSeries fills the optional fields of a scanned series row.
func hydrateSeries(
	s ExerciseSeries,
	isWarmup bool,
	reps sql.NullInt64,
	weight sql.NullFloat64,
	timeSeconds sql.NullInt64,
	distance sql.NullFloat64,
	completedAtStr sql.NullString,
	record sql.NullFloat64,
) (ExerciseSeries, error) {
	s.IsWarmup = isWarmup
	if reps.Valid {
		r := int(reps.Int64)
		s.Reps = &r
	}
	if weight.Valid {
		s.Weight = &weight.Float64
	}
	if timeSeconds.Valid {
		t := int(timeSeconds.Int64)
		s.TimeSeconds = &t
	}
	if distance.Valid {
		s.Distance = &distance.Float64
	}
	completedAt, err := parseTimestamp(completedAtStr)
	if err != nil {
		return ExerciseSeries{}, fmt.Errorf("parse completed_at: %w", err)
	}
	s.CompletedAt = completedAt
	if record.Valid {
		s.Record = &record.Float64
	}
	return s, nil
}

// insertTrainingExercise inserts one exercise with its series inside a
// transaction.
func insertTrainingExercise(
	ctx context.Context,
	tx *sql.Tx,
	sessionID string,
	exercise TrainingExercise,
) error {
	result, err := tx.ExecContext(ctx, `
		INSERT INTO training_exercises (training_id, exercise_id, position)
		VALUES (?, ?, ?)`,
		sessionID, exercise.ExerciseID, exercise.Position)
	if err != nil {
		return fmt.Errorf("insert training exercise: %w", err)
	}

	trainingExerciseID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert ID: %w", err)
	}

	for _, series := range exercise.Series {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO exercise_series (
				training_exercise_id, set_number, is_warmup,
				reps, weight, time_seconds, distance, completed_at, record
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			trainingExerciseID, series.SetNumber, series.IsWarmup,
			series.Reps, series.Weight, series.TimeSeconds, series.Distance,
			formatTimestamp(series.CompletedAt), series.Record)
		if err != nil {
			return fmt.Errorf("insert exercise series: %w", err)
		}
	}

	return nil
}
