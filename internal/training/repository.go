package training

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rafatrikUOC/soloprogress/internal/sqlite"
)

const timestampFormat = "2006-01-02T15:04:05.000Z"

// ErrNotFound is returned when a requested entity does not exist. Callers that
// treat absence as a normal outcome check for it with errors.Is.
var ErrNotFound = errors.New("not found")

// repository aggregates the SQLite repositories behind one handle.
type repository struct {
	sessions  *sqliteSessionRepository
	plans     *sqlitePlanRepository
	exercises *sqliteExerciseRepository
	settings  *sqliteSettingsRepository
}

func newRepository(db *sqlite.Database, logger *slog.Logger) *repository {
	return &repository{
		sessions:  newSQLiteSessionRepository(db, logger),
		plans:     newSQLitePlanRepository(db, logger),
		exercises: newSQLiteExerciseRepository(db, logger),
		settings:  newSQLiteSettingsRepository(db, logger),
	}
}

// baseRepository carries the shared dependencies of the SQLite repositories.
type baseRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func newBaseRepository(db *sqlite.Database, logger *slog.Logger) baseRepository {
	return baseRepository{
		db:     db,
		logger: logger,
	}
}

// formatTimestamp converts an optional time to its database representation.
func formatTimestamp(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(timestampFormat)
}

// parseTimestamp parses a timestamp from a nullable database string.
func parseTimestamp(timestampStr sql.NullString) (*time.Time, error) {
	if !timestampStr.Valid {
		return nil, nil //nolint:nilnil // nil time is expected when the column is NULL.
	}
	parsed, err := time.Parse(timestampFormat, timestampStr.String)
	if err != nil {
		return nil, fmt.Errorf("parse timestamp format: %w", err)
	}
	return &parsed, nil
}

// marshalJSONColumn serializes a value for a JSON text column. A nil slice
// serializes as an empty array so the column stays well-formed.
func marshalJSONColumn(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal json column: %w", err)
	}
	if string(data) == "null" {
		return "[]", nil
	}
	return string(data), nil
}

// unmarshalJSONColumn deserializes a JSON text column into v. Empty and NULL
// columns are treated as the zero value.
func unmarshalJSONColumn(column sql.NullString, v any) error {
	if !column.Valid || column.String == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(column.String), v); err != nil {
		return fmt.Errorf("unmarshal json column: %w", err)
	}
	return nil
}

// contextColumns splits a tagged session context into its nullable columns.
func contextColumns(c Context) (splitID, sessionIndex sql.NullInt64, routineID, punctualID sql.NullString) {
	switch c.Kind {
	case ContextSplit:
		splitID = sql.NullInt64{Int64: c.SplitID, Valid: true}
		sessionIndex = sql.NullInt64{Int64: int64(c.SessionIndex), Valid: true}
	case ContextRoutine:
		routineID = sql.NullString{String: c.RoutineID, Valid: true}
	case ContextPunctual:
		punctualID = sql.NullString{String: c.PunctualID, Valid: true}
	case ContextFree:
	}
	return splitID, sessionIndex, routineID, punctualID
}

// contextFromColumns rebuilds a tagged session context from its nullable
// columns. A row with no context columns set is a free session.
func contextFromColumns(splitID, sessionIndex sql.NullInt64, routineID, punctualID sql.NullString) Context {
	switch {
	case splitID.Valid:
		return SplitContext(splitID.Int64, int(sessionIndex.Int64))
	case routineID.Valid:
		return RoutineContext(routineID.String)
	case punctualID.Valid:
		return PunctualContext(punctualID.String)
	default:
		return FreeContext()
	}
}
