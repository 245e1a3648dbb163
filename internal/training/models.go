// Package training implements the training session lifecycle and progressive
// workout generation engine: resolving which planned workout comes next,
// opening and reusing training sessions, materializing planned exercises into
// concrete sets, and summarizing finished sessions.
package training

import (
	"time"
)

// Exercise is an immutable catalog entry. The training core only reads it.
type Exercise struct {
	ID               int64    `json:"id"`
	Name             string   `json:"name"`
	Compound         bool     `json:"compound"`
	Equipment        []string `json:"equipment"`
	PrimaryMuscle    string   `json:"primary_muscle"`
	SecondaryMuscles []string `json:"secondary_muscles"`
}

// ContextKind discriminates the logical slot a TrainingSession belongs to.
type ContextKind string

const (
	ContextFree     ContextKind = "free"
	ContextSplit    ContextKind = "split"
	ContextRoutine  ContextKind = "routine"
	ContextPunctual ContextKind = "punctual"
)

// Context identifies which logical slot a TrainingSession belongs to. It is a
// tagged variant; only the fields of the active kind are meaningful.
type Context struct {
	Kind         ContextKind `json:"kind"`
	SplitID      int64       `json:"split_id,omitempty"`
	SessionIndex int         `json:"session_index,omitempty"`
	RoutineID    string      `json:"routine_id,omitempty"`
	PunctualID   string      `json:"punctual_id,omitempty"`
}

// FreeContext is a session bound to no logical slot.
func FreeContext() Context {
	return Context{Kind: ContextFree}
}

// SplitContext identifies the workout at sessionIndex within a split.
func SplitContext(splitID int64, sessionIndex int) Context {
	return Context{Kind: ContextSplit, SplitID: splitID, SessionIndex: sessionIndex}
}

// RoutineContext identifies a routine-based session.
func RoutineContext(routineID string) Context {
	return Context{Kind: ContextRoutine, RoutineID: routineID}
}

// PunctualContext identifies an ad-hoc session.
func PunctualContext(punctualID string) Context {
	return Context{Kind: ContextPunctual, PunctualID: punctualID}
}

// Equal reports whether two contexts identify the same logical slot.
// Split contexts match on (split id, session index), routine contexts on
// routine id, punctual contexts on punctual id. Free contexts match each
// other.
func (c Context) Equal(other Context) bool {
	if c.Kind != other.Kind {
		return false
	}
	switch c.Kind {
	case ContextSplit:
		return c.SplitID == other.SplitID && c.SessionIndex == other.SessionIndex
	case ContextRoutine:
		return c.RoutineID == other.RoutineID
	case ContextPunctual:
		return c.PunctualID == other.PunctualID
	case ContextFree:
		return true
	default:
		return false
	}
}

// ExerciseSeries is a single set belonging to a TrainingExercise.
//
// CompletedAt is nil until the user marks the set done; its presence is the
// completion marker. SetNumber is 1-based and unique within the warm-up and
// working partitions of its exercise.
type ExerciseSeries struct {
	SetNumber   int        `json:"set_number"`
	IsWarmup    bool       `json:"is_warmup"`
	Reps        *int       `json:"reps,omitempty"`
	Weight      *float64   `json:"weight,omitempty"`
	TimeSeconds *int       `json:"time_seconds,omitempty"`
	Distance    *float64   `json:"distance,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Record      *float64   `json:"record,omitempty"`
}

// TrainingExercise is a session-scoped instance of a catalog exercise.
type TrainingExercise struct {
	ID         int64            `json:"id"`
	ExerciseID int64            `json:"exercise_id"`
	Position   int              `json:"position"`
	Series     []ExerciseSeries `json:"series"`
}

// TrainingSession is the central mutable entity of the training core.
//
// EndTime is nil while the session is open; setting it is the terminal
// transition after which the session is treated as immutable.
type TrainingSession struct {
	ID             string             `json:"id"`
	UserID         int64              `json:"user_id"`
	Context        Context            `json:"context"`
	CreatedAt      time.Time          `json:"created_at"`
	StartTime      *time.Time         `json:"start_time,omitempty"`
	EndTime        *time.Time         `json:"end_time,omitempty"`
	Volume         *float64           `json:"volume,omitempty"`
	CaloriesBurned *int               `json:"calories_burned,omitempty"`
	MusclesWorked  []string           `json:"muscles_worked,omitempty"`
	Performance    *Summary           `json:"performance,omitempty"`
	Exercises      []TrainingExercise `json:"exercises"`
}

// Open reports whether the session has not been finalized yet.
func (s TrainingSession) Open() bool {
	return s.EndTime == nil
}

// ExerciseOverrides carries per-plan-entry adjustments. An empty value means
// the goal profile decides everything.
type ExerciseOverrides struct {
	SetCount    *int `json:"set_count,omitempty"`
	RestSeconds *int `json:"rest_seconds,omitempty"`
}

// PlannedExercise is one entry of a planned workout. Overrides is always
// present, possibly empty.
type PlannedExercise struct {
	ExerciseID int64             `json:"exercise_id"`
	Overrides  ExerciseOverrides `json:"overrides"`
}

// PlannedWorkout is a workout template within a split, identified by its
// zero-based session index.
type PlannedWorkout struct {
	ID           int64             `json:"id"`
	UserID       int64             `json:"user_id"`
	SplitID      int64             `json:"split_id"`
	SessionIndex int               `json:"session_index"`
	Title        string            `json:"title"`
	Exercises    []PlannedExercise `json:"exercises"`
}

// SkipRecord notes that a session of a split or routine was skipped. Only the
// most recent skip per context is retained in the user's settings.
type SkipRecord struct {
	SplitID   *int64    `json:"split,omitempty"`
	RoutineID *string   `json:"routine,omitempty"`
	Session   int       `json:"session"`
	SkippedAt time.Time `json:"skipped_at"`
}

// Settings are the user's typed preference and performance settings. All
// mutation goes through the service; there are no ad-hoc merges.
type Settings struct {
	Goal                 Goal         `json:"fitness_goal"`
	ActiveSplitID        *int64       `json:"active_split_id,omitempty"`
	WorkoutMinutes       int          `json:"workout_minutes"`
	CompoundRestSeconds  int          `json:"compound_rest_seconds"`
	IsolationRestSeconds int          `json:"isolation_rest_seconds"`
	ExcludedExercises    []int64      `json:"excluded_exercises"`
	SkippedSessions      []SkipRecord `json:"skipped_sessions"`
}

// Summary is the aggregate computed when a session is finalized. Only
// completed working sets count toward the totals.
type Summary struct {
	SessionID       string            `json:"session_id"`
	TotalSets       int               `json:"total_sets"`
	TotalReps       int               `json:"total_reps"`
	TotalVolume     float64           `json:"total_volume"`
	DurationSeconds int               `json:"duration_seconds"`
	CaloriesBurned  int               `json:"calories_burned"`
	MusclesWorked   []string          `json:"muscles_worked"`
	Records         map[int64]float64 `json:"records"`
}

// PlannedSet is the rep/weight target produced by the progression engine for
// one working set.
type PlannedSet struct {
	Reps   int     `json:"reps"`
	Weight float64 `json:"weight"`
}
