package main

import (
	"net/http"

	"github.com/rafatrikUOC/soloprogress/internal/training"
)

func (app *application) settingsGET(w http.ResponseWriter, r *http.Request) {
	settings, err := app.trainingService.Settings(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusOK, settings)
}

func (app *application) settingsPOST(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Goal                 string  `json:"fitness_goal"`
		ActiveSplitID        *int64  `json:"active_split_id"`
		WorkoutMinutes       int     `json:"workout_minutes"`
		CompoundRestSeconds  int     `json:"compound_rest_seconds"`
		IsolationRestSeconds int     `json:"isolation_rest_seconds"`
		ExcludedExercises    []int64 `json:"excluded_exercises"`
	}
	if !app.readJSON(w, r, &input) {
		return
	}

	if input.WorkoutMinutes <= 0 {
		app.clientError(w, r, http.StatusBadRequest, "workout_minutes must be positive")
		return
	}
	if input.CompoundRestSeconds < 0 || input.IsolationRestSeconds < 0 {
		app.clientError(w, r, http.StatusBadRequest, "rest seconds must not be negative")
		return
	}

	// Skip records are managed through the skip endpoint, not settings writes.
	current, err := app.trainingService.Settings(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	settings := training.Settings{
		Goal:                 training.ParseGoal(input.Goal),
		ActiveSplitID:        input.ActiveSplitID,
		WorkoutMinutes:       input.WorkoutMinutes,
		CompoundRestSeconds:  input.CompoundRestSeconds,
		IsolationRestSeconds: input.IsolationRestSeconds,
		ExcludedExercises:    input.ExcludedExercises,
		SkippedSessions:      current.SkippedSessions,
	}
	if err = app.trainingService.UpdateSettings(r.Context(), settings); err != nil {
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusOK, settings)
}
