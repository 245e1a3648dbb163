package main

import (
	"errors"
	"net/http"

	"github.com/rafatrikUOC/soloprogress/internal/training"
)

func (app *application) nextWorkoutGET(w http.ResponseWriter, r *http.Request) {
	plan, err := app.trainingService.NextWorkout(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, training.ErrNoActiveSplit):
			app.clientError(w, r, http.StatusConflict, "no active split selected")
		case errors.Is(err, training.ErrNotFound):
			app.notFound(w, r)
		default:
			app.serverError(w, r, err)
		}
		return
	}

	app.writeJSON(w, r, http.StatusOK, plan)
}

func (app *application) workoutSkipPOST(w http.ResponseWriter, r *http.Request) {
	splitID, ok := app.parseInt64Param(w, r, "splitID")
	if !ok {
		return
	}
	sessionIndex, ok := app.parseIntParam(w, r, "sessionIndex")
	if !ok {
		return
	}

	if err := app.trainingService.RecordSkip(r.Context(), splitID, sessionIndex); err != nil {
		app.serverError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (app *application) plannedWorkoutsGET(w http.ResponseWriter, r *http.Request) {
	splitID, ok := app.parseInt64Param(w, r, "splitID")
	if !ok {
		return
	}

	plans, err := app.trainingService.PlannedWorkouts(r.Context(), splitID)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusOK, plans)
}

func (app *application) plannedWorkoutPUT(w http.ResponseWriter, r *http.Request) {
	splitID, ok := app.parseInt64Param(w, r, "splitID")
	if !ok {
		return
	}
	sessionIndex, ok := app.parseIntParam(w, r, "sessionIndex")
	if !ok {
		return
	}

	var input struct {
		Title     string                     `json:"title"`
		Exercises []training.PlannedExercise `json:"exercises"`
	}
	if !app.readJSON(w, r, &input) {
		return
	}

	plan := training.PlannedWorkout{
		SplitID:      splitID,
		SessionIndex: sessionIndex,
		Title:        input.Title,
		Exercises:    input.Exercises,
	}
	if err := app.trainingService.SavePlannedWorkout(r.Context(), plan); err != nil {
		app.serverError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (app *application) planExerciseAddPOST(w http.ResponseWriter, r *http.Request) {
	splitID, ok := app.parseInt64Param(w, r, "splitID")
	if !ok {
		return
	}
	sessionIndex, ok := app.parseIntParam(w, r, "sessionIndex")
	if !ok {
		return
	}

	var input struct {
		ExerciseID int64                      `json:"exercise_id"`
		Overrides  training.ExerciseOverrides `json:"overrides"`
	}
	if !app.readJSON(w, r, &input) {
		return
	}

	err := app.trainingService.AddPlannedExercise(r.Context(), splitID, sessionIndex, input.ExerciseID, input.Overrides)
	if err != nil {
		switch {
		case errors.Is(err, training.ErrNotFound):
			app.notFound(w, r)
		case errors.Is(err, training.ErrAlreadyPlanned):
			app.clientError(w, r, http.StatusConflict, "exercise already planned")
		default:
			app.serverError(w, r, err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (app *application) planExerciseDELETE(w http.ResponseWriter, r *http.Request) {
	splitID, ok := app.parseInt64Param(w, r, "splitID")
	if !ok {
		return
	}
	sessionIndex, ok := app.parseIntParam(w, r, "sessionIndex")
	if !ok {
		return
	}
	exerciseID, ok := app.parseInt64Param(w, r, "exerciseID")
	if !ok {
		return
	}

	err := app.trainingService.RemovePlannedExercise(r.Context(), splitID, sessionIndex, exerciseID)
	if err != nil {
		if errors.Is(err, training.ErrNotFound) {
			app.notFound(w, r)
			return
		}
		app.serverError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (app *application) planExerciseReplacePOST(w http.ResponseWriter, r *http.Request) {
	splitID, ok := app.parseInt64Param(w, r, "splitID")
	if !ok {
		return
	}
	sessionIndex, ok := app.parseIntParam(w, r, "sessionIndex")
	if !ok {
		return
	}
	exerciseID, ok := app.parseInt64Param(w, r, "exerciseID")
	if !ok {
		return
	}

	var input struct {
		NewExerciseID int64 `json:"new_exercise_id"`
	}
	if !app.readJSON(w, r, &input) {
		return
	}

	err := app.trainingService.ReplacePlannedExercise(
		r.Context(), splitID, sessionIndex, exerciseID, input.NewExerciseID)
	if err != nil {
		if errors.Is(err, training.ErrNotFound) {
			app.notFound(w, r)
			return
		}
		app.serverError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
