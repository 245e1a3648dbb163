package main

import (
	"errors"
	"net/http"

	"github.com/rafatrikUOC/soloprogress/internal/training"
)

func (app *application) exercisesGET(w http.ResponseWriter, r *http.Request) {
	exercises, err := app.trainingService.ListExercises(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusOK, exercises)
}

func (app *application) exerciseGET(w http.ResponseWriter, r *http.Request) {
	exerciseID, ok := app.parseInt64Param(w, r, "exerciseID")
	if !ok {
		return
	}

	exercise, err := app.trainingService.GetExercise(r.Context(), exerciseID)
	if err != nil {
		if errors.Is(err, training.ErrNotFound) {
			app.notFound(w, r)
			return
		}
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusOK, exercise)
}
