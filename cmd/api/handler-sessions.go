package main

import (
	"errors"
	"net/http"

	"github.com/rafatrikUOC/soloprogress/internal/training"
)

// sessionContextInput is the wire form of a session context.
type sessionContextInput struct {
	Kind         string  `json:"kind"`
	SplitID      *int64  `json:"split_id,omitempty"`
	SessionIndex *int    `json:"session_index,omitempty"`
	RoutineID    *string `json:"routine_id,omitempty"`
	PunctualID   *string `json:"punctual_id,omitempty"`
}

// toContext validates the input and converts it to a training context.
func (in sessionContextInput) toContext() (training.Context, error) {
	switch training.ContextKind(in.Kind) {
	case training.ContextFree:
		return training.FreeContext(), nil
	case training.ContextSplit:
		if in.SplitID == nil || in.SessionIndex == nil {
			return training.Context{}, errors.New("split context requires split_id and session_index")
		}
		return training.SplitContext(*in.SplitID, *in.SessionIndex), nil
	case training.ContextRoutine:
		if in.RoutineID == nil || *in.RoutineID == "" {
			return training.Context{}, errors.New("routine context requires routine_id")
		}
		return training.RoutineContext(*in.RoutineID), nil
	case training.ContextPunctual:
		if in.PunctualID == nil || *in.PunctualID == "" {
			return training.Context{}, errors.New("punctual context requires punctual_id")
		}
		return training.PunctualContext(*in.PunctualID), nil
	default:
		return training.Context{}, errors.New("kind must be one of free, split, routine, punctual")
	}
}

// seriesInput is the wire form of performed set values.
type seriesInput struct {
	Reps        *int     `json:"reps,omitempty"`
	Weight      *float64 `json:"weight,omitempty"`
	TimeSeconds *int     `json:"time_seconds,omitempty"`
	Distance    *float64 `json:"distance,omitempty"`
}

func (in seriesInput) toSeries() training.ExerciseSeries {
	return training.ExerciseSeries{
		Reps:        in.Reps,
		Weight:      in.Weight,
		TimeSeconds: in.TimeSeconds,
		Distance:    in.Distance,
	}
}

func (app *application) sessionStartPOST(w http.ResponseWriter, r *http.Request) {
	var input sessionContextInput
	if !app.readJSON(w, r, &input) {
		return
	}

	target, err := input.toContext()
	if err != nil {
		app.clientError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	session, err := app.trainingService.StartSession(r.Context(), target)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusOK, session)
}

func (app *application) sessionGET(w http.ResponseWriter, r *http.Request) {
	session, err := app.trainingService.GetSession(r.Context(), r.PathValue("sessionID"))
	if err != nil {
		if errors.Is(err, training.ErrNotFound) {
			app.notFound(w, r)
			return
		}
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusOK, session)
}

func (app *application) sessionFinishPOST(w http.ResponseWriter, r *http.Request) {
	summary, err := app.trainingService.FinishSession(r.Context(), r.PathValue("sessionID"))
	if err != nil {
		switch {
		case errors.Is(err, training.ErrNotFound):
			app.notFound(w, r)
		case errors.Is(err, training.ErrSessionFinalized):
			app.clientError(w, r, http.StatusConflict, "session already finalized")
		case errors.Is(err, training.ErrSessionNotStarted):
			app.clientError(w, r, http.StatusConflict, "session has not been started")
		default:
			app.serverError(w, r, err)
		}
		return
	}

	app.writeJSON(w, r, http.StatusOK, summary)
}

func (app *application) seriesCompletePOST(w http.ResponseWriter, r *http.Request) {
	exerciseID, ok := app.parseInt64Param(w, r, "exerciseID")
	if !ok {
		return
	}
	setNumber, ok := app.parseIntParam(w, r, "setNumber")
	if !ok {
		return
	}

	var input seriesInput
	if !app.readJSON(w, r, &input) {
		return
	}

	err := app.trainingService.CompleteSeries(
		r.Context(), r.PathValue("sessionID"), exerciseID, setNumber, input.toSeries())
	if err != nil {
		switch {
		case errors.Is(err, training.ErrNotFound):
			app.notFound(w, r)
		case errors.Is(err, training.ErrSessionFinalized):
			app.clientError(w, r, http.StatusConflict, "session already finalized")
		default:
			app.serverError(w, r, err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (app *application) warmupSeriesPOST(w http.ResponseWriter, r *http.Request) {
	exerciseID, ok := app.parseInt64Param(w, r, "exerciseID")
	if !ok {
		return
	}

	var input seriesInput
	if !app.readJSON(w, r, &input) {
		return
	}

	err := app.trainingService.AddWarmupSeries(
		r.Context(), r.PathValue("sessionID"), exerciseID, input.toSeries())
	if err != nil {
		switch {
		case errors.Is(err, training.ErrNotFound):
			app.notFound(w, r)
		case errors.Is(err, training.ErrSessionFinalized):
			app.clientError(w, r, http.StatusConflict, "session already finalized")
		default:
			app.serverError(w, r, err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
