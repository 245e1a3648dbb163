package main

import (
	"net/http"
)

func (app *application) routes() *http.ServeMux {
	mux := http.NewServeMux()

	var (
		shared = func(next http.Handler) http.Handler {
			return app.logAndTraceRequest(secureHeaders(app.timeout(next)))
		}
		noAuth = func(next http.Handler) http.Handler {
			return app.recoverPanic(shared(next))
		}
		session = func(next http.Handler) http.Handler {
			return app.recoverPanic(app.sessionManager.LoadAndSave(app.authenticate(shared(next))))
		}
		mustSession = func(next http.Handler) http.Handler {
			return session(app.mustAuthenticate(next))
		}
	)

	mux.Handle("POST /api/identify", session(http.HandlerFunc(app.identifyPOST)))
	mux.Handle("GET /api/healthy", noAuth(http.HandlerFunc(app.healthyGET)))

	mux.Handle("GET /api/workouts/next", mustSession(http.HandlerFunc(app.nextWorkoutGET)))
	mux.Handle("POST /api/workouts/{splitID}/{sessionIndex}/skip",
		mustSession(http.HandlerFunc(app.workoutSkipPOST)))

	mux.Handle("GET /api/workouts/{splitID}", mustSession(http.HandlerFunc(app.plannedWorkoutsGET)))
	mux.Handle("PUT /api/workouts/{splitID}/{sessionIndex}", mustSession(http.HandlerFunc(app.plannedWorkoutPUT)))
	mux.Handle("POST /api/workouts/{splitID}/{sessionIndex}/exercises",
		mustSession(http.HandlerFunc(app.planExerciseAddPOST)))
	mux.Handle("DELETE /api/workouts/{splitID}/{sessionIndex}/exercises/{exerciseID}",
		mustSession(http.HandlerFunc(app.planExerciseDELETE)))
	mux.Handle("POST /api/workouts/{splitID}/{sessionIndex}/exercises/{exerciseID}/replace",
		mustSession(http.HandlerFunc(app.planExerciseReplacePOST)))

	mux.Handle("POST /api/sessions/start", mustSession(http.HandlerFunc(app.sessionStartPOST)))
	mux.Handle("GET /api/sessions/{sessionID}", mustSession(http.HandlerFunc(app.sessionGET)))
	mux.Handle("POST /api/sessions/{sessionID}/finish", mustSession(http.HandlerFunc(app.sessionFinishPOST)))
	mux.Handle("POST /api/sessions/{sessionID}/exercises/{exerciseID}/series/{setNumber}/complete",
		mustSession(http.HandlerFunc(app.seriesCompletePOST)))
	mux.Handle("POST /api/sessions/{sessionID}/exercises/{exerciseID}/warmup",
		mustSession(http.HandlerFunc(app.warmupSeriesPOST)))

	mux.Handle("GET /api/settings", mustSession(http.HandlerFunc(app.settingsGET)))
	mux.Handle("POST /api/settings", mustSession(http.HandlerFunc(app.settingsPOST)))

	mux.Handle("GET /api/exercises", mustSession(http.HandlerFunc(app.exercisesGET)))
	mux.Handle("GET /api/exercises/{exerciseID}", mustSession(http.HandlerFunc(app.exerciseGET)))

	return mux
}
