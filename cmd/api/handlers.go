package main

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// identifyPOST finds or creates the user with the given display name and binds
// them to the session. There is no password; identification is by name only.
func (app *application) identifyPOST(w http.ResponseWriter, r *http.Request) {
	var input struct {
		DisplayName string `json:"display_name"`
	}
	if !app.readJSON(w, r, &input) {
		return
	}

	displayName := strings.TrimSpace(input.DisplayName)
	if displayName == "" {
		app.clientError(w, r, http.StatusBadRequest, "display_name is required")
		return
	}

	ctx := r.Context()

	var userID int64
	err := app.db.ReadOnly.QueryRowContext(ctx,
		"SELECT id FROM users WHERE display_name = ?", displayName).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		var result sql.Result
		if result, err = app.db.ReadWrite.ExecContext(ctx,
			"INSERT INTO users (display_name) VALUES (?)", displayName); err != nil {
			app.serverError(w, r, fmt.Errorf("insert user: %w", err))
			return
		}
		if userID, err = result.LastInsertId(); err != nil {
			app.serverError(w, r, fmt.Errorf("get user id: %w", err))
			return
		}
	} else if err != nil {
		app.serverError(w, r, fmt.Errorf("query user: %w", err))
		return
	}

	// A fresh token on identification prevents session fixation.
	if err = app.sessionManager.RenewToken(ctx); err != nil {
		app.serverError(w, r, fmt.Errorf("renew session token: %w", err))
		return
	}
	app.sessionManager.Put(ctx, sessionKeyUserID, userID)

	app.writeJSON(w, r, http.StatusOK, map[string]any{
		"user_id":      userID,
		"display_name": displayName,
	})
}

func (app *application) healthyGET(w http.ResponseWriter, r *http.Request) {
	if err := app.db.ReadOnly.PingContext(r.Context()); err != nil {
		app.serverError(w, r, fmt.Errorf("ping database: %w", err))
		return
	}
	app.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
