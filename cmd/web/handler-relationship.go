package main

import (
	"net/http"

	"github.com/myrjola/entangled/internal/contexthelpers"
	"github.com/myrjola/entangled/internal/models"
	"github.com/myrjola/entangled/internal/progression"
)

func (app *application) relationship(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	state, err := app.relationships.Get(ctx, contexthelpers.CurrentUserID(ctx), app.entityID)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, map[string]any{
		"relationship": state,
		"displayName":  progression.DisplayName(*state),
		"mode":         progression.ModeForLevel(state.Level),
	})
}

type relationshipSignalsRequest struct {
	Signals []models.PathSignal `json:"signals"`
}

// relationshipSignals feeds a batch of interaction signals into the path
// classifier.
func (app *application) relationshipSignals(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req relationshipSignalsRequest
	if err := app.decodeJSON(r, &req); err != nil {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}

	state, err := app.relationships.ApplySignals(ctx, contexthelpers.CurrentUserID(ctx), app.entityID, req.Signals)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, map[string]any{"relationship": state})
}

type chooseNameRequest struct {
	Name string `json:"name"`
}

func (app *application) chooseName(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req chooseNameRequest
	if err := app.decodeJSON(r, &req); err != nil || req.Name == "" {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}

	state, err := app.relationships.SetChosenName(ctx, contexthelpers.CurrentUserID(ctx), app.entityID, req.Name)
	if err != nil {
		app.domainError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, map[string]any{
		"relationship": state,
		"displayName":  progression.DisplayName(*state),
	})
}
