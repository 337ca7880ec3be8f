package main

import (
	"net/http"

	"github.com/myrjola/entangled/internal/contexthelpers"
)

func (app *application) listChannels(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	state, err := app.channels.State(ctx, contexthelpers.CurrentUserID(ctx))
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, state)
}

// checkChannels re-evaluates the unlock conditions and reports newly opened
// channels.
func (app *application) checkChannels(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	unlocked, err := app.channels.CheckAndUnlock(ctx, contexthelpers.CurrentUserID(ctx), app.entityID)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if unlocked == nil {
		unlocked = []string{}
	}
	app.writeJSON(w, r, http.StatusOK, map[string]any{"unlocked": unlocked})
}

func (app *application) discoverChannel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	channel, err := app.channels.Discover(ctx, contexthelpers.CurrentUserID(ctx), r.PathValue("channelID"))
	if err != nil {
		app.domainError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, map[string]any{"channel": channel})
}

type openQueryWindowRequest struct {
	TargetID string `json:"targetId"`
	Name     string `json:"name"`
}

func (app *application) openQueryWindow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req openQueryWindowRequest
	if err := app.decodeJSON(r, &req); err != nil || req.TargetID == "" {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}

	window, err := app.channels.OpenQueryWindow(ctx, contexthelpers.CurrentUserID(ctx), req.TargetID, req.Name)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, map[string]any{"queryWindow": window})
}
