package main

import (
	"net/http"

	"github.com/myrjola/entangled/internal/contexthelpers"
	"github.com/myrjola/entangled/internal/errors"
	"github.com/myrjola/entangled/internal/models"
	"github.com/myrjola/entangled/internal/resolution"
)

func (app *application) listCases(w http.ResponseWriter, r *http.Request) {
	cases, err := app.cases.ListAvailable(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, map[string]any{"cases": cases})
}

func (app *application) userCases(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	state, err := app.cases.State(ctx, contexthelpers.CurrentUserID(ctx))
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, state)
}

func (app *application) acceptCase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accepted, err := app.cases.Accept(ctx, contexthelpers.CurrentUserID(ctx), r.PathValue("caseID"))
	if err != nil {
		app.domainError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, map[string]any{"case": accepted})
}

func (app *application) abandonCase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	abandoned, err := app.cases.Abandon(ctx, contexthelpers.CurrentUserID(ctx), r.PathValue("caseID"))
	if err != nil {
		app.domainError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, map[string]any{"case": abandoned})
}

type resolveRequest struct {
	Theory string `json:"theory"`
}

type resolveResponse struct {
	Result           resolution.Result         `json:"result"`
	Completed        bool                      `json:"completed"`
	Case             *models.Case              `json:"case,omitempty"`
	Relationship     *models.RelationshipState `json:"relationship,omitempty"`
	UnlockedChannels []string                  `json:"unlockedChannels,omitempty"`
}

// resolveCase runs the resolution pipeline for an active case. A submission
// below half completeness is refused with hints and the case stays active;
// otherwise the case retires with the computed outcome, entity XP lands on the
// relationship, and channel unlock conditions get re-evaluated.
func (app *application) resolveCase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := contexthelpers.CurrentUserID(ctx)
	caseID := r.PathValue("caseID")

	var req resolveRequest
	if err := app.decodeJSON(r, &req); err != nil {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}

	// An expired case goes cold before the resolution is scored.
	active, err := app.cases.CheckExpiration(ctx, userID, caseID)
	if err != nil {
		app.domainError(w, r, err)
		return
	}
	inventory, err := app.evidence.Inventory(ctx, userID)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	// The whole inventory goes in; the engine matches on type and specific
	// ids, so an untagged item of the right type still counts.
	result := resolution.Resolve(*active, inventory.Evidence, inventory.Connections, req.Theory)

	// Hints are only attached when the resolution was refused.
	if len(result.MissingEvidence) > 0 {
		app.writeJSON(w, r, http.StatusOK, resolveResponse{Result: result, Completed: false})
		return
	}

	completed, err := app.cases.Complete(ctx, userID, caseID, result.Outcome, req.Theory)
	if err != nil {
		app.domainError(w, r, err)
		return
	}
	relationship, err := app.relationships.AddXP(ctx, userID, app.entityID, result.Rewards.EntityXP)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	// Reward unlocks that name a channel take effect immediately. Other
	// unlock tokens pass through to the client untouched.
	for _, unlockID := range result.Rewards.Unlocks {
		if _, err = app.channels.Discover(ctx, userID, unlockID); err != nil && !errors.Is(err, models.ErrNotFound) {
			app.serverError(w, r, err)
			return
		}
	}
	unlockedChannels, err := app.channels.CheckAndUnlock(ctx, userID, app.entityID)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusOK, resolveResponse{
		Result:           result,
		Completed:        true,
		Case:             completed,
		Relationship:     relationship,
		UnlockedChannels: unlockedChannels,
	})
}
