package main

import (
	"net/http"

	"github.com/myrjola/entangled/internal/contexthelpers"
	"github.com/myrjola/entangled/internal/models"
)

// listEvidence returns the inventory with unexamined content redacted. The
// optional caseID query parameter narrows the list to one case.
func (app *application) listEvidence(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	inventory, err := app.evidence.Inventory(ctx, contexthelpers.CurrentUserID(ctx))
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	items := inventory.Evidence
	if caseID := r.URL.Query().Get("caseID"); caseID != "" {
		items = inventory.ByCase(caseID)
	}
	redacted := make([]models.Evidence, len(items))
	for i, e := range items {
		redacted[i] = e.Redacted()
	}

	app.writeJSON(w, r, http.StatusOK, map[string]any{
		"evidence":        redacted,
		"connections":     inventory.Connections,
		"unexaminedCount": inventory.UnexaminedCount(),
	})
}

type collectEvidenceRequest struct {
	Evidence []models.Evidence `json:"evidence"`
}

// collectEvidence adds a batch of evidence, skipping ids already collected.
func (app *application) collectEvidence(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req collectEvidenceRequest
	if err := app.decodeJSON(r, &req); err != nil {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}
	for _, e := range req.Evidence {
		if e.ID == "" {
			app.clientError(w, r, http.StatusBadRequest)
			return
		}
	}

	added, err := app.evidence.AddBatch(ctx, contexthelpers.CurrentUserID(ctx), req.Evidence)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, map[string]any{"added": added})
}

// examineEvidence marks an item examined and reveals its content.
func (app *application) examineEvidence(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	examined, err := app.evidence.Examine(ctx, contexthelpers.CurrentUserID(ctx), r.PathValue("evidenceID"))
	if err != nil {
		app.domainError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, map[string]any{"evidence": examined})
}

type connectEvidenceRequest struct {
	EvidenceIDA string `json:"evidenceIdA"`
	EvidenceIDB string `json:"evidenceIdB"`
	// DryRun previews the connection without recording it.
	DryRun bool `json:"dryRun,omitempty"`
}

// connectEvidence records a connection between two evidence items and returns
// the insight and reward it yields.
func (app *application) connectEvidence(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := contexthelpers.CurrentUserID(ctx)

	var req connectEvidenceRequest
	if err := app.decodeJSON(r, &req); err != nil {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}

	if req.DryRun {
		connection, err := app.evidence.CheckConnection(ctx, userID, req.EvidenceIDA, req.EvidenceIDB)
		if err != nil {
			app.domainError(w, r, err)
			return
		}
		app.writeJSON(w, r, http.StatusOK, map[string]any{"connection": connection})
		return
	}

	connection, err := app.evidence.Connect(ctx, userID, req.EvidenceIDA, req.EvidenceIDB)
	if err != nil {
		app.domainError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, map[string]any{"connection": connection})
}
