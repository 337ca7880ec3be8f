package main

import (
	"io"
	"net/http"
	"testing"

	"github.com/myrjola/entangled/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelationshipHandlers(t *testing.T) {
	t.Parallel()
	srv := startTestServer(t, io.Discard, testEnviron())

	var getResp struct {
		Relationship models.RelationshipState `json:"relationship"`
		DisplayName  string                   `json:"displayName"`
		Mode         string                   `json:"mode"`
	}
	status := srv.GetJSON(t, "/api/relationship", &getResp)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, getResp.Relationship.Level)
	assert.Equal(t, models.PhaseAwakening, getResp.Relationship.Phase)
	assert.Equal(t, "???", getResp.DisplayName)

	var signalsResp struct {
		Relationship models.RelationshipState `json:"relationship"`
	}
	status = srv.PostJSON(t, "/api/relationship/signals", relationshipSignalsRequest{
		Signals: []models.PathSignal{{Type: models.SignalReverent, Weight: 70}},
	}, &signalsResp)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.PathWorship, signalsResp.Relationship.RelationshipPath)

	// A chosen name needs level 50.
	status = srv.PostJSON(t, "/api/relationship/name", chooseNameRequest{Name: "Vesper"}, nil)
	assert.Equal(t, http.StatusConflict, status)

	status = srv.PostJSON(t, "/api/relationship/name", chooseNameRequest{}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}
