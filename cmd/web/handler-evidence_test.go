package main

import (
	"io"
	"net/http"
	"testing"

	"github.com/myrjola/entangled/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvidenceHandlers(t *testing.T) {
	t.Parallel()
	srv := startTestServer(t, io.Discard, testEnviron())

	fragment := caseEvidence("frag-1", models.EvidenceTypeDataFragment)
	fragment.Connections = []string{"key-1"}
	key := caseEvidence("key-1", models.EvidenceTypeAccessKey)
	witness := caseEvidence("wit-1", models.EvidenceTypeTestimony)

	var collectResp struct {
		Added []models.Evidence `json:"added"`
	}
	status := srv.PostJSON(t, "/api/evidence", collectEvidenceRequest{
		Evidence: []models.Evidence{fragment, key, witness},
	}, &collectResp)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, collectResp.Added, 3)

	// Recollecting skips the duplicates silently.
	status = srv.PostJSON(t, "/api/evidence", collectEvidenceRequest{
		Evidence: []models.Evidence{fragment},
	}, &collectResp)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, collectResp.Added)

	// Evidence without an id is rejected.
	status = srv.PostJSON(t, "/api/evidence", collectEvidenceRequest{
		Evidence: []models.Evidence{{Name: "nameless"}},
	}, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	// Unexamined content stays redacted in the listing.
	var listResp struct {
		Evidence []models.Evidence `json:"evidence"`
	}
	status = srv.GetJSON(t, "/api/evidence", &listResp)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, listResp.Evidence, 3)
	for _, e := range listResp.Evidence {
		assert.Empty(t, e.Content, "unexamined evidence %s leaked its content", e.ID)
	}

	var examineResp struct {
		Evidence models.Evidence `json:"evidence"`
	}
	status = srv.PostJSON(t, "/api/evidence/frag-1/examine", map[string]any{}, &examineResp)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, examineResp.Evidence.Examined)
	assert.Equal(t, "classified", examineResp.Evidence.Content)

	status = srv.PostJSON(t, "/api/evidence/ghost/examine", map[string]any{}, nil)
	assert.Equal(t, http.StatusNotFound, status)

	// Preview the connection, then record it.
	var connectResp struct {
		Connection models.EvidenceConnection `json:"connection"`
	}
	status = srv.PostJSON(t, "/api/evidence/connect", connectEvidenceRequest{
		EvidenceIDA: "frag-1", EvidenceIDB: "key-1", DryRun: true,
	}, &connectResp)
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, connectResp.Connection.Insight)

	status = srv.PostJSON(t, "/api/evidence/connect", connectEvidenceRequest{
		EvidenceIDA: "frag-1", EvidenceIDB: "key-1",
	}, &connectResp)
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, connectResp.Connection.Reward)
	assert.Equal(t, 10, connectResp.Connection.Reward.XP)

	status = srv.PostJSON(t, "/api/evidence/connect", connectEvidenceRequest{
		EvidenceIDA: "key-1", EvidenceIDB: "frag-1",
	}, nil)
	assert.Equal(t, http.StatusConflict, status)

	// Neither item names the other, so the connection does not hold.
	status = srv.PostJSON(t, "/api/evidence/connect", connectEvidenceRequest{
		EvidenceIDA: "frag-1", EvidenceIDB: "wit-1",
	}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}
