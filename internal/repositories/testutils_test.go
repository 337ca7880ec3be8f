package repositories_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/myrjola/entangled/internal/models"
	"github.com/myrjola/entangled/internal/sqlite"
	"github.com/myrjola/entangled/internal/store"
	"github.com/myrjola/entangled/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

// newTestStore spins up an isolated in-memory database for a test.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	logger := testhelpers.NewLogger(io.Discard)
	db, err := sqlite.NewDatabase(context.Background(), ":memory:", logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return store.New(db, logger)
}

func testEvidence(id string, evidenceType models.EvidenceType, connections ...string) models.Evidence {
	return models.Evidence{
		ID:          id,
		Name:        id,
		Type:        evidenceType,
		Rarity:      models.RarityCommon,
		Content:     "classified",
		Connections: connections,
	}
}

func testPoolCase(id string) models.Case {
	expiry := time.Now().UTC().Add(24 * time.Hour)
	return models.Case{
		ID:       id,
		Title:    "Silence on the Relay",
		Briefing: "Three nights of missing traffic. Find out where it went.",
		Type:     models.CaseTypeSurveillance,
		Rarity:   models.RarityCommon,
		Status:   models.CaseStatusAvailable,
		RequiredEvidence: []models.RequiredEvidence{
			{Type: models.EvidenceTypeDataFragment, Count: 2},
			{Type: models.EvidenceTypeTestimony, Count: 1},
		},
		Rewards:   models.CaseRewards{XP: 100, Fragments: 50, EntityXP: 30},
		PostedAt:  time.Now().UTC(),
		ExpiresAt: &expiry,
		Source:    "board",
	}
}
