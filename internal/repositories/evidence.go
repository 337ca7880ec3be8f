package repositories

import (
	"context"
	"log/slog"
	"time"

	"github.com/myrjola/entangled/internal/errors"
	"github.com/myrjola/entangled/internal/models"
	"github.com/myrjola/entangled/internal/store"
)

// EvidenceRepository is the evidence ledger: it owns a user's collected
// evidence and the graph of discovered connections. Every mutation is a full
// read-modify-write of the inventory document; there are no partial writes.
type EvidenceRepository struct {
	store  *store.Store
	logger *slog.Logger
}

func NewEvidenceRepository(s *store.Store, logger *slog.Logger) *EvidenceRepository {
	return &EvidenceRepository{
		store:  s,
		logger: logger.With("source", "EvidenceRepository"),
	}
}

// Inventory loads the user's inventory, creating an empty one lazily.
func (r *EvidenceRepository) Inventory(ctx context.Context, userID string) (*models.EvidenceInventory, error) {
	return loadDocument(ctx, r.store, r.logger, evidencePath(userID),
		(*models.EvidenceInventory).Valid,
		func() *models.EvidenceInventory { return models.NewEvidenceInventory(time.Now().UTC()) },
	)
}

func (r *EvidenceRepository) save(ctx context.Context, userID string, inv *models.EvidenceInventory) error {
	if err := r.store.Put(ctx, evidencePath(userID), inv); err != nil {
		return errors.Wrap(err, "save inventory", slog.String("user_id", userID))
	}
	return nil
}

// Add appends one evidence item. A duplicate id is a conflict.
func (r *EvidenceRepository) Add(ctx context.Context, userID string, e models.Evidence) (*models.EvidenceInventory, error) {
	inv, err := r.Inventory(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err = inv.Add(e, time.Now().UTC()); err != nil {
		return nil, err
	}
	if err = r.save(ctx, userID, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// AddBatch appends evidence items, silently skipping duplicates, and returns
// the ones that were added.
func (r *EvidenceRepository) AddBatch(ctx context.Context, userID string, items []models.Evidence) ([]models.Evidence, error) {
	inv, err := r.Inventory(ctx, userID)
	if err != nil {
		return nil, err
	}
	added := inv.AddBatch(items, time.Now().UTC())
	if len(added) == 0 {
		return added, nil
	}
	if err = r.save(ctx, userID, inv); err != nil {
		return nil, err
	}
	return added, nil
}

// Update replaces the stored item with the same id.
func (r *EvidenceRepository) Update(ctx context.Context, userID string, e models.Evidence) error {
	inv, err := r.Inventory(ctx, userID)
	if err != nil {
		return err
	}
	if err = inv.Update(e, time.Now().UTC()); err != nil {
		return err
	}
	return r.save(ctx, userID, inv)
}

// Remove deletes an item from the inventory.
func (r *EvidenceRepository) Remove(ctx context.Context, userID string, evidenceID string) error {
	inv, err := r.Inventory(ctx, userID)
	if err != nil {
		return err
	}
	if err = inv.Remove(evidenceID, time.Now().UTC()); err != nil {
		return err
	}
	return r.save(ctx, userID, inv)
}

// Examine reveals an item's content, stamping the examination time on first
// examine. The post-state is returned either way.
func (r *EvidenceRepository) Examine(ctx context.Context, userID string, evidenceID string) (*models.Evidence, error) {
	inv, err := r.Inventory(ctx, userID)
	if err != nil {
		return nil, err
	}
	examined, err := inv.Examine(evidenceID, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if err = r.save(ctx, userID, inv); err != nil {
		return nil, err
	}
	result := *examined
	return &result, nil
}

// CheckConnection applies the discovery rule without persisting anything.
func (r *EvidenceRepository) CheckConnection(ctx context.Context, userID, idA, idB string) (models.EvidenceConnection, error) {
	inv, err := r.Inventory(ctx, userID)
	if err != nil {
		return models.EvidenceConnection{}, err
	}
	return inv.CheckConnection(idA, idB)
}

// Connect discovers and persists a connection between two evidence items.
func (r *EvidenceRepository) Connect(ctx context.Context, userID, idA, idB string) (*models.EvidenceConnection, error) {
	inv, err := r.Inventory(ctx, userID)
	if err != nil {
		return nil, err
	}
	connection, err := inv.Connect(idA, idB, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if err = r.save(ctx, userID, inv); err != nil {
		return nil, err
	}
	result := *connection
	return &result, nil
}
