package repositories

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/myrjola/entangled/internal/errors"
	"github.com/myrjola/entangled/internal/models"
	"github.com/myrjola/entangled/internal/progression"
	"github.com/myrjola/entangled/internal/store"
)

// RelationshipRepository persists the per-(user, entity) progression state and
// applies the pure progression rules to it.
type RelationshipRepository struct {
	store  *store.Store
	logger *slog.Logger
}

func NewRelationshipRepository(s *store.Store, logger *slog.Logger) *RelationshipRepository {
	return &RelationshipRepository{
		store:  s,
		logger: logger.With("source", "RelationshipRepository"),
	}
}

// Get loads the relationship state, creating the level-1 default on first
// contact.
func (r *RelationshipRepository) Get(ctx context.Context, userID, entityID string) (*models.RelationshipState, error) {
	return loadDocument(ctx, r.store, r.logger, relationshipPath(userID, entityID),
		(*models.RelationshipState).Valid,
		func() *models.RelationshipState { return models.NewRelationshipState(entityID, time.Now().UTC()) },
	)
}

func (r *RelationshipRepository) save(ctx context.Context, userID string, state *models.RelationshipState) error {
	if err := r.store.Put(ctx, relationshipPath(userID, state.EntityID), state); err != nil {
		return errors.Wrap(err, "save relationship state",
			slog.String("user_id", userID), slog.String("entity_id", state.EntityID))
	}
	return nil
}

// AddXP grants XP, levelling up as far as the amount carries, and persists.
func (r *RelationshipRepository) AddXP(ctx context.Context, userID, entityID string, amount int) (*models.RelationshipState, error) {
	state, err := r.Get(ctx, userID, entityID)
	if err != nil {
		return nil, err
	}
	advanced := progression.AddXP(*state, amount)
	if err = r.save(ctx, userID, &advanced); err != nil {
		return nil, err
	}
	return &advanced, nil
}

// ApplySignals feeds interaction signals into the path classifier and persists.
func (r *RelationshipRepository) ApplySignals(ctx context.Context, userID, entityID string, signals []models.PathSignal) (*models.RelationshipState, error) {
	state, err := r.Get(ctx, userID, entityID)
	if err != nil {
		return nil, err
	}
	updated := progression.UpdatePathScores(*state, signals)
	if err = r.save(ctx, userID, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// RecordInteraction counts one exchange with the entity and persists.
func (r *RelationshipRepository) RecordInteraction(ctx context.Context, userID, entityID string) (*models.RelationshipState, error) {
	state, err := r.Get(ctx, userID, entityID)
	if err != nil {
		return nil, err
	}
	updated := progression.RecordInteraction(*state, time.Now().UTC())
	if err = r.save(ctx, userID, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// SetChosenName records the entity's chosen name. The name is only usable
// once the relationship has reached level 50.
func (r *RelationshipRepository) SetChosenName(ctx context.Context, userID, entityID, name string) (*models.RelationshipState, error) {
	state, err := r.Get(ctx, userID, entityID)
	if err != nil {
		return nil, err
	}
	if state.Level < 50 {
		return nil, errors.Wrap(models.ErrConflict,
			fmt.Sprintf("a name cannot be chosen before level 50 (currently %d)", state.Level),
			slog.Int("level", state.Level))
	}
	state.ChosenName = name
	if err = r.save(ctx, userID, state); err != nil {
		return nil, err
	}
	return state, nil
}

// RememberMoment appends a key moment to the entity's memory, keeping the most
// recent ones first.
func (r *RelationshipRepository) RememberMoment(ctx context.Context, userID, entityID, moment string) (*models.RelationshipState, error) {
	state, err := r.Get(ctx, userID, entityID)
	if err != nil {
		return nil, err
	}
	const maxKeyMoments = 20
	state.Memory.KeyMoments = append([]string{moment}, state.Memory.KeyMoments...)
	if len(state.Memory.KeyMoments) > maxKeyMoments {
		state.Memory.KeyMoments = state.Memory.KeyMoments[:maxKeyMoments]
	}
	if err = r.save(ctx, userID, state); err != nil {
		return nil, err
	}
	return state, nil
}
