package repositories

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/myrjola/entangled/internal/errors"
	"github.com/myrjola/entangled/internal/models"
	"github.com/myrjola/entangled/internal/store"
	"github.com/myrjola/entangled/internal/unlocks"
)

// ChannelRepository persists the per-user channel list and runs the unlock
// scan against the user's progression and case milestones.
type ChannelRepository struct {
	store         *store.Store
	relationships *RelationshipRepository
	cases         *CaseRepository
	logger        *slog.Logger
}

func NewChannelRepository(
	s *store.Store,
	relationships *RelationshipRepository,
	cases *CaseRepository,
	logger *slog.Logger,
) *ChannelRepository {
	return &ChannelRepository{
		store:         s,
		relationships: relationships,
		cases:         cases,
		logger:        logger.With("source", "ChannelRepository"),
	}
}

// State loads the user's channels, seeding the defaults lazily.
func (r *ChannelRepository) State(ctx context.Context, userID string) (*models.ChannelState, error) {
	return loadDocument(ctx, r.store, r.logger, channelStatePath(userID),
		(*models.ChannelState).Valid,
		func() *models.ChannelState { return models.DefaultChannelState(time.Now().UTC()) },
	)
}

func (r *ChannelRepository) save(ctx context.Context, userID string, state *models.ChannelState) error {
	if err := r.store.Put(ctx, channelStatePath(userID), state); err != nil {
		return errors.Wrap(err, "save channel state", slog.String("user_id", userID))
	}
	return nil
}

// CheckAndUnlock builds the unlock context from current relationship and case
// state, flips the locks that are newly satisfiable, and returns the ids
// unlocked by this call. Unlocking is idempotent: a second call returns
// nothing new.
func (r *ChannelRepository) CheckAndUnlock(ctx context.Context, userID, entityID string) ([]string, error) {
	state, err := r.State(ctx, userID)
	if err != nil {
		return nil, err
	}
	relationship, err := r.relationships.Get(ctx, userID, entityID)
	if err != nil {
		return nil, err
	}
	caseState, err := r.cases.State(ctx, userID)
	if err != nil {
		return nil, err
	}

	unlockCtx := unlocks.Context{
		Level:          relationship.Level,
		CasesCompleted: caseState.CompletedCount(),
		CasesSolved:    caseState.SolvedCount(),
	}
	unlockable := unlocks.UnlockableChannels(*state, unlockCtx, relationship)
	if len(unlockable) == 0 {
		return nil, nil
	}

	now := time.Now().UTC()
	for _, id := range unlockable {
		channel := state.Find(id)
		if channel == nil {
			continue
		}
		channel.Locked = false
		unlockedAt := now
		channel.UnlockedAt = &unlockedAt
	}
	state.LastUpdated = now
	if err = r.save(ctx, userID, state); err != nil {
		return nil, err
	}
	return unlockable, nil
}

// Discover explicitly unlocks a discovery-gated channel and clears its hidden
// flag. Discovering an already unlocked channel is a no-op.
func (r *ChannelRepository) Discover(ctx context.Context, userID, channelID string) (*models.Channel, error) {
	state, err := r.State(ctx, userID)
	if err != nil {
		return nil, err
	}
	channel := state.Find(channelID)
	if channel == nil {
		return nil, errors.Wrap(models.ErrNotFound,
			fmt.Sprintf("channel %s not found", channelID), slog.String("channel_id", channelID))
	}
	if channel.Locked || channel.Hidden {
		now := time.Now().UTC()
		channel.Hidden = false
		if channel.Locked {
			channel.Locked = false
			unlockedAt := now
			channel.UnlockedAt = &unlockedAt
		}
		state.LastUpdated = now
		if err = r.save(ctx, userID, state); err != nil {
			return nil, err
		}
	}
	result := *channel
	return &result, nil
}

// OpenQueryWindow opens (or returns) the direct line to another user. Query
// windows are always unlocked.
func (r *ChannelRepository) OpenQueryWindow(ctx context.Context, userID, targetID, name string) (*models.QueryWindow, error) {
	state, err := r.State(ctx, userID)
	if err != nil {
		return nil, err
	}
	if window := state.FindQueryWindow(targetID); window != nil {
		result := *window
		return &result, nil
	}
	now := time.Now().UTC()
	state.QueryWindows = append(state.QueryWindows, models.QueryWindow{
		TargetID: targetID,
		Name:     name,
		OpenedAt: now,
	})
	state.LastUpdated = now
	if err = r.save(ctx, userID, state); err != nil {
		return nil, err
	}
	result := state.QueryWindows[len(state.QueryWindows)-1]
	return &result, nil
}
