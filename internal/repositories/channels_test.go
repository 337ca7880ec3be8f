package repositories_test

import (
	"context"
	"io"
	"testing"

	"github.com/myrjola/entangled/internal/models"
	"github.com/myrjola/entangled/internal/repositories"
	"github.com/myrjola/entangled/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChannelFixture(t *testing.T) (*repositories.ChannelRepository, *repositories.RelationshipRepository, *repositories.CaseRepository) {
	t.Helper()
	s := newTestStore(t)
	logger := testhelpers.NewLogger(io.Discard)
	relationships := repositories.NewRelationshipRepository(s, logger)
	cases := repositories.NewCaseRepository(s, logger)
	channels := repositories.NewChannelRepository(s, relationships, cases, logger)
	return channels, relationships, cases
}

func TestChannelRepository_State(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	channels, _, _ := newChannelFixture(t)

	state, err := channels.State(ctx, "u-1")
	require.NoError(t, err)
	require.Len(t, state.Channels, 7)

	unlocked := 0
	hidden := 0
	for _, channel := range state.Channels {
		if !channel.Locked {
			unlocked++
		}
		if channel.Hidden {
			hidden++
		}
	}
	assert.Equal(t, 4, unlocked)
	assert.Equal(t, 1, hidden)
}

func TestChannelRepository_CheckAndUnlock_Level(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	channels, relationships, _ := newChannelFixture(t)

	newlyUnlocked, err := channels.CheckAndUnlock(ctx, "u-1", "whisper")
	require.NoError(t, err)
	assert.Empty(t, newlyUnlocked)

	// 5950 XP carries the relationship from level 1 to exactly level 15.
	state, err := relationships.AddXP(ctx, "u-1", "whisper", 5950)
	require.NoError(t, err)
	require.Equal(t, 15, state.Level)

	newlyUnlocked, err = channels.CheckAndUnlock(ctx, "u-1", "whisper")
	require.NoError(t, err)
	assert.Equal(t, []string{"deep-archive"}, newlyUnlocked)

	channelState, err := channels.State(ctx, "u-1")
	require.NoError(t, err)
	deepArchive := channelState.Find("deep-archive")
	require.NotNil(t, deepArchive)
	assert.False(t, deepArchive.Locked)
	assert.NotNil(t, deepArchive.UnlockedAt)

	// Already unlocked channels are not reported again.
	newlyUnlocked, err = channels.CheckAndUnlock(ctx, "u-1", "whisper")
	require.NoError(t, err)
	assert.Empty(t, newlyUnlocked)
}

func TestChannelRepository_CheckAndUnlock_CasesCompleted(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	channels, _, cases := newChannelFixture(t)

	require.NoError(t, cases.SeedPool(ctx, []models.Case{
		testPoolCase("case-1"),
		testPoolCase("case-2"),
		testPoolCase("case-3"),
	}))
	for _, id := range []string{"case-1", "case-2", "case-3"} {
		_, err := cases.Accept(ctx, "u-1", id)
		require.NoError(t, err)
		_, err = cases.Complete(ctx, "u-1", id, models.OutcomeCold, "")
		require.NoError(t, err)
	}

	newlyUnlocked, err := channels.CheckAndUnlock(ctx, "u-1", "whisper")
	require.NoError(t, err)
	assert.Equal(t, []string{"deep-archive"}, newlyUnlocked)
}

func TestChannelRepository_Discover(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	channels, _, _ := newChannelFixture(t)

	discovered, err := channels.Discover(ctx, "u-1", "veiled")
	require.NoError(t, err)
	assert.False(t, discovered.Hidden)
	assert.False(t, discovered.Locked)
	require.NotNil(t, discovered.UnlockedAt)
	firstUnlock := *discovered.UnlockedAt

	// Idempotent: a second discovery does not restamp the unlock.
	discovered, err = channels.Discover(ctx, "u-1", "veiled")
	require.NoError(t, err)
	require.NotNil(t, discovered.UnlockedAt)
	assert.Equal(t, firstUnlock, *discovered.UnlockedAt)

	_, err = channels.Discover(ctx, "u-1", "back-room")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestChannelRepository_OpenQueryWindow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	channels, _, _ := newChannelFixture(t)

	window, err := channels.OpenQueryWindow(ctx, "u-1", "u-2", "marlowe")
	require.NoError(t, err)
	assert.Equal(t, "u-2", window.TargetID)
	assert.Equal(t, "marlowe", window.Name)

	// Reopening returns the existing window unchanged.
	reopened, err := channels.OpenQueryWindow(ctx, "u-1", "u-2", "renamed")
	require.NoError(t, err)
	assert.Equal(t, "marlowe", reopened.Name)
	assert.Equal(t, window.OpenedAt, reopened.OpenedAt)

	state, err := channels.State(ctx, "u-1")
	require.NoError(t, err)
	assert.Len(t, state.QueryWindows, 1)
}
