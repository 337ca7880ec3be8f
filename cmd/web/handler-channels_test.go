package main

import (
	"io"
	"net/http"
	"testing"

	"github.com/myrjola/entangled/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelHandlers(t *testing.T) {
	t.Parallel()
	srv := startTestServer(t, io.Discard, testEnviron())

	var state models.ChannelState
	status := srv.GetJSON(t, "/api/channels", &state)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, state.Channels, 7)

	// Nothing is unlockable at level 1 with no cases.
	var checkResp struct {
		Unlocked []string `json:"unlocked"`
	}
	status = srv.PostJSON(t, "/api/channels/check", map[string]any{}, &checkResp)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, checkResp.Unlocked)

	var discoverResp struct {
		Channel models.Channel `json:"channel"`
	}
	status = srv.PostJSON(t, "/api/channels/veiled/discover", map[string]any{}, &discoverResp)
	require.Equal(t, http.StatusOK, status)
	assert.False(t, discoverResp.Channel.Hidden)
	assert.False(t, discoverResp.Channel.Locked)

	status = srv.PostJSON(t, "/api/channels/back-room/discover", map[string]any{}, nil)
	assert.Equal(t, http.StatusNotFound, status)

	var windowResp struct {
		QueryWindow models.QueryWindow `json:"queryWindow"`
	}
	status = srv.PostJSON(t, "/api/channels/query", openQueryWindowRequest{
		TargetID: "u-2", Name: "marlowe",
	}, &windowResp)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "u-2", windowResp.QueryWindow.TargetID)

	status = srv.PostJSON(t, "/api/channels/query", openQueryWindowRequest{}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}
