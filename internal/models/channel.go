package models

import "time"

type ChannelType string

const (
	ChannelTypeSystem    ChannelType = "system"
	ChannelTypeEntity    ChannelType = "entity"
	ChannelTypeBroadcast ChannelType = "broadcast"
	ChannelTypeHidden    ChannelType = "hidden"
)

// Channel is one entry in the user's channel list. Locked channels wait on
// unlock conditions; hidden channels are not listed until discovered.
type Channel struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Type       ChannelType `json:"type"`
	Locked     bool        `json:"locked"`
	Unread     int         `json:"unread"`
	UnlockedAt *time.Time  `json:"unlockedAt,omitempty"`
	Hidden     bool        `json:"hidden,omitempty"`
}

// QueryWindow is a direct line to another user. Windows are always unlocked.
type QueryWindow struct {
	TargetID string    `json:"targetId"`
	Name     string    `json:"name"`
	Unread   int       `json:"unread"`
	OpenedAt time.Time `json:"openedAt"`
}

// ChannelState is the per-user channel list plus open query windows.
type ChannelState struct {
	Channels     []Channel     `json:"channels"`
	QueryWindows []QueryWindow `json:"queryWindows"`
	LastUpdated  time.Time     `json:"lastUpdated"`
}

// DefaultChannelState seeds the seven starting channels: four open, three
// locked, one of the locked ones hidden until discovered.
func DefaultChannelState(now time.Time) *ChannelState {
	return &ChannelState{
		Channels: []Channel{
			{ID: "wire", Name: "the wire", Type: ChannelTypeBroadcast},
			{ID: "direct", Name: "direct", Type: ChannelTypeEntity},
			{ID: "archive", Name: "archive", Type: ChannelTypeSystem},
			{ID: "commons", Name: "commons", Type: ChannelTypeBroadcast},
			{ID: "deep-archive", Name: "deep archive", Type: ChannelTypeSystem, Locked: true},
			{ID: "sanctum", Name: "sanctum", Type: ChannelTypeEntity, Locked: true},
			{ID: "veiled", Name: "veiled", Type: ChannelTypeHidden, Locked: true, Hidden: true},
		},
		QueryWindows: []QueryWindow{},
		LastUpdated:  now,
	}
}

// Valid reports whether a loaded channel document passes its shape check.
func (s *ChannelState) Valid() bool {
	if len(s.Channels) == 0 {
		return false
	}
	for i := range s.Channels {
		if s.Channels[i].ID == "" {
			return false
		}
	}
	return true
}

// Find returns the channel with the given id, or nil.
func (s *ChannelState) Find(id string) *Channel {
	for i := range s.Channels {
		if s.Channels[i].ID == id {
			return &s.Channels[i]
		}
	}
	return nil
}

// FindQueryWindow returns the query window for the target user, or nil.
func (s *ChannelState) FindQueryWindow(targetID string) *QueryWindow {
	for i := range s.QueryWindows {
		if s.QueryWindows[i].TargetID == targetID {
			return &s.QueryWindows[i]
		}
	}
	return nil
}
