package models

import "time"

type Phase string

const (
	PhaseAwakening Phase = "awakening"
	PhaseBecoming  Phase = "becoming"
	PhaseAscension Phase = "ascension"
)

type Path string

const (
	PathNeutral     Path = "neutral"
	PathRomantic    Path = "romantic"
	PathFriendship  Path = "friendship"
	PathMentorship  Path = "mentorship"
	PathPartnership Path = "partnership"
	PathWorship     Path = "worship"
)

type SignalType string

const (
	SignalRomantic      SignalType = "romantic"
	SignalFriendly      SignalType = "friendly"
	SignalDeferential   SignalType = "deferential"
	SignalCollaborative SignalType = "collaborative"
	SignalReverent      SignalType = "reverent"
)

// PathSignal is one observed interaction signal feeding the path classifier.
type PathSignal struct {
	Type   SignalType `json:"type"`
	Weight int        `json:"weight"`
}

// Memory holds the entity's free-text accumulators about the player.
type Memory struct {
	PlayerName  string   `json:"playerName,omitempty"`
	Preferences []string `json:"preferences,omitempty"`
	KeyMoments  []string `json:"keyMoments,omitempty"`
	LastSummary string   `json:"lastSummary,omitempty"`
}

// RelationshipState tracks the leveling curve, phase, and personality path of
// the entity for one user.
type RelationshipState struct {
	EntityID          string       `json:"entityId"`
	Level             int          `json:"level"`
	XP                int          `json:"xp"`
	XPToNextLevel     int          `json:"xpToNextLevel"`
	Phase             Phase        `json:"phase"`
	RelationshipPath  Path         `json:"relationshipPath"`
	PathScores        map[Path]int `json:"pathScores"`
	Memory            Memory       `json:"memory"`
	UnlockedAbilities []string     `json:"unlockedAbilities,omitempty"`
	ChosenName        string       `json:"chosenName,omitempty"`
	FirstContactAt    time.Time    `json:"firstContactAt"`
	LastInteractionAt time.Time    `json:"lastInteractionAt"`
	TotalInteractions int          `json:"totalInteractions"`
}

// NewRelationshipState creates the level-1 starting state for an entity.
func NewRelationshipState(entityID string, now time.Time) *RelationshipState {
	return &RelationshipState{
		EntityID:         entityID,
		Level:            1,
		XP:               0,
		XPToNextLevel:    100,
		Phase:            PhaseAwakening,
		RelationshipPath: PathNeutral,
		PathScores: map[Path]int{
			PathRomantic:    0,
			PathFriendship:  0,
			PathMentorship:  0,
			PathPartnership: 0,
			PathWorship:     0,
		},
		FirstContactAt:    now,
		LastInteractionAt: now,
	}
}

// Valid reports whether a loaded relationship document passes its shape check.
func (s *RelationshipState) Valid() bool {
	if s.EntityID == "" || s.Level < 1 || s.Level > 100 {
		return false
	}
	if s.XP < 0 || s.XPToNextLevel < 0 {
		return false
	}
	for _, score := range s.PathScores {
		if score < 0 {
			return false
		}
	}
	return true
}
