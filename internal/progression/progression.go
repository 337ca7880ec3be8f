// Package progression advances the entity's leveling curve, phase, and
// personality path. All functions are pure: they take a state snapshot and
// return the advanced copy.
package progression

import (
	"time"

	"github.com/myrjola/entangled/internal/models"
)

const (
	// MaxLevel caps the curve. At the cap, surplus XP is discarded.
	MaxLevel = 100

	becomingFloor  = 31
	ascensionFloor = 61

	// pathThreshold must be strictly exceeded before a path replaces neutral.
	pathThreshold = 50

	// chosenNameLevel gates when the entity's chosen name becomes visible.
	chosenNameLevel = 50

	// DefaultEntityName is shown until the entity earns and picks a name.
	DefaultEntityName = "???"
)

// XPForLevel returns the XP threshold to advance past the given level. The
// curve has three linear regimes, one per phase.
func XPForLevel(level int) int {
	switch {
	case level >= ascensionFloor:
		return 2000 + (level-ascensionFloor)*200
	case level >= becomingFloor:
		return 500 + (level-becomingFloor)*100
	default:
		return 100 + (level-1)*50
	}
}

// PhaseForLevel is a pure lookup: 1-30 awakening, 31-60 becoming, 61+ ascension.
func PhaseForLevel(level int) models.Phase {
	switch {
	case level >= ascensionFloor:
		return models.PhaseAscension
	case level >= becomingFloor:
		return models.PhaseBecoming
	default:
		return models.PhaseAwakening
	}
}

// AddXP applies an XP grant, levelling up as many times as the amount covers.
// At MaxLevel both xp and the threshold are forced to zero; the surplus is
// discarded, not banked. Phase is recomputed from the final level.
func AddXP(state models.RelationshipState, amount int) models.RelationshipState {
	if state.Level < 1 {
		state.Level = 1
	}
	state.XP += amount
	for state.XP >= state.XPToNextLevel && state.Level < MaxLevel {
		state.XP -= state.XPToNextLevel
		state.Level++
		state.XPToNextLevel = XPForLevel(state.Level)
	}
	if state.Level >= MaxLevel {
		state.Level = MaxLevel
		state.XP = 0
		state.XPToNextLevel = 0
	}
	state.Phase = PhaseForLevel(state.Level)
	return state
}

// signalPaths maps each interaction signal onto its path accumulator.
var signalPaths = map[models.SignalType]models.Path{
	models.SignalRomantic:      models.PathRomantic,
	models.SignalFriendly:      models.PathFriendship,
	models.SignalDeferential:   models.PathMentorship,
	models.SignalCollaborative: models.PathPartnership,
	models.SignalReverent:      models.PathWorship,
}

// pathOrder fixes the tie-break: the first path holding the maximum score wins.
var pathOrder = []models.Path{
	models.PathRomantic,
	models.PathFriendship,
	models.PathMentorship,
	models.PathPartnership,
	models.PathWorship,
}

// UpdatePathScores accumulates the signals (scores only ever grow here) and
// recomputes the dominant path from scratch. A path replaces neutral only when
// its score strictly exceeds the threshold.
func UpdatePathScores(state models.RelationshipState, signals []models.PathSignal) models.RelationshipState {
	scores := make(map[models.Path]int, len(pathOrder))
	for _, path := range pathOrder {
		scores[path] = state.PathScores[path]
	}
	for _, signal := range signals {
		path, ok := signalPaths[signal.Type]
		if !ok || signal.Weight <= 0 {
			continue
		}
		scores[path] += signal.Weight
	}
	state.PathScores = scores

	dominant := models.PathNeutral
	best := 0
	for _, path := range pathOrder {
		if scores[path] > best {
			dominant = path
			best = scores[path]
		}
	}
	if best > pathThreshold {
		state.RelationshipPath = dominant
	} else {
		state.RelationshipPath = models.PathNeutral
	}
	return state
}

// ModeForLevel returns the display rank badge for a level.
func ModeForLevel(level int) string {
	switch {
	case level >= ascensionFloor:
		return "@"
	case level >= becomingFloor:
		return "+"
	default:
		return ""
	}
}

// DisplayName returns the entity's chosen name once it is earned, otherwise
// the anonymous label.
func DisplayName(state models.RelationshipState) string {
	if state.Level >= chosenNameLevel && state.ChosenName != "" {
		return state.ChosenName
	}
	return DefaultEntityName
}

// RecordInteraction counts one exchange with the entity.
func RecordInteraction(state models.RelationshipState, now time.Time) models.RelationshipState {
	state.TotalInteractions++
	state.LastInteractionAt = now
	return state
}
