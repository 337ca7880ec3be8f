// Package unlocks evaluates channel unlock conditions against the user's
// progression and case milestones. Unlocking is monotonic: a channel that has
// been unlocked is never re-evaluated, let alone relocked.
package unlocks

import (
	"github.com/myrjola/entangled/internal/models"
)

type ConditionKind string

const (
	// KindLevel unlocks at an entity level threshold.
	KindLevel ConditionKind = "level"
	// KindCaseComplete unlocks after enough cases were completed.
	KindCaseComplete ConditionKind = "case_complete"
	// KindCaseSolved unlocks after enough cases closed as solved.
	KindCaseSolved ConditionKind = "case_solved"
	// KindRelationship unlocks on a named relationship milestone.
	KindRelationship ConditionKind = "relationship"
	// KindDiscovery never satisfies from scanning; an explicit discovery call
	// unlocks these channels.
	KindDiscovery ConditionKind = "discovery"
)

// Condition is one unlock predicate. A channel's conditions combine with OR.
type Condition struct {
	Kind      ConditionKind
	Threshold int
	Milestone string
}

// Context is the snapshot the conditions are evaluated against.
type Context struct {
	Level          int
	CasesCompleted int
	CasesSolved    int
}

// channelConditions is the authored unlock table for the locked seed channels.
var channelConditions = map[string][]Condition{
	"deep-archive": {
		{Kind: KindLevel, Threshold: 15},
		{Kind: KindCaseComplete, Threshold: 3},
	},
	"sanctum": {
		{Kind: KindLevel, Threshold: 40},
		{Kind: KindCaseSolved, Threshold: 10},
		{Kind: KindRelationship, Milestone: "milestone_1"},
	},
	"veiled": {
		{Kind: KindDiscovery},
	},
}

// ChannelConditions returns the authored conditions for a channel id.
func ChannelConditions(id string) []Condition {
	return channelConditions[id]
}

// Satisfied evaluates a single condition. rel may be nil when no relationship
// state exists yet.
func Satisfied(c Condition, ctx Context, rel *models.RelationshipState) bool {
	switch c.Kind {
	case KindLevel:
		return ctx.Level >= c.Threshold
	case KindCaseComplete:
		return ctx.CasesCompleted >= c.Threshold
	case KindCaseSolved:
		return ctx.CasesSolved >= c.Threshold
	case KindRelationship:
		return milestoneReached(c.Milestone, rel)
	case KindDiscovery:
		return false
	default:
		return false
	}
}

func milestoneReached(milestone string, rel *models.RelationshipState) bool {
	if rel == nil {
		return false
	}
	switch milestone {
	case "milestone_1":
		return rel.TotalInteractions >= 50
	case "milestone_2":
		return rel.RelationshipPath != models.PathNeutral
	default:
		return false
	}
}

// UnlockableChannels scans the channels still flagged locked and returns the
// ids whose condition lists are newly satisfiable (OR semantics). Channels
// without authored conditions stay locked.
func UnlockableChannels(state models.ChannelState, ctx Context, rel *models.RelationshipState) []string {
	var unlockable []string
	for _, channel := range state.Channels {
		if !channel.Locked {
			continue
		}
		for _, condition := range ChannelConditions(channel.ID) {
			if Satisfied(condition, ctx, rel) {
				unlockable = append(unlockable, channel.ID)
				break
			}
		}
	}
	return unlockable
}
