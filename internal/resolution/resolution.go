// Package resolution computes case outcomes from immutable snapshots of a
// case, the user's evidence, and the discovered connections. It performs no
// I/O; callers load the documents, call in, and persist the results.
package resolution

import (
	"fmt"
	"math"
	"strings"

	"github.com/myrjola/entangled/internal/models"
)

// Completeness thresholds for the graded outcomes.
const (
	solvedThreshold  = 0.90
	partialThreshold = 0.50
)

// rewardMultipliers scale a case's base rewards per outcome.
var rewardMultipliers = map[models.Outcome]float64{
	models.OutcomeSolved:  1.0,
	models.OutcomePartial: 0.6,
	models.OutcomeCold:    0.3,
	models.OutcomeTwist:   1.5,
}

var outcomeDescriptions = map[models.Outcome]string{
	models.OutcomeSolved:  "The pieces hold together. The case is closed.",
	models.OutcomePartial: "Enough of the picture resolves to file it, but gaps remain.",
	models.OutcomeCold:    "The trail has gone quiet. The case goes cold.",
	models.OutcomeTwist:   "Every thread connects, and the pattern is not what anyone expected.",
}

// Result is the outcome of resolving a case. When the evidence was too thin to
// attempt a resolution, MissingEvidence carries the hints instead.
type Result struct {
	Outcome         models.Outcome     `json:"outcome"`
	Completeness    float64            `json:"completeness"`
	Rewards         models.CaseRewards `json:"rewards"`
	Description     string             `json:"description"`
	RewardText      string             `json:"rewardText"`
	MissingEvidence []string           `json:"missingEvidence,omitempty"`
}

// Completeness returns the ratio of satisfied evidence requirements in [0, 1].
// Evidence beyond a requirement's count earns no extra credit. A case with no
// requirements is trivially complete.
func Completeness(c models.Case, evidence []models.Evidence) float64 {
	if len(c.RequiredEvidence) == 0 {
		return 1
	}
	satisfied, required := 0, 0
	for _, req := range c.RequiredEvidence {
		required += req.Count
		matches := matchCount(req, evidence)
		if matches > req.Count {
			matches = req.Count
		}
		satisfied += matches
	}
	return float64(satisfied) / float64(required)
}

// MissingHints returns one hint per unsatisfied requirement, stating how many
// more items are needed.
func MissingHints(c models.Case, evidence []models.Evidence) []string {
	var hints []string
	for _, req := range c.RequiredEvidence {
		matches := matchCount(req, evidence)
		if matches >= req.Count {
			continue
		}
		missing := req.Count - matches
		if req.Hint != "" {
			hints = append(hints, fmt.Sprintf("%s (%d more needed)", req.Hint, missing))
		} else {
			hints = append(hints, fmt.Sprintf("Find %d more %s evidence.", missing, req.Type))
		}
	}
	return hints
}

// TwistConditions holds only when the evidence is fully complete and some
// discovered connection carries progress for this exact case.
func TwistConditions(c models.Case, evidence []models.Evidence, connections []models.EvidenceConnection) bool {
	if Completeness(c, evidence) < 1 {
		return false
	}
	for _, connection := range connections {
		if connection.Reward != nil && connection.Reward.CaseProgress == c.ID {
			return true
		}
	}
	return false
}

// Outcome decides the graded result. Twist outranks everything; an already
// cold case cannot be freshly solved; otherwise the completeness bands decide.
func Outcome(c models.Case, evidence []models.Evidence, connections []models.EvidenceConnection) models.Outcome {
	completeness := Completeness(c, evidence)
	switch {
	case completeness >= 1 && TwistConditions(c, evidence, connections):
		return models.OutcomeTwist
	case c.Status == models.CaseStatusCold:
		return models.OutcomeCold
	case completeness >= solvedThreshold:
		return models.OutcomeSolved
	case completeness >= partialThreshold:
		return models.OutcomePartial
	default:
		return models.OutcomeCold
	}
}

// Rewards scales the case's base rewards by the outcome multiplier, flooring
// each field independently. Bonus evidence only comes with a twist; unlocks
// come with solved or twist.
func Rewards(c models.Case, outcome models.Outcome) models.CaseRewards {
	multiplier := rewardMultipliers[outcome]
	rewards := models.CaseRewards{
		XP:        scale(c.Rewards.XP, multiplier),
		Fragments: scale(c.Rewards.Fragments, multiplier),
		EntityXP:  scale(c.Rewards.EntityXP, multiplier),
	}
	if outcome == models.OutcomeTwist {
		rewards.BonusEvidence = c.Rewards.BonusEvidence
	}
	if outcome == models.OutcomeSolved || outcome == models.OutcomeTwist {
		rewards.Unlocks = c.Rewards.Unlocks
	}
	return rewards
}

// Resolve is the orchestration entry point. Below half completeness it
// short-circuits to a cold outcome with hints; the submitted theory is flavor
// text in both branches and never scored.
func Resolve(c models.Case, evidence []models.Evidence, connections []models.EvidenceConnection, theory string) Result {
	_ = theory

	completeness := Completeness(c, evidence)
	if completeness < partialThreshold {
		rewards := Rewards(c, models.OutcomeCold)
		return Result{
			Outcome:         models.OutcomeCold,
			Completeness:    completeness,
			Rewards:         rewards,
			Description:     outcomeDescriptions[models.OutcomeCold],
			RewardText:      rewardText(rewards),
			MissingEvidence: MissingHints(c, evidence),
		}
	}

	outcome := Outcome(c, evidence, connections)
	rewards := Rewards(c, outcome)
	return Result{
		Outcome:      outcome,
		Completeness: completeness,
		Rewards:      rewards,
		Description:  outcomeDescriptions[outcome],
		RewardText:   rewardText(rewards),
	}
}

func matchCount(req models.RequiredEvidence, evidence []models.Evidence) int {
	count := 0
	for _, e := range evidence {
		if e.Type != req.Type {
			continue
		}
		if len(req.Specific) > 0 && !contains(req.Specific, e.ID) {
			continue
		}
		count++
	}
	return count
}

func contains(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func scale(base int, multiplier float64) int {
	return int(math.Floor(float64(base) * multiplier))
}

func rewardText(rewards models.CaseRewards) string {
	lines := []string{
		fmt.Sprintf("+%d XP", rewards.XP),
		fmt.Sprintf("+%d Fragments", rewards.Fragments),
		fmt.Sprintf("+%d Entity XP", rewards.EntityXP),
	}
	for _, id := range rewards.BonusEvidence {
		lines = append(lines, fmt.Sprintf("Bonus evidence: %s", id))
	}
	for _, id := range rewards.Unlocks {
		lines = append(lines, fmt.Sprintf("Unlocked: %s", id))
	}
	return strings.Join(lines, "\n")
}
