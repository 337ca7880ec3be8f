package resolution_test

import (
	"testing"

	"github.com/myrjola/entangled/internal/models"
	"github.com/myrjola/entangled/internal/resolution"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func evidenceOf(pairs ...[2]string) []models.Evidence {
	evidence := make([]models.Evidence, 0, len(pairs))
	for _, pair := range pairs {
		evidence = append(evidence, models.Evidence{
			ID:     pair[0],
			Type:   models.EvidenceType(pair[1]),
			Rarity: models.RarityCommon,
		})
	}
	return evidence
}

func testCase() models.Case {
	return models.Case{
		ID:     "case-echo",
		Title:  "The Echo in the Archive",
		Type:   models.CaseTypeMystery,
		Rarity: models.RarityUncommon,
		Status: models.CaseStatusInProgress,
		RequiredEvidence: []models.RequiredEvidence{
			{Type: models.EvidenceTypeDataFragment, Count: 2},
			{Type: models.EvidenceTypeTestimony, Count: 1, Hint: "Someone saw the terminal glow"},
		},
		Rewards: models.CaseRewards{
			XP:        100,
			Fragments: 55,
			EntityXP:  30,
			BonusEvidence: []string{
				"frag-hidden",
			},
			Unlocks: []string{"deep-archive"},
		},
	}
}

func caseConnection(caseID string) models.EvidenceConnection {
	return models.EvidenceConnection{
		EvidenceIDs: [2]string{"frag-1", "frag-2"},
		Insight:     "same session",
		Reward:      &models.ConnectionReward{XP: 10, CaseProgress: caseID},
	}
}

func TestCompleteness(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		evidence []models.Evidence
		want     float64
	}{
		{name: "no evidence", evidence: nil, want: 0},
		{
			name:     "one of three",
			evidence: evidenceOf([2]string{"frag-1", "data_fragment"}),
			want:     1.0 / 3.0,
		},
		{
			name: "complete",
			evidence: evidenceOf(
				[2]string{"frag-1", "data_fragment"},
				[2]string{"frag-2", "data_fragment"},
				[2]string{"wit-1", "testimony"},
			),
			want: 1,
		},
		{
			name: "no credit beyond requirement",
			evidence: evidenceOf(
				[2]string{"frag-1", "data_fragment"},
				[2]string{"frag-2", "data_fragment"},
				[2]string{"frag-3", "data_fragment"},
				[2]string{"frag-4", "data_fragment"},
			),
			want: 2.0 / 3.0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := resolution.Completeness(testCase(), tt.evidence)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 1.0)
		})
	}
}

func TestCompleteness_SpecificAllowlist(t *testing.T) {
	t.Parallel()

	c := testCase()
	c.RequiredEvidence = []models.RequiredEvidence{
		{Type: models.EvidenceTypeDataFragment, Count: 1, Specific: []string{"frag-sealed"}},
	}

	wrong := evidenceOf([2]string{"frag-1", "data_fragment"})
	assert.Zero(t, resolution.Completeness(c, wrong), "a non-allowlisted id must not satisfy a specific requirement")

	right := evidenceOf([2]string{"frag-sealed", "data_fragment"})
	assert.Equal(t, 1.0, resolution.Completeness(c, right))
}

func TestCompleteness_NoRequirements(t *testing.T) {
	t.Parallel()
	c := testCase()
	c.RequiredEvidence = nil
	assert.Equal(t, 1.0, resolution.Completeness(c, nil))
}

func TestMissingHints(t *testing.T) {
	t.Parallel()

	hints := resolution.MissingHints(testCase(), evidenceOf([2]string{"frag-1", "data_fragment"}))
	require.Len(t, hints, 2)
	assert.Contains(t, hints[0], "1 more")
	assert.Contains(t, hints[1], "Someone saw the terminal glow", "authored hint text is used when present")
}

func TestTwistConditions(t *testing.T) {
	t.Parallel()

	complete := evidenceOf(
		[2]string{"frag-1", "data_fragment"},
		[2]string{"frag-2", "data_fragment"},
		[2]string{"wit-1", "testimony"},
	)
	incomplete := complete[:2]

	tests := []struct {
		name        string
		evidence    []models.Evidence
		connections []models.EvidenceConnection
		want        bool
	}{
		{
			name:        "complete with case connection",
			evidence:    complete,
			connections: []models.EvidenceConnection{caseConnection("case-echo")},
			want:        true,
		},
		{
			name:        "incomplete with case connection",
			evidence:    incomplete,
			connections: []models.EvidenceConnection{caseConnection("case-echo")},
			want:        false,
		},
		{
			name:        "complete without case connection",
			evidence:    complete,
			connections: []models.EvidenceConnection{caseConnection("case-other")},
			want:        false,
		},
		{
			name:        "complete with rewardless connection",
			evidence:    complete,
			connections: []models.EvidenceConnection{{EvidenceIDs: [2]string{"a", "b"}}},
			want:        false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, resolution.TwistConditions(testCase(), tt.evidence, tt.connections))
		})
	}
}

func TestOutcome_Bands(t *testing.T) {
	t.Parallel()

	c := testCase()
	c.RequiredEvidence = []models.RequiredEvidence{{Type: models.EvidenceTypeDataFragment, Count: 10}}

	fragments := func(n int) []models.Evidence {
		var out []models.Evidence
		for i := 0; i < n; i++ {
			out = append(out, models.Evidence{ID: string(rune('a' + i)), Type: models.EvidenceTypeDataFragment, Rarity: models.RarityCommon})
		}
		return out
	}

	assert.Equal(t, models.OutcomeCold, resolution.Outcome(c, fragments(4), nil))
	assert.Equal(t, models.OutcomePartial, resolution.Outcome(c, fragments(5), nil))
	assert.Equal(t, models.OutcomePartial, resolution.Outcome(c, fragments(8), nil))
	assert.Equal(t, models.OutcomeSolved, resolution.Outcome(c, fragments(9), nil))
	assert.Equal(t, models.OutcomeSolved, resolution.Outcome(c, fragments(10), nil))
}

func TestOutcome_ColdCaseCannotBeSolved(t *testing.T) {
	t.Parallel()

	c := testCase()
	c.Status = models.CaseStatusCold
	complete := evidenceOf(
		[2]string{"frag-1", "data_fragment"},
		[2]string{"frag-2", "data_fragment"},
		[2]string{"wit-1", "testimony"},
	)

	assert.Equal(t, models.OutcomeCold, resolution.Outcome(c, complete, nil))

	// A twist still outranks the cold status when its conditions hold.
	twist := resolution.Outcome(c, complete, []models.EvidenceConnection{caseConnection("case-echo")})
	assert.Equal(t, models.OutcomeTwist, twist)
}

func TestRewards(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		outcome       models.Outcome
		wantXP        int
		wantFragments int
		wantEntityXP  int
		wantBonus     bool
		wantUnlocks   bool
	}{
		{name: "solved", outcome: models.OutcomeSolved, wantXP: 100, wantFragments: 55, wantEntityXP: 30, wantUnlocks: true},
		{name: "partial floors per field", outcome: models.OutcomePartial, wantXP: 60, wantFragments: 33, wantEntityXP: 18},
		{name: "cold", outcome: models.OutcomeCold, wantXP: 30, wantFragments: 16, wantEntityXP: 9},
		{name: "twist", outcome: models.OutcomeTwist, wantXP: 150, wantFragments: 82, wantEntityXP: 45, wantBonus: true, wantUnlocks: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rewards := resolution.Rewards(testCase(), tt.outcome)
			assert.Equal(t, tt.wantXP, rewards.XP)
			assert.Equal(t, tt.wantFragments, rewards.Fragments)
			assert.Equal(t, tt.wantEntityXP, rewards.EntityXP)
			if tt.wantBonus {
				assert.NotEmpty(t, rewards.BonusEvidence)
			} else {
				assert.Empty(t, rewards.BonusEvidence)
			}
			if tt.wantUnlocks {
				assert.NotEmpty(t, rewards.Unlocks)
			} else {
				assert.Empty(t, rewards.Unlocks)
			}
		})
	}
}

func TestResolve_ShortCircuit(t *testing.T) {
	t.Parallel()

	// One fragment out of {2 fragments, 1 testimony} is a third complete.
	result := resolution.Resolve(testCase(), evidenceOf([2]string{"frag-1", "data_fragment"}), nil, "it was the archive itself")

	assert.Equal(t, models.OutcomeCold, result.Outcome)
	assert.InDelta(t, 1.0/3.0, result.Completeness, 1e-9)
	assert.Len(t, result.MissingEvidence, 2)
	// Cold-tier rewards: floor(100*0.3), floor(55*0.3), floor(30*0.3).
	assert.Equal(t, 30, result.Rewards.XP)
	assert.Equal(t, 16, result.Rewards.Fragments)
	assert.Equal(t, 9, result.Rewards.EntityXP)
}

func TestResolve_Solved(t *testing.T) {
	t.Parallel()

	complete := evidenceOf(
		[2]string{"frag-1", "data_fragment"},
		[2]string{"frag-2", "data_fragment"},
		[2]string{"wit-1", "testimony"},
	)
	result := resolution.Resolve(testCase(), complete, nil, "the archive echoes")

	assert.Equal(t, models.OutcomeSolved, result.Outcome)
	assert.Equal(t, 1.0, result.Completeness)
	assert.Empty(t, result.MissingEvidence)
	// Solved rewards exactly equal the base rewards.
	assert.Equal(t, 100, result.Rewards.XP)
	assert.Equal(t, 55, result.Rewards.Fragments)
	assert.Equal(t, 30, result.Rewards.EntityXP)
	assert.Contains(t, result.RewardText, "+100 XP")
	assert.Contains(t, result.RewardText, "+55 Fragments")
	assert.Contains(t, result.RewardText, "+30 Entity XP")
	assert.Contains(t, result.RewardText, "Unlocked: deep-archive")
	assert.NotEmpty(t, result.Description)
}

func TestResolve_Twist(t *testing.T) {
	t.Parallel()

	complete := evidenceOf(
		[2]string{"frag-1", "data_fragment"},
		[2]string{"frag-2", "data_fragment"},
		[2]string{"wit-1", "testimony"},
	)
	result := resolution.Resolve(testCase(), complete, []models.EvidenceConnection{caseConnection("case-echo")}, "")

	assert.Equal(t, models.OutcomeTwist, result.Outcome)
	assert.Equal(t, 150, result.Rewards.XP)
	assert.Contains(t, result.RewardText, "Bonus evidence: frag-hidden")
}
