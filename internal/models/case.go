package models

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/myrjola/entangled/internal/errors"
)

type CaseType string

const (
	CaseTypeMystery      CaseType = "mystery"
	CaseTypeRetrieval    CaseType = "retrieval"
	CaseTypeSurveillance CaseType = "surveillance"
	CaseTypeArchaeology  CaseType = "archaeology"
	CaseTypeCipher       CaseType = "cipher"
	CaseTypeAnomaly      CaseType = "anomaly"
)

var caseTypes = map[CaseType]bool{
	CaseTypeMystery:      true,
	CaseTypeRetrieval:    true,
	CaseTypeSurveillance: true,
	CaseTypeArchaeology:  true,
	CaseTypeCipher:       true,
	CaseTypeAnomaly:      true,
}

type CaseStatus string

const (
	CaseStatusAvailable  CaseStatus = "available"
	CaseStatusAccepted   CaseStatus = "accepted"
	CaseStatusInProgress CaseStatus = "in_progress"
	CaseStatusSolved     CaseStatus = "solved"
	CaseStatusPartial    CaseStatus = "partial"
	// CaseStatusFailed is declared but currently unreachable: no transition
	// produces it. Reserved for expiry without partial credit.
	CaseStatusFailed    CaseStatus = "failed"
	CaseStatusAbandoned CaseStatus = "abandoned"
	CaseStatusCold      CaseStatus = "cold"
)

var caseStatuses = map[CaseStatus]bool{
	CaseStatusAvailable:  true,
	CaseStatusAccepted:   true,
	CaseStatusInProgress: true,
	CaseStatusSolved:     true,
	CaseStatusPartial:    true,
	CaseStatusFailed:     true,
	CaseStatusAbandoned:  true,
	CaseStatusCold:       true,
}

type Outcome string

const (
	OutcomeSolved  Outcome = "solved"
	OutcomePartial Outcome = "partial"
	OutcomeCold    Outcome = "cold"
	OutcomeTwist   Outcome = "twist"
)

// StatusForOutcome maps a resolution outcome to the terminal case status.
// A twist still closes the case as solved; the outcome field keeps the twist.
func StatusForOutcome(o Outcome) CaseStatus {
	switch o {
	case OutcomeSolved, OutcomeTwist:
		return CaseStatusSolved
	case OutcomePartial:
		return CaseStatusPartial
	case OutcomeCold:
		return CaseStatusCold
	default:
		return CaseStatusCold
	}
}

// RequiredEvidence is one entry of a case's evidence checklist.
type RequiredEvidence struct {
	Type  EvidenceType `json:"type"`
	Count int          `json:"count"`
	// Specific restricts matches to these evidence ids when present.
	Specific []string `json:"specific,omitempty"`
	Hint     string   `json:"hint,omitempty"`
}

type CaseRewards struct {
	XP        int `json:"xp"`
	Fragments int `json:"fragments"`
	EntityXP  int `json:"entityXp"`
	// BonusEvidence is granted only on a twist outcome.
	BonusEvidence []string `json:"bonusEvidence,omitempty"`
	// Unlocks are granted on solved or twist outcomes.
	Unlocks []string `json:"unlocks,omitempty"`
}

// Case is a structured investigation task. Pool copies under the available
// prefix are immutable; acceptance copies one into the user's active list.
type Case struct {
	ID               string             `json:"id"`
	Title            string             `json:"title"`
	Description      string             `json:"description"`
	Briefing         string             `json:"briefing"`
	Type             CaseType           `json:"type"`
	Rarity           Rarity             `json:"rarity"`
	Status           CaseStatus         `json:"status"`
	RequiredEvidence []RequiredEvidence `json:"requiredEvidence"`
	Rewards          CaseRewards        `json:"rewards"`
	PostedAt         time.Time          `json:"postedAt"`
	ExpiresAt        *time.Time         `json:"expiresAt,omitempty"`
	AcceptedAt       *time.Time         `json:"acceptedAt,omitempty"`
	SolvedAt         *time.Time         `json:"solvedAt,omitempty"`
	Outcome          Outcome            `json:"outcome,omitempty"`
	Theory           string             `json:"theory,omitempty"`
	Source           string             `json:"source"`
}

// Valid reports whether a loaded case document passes its shape check.
func (c *Case) Valid() bool {
	if c.ID == "" || !caseTypes[c.Type] || !caseStatuses[c.Status] {
		return false
	}
	if _, ok := rarityScores[c.Rarity]; !ok {
		return false
	}
	for _, req := range c.RequiredEvidence {
		if !evidenceTypes[req.Type] || req.Count < 1 {
			return false
		}
	}
	return true
}

// Expired reports whether the case's optional expiry has passed.
func (c *Case) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && now.After(*c.ExpiresAt)
}

// MaxActiveCases bounds how many cases a user may run at once.
const MaxActiveCases = 3

// UserCaseState tracks a user's active and completed cases. History is kept
// most-recent-first.
type UserCaseState struct {
	Active      []Case    `json:"active"`
	History     []Case    `json:"history"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// NewUserCaseState creates an empty per-user case ledger.
func NewUserCaseState(now time.Time) *UserCaseState {
	return &UserCaseState{
		Active:      []Case{},
		History:     []Case{},
		LastUpdated: now,
	}
}

// Valid reports whether a loaded case state document passes its shape check.
func (s *UserCaseState) Valid() bool {
	for i := range s.Active {
		if !s.Active[i].Valid() {
			return false
		}
	}
	for i := range s.History {
		if !s.History[i].Valid() {
			return false
		}
	}
	return true
}

// Contains reports whether the case id appears in active or history.
func (s *UserCaseState) Contains(caseID string) bool {
	for i := range s.Active {
		if s.Active[i].ID == caseID {
			return true
		}
	}
	for i := range s.History {
		if s.History[i].ID == caseID {
			return true
		}
	}
	return false
}

// FindActive returns the active case with the given id.
func (s *UserCaseState) FindActive(caseID string) (*Case, error) {
	for i := range s.Active {
		if s.Active[i].ID == caseID {
			return &s.Active[i], nil
		}
	}
	return nil, errors.Wrap(ErrNotFound, fmt.Sprintf("active case %s not found", caseID), slog.String("case_id", caseID))
}

// Accept appends a copy of the pool case with status accepted. It fails when
// the case was already accepted or completed, or when the active list is full.
func (s *UserCaseState) Accept(poolCase Case, now time.Time) (*Case, error) {
	if s.Contains(poolCase.ID) {
		return nil, errors.Wrap(ErrConflict,
			fmt.Sprintf("case %s already accepted or completed", poolCase.ID),
			slog.String("case_id", poolCase.ID))
	}
	if len(s.Active) >= MaxActiveCases {
		return nil, errors.Wrap(ErrConflict,
			fmt.Sprintf("Maximum active cases (%d) reached", MaxActiveCases))
	}
	accepted := poolCase
	accepted.Status = CaseStatusAccepted
	acceptedAt := now
	accepted.AcceptedAt = &acceptedAt
	s.Active = append(s.Active, accepted)
	s.LastUpdated = now
	return &s.Active[len(s.Active)-1], nil
}

// UpdateActive replaces the active case with the same id.
func (s *UserCaseState) UpdateActive(c Case, now time.Time) error {
	for i := range s.Active {
		if s.Active[i].ID == c.ID {
			s.Active[i] = c
			s.LastUpdated = now
			return nil
		}
	}
	return errors.Wrap(ErrNotFound, fmt.Sprintf("active case %s not found", c.ID), slog.String("case_id", c.ID))
}

// Complete resolves an active case with the given outcome and moves it to the
// front of history with a resolution timestamp.
func (s *UserCaseState) Complete(caseID string, outcome Outcome, theory string, now time.Time) (*Case, error) {
	return s.retire(caseID, func(c *Case) {
		c.Status = StatusForOutcome(outcome)
		c.Outcome = outcome
		c.Theory = theory
		solvedAt := now
		c.SolvedAt = &solvedAt
	}, now)
}

// Abandon retires an active case as abandoned regardless of evidence progress.
func (s *UserCaseState) Abandon(caseID string, now time.Time) (*Case, error) {
	return s.retire(caseID, func(c *Case) {
		c.Status = CaseStatusAbandoned
		solvedAt := now
		c.SolvedAt = &solvedAt
	}, now)
}

func (s *UserCaseState) retire(caseID string, mutate func(*Case), now time.Time) (*Case, error) {
	for i := range s.Active {
		if s.Active[i].ID == caseID {
			retired := s.Active[i]
			mutate(&retired)
			s.Active = append(s.Active[:i], s.Active[i+1:]...)
			s.History = append([]Case{retired}, s.History...)
			s.LastUpdated = now
			return &s.History[0], nil
		}
	}
	return nil, errors.Wrap(ErrNotFound, fmt.Sprintf("active case %s not found", caseID), slog.String("case_id", caseID))
}

// CompletedCount counts resolved history entries; abandoned cases do not count.
func (s *UserCaseState) CompletedCount() int {
	count := 0
	for i := range s.History {
		if s.History[i].Status != CaseStatusAbandoned {
			count++
		}
	}
	return count
}

// SolvedCount counts history entries that closed as solved.
func (s *UserCaseState) SolvedCount() int {
	count := 0
	for i := range s.History {
		if s.History[i].Status == CaseStatusSolved {
			count++
		}
	}
	return count
}
