package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/myrjola/entangled/internal/errors"
	"github.com/myrjola/entangled/internal/models"
	"github.com/myrjola/entangled/internal/store"
)

// CaseRepository is the case ledger: the global pool of available cases plus
// each user's active and history lists. Pool documents are immutable once
// posted; acceptance copies a case into the user's state, never moves it.
type CaseRepository struct {
	store  *store.Store
	logger *slog.Logger
}

func NewCaseRepository(s *store.Store, logger *slog.Logger) *CaseRepository {
	return &CaseRepository{
		store:  s,
		logger: logger.With("source", "CaseRepository"),
	}
}

// SeedPool posts cases into the available pool, overwriting same-id entries.
func (r *CaseRepository) SeedPool(ctx context.Context, cases []models.Case) error {
	for _, c := range cases {
		c.Status = models.CaseStatusAvailable
		if c.PostedAt.IsZero() {
			c.PostedAt = time.Now().UTC()
		}
		if err := r.store.Put(ctx, availableCasePath(c.ID), c); err != nil {
			return errors.Wrap(err, "seed case", slog.String("case_id", c.ID))
		}
	}
	return nil
}

// GetAvailable loads one case from the pool.
func (r *CaseRepository) GetAvailable(ctx context.Context, caseID string) (*models.Case, error) {
	raw, err := r.store.Get(ctx, availableCasePath(caseID))
	if err != nil {
		return nil, errors.Wrap(err, "load pool case", slog.String("case_id", caseID))
	}
	if raw == nil {
		return nil, errors.Wrap(models.ErrNotFound, fmt.Sprintf("case %s not found", caseID), slog.String("case_id", caseID))
	}
	var c models.Case
	if err = json.Unmarshal(raw, &c); err != nil {
		return nil, errors.Wrap(err, "decode pool case", slog.String("case_id", caseID))
	}
	if !c.Valid() {
		return nil, errors.Wrap(models.ErrNotFound, fmt.Sprintf("case %s not found", caseID), slog.String("case_id", caseID))
	}
	return &c, nil
}

// ListAvailable returns the case pool in path order.
func (r *CaseRepository) ListAvailable(ctx context.Context) ([]models.Case, error) {
	paths, err := r.store.List(ctx, availableCasePrefix)
	if err != nil {
		return nil, errors.Wrap(err, "list pool cases")
	}
	cases := make([]models.Case, 0, len(paths))
	for _, path := range paths {
		raw, err := r.store.Get(ctx, path)
		if err != nil {
			return nil, errors.Wrap(err, "load pool case", slog.String("path", path))
		}
		if raw == nil {
			continue
		}
		var c models.Case
		if err = json.Unmarshal(raw, &c); err != nil || !c.Valid() {
			r.logger.LogAttrs(ctx, slog.LevelWarn, "skipping invalid pool case", slog.String("path", path))
			continue
		}
		cases = append(cases, c)
	}
	return cases, nil
}

// State loads the user's case state, creating an empty one lazily.
func (r *CaseRepository) State(ctx context.Context, userID string) (*models.UserCaseState, error) {
	return loadDocument(ctx, r.store, r.logger, caseStatePath(userID),
		(*models.UserCaseState).Valid,
		func() *models.UserCaseState { return models.NewUserCaseState(time.Now().UTC()) },
	)
}

func (r *CaseRepository) save(ctx context.Context, userID string, state *models.UserCaseState) error {
	if err := r.store.Put(ctx, caseStatePath(userID), state); err != nil {
		return errors.Wrap(err, "save case state", slog.String("user_id", userID))
	}
	return nil
}

// Accept copies a pool case into the user's active list.
func (r *CaseRepository) Accept(ctx context.Context, userID, caseID string) (*models.Case, error) {
	poolCase, err := r.GetAvailable(ctx, caseID)
	if err != nil {
		return nil, err
	}
	state, err := r.State(ctx, userID)
	if err != nil {
		return nil, err
	}
	accepted, err := state.Accept(*poolCase, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if err = r.save(ctx, userID, state); err != nil {
		return nil, err
	}
	result := *accepted
	return &result, nil
}

// UpdateActive replaces an active case record, e.g. to advance its status.
func (r *CaseRepository) UpdateActive(ctx context.Context, userID string, c models.Case) error {
	state, err := r.State(ctx, userID)
	if err != nil {
		return err
	}
	if err = state.UpdateActive(c, time.Now().UTC()); err != nil {
		return err
	}
	return r.save(ctx, userID, state)
}

// Complete resolves an active case and moves it to the front of history.
func (r *CaseRepository) Complete(ctx context.Context, userID, caseID string, outcome models.Outcome, theory string) (*models.Case, error) {
	state, err := r.State(ctx, userID)
	if err != nil {
		return nil, err
	}
	completed, err := state.Complete(caseID, outcome, theory, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if err = r.save(ctx, userID, state); err != nil {
		return nil, err
	}
	result := *completed
	return &result, nil
}

// Abandon retires an active case regardless of evidence progress.
func (r *CaseRepository) Abandon(ctx context.Context, userID, caseID string) (*models.Case, error) {
	state, err := r.State(ctx, userID)
	if err != nil {
		return nil, err
	}
	abandoned, err := state.Abandon(caseID, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if err = r.save(ctx, userID, state); err != nil {
		return nil, err
	}
	result := *abandoned
	return &result, nil
}

// CheckExpiration transitions an active case past its expiry to cold. Cases
// without an expiry, or already cold, are left alone.
func (r *CaseRepository) CheckExpiration(ctx context.Context, userID, caseID string) (*models.Case, error) {
	state, err := r.State(ctx, userID)
	if err != nil {
		return nil, err
	}
	active, err := state.FindActive(caseID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if !active.Expired(now) || active.Status == models.CaseStatusCold {
		result := *active
		return &result, nil
	}
	expired := *active
	expired.Status = models.CaseStatusCold
	if err = state.UpdateActive(expired, now); err != nil {
		return nil, err
	}
	if err = r.save(ctx, userID, state); err != nil {
		return nil, err
	}
	return &expired, nil
}
