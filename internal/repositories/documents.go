package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/myrjola/entangled/internal/errors"
	"github.com/myrjola/entangled/internal/store"
)

// Document paths. Per-user state lives under users/<id>/; the global case pool
// lives under cases/available/.
func evidencePath(userID string) string {
	return fmt.Sprintf("users/%s/evidence", userID)
}

func caseStatePath(userID string) string {
	return fmt.Sprintf("users/%s/cases", userID)
}

func relationshipPath(userID, entityID string) string {
	return fmt.Sprintf("users/%s/relationship/%s", userID, entityID)
}

func channelStatePath(userID string) string {
	return fmt.Sprintf("users/%s/channels", userID)
}

func availableCasePath(caseID string) string {
	return fmt.Sprintf("cases/available/%s", caseID)
}

const availableCasePrefix = "cases/available/"

// loadDocument reads and decodes the document at path. Missing documents and
// documents failing their shape check both yield the default: the store heals
// itself by recreating state rather than surfacing a validation error.
func loadDocument[T any](
	ctx context.Context,
	s *store.Store,
	logger *slog.Logger,
	path string,
	valid func(*T) bool,
	defaultDoc func() *T,
) (*T, error) {
	raw, err := s.Get(ctx, path)
	if err != nil {
		return nil, errors.Wrap(err, "load document", slog.String("path", path))
	}
	if raw == nil {
		return defaultDoc(), nil
	}
	doc := new(T)
	if err = json.Unmarshal(raw, doc); err != nil {
		logger.LogAttrs(ctx, slog.LevelWarn, "replacing undecodable document",
			slog.String("path", path), errors.SlogError(err))
		return defaultDoc(), nil
	}
	if !valid(doc) {
		logger.LogAttrs(ctx, slog.LevelWarn, "replacing invalid document", slog.String("path", path))
		return defaultDoc(), nil
	}
	return doc, nil
}
