// Package clidb opens the document store for the command line utilities.
package clidb

import (
	"context"
	"log/slog"
	"os"

	"github.com/myrjola/entangled/internal/sqlite"
	"github.com/myrjola/entangled/internal/store"
)

// Open connects to the sqlite database named by ENTANGLED_SQLITE_URL, falling
// back to the development database in the working directory.
func Open(ctx context.Context) (*store.Store, *slog.Logger, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	url := os.Getenv("ENTANGLED_SQLITE_URL")
	if url == "" {
		url = "./entangled.sqlite"
	}
	db, err := sqlite.NewDatabase(ctx, url, logger)
	if err != nil {
		return nil, nil, err
	}
	return store.New(db, logger), logger, nil
}
