package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/myrjola/entangled/internal/ai"
	"github.com/myrjola/entangled/internal/broker"
	"github.com/myrjola/entangled/internal/errors"
	"github.com/myrjola/entangled/internal/logging"
	"github.com/myrjola/entangled/internal/models"
	"github.com/myrjola/entangled/internal/repositories"
	"github.com/myrjola/entangled/internal/sqlite"
	"github.com/myrjola/entangled/internal/store"
)

type application struct {
	logger         *slog.Logger
	aiClient       ai.Client
	sessionManager *scs.SessionManager
	streams        *broker.StreamBroker
	entityID       string
	evidence       *repositories.EvidenceRepository
	cases          *repositories.CaseRepository
	relationships  *repositories.RelationshipRepository
	channels       *repositories.ChannelRepository
}

type config struct {
	Addr      string `env:"ENTANGLED_ADDR" envDefault:"localhost:4000"`
	SqliteURL string `env:"ENTANGLED_SQLITE_URL" envDefault:"./entangled.sqlite"`
	EntityID  string `env:"ENTANGLED_ENTITY_ID" envDefault:"whisper"`
	OpenAIKey string `env:"OPENAI_API_KEY"`
	// SeedFile optionally points to a JSON array of cases to post into the
	// available pool on startup.
	SeedFile string `env:"ENTANGLED_SEED_FILE"`
}

func main() {
	loggerHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: true,
	})
	logger := slog.New(logging.NewContextHandler(loggerHandler))

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Error(err.Error())
		os.Exit(1)
	}

	if err := run(context.Background(), logger, os.Environ()); err != nil {
		logger.LogAttrs(context.Background(), slog.LevelError, "server failed", errors.SlogError(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, environ []string) error {
	var cfg config
	envMap := make(map[string]string, len(environ))
	for _, kv := range environ {
		if key, value, ok := strings.Cut(kv, "="); ok {
			envMap[key] = value
		}
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: envMap}); err != nil {
		return errors.Wrap(err, "parse config")
	}

	db, err := sqlite.NewDatabase(ctx, cfg.SqliteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open database")
	}
	defer func() {
		_ = db.Close()
	}()

	sessionManager := scs.New()
	sessionManager.Store = sqlite3store.NewWithCleanupInterval(db.ReadWrite.DB, 24*time.Hour)
	sessionManager.Lifetime = 12 * time.Hour

	documents := store.New(db, logger)
	evidence := repositories.NewEvidenceRepository(documents, logger)
	cases := repositories.NewCaseRepository(documents, logger)
	relationships := repositories.NewRelationshipRepository(documents, logger)
	channels := repositories.NewChannelRepository(documents, relationships, cases, logger)

	if cfg.SeedFile != "" {
		if err = seedCasePool(ctx, cases, cfg.SeedFile); err != nil {
			return errors.Wrap(err, "seed case pool", slog.String("seed_file", cfg.SeedFile))
		}
	}

	streams := broker.NewStreamBroker()
	go streams.Start()
	defer streams.Stop()

	app := application{
		logger:         logger,
		aiClient:       ai.NewClient(cfg.OpenAIKey),
		sessionManager: sessionManager,
		streams:        streams,
		entityID:       cfg.EntityID,
		evidence:       evidence,
		cases:          cases,
		relationships:  relationships,
		channels:       channels,
	}

	return app.configureAndStartServer(ctx, cfg.Addr)
}

func seedCasePool(ctx context.Context, cases *repositories.CaseRepository, seedFile string) error {
	data, err := os.ReadFile(seedFile)
	if err != nil {
		return errors.Wrap(err, "read seed file")
	}
	var pool []models.Case
	if err = json.Unmarshal(data, &pool); err != nil {
		return errors.Wrap(err, "decode seed file")
	}
	return cases.SeedPool(ctx, pool)
}
