package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"taskdesk/internal/config"
	"taskdesk/internal/db"
	"taskdesk/internal/engine"
	"taskdesk/internal/migrate"
	"taskdesk/internal/store"
)

// OpenBackend opens the store backend named by cfg. The sqlite backend lives in the
// workspace and is migrated before use.
func OpenBackend(ctx context.Context, workspace string, cfg *config.Config) (store.Backend, error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return store.NewMemory(), nil
	case config.BackendRedis:
		prefix := cfg.Storage.Redis.Prefix
		if prefix == "" {
			prefix = store.DefaultRedisPrefix
		}
		r, err := store.NewRedis(cfg.Storage.Redis.URL, prefix)
		if err != nil {
			return nil, err
		}
		return r, nil
	case config.BackendSQLite, "":
		conn, err := db.Open(db.Config{Workspace: workspace})
		if err != nil {
			return nil, fmt.Errorf("open db: %w", err)
		}
		if err := migrate.Migrate(ctx, conn); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		return store.SQLite{DB: conn}, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// Open builds the engine for workspace and seeds the store before anything reads it.
func Open(ctx context.Context, workspace string, cfg *config.Config, log *zap.Logger) (*engine.Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = zap.NewNop()
	}
	b, err := OpenBackend(ctx, workspace, cfg)
	if err != nil {
		return nil, err
	}
	eng := engine.New(b, cfg, log)
	if eng.Seeder.SeedIfNeeded(ctx) {
		log.Info("workspace seeded with demo data", zap.String("backend", cfg.Storage.Backend))
	}
	return eng, nil
}
