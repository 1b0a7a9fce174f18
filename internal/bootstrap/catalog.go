// Copyright (c) 2026 Katalog. All rights reserved.

// Package bootstrap assembles the catalog store from configuration.
//
// Both the API server and the admin CLI start the same way: pick the static
// source, try the persistent backend, fall back to the snapshot when it is
// configured but unreachable.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/EarnestL/k-atalog/internal/core/catalog"
	"github.com/EarnestL/k-atalog/internal/platform/config"
	"github.com/EarnestL/k-atalog/internal/platform/migration"
	pgstore "github.com/EarnestL/k-atalog/internal/platform/postgres"
)

// Catalog is an assembled store plus the resources it holds.
type Catalog struct {
	Store    *catalog.Store
	Snapshot *catalog.SnapshotStore
	Source   catalog.Source

	// Pool is nil when the snapshot backend is serving.
	Pool *pgxpool.Pool
}

// Backend names the backend serving reads.
func (c *Catalog) Backend() string {
	if c.Pool != nil {
		return "postgres"
	}
	return "snapshot"
}

// Check confirms the active backend can answer.
func (c *Catalog) Check(ctx context.Context) error {
	if c.Pool != nil {
		return pgstore.Ping(ctx, c.Pool)
	}
	return c.Snapshot.EnsureLoaded(ctx)
}

// Close releases the pool, if any.
func (c *Catalog) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}

// Options tune [Open].
type Options struct {
	// RequirePersistent turns an unreachable database into an error instead
	// of a snapshot fallback.
	RequirePersistent bool
}

/*
Open builds the catalog store described by cfg.

Description: With a DATABASE_URL it connects, applies migrations and wraps
the pool in the document adapter. Any failure there logs a warning and falls
back to the snapshot unless opts.RequirePersistent is set. Seeding is left to
the caller.

Returns:
  - *Catalog: Store and owned resources
  - error: Only when RequirePersistent is set and the database is unusable
*/
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts Options) (*Catalog, error) {
	source := catalog.SourceFromPath(cfg.CatalogSourcePath)
	snapshot := catalog.NewSnapshotStore(source, logger)

	result := &Catalog{Snapshot: snapshot, Source: source}

	if cfg.PersistentBackendConfigured() {
		pool, err := openPersistent(ctx, cfg, logger)
		switch {
		case err == nil:
			result.Pool = pool
		case opts.RequirePersistent:
			return nil, err
		default:
			logger.Warn("persistent_backend_unavailable_using_snapshot", slog.Any("error", err))
		}
	}

	var persistent catalog.Repository
	if result.Pool != nil {
		persistent = catalog.NewPostgresStore(result.Pool, cfg.QueryTimeout)
	}
	result.Store = catalog.NewStore(snapshot, persistent, source, logger)

	logger.Info("catalog_backend_selected", slog.String("backend", result.Backend()))
	return result, nil
}

func openPersistent(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, err
	}

	if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply catalog schema: %w", err)
	}
	return pool, nil
}
