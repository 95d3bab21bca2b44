// Package app wires storage backends from configuration. It is shared by
// the server and the seed tool.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"dataroom/internal/auth"
	"dataroom/internal/cache"
	"dataroom/internal/config"
	"dataroom/internal/domain/repositories"
	dataroomRepo "dataroom/internal/domain/repositories/dataroom"
	"dataroom/internal/repository/memory"
	"dataroom/internal/repository/postgres"
	postgresDataroom "dataroom/internal/repository/postgres/dataroom"
	"dataroom/internal/storage"
)

// Stores holds the metadata repositories for one backend
type Stores struct {
	Datarooms  dataroomRepo.DataroomRepository
	Nodes      dataroomRepo.NodeRepository
	ShareLinks dataroomRepo.ShareLinkRepository
	TxManager  repositories.TransactionManager

	// Pool and Tables are nil for the memory backend
	Pool   *pgxpool.Pool
	Tables *postgres.TableNames
}

// Close releases the database pool, if any
func (s *Stores) Close() {
	if s.Pool != nil {
		s.Pool.Close()
	}
}

// OpenStores connects the configured metadata backend. With AUTO_MIGRATE
// the Postgres schema is created before returning.
func OpenStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Stores, error) {
	if cfg.UsesMemoryStore() {
		logger.Warn("using in-memory store; data is lost on restart")
		store := memory.NewStore()
		return &Stores{
			Datarooms:  store.Datarooms(),
			Nodes:      store.Nodes(),
			ShareLinks: store.ShareLinks(),
			TxManager:  store.TransactionManager(),
		}, nil
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required for store driver %q", cfg.StoreDriver)
	}

	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	tables := postgres.NewTableNames(cfg.TablePrefix)

	if cfg.AutoMigrate {
		if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		logger.Info("schema ready", "table_prefix", cfg.TablePrefix)
	}

	repoConfig := &postgres.RepositoryConfig{Pool: pool, Tables: tables, Logger: logger}
	logger.Info("database connected", "table_prefix", cfg.TablePrefix)

	return &Stores{
		Datarooms:  postgresDataroom.NewDataroomRepository(repoConfig),
		Nodes:      postgresDataroom.NewNodeRepository(repoConfig),
		ShareLinks: postgresDataroom.NewShareLinkRepository(repoConfig),
		TxManager:  postgres.NewTransactionManager(pool, logger),
		Pool:       pool,
		Tables:     tables,
	}, nil
}

// OpenBlobStore returns the configured blob backend
func OpenBlobStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repositories.BlobStore, error) {
	switch cfg.BlobDriver {
	case "minio":
		store, err := storage.ConnectMinIO(ctx, storage.MinIOConfig{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			Bucket:    cfg.MinIOBucket,
			UseSSL:    cfg.MinIOUseSSL,
		}, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "local", "":
		store, err := storage.NewLocalStore(cfg.UploadDir)
		if err != nil {
			return nil, err
		}
		logger.Info("local blob store", "dir", cfg.UploadDir)
		return store, nil
	default:
		return nil, fmt.Errorf("unknown blob driver %q", cfg.BlobDriver)
	}
}

// OpenShareCache connects Redis when REDIS_URL is set. Without it, or if
// Redis is unreachable at startup, share lookups go straight to the store.
func OpenShareCache(ctx context.Context, cfg *config.Config, logger *slog.Logger) (cache.ShareCache, func()) {
	if cfg.RedisURL == "" {
		return cache.NoopShareCache{}, func() {}
	}
	rdb, err := cache.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		logger.Warn("share cache disabled", "error", err)
		return cache.NoopShareCache{}, func() {}
	}
	logger.Info("share cache enabled", "ttl", cfg.ShareCacheTTL)
	return cache.NewRedisShareCache(rdb, cfg.ShareCacheTTL, logger), func() { rdb.Close() }
}

// NewVerifier picks JWKS verification when SUPABASE_URL is set and the
// shared-secret verifier otherwise
func NewVerifier(cfg *config.Config, logger *slog.Logger) (auth.TokenVerifier, error) {
	if cfg.JWKSURL != "" {
		v, err := auth.NewJWKSVerifier(cfg.JWKSURL, logger)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("either SUPABASE_URL or JWT_SECRET must be set")
	}
	v, err := auth.NewSecretVerifier(cfg.JWTSecret, logger)
	if err != nil {
		return nil, err
	}
	return v, nil
}
