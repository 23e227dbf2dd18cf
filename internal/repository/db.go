package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	gormpg "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/campuscerts/cert-tracker/internal/common"
	"github.com/campuscerts/cert-tracker/internal/entity"
)

// Open connects to the configured database. With a postgres DSN it builds a
// pgx pool and hands the pooled connection to gorm; without one it falls back
// to a local sqlite file, which is the single-host deployment mode.
func Open(ctx context.Context, cfg common.DatabaseConfig, log *slog.Logger) (*gorm.DB, *pgxpool.Pool, error) {
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}

	if cfg.DSN == "" {
		log.Info("opening sqlite database", "path", cfg.SQLitePath)
		db, err := gorm.Open(sqlite.Open(cfg.SQLitePath), gcfg)
		if err != nil {
			log.Error("failed to open sqlite database", "error", err)
			return nil, nil, err
		}
		return db, nil, nil
	}

	log.Info("connecting to database", "dsn", cfg.DSN)
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		log.Error("failed to parse database config", "error", err)
		return nil, nil, err
	}

	pc.MaxConns = cfg.MaxConns
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "cert-tracker"
	if cfg.StatementTimeout > 0 {
		pc.ConnConfig.RuntimeParams["statement_timeout"] = cfg.StatementTimeout.String()
	}

	dialCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(dialCtx, pc)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		return nil, nil, err
	}

	// Wrap the pool as *sql.DB for gorm
	db, err := gorm.Open(gormpg.New(gormpg.Config{Conn: stdlib.OpenDBFromPool(pool)}), gcfg)
	if err != nil {
		pool.Close()
		log.Error("failed to initialize orm", "error", err)
		return nil, nil, err
	}

	log.Info("successfully connected to database")
	return db, pool, nil
}

// Migrate creates or updates the schema and seeds the config rows the core
// reads on every mutation.
func Migrate(ctx context.Context, db *gorm.DB, log *slog.Logger) error {
	log.Info("running schema migration")
	err := db.WithContext(ctx).AutoMigrate(
		&entity.User{},
		&entity.UploadedFile{},
		&entity.Certificate{},
		&entity.SystemConfig{},
	)
	if err != nil {
		log.Error("schema migration failed", "error", err)
		return err
	}

	seed := []entity.SystemConfig{
		{Key: entity.ConfigKeySubmissionDeadline, Value: "", Description: "certificate submission deadline, empty means open"},
		{Key: entity.ConfigKeyAPIProvider, Value: "glm", Description: "vision recognition provider"},
	}
	for _, row := range seed {
		res := db.WithContext(ctx).
			Where(entity.SystemConfig{Key: row.Key}).
			Attrs(row).
			FirstOrCreate(&entity.SystemConfig{})
		if res.Error != nil {
			log.Error("config seed failed", "key", row.Key, "error", res.Error)
			return res.Error
		}
	}
	log.Info("schema migration complete")
	return nil
}

// Close closes the database connections gracefully.
func Close(db *gorm.DB, pool *pgxpool.Pool, log *slog.Logger) {
	log.Info("closing database connections")
	if pool != nil {
		pool.Close()
	}
	if db != nil {
		if sqlDB, err := db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				log.Error("failed to close database handle", "error", err)
			}
		}
	}
	log.Info("database connections closed")
}

// HealthCheck pings the database to catch DSN issues early.
func HealthCheck(ctx context.Context, db *gorm.DB, timeout time.Duration, log *slog.Logger) error {
	log.Debug("pinging database")
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return err
	}
	log.Debug("database ping successful")
	return nil
}
