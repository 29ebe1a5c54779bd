// Package postgres implements the payment repositories on PostgreSQL,
// reached through a primary/replica resolver. Reads go to the replica pool,
// writes and transactional work to the primary.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bxcodec/dbresolver/v2"
	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/RafaelEmery/payments-engine/pkg/log"
)

const (
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 10
	defaultConnMaxLifetime = 30 * time.Minute
	defaultConnMaxIdleTime = 5 * time.Minute
)

// Config holds the connection inputs for the payments database.
type Config struct {
	PrimaryDSN string
	// ReplicaDSN may be empty; the primary then serves reads as well.
	ReplicaDSN string
	// MigrationsPath is a golang-migrate source URL (file://...). Empty
	// skips migrations.
	MigrationsPath string
	DatabaseName   string
	MaxOpenConns   int
	MaxIdleConns   int
}

// Database is the shared handle repositories are built on.
type Database struct {
	resolver dbresolver.DB
	primary  *sql.DB
	replica  *sql.DB
	logger   log.Logger
}

// Connect opens the primary and replica pools, wires the resolver, runs
// pending migrations, and verifies connectivity.
func Connect(ctx context.Context, cfg Config, logger log.Logger) (*Database, error) {
	if logger == nil {
		logger = log.NewNop()
	}

	if cfg.MaxOpenConns <= 0 {
		cfg.MaxOpenConns = defaultMaxOpenConns
	}

	if cfg.MaxIdleConns <= 0 {
		cfg.MaxIdleConns = defaultMaxIdleConns
	}

	primary, err := sql.Open("pgx", cfg.PrimaryDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open primary database: %w", err)
	}

	tunePool(primary, cfg)

	replicaDSN := cfg.ReplicaDSN
	if replicaDSN == "" {
		replicaDSN = cfg.PrimaryDSN
	}

	replica, err := sql.Open("pgx", replicaDSN)
	if err != nil {
		primary.Close()

		return nil, fmt.Errorf("failed to open replica database: %w", err)
	}

	tunePool(replica, cfg)

	resolver := dbresolver.New(
		dbresolver.WithPrimaryDBs(primary),
		dbresolver.WithReplicaDBs(replica),
		dbresolver.WithLoadBalancer(dbresolver.RoundRobinLB),
	)

	db := &Database{resolver: resolver, primary: primary, replica: replica, logger: logger}

	if err := primary.PingContext(ctx); err != nil {
		db.Close()

		return nil, fmt.Errorf("failed to ping primary database: %w", err)
	}

	if cfg.MigrationsPath != "" {
		if err := db.runMigrations(ctx, cfg); err != nil {
			db.Close()

			return nil, err
		}
	}

	logger.Log(ctx, log.LevelInfo, "connected to primary and replica databases")

	return db, nil
}

// Close releases both pools.
func (d *Database) Close() error {
	var errs []error

	if d.primary != nil {
		if err := d.primary.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close primary: %w", err))
		}
	}

	if d.replica != nil && d.replica != d.primary {
		if err := d.replica.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close replica: %w", err))
		}
	}

	return errors.Join(errs...)
}

// runMigrations applies pending schema migrations against the primary.
func (d *Database) runMigrations(ctx context.Context, cfg Config) error {
	driver, err := migratepg.WithInstance(d.primary, &migratepg.Config{DatabaseName: cfg.DatabaseName})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	migration, err := migrate.NewWithDatabaseInstance(cfg.MigrationsPath, cfg.DatabaseName, driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	if err := migration.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	d.logger.Log(ctx, log.LevelInfo, "database migrations up to date")

	return nil
}

func tunePool(db *sql.DB, cfg Config) {
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(defaultConnMaxLifetime)
	db.SetConnMaxIdleTime(defaultConnMaxIdleTime)
}
