// Package store provides the SQLite-backed persistence layer: schema
// migrations, the order repository, and the unit-of-work implementation
// the pipeline commits and rolls back.
package store

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/artpar/relay/internal/core/pipeline"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps the database handle and opens units of work. It
// implements pipeline.UnitOfWorkFactory.
type Store struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// Open opens the SQLite database, runs embedded migrations, and returns
// a ready Store.
func Open(dsn string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sqlx.Open("sqlite3", dsn+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db, logger: logger.With("component", "store")}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying sqlx.DB, mainly for tests.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Begin opens a fresh unit of work backed by a database transaction.
func (s *Store) Begin(ctx context.Context) (pipeline.UnitOfWork, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	u := &UnitOfWork{tx: tx, logger: s.logger}
	if err := u.tracker.Begin(); err != nil {
		tx.Rollback()
		return nil, err
	}
	return u, nil
}

func runMigrations(db *sqlx.DB) error {
	driver, err := sqlite3.WithInstance(db.DB, &sqlite3.Config{NoTxWrap: true})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
