// Package sqlite is the persistent mock API backend. It keeps state across
// restarts of the mock server, which the in-memory backend cannot.
package sqlite

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/rs/zerolog"

	sqlite3 "github.com/mattn/go-sqlite3"
	sqldblogger "github.com/simukti/sqldb-logger"
	"github.com/simukti/sqldb-logger/logadapter/zerologadapter"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"taskapp/internal/mockapi/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB wraps the sql handle with the shared statement builder.
type DB struct {
	*sql.DB
	QueryBuilder *squirrel.StatementBuilderType
}

// Open opens the database at path, creating it and running pending
// migrations as needed. Queries are logged through logger at debug level.
// Use ":memory:" for a throwaway database.
func Open(path string, logger zerolog.Logger) (*DB, error) {
	dsn := "file:" + path + "?_foreign_keys=on"

	migrationDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database %s: %w", path, err)
	}
	if err := runMigrations(migrationDB); err != nil {
		migrationDB.Close()
		return nil, fmt.Errorf("migrate sqlite database %s: %w", path, err)
	}

	// An in-memory database vanishes with its last connection, so the
	// migrated handle must stay open. File-backed databases get a fresh
	// logging connection instead.
	var sqlDB *sql.DB
	if path == ":memory:" {
		sqlDB = migrationDB
		// More than one pooled connection would mean more than one
		// in-memory database.
		sqlDB.SetMaxOpenConns(1)
	} else {
		migrationDB.Close()
		sqlDB = sqldblogger.OpenDriver(dsn, &sqlite3.SQLiteDriver{}, zerologadapter.New(logger))
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	}

	queryBuilder := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)
	return &DB{DB: sqlDB, QueryBuilder: &queryBuilder}, nil
}

func runMigrations(db *sql.DB) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("create migration instance: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Store implements store.Store on a sqlite database.
type Store struct {
	db *DB
}

// NewStore opens the database at path and returns a Store over it.
func NewStore(path string, logger zerolog.Logger) (*Store, error) {
	db, err := Open(path, logger)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Tasks() store.TaskRepository { return NewTaskRepository(s.db) }
func (s *Store) Users() store.UserRepository { return NewUserRepository(s.db) }
func (s *Store) Close() error                { return s.db.Close() }
