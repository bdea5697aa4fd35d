// Package storage opens the SQL database behind section repositories and
// applies the embedded goose migrations.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

// ErrUnsupportedDriver is returned for drivers other than sqlite and postgres.
var ErrUnsupportedDriver = errors.New("storage: unsupported driver")

// Driver names accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open connects to dsn and wraps the pool in a bun DB with the matching
// dialect. The connection is verified with a ping.
func Open(ctx context.Context, driver, dsn string) (*bun.DB, error) {
	var (
		sqlDB *sql.DB
		err   error
	)
	switch normalizeDriver(driver) {
	case DriverSQLite:
		sqlDB, err = sql.Open("sqlite3", dsn)
	case DriverPostgres:
		sqlDB, err = sql.Open("pgx", dsn)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
	if err != nil {
		return nil, fmt.Errorf("database open: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("database ping: %w", err)
	}
	return Wrap(sqlDB, driver)
}

// Wrap builds a bun DB over an existing pool. sqlite pools are limited to
// one connection so in-memory databases stay shared.
func Wrap(sqlDB *sql.DB, driver string) (*bun.DB, error) {
	switch normalizeDriver(driver) {
	case DriverSQLite:
		db := bun.NewDB(sqlDB, sqlitedialect.New())
		db.SetMaxOpenConns(1)
		return db, nil
	case DriverPostgres:
		return bun.NewDB(sqlDB, pgdialect.New()), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
}

// Migrate applies every pending migration for driver. migrations holds one
// directory per driver (sqlite/, postgres/) with goose SQL files. It returns
// the versions applied by this call.
func Migrate(ctx context.Context, db *bun.DB, driver string, migrations fs.FS) ([]int64, error) {
	var dialect goose.Dialect
	switch normalizeDriver(driver) {
	case DriverSQLite:
		dialect = goose.DialectSQLite3
	case DriverPostgres:
		dialect = goose.DialectPostgres
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}

	dir, err := fs.Sub(migrations, normalizeDriver(driver))
	if err != nil {
		return nil, fmt.Errorf("migrations dir: %w", err)
	}
	provider, err := goose.NewProvider(dialect, db.DB, dir)
	if err != nil {
		return nil, fmt.Errorf("goose provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return nil, fmt.Errorf("goose up: %w", err)
	}

	applied := make([]int64, 0, len(results))
	for _, result := range results {
		applied = append(applied, result.Source.Version)
	}
	return applied, nil
}

func normalizeDriver(driver string) string {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "sqlite", "sqlite3":
		return DriverSQLite
	case "postgres", "postgresql", "pgx", "pg":
		return DriverPostgres
	default:
		return ""
	}
}
