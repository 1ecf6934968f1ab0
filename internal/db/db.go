package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

//go:embed migrations
var migrationsFS embed.FS

// DB is a *sql.DB that remembers which driver it was opened with, so stores
// can write one set of queries for both SQLite and Postgres.
type DB struct {
	*sql.DB
	Driver string
}

// Open connects to the database and applies any pending migrations. For the
// sqlite driver dsn may be a plain file path.
func Open(driver, dsn string) (*DB, error) {
	d, err := connect(driver, dsn)
	if err != nil {
		return nil, err
	}

	if err := Migrate(d); err != nil {
		if cerr := d.Close(); cerr != nil {
			return nil, fmt.Errorf("failed to run migrations: %w (also failed to close db: %v)", err, cerr)
		}
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return d, nil
}

// OpenForTesting returns a migrated, private in-memory SQLite database.
func OpenForTesting() (*DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	d, err := connect(DriverSQLite, dsn)
	if err != nil {
		return nil, err
	}
	// The in-memory database lives only as long as a connection to it does.
	d.SetMaxOpenConns(1)
	d.SetConnMaxLifetime(0)

	if err := Migrate(d); err != nil {
		_ = d.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return d, nil
}

func connect(driver, dsn string) (*DB, error) {
	switch driver {
	case DriverSQLite:
		dsn = sqliteDSN(dsn)
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if driver == DriverPostgres {
		conn.SetMaxOpenConns(10)
		conn.SetMaxIdleConns(10)
		conn.SetConnMaxLifetime(time.Hour)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: conn, Driver: driver}, nil
}

func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	return fmt.Sprintf("file:%s?cache=shared&mode=rwc&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)
}

// Migrate applies the embedded migrations for the database's dialect.
func Migrate(d *DB) error {
	dir := "migrations/sqlite"
	if d.Driver == DriverPostgres {
		dir = "migrations/postgres"
	}

	src, err := iofs.New(migrationsFS, dir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var drv database.Driver
	switch d.Driver {
	case DriverSQLite:
		drv, err = sqlitemigrate.WithInstance(d.DB, &sqlitemigrate.Config{})
	case DriverPostgres:
		drv, err = pgxmigrate.WithInstance(d.DB, &pgxmigrate.Config{})
	default:
		err = fmt.Errorf("unsupported database driver %q", d.Driver)
	}
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	// m.Close would close d.DB as well, so the migrator is simply dropped.
	m, err := migrate.NewWithInstance("iofs", src, d.Driver, drv)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// Rebind rewrites ? placeholders as $1, $2, ... for Postgres.
func (d *DB) Rebind(query string) string {
	if d.Driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
