package store

import (
	"fmt"

	"github.com/pressly/goose/v3"
)

// Dialect describes how the relational engine talks to one kind of
// database: which database/sql driver to open, which goose dialect tracks
// the migration history, where its migration files live and how to tell
// whether the users table already exists.
type Dialect struct {
	Driver        string
	goose         goose.Dialect
	migrationsDir string
	tableProbe    string
	// maxOpenConns caps the pool size when non-zero.
	maxOpenConns int
	// setup runs once on a freshly opened pool.
	setup []string
}

var (
	// Postgres is served by github.com/lib/pq.
	Postgres = Dialect{
		Driver:        "postgres",
		goose:         goose.DialectPostgres,
		migrationsDir: "migrations/postgres",
		tableProbe: `SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = current_schema() AND table_name = 'users'
		)`,
	}

	// SQLite is served by modernc.org/sqlite.
	SQLite = Dialect{
		Driver:        "sqlite",
		goose:         goose.DialectSQLite3,
		migrationsDir: "migrations/sqlite",
		tableProbe:    `SELECT EXISTS (SELECT 1 FROM sqlite_master WHERE type = 'table' AND name = 'users')`,
		// One writer per file: queue in the pool, not on SQLITE_BUSY.
		maxOpenConns: 1,
		setup: []string{
			"PRAGMA journal_mode=WAL",
			"PRAGMA busy_timeout=5000",
		},
	}
)

// DialectFor returns the dialect registered for a database/sql driver name.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case Postgres.Driver, "pq":
		return Postgres, nil
	case SQLite.Driver, "sqlite3":
		return SQLite, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported database driver %q", driver)
	}
}
