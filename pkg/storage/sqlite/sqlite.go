// Package sqlite provides a SQLite-backed storage driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/storage"
	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/storage/sqldb"
)

const schema = `CREATE TABLE IF NOT EXISTS ` + storage.TableName + ` (
	id               TEXT PRIMARY KEY,
	user_id          TEXT,
	module_number    INTEGER,
	run_id           TEXT,
	problem_index    INTEGER,
	subproblem_index INTEGER,
	start_time       TEXT NOT NULL,
	end_time         TEXT,
	duration_seconds INTEGER
)`

// Dialect stores timestamps as RFC 3339 text.
var Dialect = sqldb.Dialect{
	Name:          "sqlite",
	Schema:        schema,
	TimestampText: func(column string) string { return column },
}

// Driver implements storage.Driver using SQLite.
type Driver struct {
	*sqldb.Driver
}

// NewDriver creates a new SQLite-backed store.
// The dbPath can be a file path or ":memory:" for an in-memory database.
func NewDriver(ctx context.Context, dbPath string) (*Driver, error) {
	// Open the database using the github.com/mattn/go-sqlite3 driver (registered as "sqlite3")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every :memory: connection is its own database.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	d := &Driver{Driver: &sqldb.Driver{DB: db, Dialect: Dialect}}
	if err := d.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}
