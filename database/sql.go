package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"nba-predictions-go/logging"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id         TEXT PRIMARY KEY,
		username   TEXT NOT NULL UNIQUE,
		email      TEXT NOT NULL UNIQUE,
		password   TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS predictions (
		id             TEXT PRIMARY KEY,
		user_id        TEXT NOT NULL DEFAULT '',
		username       TEXT NOT NULL DEFAULT '',
		team_name      TEXT NOT NULL,
		opponent       TEXT NOT NULL,
		bet_type       TEXT NOT NULL,
		actual_outcome BOOLEAN NOT NULL,
		outcome        BOOLEAN,
		created_at     TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_predictions_user ON predictions (user_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_predictions_team ON predictions (team_name, created_at)`,
}

// SQLDB is a database/sql handle for either Postgres (lib/pq) or SQLite (modernc)
type SQLDB struct {
	conn   *sql.DB
	driver string
}

// OpenSQL connects with the named driver and applies the schema
func OpenSQL(ctx context.Context, driver, dsn string) (*SQLDB, error) {
	if driver != "postgres" && driver != "sqlite" {
		return nil, fmt.Errorf("unsupported SQL driver %q", driver)
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == "sqlite" {
		// a single connection keeps ":memory:" databases shared and serialises writers
		conn.SetMaxOpenConns(1)
	}

	db := &SQLDB{conn: conn, driver: driver}
	if err := db.migrate(ctx); err != nil {
		conn.Close()
		return nil, err
	}

	logging.WithPrefix("SQL").Infof("Connected to %s store", driver)
	return db, nil
}

func (db *SQLDB) migrate(ctx context.Context) error {
	ctx, cancel := WithLongTimeout(ctx)
	defer cancel()

	for _, stmt := range schemaStatements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// Close closes the underlying connection pool
func (db *SQLDB) Close() error {
	return db.conn.Close()
}

// rebind rewrites "?" placeholders into "$n" for Postgres
func (db *SQLDB) rebind(query string) string {
	if db.driver != "postgres" {
		return query
	}
	var b strings.Builder
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

// isUniqueViolation recognises unique constraint errors from both drivers
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}
