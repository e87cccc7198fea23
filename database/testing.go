package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// PostgresURLEnv names the variable holding the Postgres URL used by tests.
const PostgresURLEnv = "MAPCYCLE_TEST_POSTGRES_URL"

// TestingT is an interface for testing compatibility.
type TestingT interface {
	Logf(format string, args ...any)
	FailNow()
	SkipNow()
	TempDir() string
	Cleanup(func())
}

// SetupTestDatabase creates a SQLite database in a fresh file.
func SetupTestDatabase(t TestingT) *sql.DB {
	var path = filepath.Join(t.TempDir(), fmt.Sprintf("test_%s.db", uuid.New().String()[0:8]))

	conn, err := sql.Open(DriverSQLite, path)
	if err != nil {
		t.Logf("failed to open sqlite database: %v", err)
		t.FailNow()
	}
	conn.SetMaxOpenConns(1)

	t.Cleanup(func() {
		_ = conn.Close()
	})

	return conn
}

// SetupPostgresTestDatabase creates a Postgres connection bound to an isolated
// schema. The test is skipped when MAPCYCLE_TEST_POSTGRES_URL is not set.
func SetupPostgresTestDatabase(t TestingT) *sql.DB {
	var connURL = os.Getenv(PostgresURLEnv)
	if connURL == "" {
		t.Logf("%s is not set, skipping postgres test", PostgresURLEnv)
		t.SkipNow()
	}

	var schema = fmt.Sprintf("test_%s", uuid.New().String()[0:8])

	// First, connect to create the schema
	conn, err := sql.Open(DriverPostgres, connURL)
	if err != nil {
		t.Logf("failed to connect to database. Is your local database running?: %v", err)
		t.FailNow()
	}

	_, err = conn.Exec("CREATE SCHEMA IF NOT EXISTS " + schema)
	if err != nil {
		t.Logf("Failed to create schema %s", schema)
		t.Logf("Error: %s", err)
		t.FailNow()
	}

	// Close the initial connection
	conn.Close()

	// Create a new connection with the schema in the connection string
	var separator = "?"
	if strings.Contains(connURL, "?") {
		separator = "&"
	}
	conn, err = sql.Open(DriverPostgres, connURL+separator+"search_path="+schema)
	if err != nil {
		t.Logf("failed to connect to database with schema: %v", err)
		t.FailNow()
	}

	t.Cleanup(func() {
		_ = conn.Close()
	})

	return conn
}
