package database

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidTablePrefix is returned for table prefixes that are not plain SQL identifiers.
var ErrInvalidTablePrefix = errors.New("invalid table prefix")

var (
	tablePrefixPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,47}$`)

	createMapsTableSQL = `
CREATE TABLE IF NOT EXISTS %s_maps (
    filename      VARCHAR(64)   NOT NULL,
    detected      BIGINT        NOT NULL,
    forced_old    BOOLEAN       NOT NULL DEFAULT FALSE,
    likes         INTEGER       NOT NULL DEFAULT 0,
    dislikes      INTEGER       NOT NULL DEFAULT 0,

    PRIMARY KEY (filename)
);`
)

// ValidateTablePrefix checks that the prefix can be interpolated into table names.
func ValidateTablePrefix(prefix string) error {
	if !tablePrefixPattern.MatchString(prefix) {
		return fmt.Errorf("%w: %q", ErrInvalidTablePrefix, prefix)
	}
	return nil
}

// Migrate creates the map stats table.
func Migrate(db *sql.DB, tablePrefix string) error {
	if err := ValidateTablePrefix(tablePrefix); err != nil {
		return err
	}

	return createMapsTable(db, tablePrefix)
}

func createMapsTable(db *sql.DB, tablePrefix string) error {
	var query = fmt.Sprintf(createMapsTableSQL, tablePrefix)
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to create maps table: %w", err)
	}
	return nil
}
