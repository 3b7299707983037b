package ormlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// MigrationResult reports whether MigrateTable found an existing table
// (Migrated, even when the diff was empty) or created one from scratch
// (Created).
type MigrationResult int

const (
	Created MigrationResult = iota
	Migrated
)

func (r MigrationResult) String() string {
	if r == Created {
		return "created"
	}
	return "migrated"
}

// readExistingColumns reads PRAGMA table_info("<name>") and returns the
// set of existing column names, lower-cased for case-insensitive diffing.
func readExistingColumns(ctx context.Context, db *sql.DB, tableName string) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info(%s)`, quoteIdent(tableName)))
	if err != nil {
		return nil, fmt.Errorf("ormlite: read table_info for %q: %w", tableName, err)
	}
	defer rows.Close()

	cols := map[string]bool{}
	for rows.Next() {
		var (
			cid       int
			name      string
			ctype     string
			notNull   int
			dfltValue any
			pk        int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dfltValue, &pk); err != nil {
			return nil, fmt.Errorf("ormlite: scan table_info for %q: %w", tableName, err)
		}
		cols[strings.ToLower(name)] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ormlite: iterate table_info for %q: %w", tableName, err)
	}
	return cols, nil
}

// MigrateTable reconciles td's schema against conn's database: it creates
// the table if absent, or additively reconciles columns and indices if
// present. See migrateTable for the column-diff semantics.
func MigrateTable(ctx context.Context, conn *Connection, td *TableDescriptor) (MigrationResult, error) {
	if err := conn.requireOpen(); err != nil {
		return 0, err
	}
	return migrateTable(ctx, conn.db, td)
}

// migrateTable reconciles td against an existing table by additive
// migration: every descriptor column missing from the table is added via
// ALTER TABLE ADD COLUMN. Columns are never dropped, renamed, or retyped.
// Returns Created if the table did not exist before this call, Migrated
// otherwise (even when the diff turns out to be empty).
func migrateTable(ctx context.Context, db *sql.DB, td *TableDescriptor) (MigrationResult, error) {
	existed, err := tableExists(ctx, db, td.TableName)
	if err != nil {
		return 0, err
	}
	if !existed {
		if _, err := db.ExecContext(ctx, buildCreateTableSQL(td)); err != nil {
			return 0, fmt.Errorf("ormlite: create table %q: %w", td.TableName, err)
		}
		if err := createIndices(ctx, db, td); err != nil {
			return 0, err
		}
		return Created, nil
	}

	existing, err := readExistingColumns(ctx, db, td.TableName)
	if err != nil {
		return 0, err
	}
	for _, c := range td.Columns {
		if existing[strings.ToLower(c.Name)] {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", quoteIdent(td.TableName), c.SQLDeclaration())
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return 0, fmt.Errorf("ormlite: add column %s.%s: %w", td.TableName, c.Name, err)
		}
	}
	if err := createIndices(ctx, db, td); err != nil {
		return 0, err
	}
	return Migrated, nil
}

// DropTable removes td's table entirely, if it exists. Dropping is the
// one destructive schema operation the library offers; migration itself
// never removes anything.
func DropTable(ctx context.Context, conn *Connection, td *TableDescriptor) error {
	if err := conn.requireOpen(); err != nil {
		return err
	}
	if _, err := conn.db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteIdent(td.TableName))); err != nil {
		return fmt.Errorf("ormlite: drop table %q: %w", td.TableName, err)
	}
	return nil
}

func createIndices(ctx context.Context, db *sql.DB, td *TableDescriptor) error {
	stmts, err := buildIndexSQL(td)
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ormlite: create index on %q: %w", td.TableName, err)
		}
	}
	return nil
}

func tableExists(ctx context.Context, db *sql.DB, tableName string) (bool, error) {
	var name string
	err := db.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, tableName,
	).Scan(&name)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("ormlite: check table %q exists: %w", tableName, err)
	}
	return true, nil
}
