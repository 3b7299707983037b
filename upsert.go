package ormlite

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"strings"
)

// Upsert inserts obj, or on a primary-key conflict updates every
// non-primary-key column to obj's current values, via SQLite's "INSERT
// ... ON CONFLICT DO UPDATE SET". The table must declare a primary key:
// an upsert target with no conflict column to key off of is an
// UnsupportedOperationError. Dispatches ActionUpsert when rows changed.
func Upsert(ctx context.Context, conn *Connection, td *TableDescriptor, obj any) error {
	if err := conn.requireOpen(); err != nil {
		return err
	}
	pk, ok := td.PrimaryKeyColumn()
	if !ok {
		return &UnsupportedOperationError{Operation: "Upsert", Reason: fmt.Sprintf("table %q has no primary key to conflict on", td.TableName)}
	}

	// The conflict target must be among the inserted columns, so the
	// primary key is always written; a sentinel-zero auto-increment key
	// is bound as NULL so the engine assigns a rowid instead.
	cols := td.Columns
	updateCols := td.NonPrimaryKeyColumns()

	sqlText, args, err := buildUpsertSQL(td, pk, cols, updateCols, obj)
	if err != nil {
		return err
	}

	stmt, err := conn.insertCache.getOrPrepare(reflect.TypeOf(obj), "upsert:"+td.TableName, func() (*sql.Stmt, error) {
		return conn.db.PrepareContext(ctx, sqlText)
	})
	if err != nil {
		return fmt.Errorf("ormlite: prepare upsert for %q: %w", td.TableName, err)
	}

	s := newStatement(conn, stmt, sqlText, false)
	affected, execErr := s.executeNonQuery(ctx, args...)
	if execErr != nil {
		return buildConstraintError(execErr, td, obj)
	}

	if td.HasAutoIncPK {
		cur, err := bindArg(pk, pk.Get(obj))
		if err != nil {
			return err
		}
		n, isInt := cur.(int64)
		if cur == nil || (isInt && n == 0) {
			id, err := ExecuteScalar[int64](ctx, conn, "SELECT last_insert_rowid()")
			if err != nil {
				return fmt.Errorf("ormlite: read last_insert_rowid for %q: %w", td.TableName, err)
			}
			pk.Set(obj, id)
		}
	}

	for _, rel := range td.Relations {
		if err := rel.WriteChildren(conn, obj); err != nil {
			return fmt.Errorf("ormlite: write relation %q for %q: %w", rel.Name, td.TableName, err)
		}
	}

	return conn.notifier.dispatch(td, ActionUpsert, affected)
}

func buildUpsertSQL(td *TableDescriptor, pk ColumnDescriptor, cols, updateCols []ColumnDescriptor, obj any) (string, []any, error) {
	names := make([]string, len(cols))
	placeholders := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		names[i] = quoteIdent(c.Name)
		placeholders[i] = "?"
		bound, err := bindArg(c, c.Get(obj))
		if err != nil {
			return "", nil, err
		}
		if c.IsAutoIncrement {
			if n, ok := bound.(int64); ok && n == 0 {
				bound = nil
			}
		}
		args[i] = bound
	}

	if len(updateCols) == 0 {
		// Nothing but the primary key to write: degrade to a plain INSERT OR
		// IGNORE, since there is no column left for ON CONFLICT to update.
		sqlText := fmt.Sprintf("INSERT OR IGNORE INTO %s(%s) VALUES(%s)",
			quoteIdent(td.TableName), strings.Join(names, ","), strings.Join(placeholders, ","))
		return sqlText, args, nil
	}

	setClauses := make([]string, len(updateCols))
	for i, c := range updateCols {
		setClauses[i] = fmt.Sprintf("%s = excluded.%s", quoteIdent(c.Name), quoteIdent(c.Name))
	}

	sqlText := fmt.Sprintf(
		"INSERT INTO %s(%s) VALUES(%s) ON CONFLICT(%s) DO UPDATE SET %s",
		quoteIdent(td.TableName), strings.Join(names, ","), strings.Join(placeholders, ","),
		quoteIdent(pk.Name), strings.Join(setClauses, ","),
	)
	return sqlText, args, nil
}
