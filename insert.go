package ormlite

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"strings"
)

// Insert binds obj's insert columns (every column except an
// auto-increment primary key) and executes a cached INSERT statement for
// td's record type. If td.HasAutoIncPK, the engine-assigned rowid is
// written back into obj via the primary key column's Set. Relation
// writebacks run after the row itself is written, and a positive
// affected-row count triggers an ActionInsert change event.
func Insert(ctx context.Context, conn *Connection, td *TableDescriptor, obj any) error {
	if err := conn.requireOpen(); err != nil {
		return err
	}
	return insertWith(ctx, conn, td, obj, td.InsertColumns(), "")
}

// Replace behaves like Insert but uses "INSERT OR REPLACE" over every
// column including the primary key, letting the engine's own conflict
// resolution overwrite an existing row sharing that key value. A
// sentinel-zero auto-increment key is bound as NULL so the engine still
// assigns a fresh rowid. Dispatches ActionUpsert instead of ActionInsert.
func Replace(ctx context.Context, conn *Connection, td *TableDescriptor, obj any) error {
	if err := conn.requireOpen(); err != nil {
		return err
	}
	return insertWith(ctx, conn, td, obj, td.Columns, "OR REPLACE")
}

func insertWith(ctx context.Context, conn *Connection, td *TableDescriptor, obj any, cols []ColumnDescriptor, modifier string) error {
	sqlText, args, err := buildInsertSQL(td, cols, obj, modifier)
	if err != nil {
		return err
	}

	stmt, err := conn.insertCache.getOrPrepare(reflect.TypeOf(obj), "insert:"+modifier+":"+td.TableName, func() (*sql.Stmt, error) {
		return conn.db.PrepareContext(ctx, sqlText)
	})
	if err != nil {
		return fmt.Errorf("ormlite: prepare insert for %q: %w", td.TableName, err)
	}

	s := newStatement(conn, stmt, sqlText, false)
	affected, execErr := s.executeNonQuery(ctx, args...)
	if execErr != nil {
		return buildConstraintError(execErr, td, obj)
	}

	if td.HasAutoIncPK {
		id, err := ExecuteScalar[int64](ctx, conn, "SELECT last_insert_rowid()")
		if err != nil {
			return fmt.Errorf("ormlite: read last_insert_rowid for %q: %w", td.TableName, err)
		}
		pk, _ := td.PrimaryKeyColumn()
		pk.Set(obj, id)
	}

	for _, rel := range td.Relations {
		if err := rel.WriteChildren(conn, obj); err != nil {
			return fmt.Errorf("ormlite: write relation %q for %q: %w", rel.Name, td.TableName, err)
		}
	}

	action := ActionInsert
	if modifier != "" {
		action = ActionUpsert
	}
	return conn.notifier.dispatch(td, action, affected)
}

// buildInsertSQL renders "INSERT [modifier] INTO "<t>"(...) VALUES
// (?,...)" for cols bound from obj, degrading to "INSERT [modifier] INTO
// "<t>" DEFAULT VALUES" when cols is empty (an auto-increment-PK-only
// table).
func buildInsertSQL(td *TableDescriptor, cols []ColumnDescriptor, obj any, modifier string) (string, []any, error) {
	verb := "INSERT"
	if modifier != "" {
		verb = "INSERT " + modifier
	}
	if len(cols) == 0 {
		return fmt.Sprintf("%s INTO %s DEFAULT VALUES", verb, quoteIdent(td.TableName)), nil, nil
	}

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
			// A sentinel zero means the caller wants the engine to assign
			// the rowid; binding NULL is how SQLite is told that.
			if n, ok := bound.(int64); ok && n == 0 {
				bound = nil
			}
		}
		args[i] = bound
	}

	sqlText := fmt.Sprintf("%s INTO %s(%s) VALUES(%s)",
		verb, quoteIdent(td.TableName), strings.Join(names, ","), strings.Join(placeholders, ","))
	return sqlText, args, nil
}
