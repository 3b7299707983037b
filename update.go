package ormlite

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"strings"
)

// Update rewrites every non-primary-key column of obj, keyed by its
// primary key value. A table with no primary key cannot be targeted by
// Update and returns an UnsupportedOperationError; a table whose only
// columns are the primary key falls back to updating every column
// (there being nothing else to set), still matched on the primary key.
func Update(ctx context.Context, conn *Connection, td *TableDescriptor, obj any) (int64, error) {
	if err := conn.requireOpen(); err != nil {
		return 0, err
	}
	pk, ok := td.PrimaryKeyColumn()
	if !ok {
		return 0, &UnsupportedOperationError{Operation: "Update", Reason: fmt.Sprintf("table %q has no primary key", td.TableName)}
	}

	setCols := td.NonPrimaryKeyColumns()
	if len(setCols) == 0 {
		setCols = td.Columns
	}

	sqlText, args, err := buildUpdateSQL(td, pk, setCols, obj)
	if err != nil {
		return 0, err
	}

	stmt, err := conn.insertCache.getOrPrepare(reflect.TypeOf(obj), "update:"+td.TableName, func() (*sql.Stmt, error) {
		return conn.db.PrepareContext(ctx, sqlText)
	})
	if err != nil {
		return 0, fmt.Errorf("ormlite: prepare update for %q: %w", td.TableName, err)
	}

	s := newStatement(conn, stmt, sqlText, false)
	affected, execErr := s.executeNonQuery(ctx, args...)
	if execErr != nil {
		return 0, buildConstraintError(execErr, td, obj)
	}

	for _, rel := range td.Relations {
		if err := rel.WriteChildren(conn, obj); err != nil {
			return affected, fmt.Errorf("ormlite: write relation %q for %q: %w", rel.Name, td.TableName, err)
		}
	}

	if err := conn.notifier.dispatch(td, ActionUpdate, affected); err != nil {
		return affected, err
	}
	return affected, nil
}

func buildUpdateSQL(td *TableDescriptor, pk ColumnDescriptor, setCols []ColumnDescriptor, obj any) (string, []any, error) {
	setClauses := make([]string, len(setCols))
	args := make([]any, 0, len(setCols)+1)
	for i, c := range setCols {
		setClauses[i] = fmt.Sprintf("%s = ?", quoteIdent(c.Name))
		bound, err := bindArg(c, c.Get(obj))
		if err != nil {
			return "", nil, err
		}
		args = append(args, bound)
	}
	pkBound, err := bindArg(pk, pk.Get(obj))
	if err != nil {
		return "", nil, err
	}
	args = append(args, pkBound)

	sqlText := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?",
		quoteIdent(td.TableName), strings.Join(setClauses, ","), quoteIdent(pk.Name))
	return sqlText, args, nil
}
