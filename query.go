package ormlite

import (
	"context"
	"fmt"
)

// FindByKey loads the row whose primary key column equals key, decoding
// it into a fresh T via newItem. It reports false, nil if no row matches.
func FindByKey[T any](ctx context.Context, conn *Connection, td *TableDescriptor, newItem func() T, key any) (T, bool, error) {
	var zero T
	pk, ok := td.PrimaryKeyColumn()
	if !ok {
		return zero, false, &UnsupportedOperationError{Operation: "FindByKey", Reason: fmt.Sprintf("table %q has no primary key", td.TableName)}
	}
	bound, err := bindArg(pk, key)
	if err != nil {
		return zero, false, err
	}
	sqlText := fmt.Sprintf("SELECT * FROM %s WHERE %s = ?", quoteIdent(td.TableName), quoteIdent(pk.Name))
	rows, err := Query(ctx, conn, td, newItem, sqlText, bound)
	if err != nil {
		return zero, false, err
	}
	if len(rows) == 0 {
		return zero, false, nil
	}
	return rows[0], true, nil
}

// FindAll loads every row of the table.
func FindAll[T any](ctx context.Context, conn *Connection, td *TableDescriptor, newItem func() T) ([]T, error) {
	sqlText := fmt.Sprintf("SELECT * FROM %s", quoteIdent(td.TableName))
	return Query(ctx, conn, td, newItem, sqlText)
}

// Count returns the row count of the table.
func Count(ctx context.Context, conn *Connection, td *TableDescriptor) (int64, error) {
	return ExecuteScalar[int64](ctx, conn, fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteIdent(td.TableName)))
}
