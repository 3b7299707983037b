package ormlite

import (
	"context"
	"fmt"
)

// Delete removes the row identified by obj's primary key value. A table
// with no primary key is an UnsupportedOperationError, since there is no
// well-defined identity to delete by.
func Delete(ctx context.Context, conn *Connection, td *TableDescriptor, obj any) (int64, error) {
	pk, ok := td.PrimaryKeyColumn()
	if !ok {
		return 0, &UnsupportedOperationError{Operation: "Delete", Reason: fmt.Sprintf("table %q has no primary key", td.TableName)}
	}
	return DeleteByKey(ctx, conn, td, pk.Get(obj))
}

// DeleteByKey removes the row whose primary key column equals key,
// without requiring a live instance of the record.
func DeleteByKey(ctx context.Context, conn *Connection, td *TableDescriptor, key any) (int64, error) {
	if err := conn.requireOpen(); err != nil {
		return 0, err
	}
	pk, ok := td.PrimaryKeyColumn()
	if !ok {
		return 0, &UnsupportedOperationError{Operation: "DeleteByKey", Reason: fmt.Sprintf("table %q has no primary key", td.TableName)}
	}
	bound, err := bindArg(pk, key)
	if err != nil {
		return 0, err
	}
	sqlText := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", quoteIdent(td.TableName), quoteIdent(pk.Name))
	affected, err := conn.Execute(ctx, sqlText, bound)
	if err != nil {
		return 0, err
	}
	if err := conn.notifier.dispatch(td, ActionDelete, affected); err != nil {
		return affected, err
	}
	return affected, nil
}

// DeleteAll removes every row of the table unconditionally.
func DeleteAll(ctx context.Context, conn *Connection, td *TableDescriptor) (int64, error) {
	if err := conn.requireOpen(); err != nil {
		return 0, err
	}
	affected, err := conn.Execute(ctx, fmt.Sprintf("DELETE FROM %s", quoteIdent(td.TableName)))
	if err != nil {
		return 0, err
	}
	if err := conn.notifier.dispatch(td, ActionDelete, affected); err != nil {
		return affected, err
	}
	return affected, nil
}
