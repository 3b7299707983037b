package ormlite

import (
	"context"
	"database/sql"
	"fmt"
)

// Statement wraps a prepared *sql.Stmt with an explicit bind/step/decode
// lifecycle: a statement is created once, may be
// executed many times, and is disposed exactly once. The module never
// talks to raw SQLite bind/step/column APIs directly — database/sql and
// the registered driver already implement them; Statement is the layer
// that knows how to turn ColumnDescriptor-shaped Go values into
// positional parameters and back.
type Statement struct {
	conn    *Connection
	stmt    *sql.Stmt
	sqlText string
	owned   bool // true if Dispose should Close stmt
}

func newStatement(conn *Connection, stmt *sql.Stmt, sqlText string, owned bool) *Statement {
	return &Statement{conn: conn, stmt: stmt, sqlText: sqlText, owned: owned}
}

// Dispose releases the underlying prepared statement. A Statement backed
// by the shared insert-statement cache is not owned and Dispose is a
// no-op for it; the cache itself is drained on Connection.Close.
func (s *Statement) Dispose() error {
	if !s.owned || s.stmt == nil {
		return nil
	}
	err := s.stmt.Close()
	s.stmt = nil
	return err
}

// executeNonQuery steps the statement to completion and returns the
// number of rows it affected.
func (s *Statement) executeNonQuery(ctx context.Context, args ...any) (int64, error) {
	res, err := s.stmt.ExecContext(ctx, args...)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("ormlite: read rows affected for %q: %w", s.sqlText, err)
	}
	return affected, nil
}

// executeScalar steps the statement once and decodes column 0 of the
// first row into T. If the statement produces no row, T's zero value is
// returned.
func executeScalar[T any](ctx context.Context, s *Statement, args ...any) (T, error) {
	var zero T
	row := s.stmt.QueryRowContext(ctx, args...)
	var raw any
	if err := row.Scan(&raw); err != nil {
		if err == sql.ErrNoRows {
			return zero, nil
		}
		return zero, fmt.Errorf("ormlite: scalar query %q: %w", s.sqlText, err)
	}
	v, ok := any(raw).(T)
	if ok {
		return v, nil
	}
	converted, err := convertScalar[T](raw)
	if err != nil {
		return zero, fmt.Errorf("ormlite: decode scalar for %q: %w", s.sqlText, err)
	}
	return converted, nil
}

// convertScalar coerces a database/sql-produced value (int64, float64,
// string, []byte, bool, nil) into T when a direct type assertion fails —
// e.g. T is int but the driver returned int64.
func convertScalar[T any](raw any) (T, error) {
	var zero T
	if raw == nil {
		return zero, nil
	}
	switch any(zero).(type) {
	case int64:
		n, err := rawInt64(raw)
		return any(n).(T), err
	case int:
		n, err := rawInt64(raw)
		return any(int(n)).(T), err
	case float64:
		f, err := rawFloat64(raw)
		return any(f).(T), err
	case string:
		s, err := rawString(raw)
		return any(s).(T), err
	case bool:
		n, err := rawInt64(raw)
		return any(n != 0).(T), err
	case []byte:
		b, ok := raw.([]byte)
		if !ok {
			return zero, fmt.Errorf("expected []byte, got %T", raw)
		}
		return any(b).(T), nil
	default:
		return zero, fmt.Errorf("unsupported scalar type %T", zero)
	}
}

// rowMapper hydrates one result row into a fresh record of type T using a
// TableDescriptor's column Get/Set closures. Columns are mapped to result
// indices once per query (by name), then reused for every row.
type rowMapper[T any] struct {
	td      *TableDescriptor
	newItem func() T
}

// executeQuery steps through every row the statement produces, decoding
// each descriptor column by name and assigning it via Set, and returns
// the hydrated records.
func executeQuery[T any](ctx context.Context, s *Statement, m rowMapper[T], args ...any) ([]T, error) {
	rows, err := s.stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("ormlite: query %q: %w", s.sqlText, err)
	}
	defer rows.Close()

	colIndex, err := columnIndexByName(rows, m.td)
	if err != nil {
		return nil, err
	}

	var out []T
	for rows.Next() {
		item, err := scanRow(rows, m, colIndex)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ormlite: iterate rows for %q: %w", s.sqlText, err)
	}
	return out, nil
}

func columnIndexByName(rows *sql.Rows, td *TableDescriptor) (map[string]int, error) {
	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("ormlite: read result columns for %q: %w", td.TableName, err)
	}
	idx := make(map[string]int, len(names))
	for i, n := range names {
		idx[n] = i
	}
	return idx, nil
}

func scanRow[T any](rows *sql.Rows, m rowMapper[T], colIndex map[string]int) (T, error) {
	var zero T
	raws := make([]any, len(colIndex))
	ptrs := make([]any, len(raws))
	for i := range raws {
		ptrs[i] = &raws[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return zero, fmt.Errorf("ormlite: scan row for %q: %w", m.td.TableName, err)
	}

	item := m.newItem()
	for _, c := range m.td.Columns {
		i, ok := colIndex[c.Name]
		if !ok {
			continue
		}
		v, err := decodeColumn(m.td.TableName, c, raws[i])
		if err != nil {
			return zero, err
		}
		c.Set(item, v)
	}
	return item, nil
}
