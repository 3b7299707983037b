package ormlite

import (
	"fmt"
	"time"
)

// decodeColumn converts a raw value scanned from a result row (as produced
// by database/sql: int64, float64, string, []byte, bool, or nil) into the
// Go representation a ColumnDescriptor's Set closure expects.
//
// Decoding contract: integer→bool is value != 0; text→date uses the
// configured format; a NULL column landing in a non-nullable target field
// is a DataIntegrity error.
func decodeColumn(table string, c ColumnDescriptor, raw any) (any, error) {
	if raw == nil {
		if c.IsNullable {
			return nil, nil
		}
		return nil, &DataIntegrityError{Table: table, Column: c.Name, Reason: "NULL value for non-nullable column"}
	}

	if c.IsTime {
		return decodeTime(table, c, raw)
	}
	if c.IsBool {
		n, err := rawInt64(raw)
		if err != nil {
			return nil, &DataIntegrityError{Table: table, Column: c.Name, Reason: err.Error()}
		}
		return n != 0, nil
	}

	switch c.Storage {
	case StorageInteger:
		n, err := rawInt64(raw)
		if err != nil {
			return nil, &DataIntegrityError{Table: table, Column: c.Name, Reason: err.Error()}
		}
		return n, nil
	case StorageReal:
		f, err := rawFloat64(raw)
		if err != nil {
			return nil, &DataIntegrityError{Table: table, Column: c.Name, Reason: err.Error()}
		}
		return f, nil
	case StorageText:
		s, err := rawString(raw)
		if err != nil {
			return nil, &DataIntegrityError{Table: table, Column: c.Name, Reason: err.Error()}
		}
		return s, nil
	case StorageBlob:
		b, ok := raw.([]byte)
		if !ok {
			return nil, &DataIntegrityError{Table: table, Column: c.Name, Reason: fmt.Sprintf("expected []byte column value, got %T", raw)}
		}
		return b, nil
	default:
		return raw, nil
	}
}

func decodeTime(table string, c ColumnDescriptor, raw any) (any, error) {
	if c.Storage == StorageInteger {
		n, err := rawInt64(raw)
		if err != nil {
			return nil, &DataIntegrityError{Table: table, Column: c.Name, Reason: err.Error()}
		}
		return time.Unix(n, 0).UTC(), nil
	}
	s, err := rawString(raw)
	if err != nil {
		return nil, &DataIntegrityError{Table: table, Column: c.Name, Reason: err.Error()}
	}
	t, parseErr := time.Parse(time.RFC3339, s)
	if parseErr != nil {
		return nil, &DataIntegrityError{Table: table, Column: c.Name, Reason: fmt.Sprintf("malformed ISO-8601 time %q: %v", s, parseErr)}
	}
	return t.UTC(), nil
}

func rawInt64(raw any) (int64, error) {
	switch n := raw.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case float64:
		return int64(n), nil
	case []byte:
		var v int64
		if _, err := fmt.Sscanf(string(n), "%d", &v); err != nil {
			return 0, fmt.Errorf("expected integer column value, got %q", string(n))
		}
		return v, nil
	case bool:
		if n {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("expected integer column value, got %T", raw)
	}
}

func rawFloat64(raw any) (float64, error) {
	switch f := raw.(type) {
	case float64:
		return f, nil
	case float32:
		return float64(f), nil
	case int64:
		return float64(f), nil
	case []byte:
		var v float64
		if _, err := fmt.Sscanf(string(f), "%g", &v); err != nil {
			return 0, fmt.Errorf("expected real column value, got %q", string(f))
		}
		return v, nil
	default:
		return 0, fmt.Errorf("expected real column value, got %T", raw)
	}
}

func rawString(raw any) (string, error) {
	switch s := raw.(type) {
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	default:
		return "", fmt.Errorf("expected text column value, got %T", raw)
	}
}
