package ormlite

import (
	"fmt"
	"time"
)

// bindArg converts the value returned by a ColumnDescriptor's Get closure
// into a value database/sql can bind as a positional parameter. Parameter
// type dispatch covers the supported storage families: integer
// families (signed/unsigned 8/16/32/64), floats (32/64), text, blob,
// bool (as 0/1), date/time (ISO-8601 text or Unix ticks), decimal/money
// (left as text to preserve precision), enumerations (int or text per
// descriptor), and null.
func bindArg(c ColumnDescriptor, v any) (any, error) {
	if v == nil {
		return nil, nil
	}

	if c.IsTime {
		t, ok := v.(time.Time)
		if !ok {
			return nil, &DataIntegrityError{Column: c.Name, Reason: fmt.Sprintf("expected time.Time, got %T", v)}
		}
		if c.Storage == StorageInteger && c.TimeAsTicks {
			return t.UTC().Unix(), nil
		}
		return t.UTC().Format(time.RFC3339), nil
	}

	if c.IsBool {
		b, ok := v.(bool)
		if !ok {
			return nil, &DataIntegrityError{Column: c.Name, Reason: fmt.Sprintf("expected bool, got %T", v)}
		}
		if b {
			return int64(1), nil
		}
		return int64(0), nil
	}

	switch c.Storage {
	case StorageInteger:
		return toInt64(c, v)
	case StorageReal:
		return toFloat64(c, v)
	case StorageText:
		return toText(c, v)
	case StorageBlob:
		b, ok := v.([]byte)
		if !ok {
			return nil, &DataIntegrityError{Column: c.Name, Reason: fmt.Sprintf("expected []byte, got %T", v)}
		}
		return b, nil
	default:
		return v, nil
	}
}

func toInt64(c ColumnDescriptor, v any) (any, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint:
		return int64(n), nil
	case uint8:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case uint64:
		return int64(n), nil
	case string:
		// enum stored by caller as its string label, but column wants the
		// integer ordinal form: not our job to look up — caller's Get
		// should already hand us the ordinal in this case.
		return nil, &DataIntegrityError{Column: c.Name, Reason: "expected an integer-convertible value, got string; use StorageText if the column stores labels"}
	default:
		return nil, &DataIntegrityError{Column: c.Name, Reason: fmt.Sprintf("expected integer-convertible value, got %T", v)}
	}
}

func toFloat64(c ColumnDescriptor, v any) (any, error) {
	switch n := v.(type) {
	case float32:
		return float64(n), nil
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return nil, &DataIntegrityError{Column: c.Name, Reason: fmt.Sprintf("expected float-convertible value, got %T", v)}
	}
}

func toText(c ColumnDescriptor, v any) (any, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case fmt.Stringer:
		return s.String(), nil
	default:
		return nil, &DataIntegrityError{Column: c.Name, Reason: fmt.Sprintf("expected string-convertible value, got %T", v)}
	}
}
