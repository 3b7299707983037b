package ormlite

import "strings"

// constraintKind is the coarse classification this module needs out of an
// engine constraint failure: enough to decide whether to surface a
// NotNullConstraintViolation (carrying columns) or a generic ConstraintError.
type constraintKind int

const (
	constraintNone constraintKind = iota
	constraintNotNull
	constraintOther
)

// classifyConstraintError inspects a database/sql error returned by a
// failed Exec/Query and reports whether it was a SQLite constraint
// violation and, if so, which kind.
//
// modernc.org/sqlite (and every other SQLite driver) renders the engine's
// default constraint message verbatim, e.g. "NOT NULL constraint failed:
// items.name" or "UNIQUE constraint failed: items.id". That text is part
// of SQLite's own stable error surface (it comes straight from
// sqlite3_errmsg, independent of driver), so matching on it classifies the
// extended error code without requiring a type assertion into a specific
// driver's internal error type.
func classifyConstraintError(err error) constraintKind {
	if err == nil {
		return constraintNone
	}
	msg := err.Error()
	lower := strings.ToLower(msg)
	if !strings.Contains(lower, "constraint failed") {
		return constraintNone
	}
	if strings.Contains(lower, "not null constraint failed") {
		return constraintNotNull
	}
	return constraintOther
}

// buildConstraintError classifies a failed mutation and, for a NOT NULL
// violation, computes the offending column list directly from the bound
// record rather than parsing it out of the engine's message: every
// non-nullable column whose Get(record) returned nil is an offender.
func buildConstraintError(err error, td *TableDescriptor, record any) error {
	switch classifyConstraintError(err) {
	case constraintNotNull:
		return &NotNullConstraintViolation{Table: td.TableName, Columns: nullColumns(td, record), cause: err}
	case constraintOther:
		return &ConstraintError{Table: td.TableName, Message: err.Error(), cause: err}
	default:
		return err
	}
}

func nullColumns(td *TableDescriptor, record any) []string {
	var cols []string
	for _, c := range td.Columns {
		if c.IsNullable {
			continue
		}
		if c.Get(record) == nil {
			cols = append(cols, c.Name)
		}
	}
	return cols
}

// classifyFatal reports whether err corresponds to one of the fatal-class
// SQLite result codes (IOError, Full, Busy, NoMem, Interrupt) that the
// transaction controller must respond to with a full rollback.
func classifyFatal(err error) bool {
	if err == nil {
		return false
	}
	lower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lower, "disk i/o error"):
		return true
	case strings.Contains(lower, "database or disk is full"):
		return true
	case strings.Contains(lower, "database is locked"), strings.Contains(lower, "busy"):
		return true
	case strings.Contains(lower, "out of memory"):
		return true
	case strings.Contains(lower, "interrupted"):
		return true
	default:
		return false
	}
}
