package ormlite

import (
	"errors"
	"fmt"
)

// Sentinel errors for conditions that carry no extra payload.
var (
	ErrInvalidState        = errors.New("ormlite: invalid transaction state")
	ErrConnectionClosed    = errors.New("ormlite: connection is closed")
	ErrUnsupportedDowngrade = errors.New("ormlite: database schema is newer than the configured target")
)

// InvalidArgumentError reports a caller-supplied value that cannot be used
// as given (a malformed or out-of-range savepoint token, a mis-sized
// encryption key).
type InvalidArgumentError struct {
	Argument string
	Reason   string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("ormlite: invalid argument %s: %s", e.Argument, e.Reason)
}

// UnsupportedOperationError reports an operation that the descriptor shape
// makes impossible, e.g. Update on a table with no primary key.
type UnsupportedOperationError struct {
	Operation string
	Reason    string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("ormlite: unsupported operation %s: %s", e.Operation, e.Reason)
}

// SchemaError reports a conflict discovered while building DDL from a
// TableDescriptor, such as an index whose participating columns disagree
// on uniqueness.
type SchemaError struct {
	Table  string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("ormlite: schema error on table %q: %s", e.Table, e.Reason)
}

// DataIntegrityError reports a column value that could not be decoded into
// its declared Go representation, or a NULL landing in a non-nullable
// field without an acceptable default.
type DataIntegrityError struct {
	Table  string
	Column string
	Reason string
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("ormlite: data integrity error on %s.%s: %s", e.Table, e.Column, e.Reason)
}

// NotNullConstraintViolation reports a NOT NULL engine constraint failure,
// carrying the offending columns of the bound record.
type NotNullConstraintViolation struct {
	Table   string
	Columns []string
	cause   error
}

func (e *NotNullConstraintViolation) Error() string {
	return fmt.Sprintf("ormlite: NOT NULL constraint violated on %s%v", e.Table, e.Columns)
}

func (e *NotNullConstraintViolation) Unwrap() error { return e.cause }

// ConstraintError reports any other engine constraint violation (UNIQUE,
// CHECK, FOREIGN KEY) that is not specifically a NOT NULL violation.
type ConstraintError struct {
	Table   string
	Message string
	cause   error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("ormlite: constraint violated on %s: %s", e.Table, e.Message)
}

func (e *ConstraintError) Unwrap() error { return e.cause }

// CannotOpenError reports a failure to open the underlying database handle.
type CannotOpenError struct {
	Path string
	Code string
	cause error
}

func (e *CannotOpenError) Error() string {
	return fmt.Sprintf("ormlite: cannot open database at %q (%s): %v", e.Path, e.Code, e.cause)
}

func (e *CannotOpenError) Unwrap() error { return e.cause }

// EngineError is the catch-all carrying the underlying result code and
// message for an error that doesn't fit a more specific taxonomy entry.
type EngineError struct {
	Code    string
	Message string
	cause   error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("ormlite: engine error %s: %s", e.Code, e.Message)
}

func (e *EngineError) Unwrap() error { return e.cause }
