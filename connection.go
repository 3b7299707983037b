package ormlite

import (
	"context"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"
)

// OpenMode is a bitset of connection open-mode flags.
type OpenMode int

const (
	ModeReadOnly OpenMode = 1 << iota
	ModeReadWrite
	ModeCreate
	ModeNoMutex
	ModeFullMutex
	ModeSharedCache
	ModePrivateCache
)

func (m OpenMode) writable() bool {
	return m&ModeReadWrite != 0 || m&ModeReadOnly == 0
}

// TraceEvent is handed to a Tracer after each statement run through
// Connection.Execute, when tracing is enabled. ExecuteScalar, Query,
// DeferredQuery and the cached insert/update/upsert statements are not
// traced.
type TraceEvent struct {
	SQL      string
	Args     []any
	Duration time.Duration
	Err      error
}

// Tracer observes executed statements. It is the opt-in replacement for
// library-side logging: ormlite itself never logs on the caller's behalf.
type Tracer func(event TraceEvent)

// UpgradeFunc performs schema work needed to advance a database from
// version `from` toward the connection's configured target. It does not
// need to (and should not) touch PRAGMA user_version itself — Connection
// advances it, inside the same transaction, once UpgradeFunc returns
// without error.
type UpgradeFunc func(ctx context.Context, tx *sql.Tx, from int) error

// OpenOptions configures Open.
type OpenOptions struct {
	Mode                OpenMode
	EncryptionKeyText   string
	EncryptionKeyBinary []byte
	BusyTimeout         time.Duration
	TargetUserVersion   int
	Upgrade             UpgradeFunc
	Tracer              Tracer
	TraceEnabled        bool
	TimeExecutionEnabled bool
}

// DefaultOpenOptions returns a read-write, create-if-missing connection
// with a 100ms busy timeout.
func DefaultOpenOptions() OpenOptions {
	return OpenOptions{
		Mode:        ModeReadWrite | ModeCreate,
		BusyTimeout: 100 * time.Millisecond,
	}
}

// Connection owns a database handle and the statement cache built on top
// of it. It exposes the execute/query/transaction surface and dispatches
// change notifications after successful mutations.
type Connection struct {
	db                   *sql.DB
	path                 string
	mode                 OpenMode
	open                 atomic.Bool
	busyTimeout          time.Duration
	txDepth              atomic.Int64
	insertCache          *statementCache
	tracer               Tracer
	traceEnabled         atomic.Bool
	timeExecutionEnabled atomic.Bool
	libraryVersion       string
	notifier             *changeNotifier
}

// Open opens path with opts, applying (in order) the encryption key, the
// busy timeout, foreign-key enforcement, WAL mode (if writable), and the
// user-version upgrade contract.
func Open(ctx context.Context, path string, opts OpenOptions) (*Connection, error) {
	if opts.BusyTimeout == 0 {
		opts.BusyTimeout = 100 * time.Millisecond
	}
	if len(opts.EncryptionKeyBinary) != 0 && len(opts.EncryptionKeyBinary) != 32 {
		return nil, &InvalidArgumentError{Argument: "EncryptionKeyBinary", Reason: "binary encryption key must be exactly 32 bytes"}
	}

	dsn := buildDSN(path, opts.Mode)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, &CannotOpenError{Path: path, Code: "SQLITE_CANTOPEN", cause: err}
	}
	if opts.Mode.writable() {
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, &CannotOpenError{Path: path, Code: "SQLITE_CANTOPEN", cause: err}
	}

	conn := &Connection{
		db:          db,
		path:        path,
		mode:        opts.Mode,
		busyTimeout: opts.BusyTimeout,
		insertCache: newStatementCache(),
		tracer:      opts.Tracer,
		notifier:    newChangeNotifier(),
	}
	conn.open.Store(true)
	conn.traceEnabled.Store(opts.TraceEnabled)
	conn.timeExecutionEnabled.Store(opts.TimeExecutionEnabled)

	if err := conn.applyEncryptionKey(ctx, opts.EncryptionKeyText, opts.EncryptionKeyBinary); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout = %d", opts.BusyTimeout.Milliseconds())); err != nil {
		db.Close()
		return nil, &CannotOpenError{Path: path, Code: "SQLITE_ERROR", cause: err}
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, &CannotOpenError{Path: path, Code: "SQLITE_ERROR", cause: err}
	}
	if opts.Mode.writable() {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, &CannotOpenError{Path: path, Code: "SQLITE_ERROR", cause: err}
		}
	}

	if err := conn.readLibraryVersion(ctx); err != nil {
		db.Close()
		return nil, err
	}

	if err := conn.applyUserVersion(ctx, opts.TargetUserVersion, opts.Upgrade); err != nil {
		db.Close()
		return nil, err
	}

	return conn, nil
}

func buildDSN(path string, mode OpenMode) string {
	params := []string{"_pragma=foreign_keys(1)"}
	if mode&ModeReadOnly != 0 {
		params = append(params, "mode=ro")
	} else if mode&ModeCreate != 0 || mode == 0 {
		params = append(params, "mode=rwc")
	} else {
		params = append(params, "mode=rw")
	}
	if mode&ModeSharedCache != 0 {
		params = append(params, "cache=shared")
	} else if mode&ModePrivateCache != 0 {
		params = append(params, "cache=private")
	}
	return fmt.Sprintf("file:%s?%s", path, strings.Join(params, "&"))
}

func (c *Connection) applyEncryptionKey(ctx context.Context, keyText string, keyBinary []byte) error {
	switch {
	case len(keyBinary) == 32:
		stmt := fmt.Sprintf(`pragma key = "x'%s'"`, hex.EncodeToString(keyBinary))
		_, err := c.db.ExecContext(ctx, stmt)
		return err
	case keyText != "":
		stmt := fmt.Sprintf(`pragma key = %s`, quoteLiteral(keyText))
		_, err := c.db.ExecContext(ctx, stmt)
		return err
	default:
		return nil
	}
}

func (c *Connection) readLibraryVersion(ctx context.Context) error {
	v, err := ExecuteScalar[string](ctx, c, "SELECT sqlite_version()")
	if err != nil {
		return fmt.Errorf("ormlite: read sqlite_version: %w", err)
	}
	c.libraryVersion = v
	return nil
}

// applyUserVersion implements the user-version upgrade contract: if the
// database's current user_version equals target, nothing happens; if it
// is greater, UnsupportedDowngrade; if it is less, upgrade is invoked
// inside a transaction and, on success, user_version is advanced to
// target in that same transaction before it commits. When target is 0 and
// no upgrade is configured, user_version is not read or checked at all.
func (c *Connection) applyUserVersion(ctx context.Context, target int, upgrade UpgradeFunc) error {
	if target == 0 && upgrade == nil {
		return nil
	}
	current, err := ExecuteScalar[int64](ctx, c, "PRAGMA user_version")
	if err != nil {
		return fmt.Errorf("ormlite: read user_version: %w", err)
	}
	switch {
	case int(current) == target:
		return nil
	case int(current) > target:
		return ErrUnsupportedDowngrade
	}
	if upgrade == nil {
		return fmt.Errorf("ormlite: user_version %d below target %d but no Upgrade function configured", current, target)
	}
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ormlite: begin upgrade transaction: %w", err)
	}
	if err := upgrade(ctx, tx, int(current)); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("ormlite: upgrade from version %d: %w", current, err)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", target)); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("ormlite: advance user_version to %d: %w", target, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ormlite: commit upgrade to version %d: %w", target, err)
	}
	return nil
}

// Close disposes every cached insert statement, then closes the handle.
// Idempotent.
func (c *Connection) Close() error {
	if !c.open.CompareAndSwap(true, false) {
		return nil
	}
	cacheErr := c.insertCache.closeAll()
	dbErr := c.db.Close()
	if dbErr != nil {
		return dbErr
	}
	return cacheErr
}

// DB exposes the underlying *sql.DB for callers that need to drop to raw
// SQL alongside the mapped surface (migrations, ad hoc reporting).
func (c *Connection) DB() *sql.DB {
	return c.db
}

// LibraryVersion reports the SQLite library version string observed at
// Open time (via sqlite_version()).
func (c *Connection) LibraryVersion() string {
	return c.libraryVersion
}

func (c *Connection) trace(event TraceEvent) {
	if c.traceEnabled.Load() && c.tracer != nil {
		c.tracer(event)
	}
}

func (c *Connection) requireOpen() error {
	if !c.open.Load() {
		return ErrConnectionClosed
	}
	return nil
}

// Execute prepares sqlText, binds params positionally, steps it to
// completion, and returns the number of affected rows.
func (c *Connection) Execute(ctx context.Context, sqlText string, params ...any) (int64, error) {
	if err := c.requireOpen(); err != nil {
		return 0, err
	}
	start := time.Now()
	stmt, err := c.db.PrepareContext(ctx, sqlText)
	if err != nil {
		return 0, fmt.Errorf("ormlite: prepare %q: %w", sqlText, err)
	}
	s := newStatement(c, stmt, sqlText, true)
	defer s.Dispose()

	affected, err := s.executeNonQuery(ctx, params...)
	if c.timeExecutionEnabled.Load() || c.traceEnabled.Load() {
		c.trace(TraceEvent{SQL: sqlText, Args: params, Duration: time.Since(start), Err: err})
	}
	return affected, err
}

// ExecuteScalar prepares sqlText, binds params, steps once, and decodes
// the first column of the first row into T. If there is no row, T's zero
// value is returned.
func ExecuteScalar[T any](ctx context.Context, c *Connection, sqlText string, params ...any) (T, error) {
	var zero T
	if err := c.requireOpen(); err != nil {
		return zero, err
	}
	stmt, err := c.db.PrepareContext(ctx, sqlText)
	if err != nil {
		return zero, fmt.Errorf("ormlite: prepare %q: %w", sqlText, err)
	}
	s := newStatement(c, stmt, sqlText, true)
	defer s.Dispose()
	return executeScalar[T](ctx, s, params...)
}

// Query prepares sqlText, binds params, and eagerly materializes every
// row into a fresh T via td's column Get/Set closures.
func Query[T any](ctx context.Context, c *Connection, td *TableDescriptor, newItem func() T, sqlText string, params ...any) ([]T, error) {
	if err := c.requireOpen(); err != nil {
		return nil, err
	}
	stmt, err := c.db.PrepareContext(ctx, sqlText)
	if err != nil {
		return nil, fmt.Errorf("ormlite: prepare %q: %w", sqlText, err)
	}
	s := newStatement(c, stmt, sqlText, true)
	defer s.Dispose()
	return executeQuery[T](ctx, s, rowMapper[T]{td: td, newItem: newItem}, params...)
}

// Cursor is a lazy, forward-only sequence of decoded rows. It borrows the
// owning Connection and owns one *sql.Rows; Close (or draining the
// sequence to exhaustion) releases the statement. A Cursor must not
// outlive the Connection it was created from.
type Cursor[T any] struct {
	rows     *sql.Rows
	stmt     *Statement
	mapper   rowMapper[T]
	colIndex map[string]int
	closed   bool
	err      error
}

// DeferredQuery prepares sqlText and returns a Cursor that advances the
// underlying statement one row per Next call, instead of materializing
// everything eagerly like Query.
func DeferredQuery[T any](ctx context.Context, c *Connection, td *TableDescriptor, newItem func() T, sqlText string, params ...any) (*Cursor[T], error) {
	if err := c.requireOpen(); err != nil {
		return nil, err
	}
	stmt, err := c.db.PrepareContext(ctx, sqlText)
	if err != nil {
		return nil, fmt.Errorf("ormlite: prepare %q: %w", sqlText, err)
	}
	s := newStatement(c, stmt, sqlText, true)
	rows, err := s.stmt.QueryContext(ctx, params...)
	if err != nil {
		s.Dispose()
		return nil, fmt.Errorf("ormlite: query %q: %w", sqlText, err)
	}
	colIndex, err := columnIndexByName(rows, td)
	if err != nil {
		rows.Close()
		s.Dispose()
		return nil, err
	}
	return &Cursor[T]{
		rows:     rows,
		stmt:     s,
		mapper:   rowMapper[T]{td: td, newItem: newItem},
		colIndex: colIndex,
	}, nil
}

// Next advances the cursor. It returns false at end of results or on
// error; call Err afterward to distinguish the two.
func (cur *Cursor[T]) Next() bool {
	if cur.closed {
		return false
	}
	if !cur.rows.Next() {
		_ = cur.Close()
		return false
	}
	return true
}

// Scan decodes the current row into a fresh T.
func (cur *Cursor[T]) Scan() (T, error) {
	var zero T
	if cur.closed {
		return zero, ErrConnectionClosed
	}
	item, err := scanRow(cur.rows, cur.mapper, cur.colIndex)
	if err != nil {
		cur.err = err
		return zero, err
	}
	return item, nil
}

// Err reports any error encountered while iterating.
func (cur *Cursor[T]) Err() error {
	if cur.err != nil {
		return cur.err
	}
	if cur.rows != nil {
		return cur.rows.Err()
	}
	return nil
}

// Close releases the cursor's statement. Safe to call more than once.
func (cur *Cursor[T]) Close() error {
	if cur.closed {
		return nil
	}
	cur.closed = true
	rowsErr := cur.rows.Err()
	cur.rows.Close()
	disposeErr := cur.stmt.Dispose()
	if rowsErr != nil {
		return rowsErr
	}
	return disposeErr
}
