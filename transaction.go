package ormlite

import (
	"context"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// SavepointToken names a nested transaction scope. Its string form embeds
// the depth the savepoint was created at — "S<rand>D<depth>" — which lets
// Release/RollbackTo validate the caller isn't targeting a savepoint that
// has already been released, without maintaining a separate stack.
type SavepointToken string

func newSavepointToken(depthBeforeCreate int64) SavepointToken {
	// uuid.New is the module's source of collision-resistant entropy;
	// only the first four random bytes are needed for a 15-bit token.
	id := uuid.New()
	n := binary.BigEndian.Uint32(id[0:4]) % 32768
	return SavepointToken(fmt.Sprintf("S%dD%d", n, depthBeforeCreate))
}

func (t SavepointToken) depth() (int64, error) {
	s := string(t)
	i := strings.Index(s, "D")
	if !strings.HasPrefix(s, "S") || i < 0 {
		return 0, &InvalidArgumentError{Argument: "token", Reason: fmt.Sprintf("malformed savepoint token %q", s)}
	}
	d, err := strconv.ParseInt(s[i+1:], 10, 64)
	if err != nil {
		return 0, &InvalidArgumentError{Argument: "token", Reason: fmt.Sprintf("malformed savepoint token %q: %v", s, err)}
	}
	return d, nil
}

func (t SavepointToken) name() string {
	return string(t)
}

// BeginTransaction starts a new top-level transaction scope, failing with
// InvalidState if one is already open. On a fatal-class engine error it
// forces a full rollback (zeroing the depth, issuing ROLLBACK, swallowing
// secondary errors) before rethrowing; on any other failure it simply
// decrements the counter and rethrows.
func (c *Connection) BeginTransaction(ctx context.Context) error {
	if !c.txDepth.CompareAndSwap(0, 1) {
		return ErrInvalidState
	}
	if _, err := c.db.ExecContext(ctx, "BEGIN TRANSACTION"); err != nil {
		return c.handleTxStartError(ctx, err, 1)
	}
	return nil
}

// SaveTransactionPoint opens a nested savepoint scope and returns a token
// identifying it for later Release or RollbackTo.
func (c *Connection) SaveTransactionPoint(ctx context.Context) (SavepointToken, error) {
	depthBefore := c.txDepth.Add(1) - 1
	token := newSavepointToken(depthBefore)
	if _, err := c.db.ExecContext(ctx, fmt.Sprintf("SAVEPOINT %s", token.name())); err != nil {
		return "", c.handleTxStartError(ctx, err, depthBefore+1)
	}
	return token, nil
}

// handleTxStartError applies the fatal-error rollback policy shared by
// BeginTransaction and SaveTransactionPoint: fatal-class codes trigger a
// full rollback before the error is rethrown; everything else just
// unwinds the depth counter by one.
func (c *Connection) handleTxStartError(ctx context.Context, err error, depthAfterFailedStart int64) error {
	if classifyFatal(err) {
		c.txDepth.Store(0)
		_, _ = c.db.ExecContext(ctx, "ROLLBACK")
		return err
	}
	c.txDepth.Add(-1)
	return err
}

// Release promotes a savepoint toward commit: it rewrites the depth
// counter to the token's embedded depth, then issues RELEASE. A malformed
// token is InvalidArgument; a token whose embedded depth is not strictly
// less than the current depth is also rejected, since it can only name a
// savepoint already released or never opened.
func (c *Connection) Release(ctx context.Context, token SavepointToken) error {
	depth, err := token.depth()
	if err != nil {
		return err
	}
	current := c.txDepth.Load()
	if depth < 0 || depth >= current {
		return &InvalidArgumentError{Argument: "token", Reason: fmt.Sprintf("savepoint depth %d is not below current depth %d", depth, current)}
	}
	c.txDepth.Store(depth)
	if _, err := c.db.ExecContext(ctx, fmt.Sprintf("RELEASE %s", token.name())); err != nil {
		if classifyFatal(err) || strings.Contains(strings.ToLower(err.Error()), "busy") {
			_, _ = c.db.ExecContext(ctx, "ROLLBACK")
		}
		return err
	}
	return nil
}

// RollbackTo discards everything since token's savepoint without fully
// exiting the enclosing transaction. An empty token degrades to a full
// Rollback.
func (c *Connection) RollbackTo(ctx context.Context, token SavepointToken) error {
	if token == "" {
		return c.Rollback(ctx)
	}
	depth, err := token.depth()
	if err != nil {
		return err
	}
	current := c.txDepth.Load()
	if depth < 0 || depth >= current {
		return &InvalidArgumentError{Argument: "token", Reason: fmt.Sprintf("savepoint depth %d is not below current depth %d", depth, current)}
	}
	c.txDepth.Store(depth)
	_, err = c.db.ExecContext(ctx, fmt.Sprintf("ROLLBACK TO %s", token.name()))
	return err
}

// Rollback unconditionally exits the transaction, issuing ROLLBACK only
// if a transaction was actually open.
func (c *Connection) Rollback(ctx context.Context) error {
	prev := c.txDepth.Swap(0)
	if prev <= 0 {
		return nil
	}
	_, err := c.db.ExecContext(ctx, "ROLLBACK")
	return err
}

// Commit exits the transaction, issuing COMMIT only if one was open. On
// commit failure it attempts a best-effort ROLLBACK (ignoring secondary
// errors) before rethrowing.
func (c *Connection) Commit(ctx context.Context) error {
	prev := c.txDepth.Swap(0)
	if prev <= 0 {
		return nil
	}
	if _, err := c.db.ExecContext(ctx, "COMMIT"); err != nil {
		_, _ = c.db.ExecContext(ctx, "ROLLBACK")
		return err
	}
	return nil
}

// RunInTransaction acquires a savepoint, invokes action, releases on
// success. Any error from action triggers a full Rollback rather than a
// RollbackTo — nested scopes deliberately inherit the outer rollback.
func (c *Connection) RunInTransaction(ctx context.Context, action func(ctx context.Context) error) error {
	token, err := c.SaveTransactionPoint(ctx)
	if err != nil {
		return err
	}
	if err := action(ctx); err != nil {
		if rbErr := c.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
		}
		return err
	}
	return c.Release(ctx, token)
}

// TransactionDepth returns the current savepoint nesting depth.
func (c *Connection) TransactionDepth() int64 {
	return c.txDepth.Load()
}
