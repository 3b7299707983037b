package ormlite

import (
	"context"
	"errors"
	"testing"
)

// A failing inner RunInTransaction scope causes the outer scope to roll
// back entirely, leaving the table empty and the depth counter at zero.
func TestRunInTransaction_NestedRollback(t *testing.T) {
	ctx := context.Background()
	conn := openTestConn(t)
	td := itemDescriptor(t)
	if _, err := MigrateTable(ctx, conn, td); err != nil {
		t.Fatalf("MigrateTable: %v", err)
	}

	boom := errors.New("boom")
	outerErr := conn.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := Insert(ctx, conn, td, &item{Name: "a", Tag: "t"}); err != nil {
			return err
		}
		return conn.RunInTransaction(ctx, func(ctx context.Context) error {
			if err := Insert(ctx, conn, td, &item{Name: "b", Tag: "t"}); err != nil {
				return err
			}
			return boom
		})
	})
	if !errors.Is(outerErr, boom) {
		t.Fatalf("expected the inner error to propagate, got %v", outerErr)
	}

	if depth := conn.TransactionDepth(); depth != 0 {
		t.Fatalf("expected transaction depth 0 after rollback, got %d", depth)
	}
	count, err := Count(ctx, conn, td)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected table empty after nested rollback, got %d rows", count)
	}
}

func TestBeginCommit_DepthReturnsToZero(t *testing.T) {
	ctx := context.Background()
	conn := openTestConn(t)
	if err := conn.BeginTransaction(ctx); err != nil {
		t.Fatalf("BeginTransaction: %v", err)
	}
	tok1, err := conn.SaveTransactionPoint(ctx)
	if err != nil {
		t.Fatalf("SaveTransactionPoint: %v", err)
	}
	tok2, err := conn.SaveTransactionPoint(ctx)
	if err != nil {
		t.Fatalf("SaveTransactionPoint: %v", err)
	}
	if err := conn.Release(ctx, tok2); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if err := conn.Release(ctx, tok1); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if err := conn.Commit(ctx); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if depth := conn.TransactionDepth(); depth != 0 {
		t.Fatalf("expected depth 0 after commit, got %d", depth)
	}
}

func TestBeginTransaction_RejectsReentry(t *testing.T) {
	ctx := context.Background()
	conn := openTestConn(t)
	if err := conn.BeginTransaction(ctx); err != nil {
		t.Fatalf("BeginTransaction: %v", err)
	}
	defer conn.Rollback(ctx) //nolint:errcheck

	if err := conn.BeginTransaction(ctx); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState on reentry, got %v", err)
	}
}

func TestRollbackTo_MalformedTokenIsInvalidArgument(t *testing.T) {
	ctx := context.Background()
	conn := openTestConn(t)
	if err := conn.BeginTransaction(ctx); err != nil {
		t.Fatalf("BeginTransaction: %v", err)
	}
	defer conn.Rollback(ctx) //nolint:errcheck

	err := conn.RollbackTo(ctx, SavepointToken("malformed"))
	if _, ok := err.(*InvalidArgumentError); !ok {
		t.Fatalf("expected *InvalidArgumentError, got %T: %v", err, err)
	}
}

func TestRollbackTo_EmptyTokenDegradesToFullRollback(t *testing.T) {
	ctx := context.Background()
	conn := openTestConn(t)
	if err := conn.BeginTransaction(ctx); err != nil {
		t.Fatalf("BeginTransaction: %v", err)
	}
	if _, err := conn.SaveTransactionPoint(ctx); err != nil {
		t.Fatalf("SaveTransactionPoint: %v", err)
	}

	if err := conn.RollbackTo(ctx, SavepointToken("")); err != nil {
		t.Fatalf("RollbackTo(\"\"): %v", err)
	}
	if depth := conn.TransactionDepth(); depth != 0 {
		t.Fatalf("expected depth 0 after RollbackTo(\"\"), got %d", depth)
	}
}
