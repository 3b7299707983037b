package ormlite

import (
	"database/sql"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
)

// TestStatementCache_InsertIfAbsent exercises the compute-outside-lock,
// insert-if-absent contract: many concurrent preparers racing for the same
// key must all observe the same cached *sql.Stmt, with every loser's
// duplicate prepared statement closed rather than leaked in the cache.
func TestStatementCache_InsertIfAbsent(t *testing.T) {
	ctx := t.Context()
	conn := openTestConn(t)
	td := itemDescriptor(t)
	if _, err := MigrateTable(ctx, conn, td); err != nil {
		t.Fatalf("MigrateTable: %v", err)
	}

	cache := newStatementCache()
	typ := reflect.TypeOf(&item{})
	const n = 16

	var wg sync.WaitGroup
	var prepareCalls atomic.Int32
	stmts := make([]*sql.Stmt, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			stmt, err := cache.getOrPrepare(typ, "insert:items", func() (*sql.Stmt, error) {
				prepareCalls.Add(1)
				return conn.db.PrepareContext(ctx, `SELECT 1`)
			})
			if err != nil {
				t.Errorf("getOrPrepare: %v", err)
				return
			}
			stmts[i] = stmt
		}(i)
	}
	wg.Wait()

	first := stmts[0]
	for i, s := range stmts {
		if s != first {
			t.Fatalf("goroutine %d observed a different cached statement than goroutine 0", i)
		}
	}
	if calls := prepareCalls.Load(); calls < 1 {
		t.Fatalf("expected at least one prepare call, got %d", calls)
	}

	if err := cache.closeAll(); err != nil {
		t.Fatalf("closeAll: %v", err)
	}
	if err := cache.closeAll(); err != nil {
		t.Fatalf("closeAll should be idempotent, got: %v", err)
	}
}
