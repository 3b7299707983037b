package ormlite

import (
	"database/sql"
	"reflect"
	"sync"
)

// cacheKey identifies a cached prepared statement by the Go type of the
// record it serves and a caller-chosen key string naming the operation and
// table ("insert:<modifier>:<table>", "update:<table>", "upsert:<table>").
type cacheKey struct {
	typ      reflect.Type
	modifier string
}

// statementCache is a concurrency-safe map from (type, modifier) to a
// prepared statement. Insertion follows compute-outside-lock,
// insert-if-absent: callers prepare the statement without holding the
// lock, then race to install it; a loser disposes its duplicate. The
// cache must be drained (via closeAll) before the owning connection's
// handle is closed.
type statementCache struct {
	mu    sync.Mutex
	items map[cacheKey]*sql.Stmt
}

func newStatementCache() *statementCache {
	return &statementCache{items: map[cacheKey]*sql.Stmt{}}
}

// getOrPrepare returns the cached statement for key, preparing one via
// prepare if absent. prepare runs without the cache lock held.
func (c *statementCache) getOrPrepare(typ reflect.Type, modifier string, prepare func() (*sql.Stmt, error)) (*sql.Stmt, error) {
	key := cacheKey{typ: typ, modifier: modifier}

	c.mu.Lock()
	if stmt, ok := c.items[key]; ok {
		c.mu.Unlock()
		return stmt, nil
	}
	c.mu.Unlock()

	stmt, err := prepare()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.items[key]; ok {
		_ = stmt.Close()
		return existing, nil
	}
	c.items[key] = stmt
	return stmt, nil
}

// closeAll disposes every cached statement. Safe to call multiple times.
func (c *statementCache) closeAll() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var firstErr error
	for key, stmt := range c.items {
		if err := stmt.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(c.items, key)
	}
	return firstErr
}
