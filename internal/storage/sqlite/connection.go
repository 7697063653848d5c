package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	// Blank-imported to register the "sqlite3" driver with database/sql, the
	// same registration the teacher's sqlite_test.go performs: the driver is
	// the pure-Go, no-cgo ncruces/go-sqlite3 build with its WASM SQLite
	// engine embedded via go-sqlite3/embed.
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/imgdoc2/imgdoc2go/internal/config"
	"github.com/imgdoc2/imgdoc2go/internal/imgdoc2err"
)

// Connection wraps a *sql.DB opened against a single document file, plus a
// small cache of prepared statements keyed by their SQL text. A document is
// used by one goroutine at a time; mu guards every access to the cache map
// (lookups, insertions and Close) so it stays race-detector-clean.
type Connection struct {
	DB *sql.DB

	mu         sync.Mutex
	statements map[string]*sql.Stmt
	maxCached  int
}

// Open opens (or creates, if dsn asks for it) a SQLite file at path and
// configures it per spec §5: a single connection (SetMaxOpenConns(1), since
// the engine does its own statement-level sequencing and SQLite itself is
// not safe for concurrent writers on one *sql.DB handle), and the
// configured busy-timeout so a second process touching the same file blocks
// briefly instead of failing immediately with SQLITE_BUSY.
func Open(ctx context.Context, path string, createIfMissing bool) (*Connection, error) {
	dsn := dsnWithBusyTimeout(path, config.BusyTimeoutMillis())
	if !createIfMissing {
		dsn += "&_txlock=immediate&mode=rw"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, imgdoc2err.NewDatabase(err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, imgdoc2err.NewDatabase(err)
	}

	return &Connection{
		DB:         db,
		statements: make(map[string]*sql.Stmt),
		maxCached:  config.StatementCacheSize(),
	}, nil
}

func dsnWithBusyTimeout(path string, millis int) string {
	return fmt.Sprintf("%s?_pragma=busy_timeout(%d)", path, millis)
}

// Close releases all cached prepared statements and the underlying
// connection.
func (c *Connection) Close() error {
	c.mu.Lock()
	for _, stmt := range c.statements {
		_ = stmt.Close()
	}
	c.statements = nil
	c.mu.Unlock()
	return c.DB.Close()
}

// Prepare returns a cached *sql.Stmt for query, preparing and caching it on
// first use. This is a performance optimisation only (see spec §4.4,
// design note): correctness never depends on a statement being cached.
func (c *Connection) Prepare(ctx context.Context, query string) (*sql.Stmt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if stmt, ok := c.statements[query]; ok {
		return stmt, nil
	}

	stmt, err := c.DB.PrepareContext(ctx, query)
	if err != nil {
		return nil, imgdoc2err.NewDatabase(err)
	}

	if c.maxCached <= 0 || len(c.statements) < c.maxCached {
		c.statements[query] = stmt
	}

	return stmt, nil
}

// Statistics is a rough on-disk size report, grounded on
// original_source/imgdoc2API/imgdoc2apistatistics.h's document-statistics
// feature: the original exposes a handful of whole-file counters alongside
// the tile/brick counts, which this module reduces to the one counter
// SQLite itself tracks cheaply.
type Statistics struct {
	FileSizeBytes int64
}

// GetStatistics reads the file size via PRAGMA page_count * PRAGMA page_size,
// avoiding a dependency on the OS-level file size (irrelevant for an
// in-memory document).
func (c *Connection) GetStatistics(ctx context.Context) (Statistics, error) {
	var pageCount, pageSize int64
	if err := c.DB.QueryRowContext(ctx, `PRAGMA page_count;`).Scan(&pageCount); err != nil {
		return Statistics{}, imgdoc2err.NewDatabase(err)
	}
	if err := c.DB.QueryRowContext(ctx, `PRAGMA page_size;`).Scan(&pageSize); err != nil {
		return Statistics{}, imgdoc2err.NewDatabase(err)
	}
	return Statistics{FileSizeBytes: pageCount * pageSize}, nil
}

// WithTransaction runs fn inside a SQLite transaction, committing on a nil
// return and rolling back otherwise - including on panic, which it
// re-panics after rollback.
func (c *Connection) WithTransaction(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return imgdoc2err.NewDatabase(err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return imgdoc2err.NewDatabase(err)
	}
	return nil
}
