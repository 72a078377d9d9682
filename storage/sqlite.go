package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

const schema = `
CREATE TABLE IF NOT EXISTS blobs (
	addr      TEXT PRIMARY KEY,
	mime      TEXT NOT NULL,
	format    INTEGER NOT NULL,
	data      BLOB NOT NULL,
	stored_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS records (
	key        TEXT PRIMARY KEY,
	data       BLOB NOT NULL,
	updated_at INTEGER NOT NULL
);
`

// sqliteBackend keeps everything in a single database file. Connection is not
// safe for concurrent use, so all access is serialized.
type sqliteBackend struct {
	mu   sync.Mutex
	conn *sqlite.Conn
	path string
}

func newSQLite(path string) (*sqliteBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	conn, err := sqlite.OpenConn(path, sqlite.OpenReadWrite, sqlite.OpenCreate, sqlite.OpenWAL)
	if err != nil {
		return nil, err
	}
	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to prepare schema: %w", err)
	}
	return &sqliteBackend{conn: conn, path: path}, nil
}

func (s *sqliteBackend) selectBytes(ctx context.Context, query string, args ...any) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		data  []byte
		found bool
	)
	err := sqlitex.Execute(s.conn, query, &sqlitex.ExecOptions{
		Args: args,
		ResultFunc: func(stmt *sqlite.Stmt) error {
			data = make([]byte, stmt.ColumnLen(0))
			stmt.ColumnBytes(0, data)
			found = true
			return nil
		},
	})
	if err != nil {
		return nil, false, err
	}
	return data, found, nil
}

func (s *sqliteBackend) exec(ctx context.Context, query string, args ...any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return sqlitex.Execute(s.conn, query, &sqlitex.ExecOptions{Args: args})
}

func (s *sqliteBackend) loadBlob(ctx context.Context, addr string) ([]byte, bool, error) {
	return s.selectBytes(ctx, `SELECT data FROM blobs WHERE addr = ?;`, addr)
}

func (s *sqliteBackend) hasBlob(ctx context.Context, addr string) (bool, error) {
	_, found, err := s.selectBytes(ctx, `SELECT 1 FROM blobs WHERE addr = ?;`, addr)
	return found, err
}

func (s *sqliteBackend) saveBlob(ctx context.Context, b *blob) error {
	return s.exec(ctx, `INSERT INTO blobs (addr, mime, format, data, stored_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(addr) DO UPDATE SET mime = excluded.mime, format = excluded.format, data = excluded.data, stored_at = excluded.stored_at;`,
		b.addr, b.mime, int64(b.format), b.data, time.Now().Unix())
}

func (s *sqliteBackend) loadRecord(ctx context.Context, key string) ([]byte, bool, error) {
	return s.selectBytes(ctx, `SELECT data FROM records WHERE key = ?;`, key)
}

func (s *sqliteBackend) saveRecord(ctx context.Context, key string, data []byte) error {
	return s.exec(ctx, `INSERT INTO records (key, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at;`,
		key, data, time.Now().Unix())
}

func (s *sqliteBackend) deleteRecord(ctx context.Context, key string) error {
	return s.exec(ctx, `DELETE FROM records WHERE key = ?;`, key)
}

func (s *sqliteBackend) location() string { return s.path }

func (s *sqliteBackend) close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Close()
}
