package vfs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	_ "modernc.org/sqlite"
)

const kvSchema = `
CREATE TABLE IF NOT EXISTS kv (
    key   TEXT PRIMARY KEY,
    value BLOB NOT NULL,
    codec INTEGER NOT NULL DEFAULT 0
);
`

// Value codecs
const (
	codecRaw  = 0
	codecZstd = 1
)

// CompressThreshold is the value size from which values are stored zstd compressed
const CompressThreshold = 1024

// SQLiteBackend persists values in a single SQLite table. Large values are
// compressed on disk; callers always see the original bytes.
type SQLiteBackend struct {
	db  *sql.DB
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// OpenSQLite opens or creates the database at path
func OpenSQLite(path string) (*SQLiteBackend, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create storage directory: %w", err)
		}
	}

	dsn := path +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.Exec(kvSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		db.Close()
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	return &SQLiteBackend{db: db, enc: enc, dec: dec}, nil
}

func (s *SQLiteBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var (
		value []byte
		codec int
	)
	err := s.db.QueryRowContext(ctx, "SELECT value, codec FROM kv WHERE key = ?", key).Scan(&value, &codec)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", key, err)
	}

	switch codec {
	case codecRaw:
		return value, true, nil
	case codecZstd:
		plain, err := s.dec.DecodeAll(value, nil)
		if err != nil {
			return nil, false, fmt.Errorf("failed to decompress %s: %w", key, err)
		}
		return plain, true, nil
	default:
		return nil, false, fmt.Errorf("unknown codec %d for %s", codec, key)
	}
}

func (s *SQLiteBackend) Set(ctx context.Context, key string, value []byte) error {
	codec := codecRaw
	if len(value) >= CompressThreshold {
		value = s.enc.EncodeAll(value, nil)
		codec = codecZstd
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO kv (key, value, codec) VALUES (?, ?, ?) "+
			"ON CONFLICT(key) DO UPDATE SET value = excluded.value, codec = excluded.codec",
		key, value, codec)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteBackend) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteBackend) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM kv"); err != nil {
		return fmt.Errorf("failed to clear store: %w", err)
	}
	return nil
}

// Keys returns all keys in sorted order
func (s *SQLiteBackend) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key FROM kv ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Close closes the database
func (s *SQLiteBackend) Close() error {
	s.dec.Close()
	if err := s.enc.Close(); err != nil {
		s.db.Close()
		return err
	}
	return s.db.Close()
}
