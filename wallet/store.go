package wallet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS wallet (
	id             INTEGER PRIMARY KEY CHECK (id = 1),
	chain          TEXT    NOT NULL,
	birthday       INTEGER NOT NULL,
	scanned_height INTEGER NOT NULL,
	latest_height  INTEGER NOT NULL,
	seed           BLOB    NOT NULL,
	encrypted      INTEGER NOT NULL DEFAULT 0,
	salt           BLOB,
	nonce          BLOB,
	created_at     INTEGER NOT NULL,
	updated_at     INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS addresses (
	kind    TEXT    NOT NULL,
	idx     INTEGER NOT NULL,
	address TEXT    NOT NULL UNIQUE,
	PRIMARY KEY (kind, idx)
);`

var errNoWallet = errors.New("wallet store is empty")

// record is the single persisted wallet row. Seed holds raw entropy when
// the wallet is not encrypted and the sealed box otherwise.
type record struct {
	Chain         string
	Birthday      uint64
	ScannedHeight uint64
	LatestHeight  uint64
	Seed          []byte
	Encrypted     bool
	Salt          []byte
	Nonce         []byte
	CreatedAt     time.Time
}

type address struct {
	Kind    AddressKind
	Index   uint32
	Address string
}

// store persists wallet state in SQLite.
type store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// openStore opens (creating when needed) the wallet database at path.
func openStore(ctx context.Context, path string) (*store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("wallet path is required")
	}
	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o700); err != nil {
		return nil, fmt.Errorf("create wallet dir: %w", err)
	}

	dsn := cleanPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.ExecContext(ctx, schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// create inserts the wallet row and its initial addresses atomically.
func (s *store) create(ctx context.Context, rec record, addrs []address) error {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := toMillis(time.Now())
	if _, err := tx.ExecContext(ctx, `
INSERT INTO wallet (id, chain, birthday, scanned_height, latest_height, seed, encrypted, salt, nonce, created_at, updated_at)
VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Chain, rec.Birthday, rec.ScannedHeight, rec.LatestHeight, rec.Seed, rec.Encrypted, rec.Salt, rec.Nonce, now, now,
	); err != nil {
		return fmt.Errorf("insert wallet: %w", err)
	}
	for _, a := range addrs {
		if err := insertAddress(ctx, tx, a); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// save overwrites the mutable wallet fields.
func (s *store) save(ctx context.Context, rec record) error {
	res, err := s.sqlDB.ExecContext(ctx, `
UPDATE wallet SET scanned_height = ?, latest_height = ?, seed = ?, encrypted = ?, salt = ?, nonce = ?, updated_at = ?
WHERE id = 1`,
		rec.ScannedHeight, rec.LatestHeight, rec.Seed, rec.Encrypted, rec.Salt, rec.Nonce, toMillis(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("update wallet: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errNoWallet
	}
	return nil
}

// load reads the wallet row.
func (s *store) load(ctx context.Context) (record, error) {
	var (
		rec       record
		createdAt int64
	)
	err := s.sqlDB.QueryRowContext(ctx, `
SELECT chain, birthday, scanned_height, latest_height, seed, encrypted, salt, nonce, created_at
FROM wallet WHERE id = 1`).Scan(
		&rec.Chain, &rec.Birthday, &rec.ScannedHeight, &rec.LatestHeight, &rec.Seed, &rec.Encrypted, &rec.Salt, &rec.Nonce, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return record{}, errNoWallet
	}
	if err != nil {
		return record{}, fmt.Errorf("load wallet: %w", err)
	}
	rec.CreatedAt = fromMillis(createdAt)
	return rec, nil
}

func (s *store) addAddress(ctx context.Context, a address) error {
	return insertAddress(ctx, s.sqlDB, a)
}

// addresses lists persisted addresses ordered by kind and index.
func (s *store) addresses(ctx context.Context) ([]address, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT kind, idx, address FROM addresses ORDER BY kind DESC, idx`)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	defer rows.Close()

	var out []address
	for rows.Next() {
		var a address
		if err := rows.Scan(&a.Kind, &a.Index, &a.Address); err != nil {
			return nil, fmt.Errorf("scan address: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertAddress(ctx context.Context, db execer, a address) error {
	if _, err := db.ExecContext(ctx, `INSERT INTO addresses (kind, idx, address) VALUES (?, ?, ?)`, string(a.Kind), a.Index, a.Address); err != nil {
		return fmt.Errorf("insert address: %w", err)
	}
	return nil
}
