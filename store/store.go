// Package store persists partition runs in SQLite.
package store

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/xerrors"

	"github.com/ratfit/ratfit/table"
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("store: run not found")

// ChecksumHash is the algorithm of the checksum stored with every run.
const ChecksumHash = table.BLAKE3

// Run is the metadata of a stored table.
type Run struct {
	ID                string
	Function          string
	Digits            int
	NumeratorDegree   int
	DenominatorDegree int
	Start             string
	End               string
	TargetError       string
	Leaves            int
	Unresolved        int
	Checksum          string
	CreatedAt         time.Time
}

// RunStore defines the persistence of partition runs.
type RunStore interface {
	SaveRun(ctx context.Context, t *table.Table) (id string, err error)
	LoadRun(ctx context.Context, id string) (*Run, *table.Table, error)
	ListRuns(ctx context.Context, limit int) ([]*Run, error)
	DeleteRun(ctx context.Context, id string) error
	Close() error
}

// SQLiteConfig holds the configuration of a SQLiteStore.
type SQLiteConfig struct {
	Path string
}

// DefaultConfig returns the default configuration.
func DefaultConfig() SQLiteConfig {
	return SQLiteConfig{
		Path: "./data/ratfit.db",
	}
}

// SQLiteStore implements RunStore with SQLite.
// Tables are stored in their CBOR encoding.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens, or creates, the database at cfg.Path.
func NewSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {

	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
		return nil, xerrors.Errorf("cannot create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, xerrors.Errorf("cannot open database: %w", err)
	}

	s := &SQLiteStore{db: db}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, xerrors.Errorf("cannot initialize schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		function TEXT NOT NULL,
		digits INTEGER NOT NULL,
		numerator_degree INTEGER NOT NULL,
		denominator_degree INTEGER NOT NULL,
		start TEXT NOT NULL,
		end_point TEXT NOT NULL,
		target_error TEXT NOT NULL,
		leaves INTEGER NOT NULL,
		unresolved INTEGER NOT NULL,
		checksum TEXT NOT NULL,
		body BLOB NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveRun stores t under a new random id.
func (s *SQLiteStore) SaveRun(ctx context.Context, t *table.Table) (id string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var body bytes.Buffer
	if err = t.MarshalCBOR(&body); err != nil {
		return "", xerrors.Errorf("cannot SaveRun: %w", err)
	}

	var checksum string
	if checksum, err = t.Checksum(ChecksumHash); err != nil {
		return "", xerrors.Errorf("cannot SaveRun: %w", err)
	}

	var unresolved int
	for _, l := range t.Leaves {
		if !l.Accepted {
			unresolved++
		}
	}

	id = uuid.New().String()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, function, digits, numerator_degree, denominator_degree,
			start, end_point, target_error, leaves, unresolved, checksum, body, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, t.Function, t.Digits, t.NumeratorDegree, t.DenominatorDegree,
		t.Start, t.End, t.TargetError, len(t.Leaves), unresolved, checksum, body.Bytes(), time.Now().UTC())

	if err != nil {
		return "", xerrors.Errorf("cannot SaveRun: %w", err)
	}

	return id, nil
}

const runColumns = `id, function, digits, numerator_degree, denominator_degree,
	start, end_point, target_error, leaves, unresolved, checksum, created_at`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner, extra ...interface{}) (*Run, error) {
	var r Run
	dest := append([]interface{}{
		&r.ID, &r.Function, &r.Digits, &r.NumeratorDegree, &r.DenominatorDegree,
		&r.Start, &r.End, &r.TargetError, &r.Leaves, &r.Unresolved, &r.Checksum, &r.CreatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &r, nil
}

// LoadRun returns the run id and its table. The table is checked against the stored
// checksum.
func (s *SQLiteStore) LoadRun(ctx context.Context, id string) (*Run, *table.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var body []byte

	r, err := scanRun(s.db.QueryRowContext(ctx, `SELECT `+runColumns+`, body FROM runs WHERE id = ?`, id), &body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, xerrors.Errorf("cannot LoadRun %s: %w", id, ErrNotFound)
		}
		return nil, nil, xerrors.Errorf("cannot LoadRun %s: %w", id, err)
	}

	t := new(table.Table)
	if err = t.UnmarshalCBOR(bytes.NewReader(body)); err != nil {
		return nil, nil, xerrors.Errorf("cannot LoadRun %s: %w", id, err)
	}

	if err = t.Verify(ChecksumHash, r.Checksum); err != nil {
		return nil, nil, xerrors.Errorf("cannot LoadRun %s: %w", id, err)
	}

	return r, t, nil
}

// ListRuns returns the most recent runs first. A non-positive limit returns all runs.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) (runs []*Run, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, xerrors.Errorf("cannot ListRuns: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r *Run
		if r, err = scanRun(rows); err != nil {
			return nil, xerrors.Errorf("cannot ListRuns: %w", err)
		}
		runs = append(runs, r)
	}

	return runs, rows.Err()
}

// DeleteRun deletes the run id.
func (s *SQLiteStore) DeleteRun(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return xerrors.Errorf("cannot DeleteRun %s: %w", id, err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return xerrors.Errorf("cannot DeleteRun %s: %w", id, ErrNotFound)
	}

	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
