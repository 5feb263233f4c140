// Package archive keeps a history of comparison reports in SQLite. Report
// bodies are stored as zstd-compressed JSON; the columns needed for listing
// are stored alongside.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	_ "github.com/mattn/go-sqlite3"

	"github.com/c360studio/semdoc/diff"
)

// ErrNotFound is returned when no report has the requested ID.
var ErrNotFound = errors.New("report not found")

const schema = `
CREATE TABLE IF NOT EXISTS reports (
	id            TEXT PRIMARY KEY,
	created_at    INTEGER NOT NULL,
	reference     TEXT NOT NULL,
	compared      TEXT NOT NULL,
	changed_items INTEGER NOT NULL,
	identical     INTEGER NOT NULL,
	summary       TEXT NOT NULL,
	payload       BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS reports_created ON reports (created_at);
CREATE INDEX IF NOT EXISTS reports_reference ON reports (reference);
CREATE INDEX IF NOT EXISTS reports_compared ON reports (compared);
`

// Entry is the listing view of an archived report.
type Entry struct {
	ID             uuid.UUID    `json:"id" yaml:"id"`
	CreatedAt      time.Time    `json:"created_at" yaml:"created_at"`
	Reference      string       `json:"reference" yaml:"reference"`
	Compared       string       `json:"compared" yaml:"compared"`
	Summary        diff.Summary `json:"summary" yaml:"summary"`
	CompressedSize int          `json:"compressed_size" yaml:"compressed_size"`
}

// Store provides report storage backed by a SQLite file.
type Store struct {
	db  *sql.DB
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// Open opens or creates the database at path and ensures the schema exists.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create archive schema: %w", err)
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &Store{db: db, enc: enc, dec: dec}, nil
}

// Close releases the database and codecs.
func (s *Store) Close() error {
	s.dec.Close()
	if err := s.enc.Close(); err != nil {
		s.db.Close()
		return err
	}
	return s.db.Close()
}

// Save stores a report. Saving the same report ID twice replaces it.
func (s *Store) Save(ctx context.Context, r *diff.Report) error {
	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	summary, err := json.Marshal(r.Summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	payload := s.enc.EncodeAll(body, nil)

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO reports
			(id, created_at, reference, compared, changed_items, identical, summary, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID.String(), r.CreatedAt.UnixNano(), r.Reference, r.Compared,
		r.Summary.ChangedItems, r.Summary.Identical(), string(summary), payload)
	if err != nil {
		return fmt.Errorf("store report %s: %w", r.ID, err)
	}
	return nil
}

// Get loads a full report.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*diff.Report, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM reports WHERE id = ?`, id.String()).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get report %s: %w", id, err)
	}

	body, err := s.dec.DecodeAll(payload, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress report %s: %w", id, err)
	}
	var r diff.Report
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("unmarshal report %s: %w", id, err)
	}
	return &r, nil
}

// List returns the newest reports first. A limit of zero or less means no limit.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	return s.query(ctx, `
		SELECT id, created_at, reference, compared, summary, length(payload)
		FROM reports ORDER BY created_at DESC LIMIT ?`, limitArg(limit))
}

// ForDocument returns the reports that used path on either side, newest first.
func (s *Store) ForDocument(ctx context.Context, path string, limit int) ([]Entry, error) {
	return s.query(ctx, `
		SELECT id, created_at, reference, compared, summary, length(payload)
		FROM reports WHERE reference = ? OR compared = ?
		ORDER BY created_at DESC LIMIT ?`, path, path, limitArg(limit))
}

// Delete removes a report.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reports WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete report %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete report %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func limitArg(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e       Entry
			id      string
			created int64
			summary string
		)
		if err := rows.Scan(&id, &created, &e.Reference, &e.Compared, &summary, &e.CompressedSize); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		if e.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse report id %q: %w", id, err)
		}
		e.CreatedAt = time.Unix(0, created).UTC()
		if err := json.Unmarshal([]byte(summary), &e.Summary); err != nil {
			return nil, fmt.Errorf("unmarshal summary of %s: %w", id, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
