// Package exportlog keeps a SQLite history of export attempts. Only export
// metadata is stored; lesson-plan content never reaches the database.
package exportlog

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"
)

// Entry is one export attempt.
type Entry struct {
	ID        string        `json:"id"`
	Format    string        `json:"format"`
	Filename  string        `json:"filename,omitempty"`
	Subject   string        `json:"subject,omitempty"`
	Language  string        `json:"language,omitempty"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
	Pages     int           `json:"pages"`
	Bytes     int           `json:"bytes"`
	Duration  time.Duration `json:"duration"`
	CreatedAt time.Time     `json:"createdAt"`
}

// timeLayout has fixed width so created_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ListParams filters List results. Limit 0 means 50.
type ListParams struct {
	Limit      int
	Format     string
	FailedOnly bool
}

// Store is a SQLite-backed export history.
type Store struct {
	db *sql.DB

	mu      sync.Mutex
	entropy *rand.Rand
}

// Open opens or creates the history database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	s := &Store{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) newID(t time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), s.entropy).String()
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS exports (
		id          TEXT PRIMARY KEY,
		format      TEXT NOT NULL,
		filename    TEXT,
		subject     TEXT,
		language    TEXT,
		success     INTEGER NOT NULL,
		error       TEXT,
		pages       INTEGER NOT NULL DEFAULT 0,
		bytes       INTEGER NOT NULL DEFAULT 0,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		created_at  TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_exports_created ON exports(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_exports_format ON exports(format);
	`)
	return err
}

// Append stores e, filling in ID and CreatedAt when empty.
func (s *Store) Append(ctx context.Context, e Entry) (Entry, error) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	if e.ID == "" {
		e.ID = s.newID(e.CreatedAt)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO exports (id, format, filename, subject, language, success, error, pages, bytes, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Format, e.Filename, e.Subject, e.Language, boolToInt(e.Success), e.Error,
		e.Pages, e.Bytes, e.Duration.Milliseconds(), e.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("insert export: %w", err)
	}
	return e, nil
}

// List returns the newest entries first.
func (s *Store) List(ctx context.Context, p ListParams) ([]Entry, error) {
	query := `SELECT id, format, filename, subject, language, success, error, pages, bytes, duration_ms, created_at FROM exports`
	var where []string
	var args []any
	if p.Format != "" {
		where = append(where, "format = ?")
		args = append(args, strings.ToLower(p.Format))
	}
	if p.FailedOnly {
		where = append(where, "success = 0")
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	limit := p.Limit
	if limit <= 0 {
		limit = 50
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query exports: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e                       Entry
			filename, subject, lang sql.NullString
			errText                 sql.NullString
			success                 int
			durationMS              int64
			created                 string
		)
		if err := rows.Scan(&e.ID, &e.Format, &filename, &subject, &lang, &success, &errText, &e.Pages, &e.Bytes, &durationMS, &created); err != nil {
			return nil, fmt.Errorf("scan export: %w", err)
		}
		e.Filename, e.Subject, e.Language, e.Error = filename.String, subject.String, lang.String, errText.String
		e.Success = success != 0
		e.Duration = time.Duration(durationMS) * time.Millisecond
		e.CreatedAt, _ = time.Parse(timeLayout, created)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
