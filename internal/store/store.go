// Package store keeps the analysed resume pool in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/spigell/resumatch/internal/resume"
)

// ErrNotFound is returned when no resume has the requested id.
var ErrNotFound = errors.New("resume not found")

const memoryPath = ":memory:"

const schema = `
CREATE TABLE IF NOT EXISTS resumes (
	id              TEXT PRIMARY KEY,
	file_name       TEXT NOT NULL DEFAULT '',
	text            TEXT NOT NULL DEFAULT '',
	summary         TEXT NOT NULL DEFAULT '',
	skills          TEXT NOT NULL DEFAULT '[]',
	experience      INTEGER NOT NULL DEFAULT 0,
	education_level TEXT NOT NULL DEFAULT '',
	category        TEXT NOT NULL DEFAULT '',
	source          TEXT NOT NULL DEFAULT '',
	embedding       TEXT,
	created_at      INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_resumes_created_at ON resumes(created_at);
`

// Resume is one stored resume with its analysis and optional embedding.
type Resume struct {
	ID        string          `json:"id"`
	FileName  string          `json:"fileName,omitempty"`
	Text      string          `json:"-"`
	Analysis  resume.Analysis `json:"analysis"`
	Embedding []float64       `json:"-"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Store is a SQLite-backed resume pool.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the database at path. ":memory:" gives a private
// in-memory pool.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("store path is required")
	}

	dsn := memoryPath
	if path != memoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	// one connection keeps an in-memory database alive and serializes writes
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect store: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate store: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save inserts r, or replaces the stored resume with the same id. A missing
// id is generated. The stored id is returned.
func (s *Store) Save(ctx context.Context, r *Resume) (string, error) {
	if r == nil {
		return "", errors.New("resume is required")
	}
	if err := r.Analysis.Validate(); err != nil {
		return "", err
	}

	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now().UTC()
	}

	skills, err := json.Marshal(r.Analysis.Skills)
	if err != nil {
		return "", fmt.Errorf("encode skills: %w", err)
	}

	var embedding sql.NullString
	if len(r.Embedding) > 0 {
		raw, err := json.Marshal(r.Embedding)
		if err != nil {
			return "", fmt.Errorf("encode embedding: %w", err)
		}
		embedding = sql.NullString{String: string(raw), Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO resumes
			(id, file_name, text, summary, skills, experience, education_level, category, source, embedding, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.FileName, r.Text, r.Analysis.Summary, string(skills), int(r.Analysis.Experience),
		string(r.Analysis.EducationLevel), r.Analysis.Category, r.Analysis.Source, embedding,
		r.CreatedAt.UnixNano(),
	)
	if err != nil {
		return "", fmt.Errorf("save resume %s: %w", r.ID, err)
	}

	return r.ID, nil
}

const selectColumns = `SELECT id, file_name, text, summary, skills, experience, education_level, category, source, embedding, created_at FROM resumes`

// Get returns the resume with the given id.
func (s *Store) Get(ctx context.Context, id string) (*Resume, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	r, err := scanResume(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// List returns the resumes matching filter, oldest first.
func (s *Store) List(ctx context.Context, filter Filter) ([]*Resume, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+` ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list resumes: %w", err)
	}
	defer rows.Close()

	var out []*Resume
	for rows.Next() {
		r, err := scanResume(rows)
		if err != nil {
			return nil, err
		}
		if filter.Match(r.Analysis.Record) {
			out = append(out, r)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list resumes: %w", err)
	}
	return out, nil
}

// Delete removes the resume with the given id.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM resumes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete resume %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete resume %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResume(row scanner) (*Resume, error) {
	var (
		r          Resume
		skills     string
		experience int
		education  string
		embedding  sql.NullString
		createdAt  int64
	)

	err := row.Scan(&r.ID, &r.FileName, &r.Text, &r.Analysis.Summary, &skills, &experience,
		&education, &r.Analysis.Category, &r.Analysis.Source, &embedding, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan resume: %w", err)
	}

	if err := json.Unmarshal([]byte(skills), &r.Analysis.Skills); err != nil {
		return nil, fmt.Errorf("decode skills of %s: %w", r.ID, err)
	}
	if embedding.Valid && embedding.String != "" {
		if err := json.Unmarshal([]byte(embedding.String), &r.Embedding); err != nil {
			return nil, fmt.Errorf("decode embedding of %s: %w", r.ID, err)
		}
	}

	r.Analysis.Experience = resume.Years(experience)
	r.Analysis.EducationLevel = resume.EducationLevel(education)
	r.CreatedAt = time.Unix(0, createdAt).UTC()

	return &r, nil
}
