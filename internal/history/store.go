// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history records analysis runs in a SQLite database and exports
// them as YAML or JSON.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/paper-analysis/pkg/types"
)

// DefaultLimit caps List when the caller passes a non-positive limit.
const DefaultLimit = 20

// Store manages the run history database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the history database at path, creating parent
// directories and the schema as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS analyses (
			id TEXT PRIMARY KEY,
			pdf_path TEXT NOT NULL,
			output_path TEXT,
			model TEXT,
			pages INTEGER,
			text_chars INTEGER,
			prompt_chars INTEGER,
			truncated INTEGER,
			prompt_tokens INTEGER,
			completion_tokens INTEGER,
			status TEXT NOT NULL,
			error TEXT,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses(created_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores one run. A missing ID is filled with a random UUID and a
// zero CreatedAt with the current time; the stored row is returned.
func (s *Store) Record(ctx context.Context, a types.Analysis) (types.Analysis, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.now()
	}
	a.CreatedAt = a.CreatedAt.UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO analyses (id, pdf_path, output_path, model, pages, text_chars, prompt_chars,
			truncated, prompt_tokens, completion_tokens, status, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			output_path=excluded.output_path, status=excluded.status, error=excluded.error,
			prompt_tokens=excluded.prompt_tokens, completion_tokens=excluded.completion_tokens`,
		a.ID, a.PDFPath, a.OutputPath, a.Model, a.Pages, a.TextChars, a.PromptChars,
		a.Truncated, a.PromptTokens, a.CompletionTokens, string(a.Status), a.Error,
		a.CreatedAt.UnixNano(),
	)
	if err != nil {
		return a, fmt.Errorf("inserting analysis %s: %w", a.ID, err)
	}
	return a, nil
}

// List returns up to limit runs, newest first. A non-positive limit means
// DefaultLimit.
func (s *Store) List(ctx context.Context, limit int) ([]types.Analysis, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return s.query(ctx, limit)
}

// query returns runs newest first. A negative limit returns every row.
func (s *Store) query(ctx context.Context, limit int) ([]types.Analysis, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, pdf_path, output_path, model, pages, text_chars, prompt_chars,
			truncated, prompt_tokens, completion_tokens, status, error, created_at
		 FROM analyses ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying analyses: %w", err)
	}
	defer rows.Close()

	var out []types.Analysis
	for rows.Next() {
		var (
			a                         types.Analysis
			outputPath, model, errMsg sql.NullString
			status                    string
			createdAt                 int64
		)
		if err := rows.Scan(&a.ID, &a.PDFPath, &outputPath, &model, &a.Pages, &a.TextChars,
			&a.PromptChars, &a.Truncated, &a.PromptTokens, &a.CompletionTokens,
			&status, &errMsg, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning analysis: %w", err)
		}
		a.OutputPath = outputPath.String
		a.Model = model.String
		a.Error = errMsg.String
		a.Status = types.AnalysisStatus(status)
		a.CreatedAt = time.Unix(0, createdAt).UTC()
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating analyses: %w", err)
	}
	return out, nil
}
