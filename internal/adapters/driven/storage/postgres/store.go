// Package postgres provides a chunk store backed by PostgreSQL with pgvector.
package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/domain"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.ChunkStore = (*Store)(nil)

const schema = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS chunks (
    id          TEXT PRIMARY KEY,
    course_id   TEXT NOT NULL,
    source_file TEXT NOT NULL,
    doc_type    TEXT NOT NULL,
    file_type   TEXT NOT NULL,
    page_number INTEGER NOT NULL,
    chunk_index INTEGER NOT NULL,
    total_pages INTEGER NOT NULL,
    content     TEXT NOT NULL,
    uploaded_at TIMESTAMPTZ NOT NULL,
    embedding   vector NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_chunks_course ON chunks(course_id);
CREATE INDEX IF NOT EXISTS idx_chunks_course_file ON chunks(course_id, source_file);
`

const chunkColumns = "id, course_id, source_file, doc_type, file_type, page_number, chunk_index, total_pages, content, uploaded_at"

// Store persists chunks in a shared chunks table.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to dsn and ensures the schema exists.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("%w: postgres dsn is required", domain.ErrInvalidInput)
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// Upsert stores or replaces chunks by ID.
func (s *Store) Upsert(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	for i := range chunks {
		if len(chunks[i].Embedding) == 0 {
			return fmt.Errorf("%w: chunk %s has no embedding", domain.ErrInvalidInput, chunks[i].ID)
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx upsert chunks: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	for i := range chunks {
		c := &chunks[i]
		_, err := tx.Exec(ctx, `
INSERT INTO chunks (`+chunkColumns+`, embedding)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::vector)
ON CONFLICT (id)
DO UPDATE SET
  course_id = EXCLUDED.course_id,
  source_file = EXCLUDED.source_file,
  doc_type = EXCLUDED.doc_type,
  file_type = EXCLUDED.file_type,
  page_number = EXCLUDED.page_number,
  chunk_index = EXCLUDED.chunk_index,
  total_pages = EXCLUDED.total_pages,
  content = EXCLUDED.content,
  uploaded_at = EXCLUDED.uploaded_at,
  embedding = EXCLUDED.embedding`,
			c.ID, c.CourseID, c.SourceFile, string(c.DocType), string(c.FileType),
			c.PageNumber, c.ChunkIndex, c.TotalPages, c.Content, c.UploadedAt.UTC(),
			ToLiteral(c.Embedding),
		)
		if err != nil {
			return fmt.Errorf("upsert chunk %s: %w", c.ID, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit chunks tx: %w", err)
	}
	return nil
}

// Search ranks matching chunks by cosine similarity using pgvector.
func (s *Store) Search(ctx context.Context, query []float32, k int, filter domain.ChunkFilter) ([]domain.ScoredChunk, error) {
	if k <= 0 {
		return nil, nil
	}
	where, args := whereClause(filter, 3)
	args = append([]any{ToLiteral(query), k}, args...)

	rows, err := s.pool.Query(ctx, `
SELECT `+chunkColumns+`,
       1 - (embedding <=> $1::vector) AS score
FROM chunks`+where+`
ORDER BY embedding <=> $1::vector, id
LIMIT $2`, args...)
	if err != nil {
		return nil, fmt.Errorf("query vector search: %w", err)
	}
	defer rows.Close()

	results := make([]domain.ScoredChunk, 0, k)
	for rows.Next() {
		var r domain.ScoredChunk
		dest := append(chunkDest(&r.Chunk), &r.Score)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan chunk result: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate search rows: %w", err)
	}
	return results, nil
}

// Find returns matching chunks without embeddings.
func (s *Store) Find(ctx context.Context, filter domain.ChunkFilter) ([]domain.Chunk, error) {
	where, args := whereClause(filter, 1)
	rows, err := s.pool.Query(ctx, "SELECT "+chunkColumns+" FROM chunks"+where+
		" ORDER BY course_id, source_file, page_number, chunk_index", args...)
	if err != nil {
		return nil, fmt.Errorf("list chunks: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Chunk, 0, 64)
	for rows.Next() {
		var c domain.Chunk
		if err := rows.Scan(chunkDest(&c)...); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunks: %w", err)
	}
	return out, nil
}

// Delete removes matching chunks and reports how many were removed.
func (s *Store) Delete(ctx context.Context, filter domain.ChunkFilter) (int, error) {
	if filter.IsEmpty() {
		return 0, fmt.Errorf("%w: delete requires a filter", domain.ErrInvalidInput)
	}
	where, args := whereClause(filter, 1)
	tag, err := s.pool.Exec(ctx, "DELETE FROM chunks"+where, args...)
	if err != nil {
		return 0, fmt.Errorf("delete chunks: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// Count returns the number of matching chunks.
func (s *Store) Count(ctx context.Context, filter domain.ChunkFilter) (int, error) {
	where, args := whereClause(filter, 1)
	var n int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM chunks"+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	return n, nil
}

// Courses lists the distinct course IDs.
func (s *Store) Courses(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, "SELECT DISTINCT course_id FROM chunks WHERE course_id <> '' ORDER BY course_id")
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	courses, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	if courses == nil {
		courses = []string{}
	}
	return courses, nil
}

// truncate empties the table. Used by tests.
func (s *Store) truncate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "TRUNCATE chunks")
	return err
}

// chunkDest returns scan targets matching chunkColumns.
func chunkDest(c *domain.Chunk) []any {
	return []any{
		&c.ID, &c.CourseID, &c.SourceFile, (*string)(&c.DocType), (*string)(&c.FileType),
		&c.PageNumber, &c.ChunkIndex, &c.TotalPages, &c.Content, &c.UploadedAt,
	}
}

// whereClause renders the filter with placeholders numbered from first.
func whereClause(f domain.ChunkFilter, first int) (string, []any) {
	var conds []string
	var args []any
	add := func(col string, v any) {
		conds = append(conds, fmt.Sprintf("%s = $%d", col, first+len(args)))
		args = append(args, v)
	}
	if f.CourseID != "" {
		add("course_id", f.CourseID)
	}
	if f.SourceFile != "" {
		add("source_file", f.SourceFile)
	}
	if f.DocType != "" {
		add("doc_type", string(f.DocType))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ToLiteral renders v in pgvector text form using the shortest float32
// representation, so tiny components survive the round trip.
func ToLiteral(v []float32) string {
	b := make([]byte, 0, 2+len(v)*12)
	b = append(b, '[')
	for i, x := range v {
		if i > 0 {
			b = append(b, ',')
		}
		b = strconv.AppendFloat(b, float64(x), 'g', -1, 32)
	}
	return string(append(b, ']'))
}
