package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/adapters/driven/storage/vecmath"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/domain"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/ports/driven"
)

var _ driven.ChunkStore = (*Store)(nil)

const chunkColumns = "id, course_id, source_file, doc_type, file_type, page_number, chunk_index, total_pages, content, uploaded_at"

type Store struct {
	db   *sql.DB
	path string
}

// dsn turns on WAL and waits up to 5s on a locked database.
const dsn = "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"

// NewStore opens dir/chunks.db, creating the directory and bringing the
// schema up to date. An empty dir means ~/.coursemate/data.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("locating home directory: %w", err)
		}
		dir = filepath.Join(home, ".coursemate", "data")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dir, err)
	}

	file := filepath.Join(dir, "chunks.db")
	db, err := sql.Open("sqlite", file+dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", file, err)
	}
	db.SetMaxOpenConns(1)

	if err := migrate(context.Background(), db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrating %s: %w", file, err)
	}
	return &Store{db: db, path: file}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Path is the database file.
func (s *Store) Path() string { return s.path }

// Upsert stores or replaces chunks by ID in a single transaction.
func (s *Store) Upsert(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	for i := range chunks {
		if len(chunks[i].Embedding) == 0 {
			return fmt.Errorf("%w: chunk %s has no embedding", domain.ErrInvalidInput, chunks[i].ID)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting upsert: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (`+chunkColumns+`, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			course_id = excluded.course_id,
			source_file = excluded.source_file,
			doc_type = excluded.doc_type,
			file_type = excluded.file_type,
			page_number = excluded.page_number,
			chunk_index = excluded.chunk_index,
			total_pages = excluded.total_pages,
			content = excluded.content,
			uploaded_at = excluded.uploaded_at,
			embedding = excluded.embedding
	`)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	for i := range chunks {
		c := &chunks[i]
		if _, err := stmt.ExecContext(ctx,
			c.ID, c.CourseID, c.SourceFile, string(c.DocType), string(c.FileType),
			c.PageNumber, c.ChunkIndex, c.TotalPages, c.Content,
			c.UploadedAt.UTC().Format(time.RFC3339Nano),
			encodeVector(c.Embedding),
		); err != nil {
			return fmt.Errorf("saving chunk %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing %d chunks: %w", len(chunks), err)
	}
	return nil
}

// Search scores every chunk that passes filter against query and keeps the
// best k.
func (s *Store) Search(ctx context.Context, query []float32, k int, filter domain.ChunkFilter) ([]domain.ScoredChunk, error) {
	if k <= 0 {
		return nil, nil
	}
	var scored []domain.ScoredChunk
	err := s.each(ctx, filter, true, "", func(c domain.Chunk, vec []float32) {
		scored = append(scored, domain.ScoredChunk{Chunk: c, Score: vecmath.Cosine(query, vec)})
	})
	if err != nil {
		return nil, err
	}
	return vecmath.TopK(scored, k), nil
}

// Find lists matching chunks in document order, without embeddings.
func (s *Store) Find(ctx context.Context, filter domain.ChunkFilter) ([]domain.Chunk, error) {
	var chunks []domain.Chunk
	err := s.each(ctx, filter, false, " ORDER BY course_id, source_file, page_number, chunk_index",
		func(c domain.Chunk, _ []float32) { chunks = append(chunks, c) })
	return chunks, err
}

// each runs a SELECT over the matching rows and hands every chunk to fn,
// decoding the embedding only when withVectors is set.
func (s *Store) each(ctx context.Context, filter domain.ChunkFilter, withVectors bool, order string, fn func(domain.Chunk, []float32)) error {
	cols := chunkColumns
	if withVectors {
		cols += ", embedding"
	}
	where, args := whereClause(filter)
	rows, err := s.db.QueryContext(ctx, "SELECT "+cols+" FROM chunks"+where+order, args...)
	if err != nil {
		return fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var blob []byte
		dst := &blob
		if !withVectors {
			dst = nil
		}
		c, err := scanChunk(rows, dst)
		if err != nil {
			return err
		}
		vec, err := decodeVector(blob)
		if err != nil {
			return fmt.Errorf("chunk %s: %w", c.ID, err)
		}
		fn(*c, vec)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("reading chunks: %w", err)
	}
	return nil
}

// Delete removes matching chunks and reports how many were removed.
func (s *Store) Delete(ctx context.Context, filter domain.ChunkFilter) (int, error) {
	if filter.IsEmpty() {
		return 0, fmt.Errorf("%w: delete requires a filter", domain.ErrInvalidInput)
	}

	where, args := whereClause(filter)
	res, err := s.db.ExecContext(ctx, "DELETE FROM chunks"+where, args...)
	if err != nil {
		return 0, fmt.Errorf("deleting chunks: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted chunks: %w", err)
	}
	return int(n), nil
}

// Count returns the number of matching chunks.
func (s *Store) Count(ctx context.Context, filter domain.ChunkFilter) (int, error) {
	where, args := whereClause(filter)
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks"+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return n, nil
}

// Courses lists the distinct course IDs.
func (s *Store) Courses(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT course_id FROM chunks WHERE course_id <> '' ORDER BY course_id")
	if err != nil {
		return nil, fmt.Errorf("listing courses: %w", err)
	}
	defer rows.Close()

	courses := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning course: %w", err)
		}
		courses = append(courses, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing courses: %w", err)
	}
	return courses, nil
}

// whereClause renders the filter as an AND of equality conditions.
func whereClause(f domain.ChunkFilter) (string, []any) {
	var conds []string
	var args []any
	if f.CourseID != "" {
		conds = append(conds, "course_id = ?")
		args = append(args, f.CourseID)
	}
	if f.SourceFile != "" {
		conds = append(conds, "source_file = ?")
		args = append(args, f.SourceFile)
	}
	if f.DocType != "" {
		conds = append(conds, "doc_type = ?")
		args = append(args, string(f.DocType))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// scanChunk scans the chunkColumns, plus the embedding blob when blob is non-nil.
func scanChunk(rows *sql.Rows, blob *[]byte) (*domain.Chunk, error) {
	var (
		c                 domain.Chunk
		docType, fileType string
		uploadedAt        string
	)
	dest := []any{
		&c.ID, &c.CourseID, &c.SourceFile, &docType, &fileType,
		&c.PageNumber, &c.ChunkIndex, &c.TotalPages, &c.Content, &uploadedAt,
	}
	if blob != nil {
		dest = append(dest, blob)
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}

	c.DocType = domain.DocType(docType)
	c.FileType = domain.FileType(fileType)
	t, err := time.Parse(time.RFC3339Nano, uploadedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing uploaded_at of %s: %w", c.ID, err)
	}
	c.UploadedAt = t
	return &c, nil
}
