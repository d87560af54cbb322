package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/adapters/driven/storage/storetest"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/domain"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/ports/driven"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)
	return store
}

func TestStore_Conformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) driven.ChunkStore {
		return setupTestStore(t)
	})
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, "chunks.db"), store.Path())
	_, err = os.Stat(store.Path())
	assert.NoError(t, err)
}

func TestNewStore_ReopenKeepsDataAndMigrations(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Upsert(ctx, []domain.Chunk{
		storetest.NewChunk("a_1_0", "CS101", "week1.pdf", 1, 1, 0),
	}))
	require.NoError(t, store.Close())

	store, err = NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	n, err := store.Count(ctx, domain.ChunkFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var versions int
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&versions))
	assert.Equal(t, 1, versions)
}

func TestWhereClause(t *testing.T) {
	tests := []struct {
		name     string
		filter   domain.ChunkFilter
		wantSQL  string
		wantArgs []any
	}{
		{"empty", domain.ChunkFilter{}, "", nil},
		{"course", domain.ChunkFilter{CourseID: "CS101"}, " WHERE course_id = ?", []any{"CS101"}},
		{
			"all fields",
			domain.ChunkFilter{CourseID: "CS101", SourceFile: "a.pdf", DocType: domain.DocTypeExam},
			" WHERE course_id = ? AND source_file = ? AND doc_type = ?",
			[]any{"CS101", "a.pdf", "exam"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clause, args := whereClause(tt.filter)
			assert.Equal(t, tt.wantSQL, clause)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestVectorCodec(t *testing.T) {
	in := []float32{0, 1.5, -2.25, 3.4028235e38}

	out, err := decodeVector(encodeVector(in))
	require.NoError(t, err)
	assert.Equal(t, in, out)

	assert.Nil(t, encodeVector(nil))
	out, err = decodeVector(nil)
	assert.NoError(t, err)
	assert.Nil(t, out)

	_, err = decodeVector([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestPendingMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"002_sources.up.sql":   {Data: []byte("CREATE TABLE b (x);")},
		"001_initial.up.sql":   {Data: []byte("CREATE TABLE a (x);")},
		"001_initial.down.sql": {Data: []byte("DROP TABLE a;")},
		"notes.up.sql":         {Data: []byte("ignored")},
		"010_later.up.sql":     {Data: []byte("CREATE TABLE c (x);")},
	}

	all, err := pendingMigrations(fsys, 0)
	require.NoError(t, err)
	var versions []int
	for _, m := range all {
		versions = append(versions, m.version)
	}
	assert.Equal(t, []int{1, 2, 10}, versions)

	rest, err := pendingMigrations(fsys, 2)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "010_later.up.sql", rest[0].name)
}

func TestMigrate_FailedMigrationIsNotRecorded(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "m.db"))
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	fsys := fstest.MapFS{
		"001_ok.up.sql":  {Data: []byte("CREATE TABLE a (x);")},
		"002_bad.up.sql": {Data: []byte("CREATE TABLE nope (")},
	}
	assert.Error(t, migrate(ctx, db, fsys))

	var latest int
	require.NoError(t, db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&latest))
	assert.Equal(t, 1, latest)
}
