package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/snapshot"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// DBFile is the database filename inside a generation directory.
const DBFile = "index.db"

// timeLayout is used for all stored timestamps.
const timeLayout = time.RFC3339Nano

var _ driven.VectorStore = (*Store)(nil)

// Store writes and reads generation databases.
type Store struct{}

// NewStore creates a new SQLite vector store.
func NewStore() *Store {
	return &Store{}
}

// Build writes the generation to dir/index.db and returns it.
// dir must exist and must not already hold a database.
func (s *Store) Build(
	ctx context.Context,
	dir string,
	manifest driven.Manifest,
	doc domain.Document,
	segments []domain.Segment,
	embeddings [][]float32,
) (driven.Generation, error) {
	gen, err := snapshot.New(dir, manifest, doc, segments, embeddings)
	if err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, DBFile)
	if _, err := os.Stat(dbPath); err == nil {
		return nil, fmt.Errorf("generation database already exists: %s", dbPath)
	}

	if err := writeDB(ctx, dbPath, gen); err != nil {
		// Open must never find a half-written database.
		_ = os.Remove(dbPath)
		return nil, err
	}
	return gen, nil
}

func writeDB(ctx context.Context, dbPath string, gen *snapshot.Generation) error {
	db, err := openDB(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migrate(db, migrations.FS); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return writeGeneration(ctx, db, gen)
}

// Open reads the generation stored in dir.
func (s *Store) Open(ctx context.Context, dir string) (driven.Generation, error) {
	dbPath := filepath.Join(dir, DBFile)
	if _, err := os.Stat(dbPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: no generation in %s", domain.ErrNotFound, dir)
		}
		return nil, fmt.Errorf("checking generation database: %w", err)
	}

	db, err := openDB(dbPath)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	manifest, err := readManifest(ctx, db)
	if err != nil {
		return nil, err
	}
	doc, err := readDocument(ctx, db)
	if err != nil {
		return nil, err
	}
	segments, embeddings, err := readSegments(ctx, db)
	if err != nil {
		return nil, err
	}

	return snapshot.New(dir, manifest, doc, segments, embeddings)
}

// openDB opens a database file, creating it if missing.
func openDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One connection keeps every statement on the same file handle.
	db.SetMaxOpenConns(1)
	return db, nil
}

// migrate runs all pending migrations.
func migrate(db *sql.DB, fsys fs.FS) error {
	// Ensure schema_migrations table exists
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_generation.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// writeGeneration stores the whole generation in one transaction.
func writeGeneration(ctx context.Context, db *sql.DB, gen *snapshot.Generation) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	m := gen.Manifest()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO manifest (id, generation_id, embedding_model, dimensions, created_at)
		VALUES (1, ?, ?, ?, ?)
	`, m.GenerationID, m.EmbeddingModel, m.Dimensions, m.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("inserting manifest: %w", err)
	}

	doc := gen.Document()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO document (id, name, content, ingested_at)
		VALUES (1, ?, ?, ?)
	`, doc.Name, doc.Text, doc.IngestedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("inserting document: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO segments (position, start, content, embedding)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing segment insert: %w", err)
	}
	defer stmt.Close()

	embeddings := gen.Embeddings()
	for i, seg := range gen.Segments() {
		if _, err := stmt.ExecContext(ctx, seg.Position, seg.Start, seg.Content,
			float32SliceToBytes(embeddings[i])); err != nil {
			return fmt.Errorf("inserting segment %d: %w", seg.Position, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing generation: %w", err)
	}
	return nil
}

func readManifest(ctx context.Context, db *sql.DB) (driven.Manifest, error) {
	var (
		m         driven.Manifest
		createdAt string
	)
	row := db.QueryRowContext(ctx, `
		SELECT generation_id, embedding_model, dimensions, created_at FROM manifest WHERE id = 1
	`)
	if err := row.Scan(&m.GenerationID, &m.EmbeddingModel, &m.Dimensions, &createdAt); err != nil {
		return driven.Manifest{}, fmt.Errorf("reading manifest: %w", err)
	}

	t, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return driven.Manifest{}, fmt.Errorf("parsing manifest time: %w", err)
	}
	m.CreatedAt = t
	return m, nil
}

func readDocument(ctx context.Context, db *sql.DB) (domain.Document, error) {
	var (
		doc        domain.Document
		ingestedAt string
	)
	row := db.QueryRowContext(ctx, "SELECT name, content, ingested_at FROM document WHERE id = 1")
	if err := row.Scan(&doc.Name, &doc.Text, &ingestedAt); err != nil {
		return domain.Document{}, fmt.Errorf("reading document: %w", err)
	}

	t, err := time.Parse(timeLayout, ingestedAt)
	if err != nil {
		return domain.Document{}, fmt.Errorf("parsing ingest time: %w", err)
	}
	doc.IngestedAt = t
	return doc, nil
}

func readSegments(ctx context.Context, db *sql.DB) ([]domain.Segment, [][]float32, error) {
	rows, err := db.QueryContext(ctx, "SELECT position, start, content, embedding FROM segments ORDER BY position")
	if err != nil {
		return nil, nil, fmt.Errorf("querying segments: %w", err)
	}
	defer rows.Close()

	var (
		segments   []domain.Segment
		embeddings [][]float32
	)
	for rows.Next() {
		var (
			seg  domain.Segment
			blob []byte
		)
		if err := rows.Scan(&seg.Position, &seg.Start, &seg.Content, &blob); err != nil {
			return nil, nil, fmt.Errorf("scanning segment: %w", err)
		}
		segments = append(segments, seg)
		embeddings = append(embeddings, bytesToFloat32Slice(blob))
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterating segments: %w", err)
	}
	return segments, embeddings, nil
}

// ==================== Helper Functions ====================

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
