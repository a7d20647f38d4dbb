package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/veldt-labs/ragkit/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/veldt-labs/ragkit/internal/core/domain"
	"github.com/veldt-labs/ragkit/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that backs both the document
// store and the vector index through wrapper types sharing one database.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.ragkit/data/ragkit.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".ragkit", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "ragkit.db")

	// WAL mode for better concurrency. Pragmas go in the DSN so the
	// driver applies them to every pooled connection; foreign_keys in
	// particular must hold on whichever connection serves a delete, or
	// the passage cascade silently does not run.
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// DocumentStore returns a DocumentStore interface backed by this store.
func (s *Store) DocumentStore() driven.DocumentStore {
	return &documentStore{store: s}
}

// VectorIndex returns a VectorIndex interface backed by this store.
func (s *Store) VectorIndex() driven.VectorIndex {
	return &vectorIndex{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

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
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Document Store ====================

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

// SaveDocument stores or updates a document.
func (s *documentStore) SaveDocument(ctx context.Context, doc *domain.Document) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO documents (id, title, content, origin, external_link, category, modified_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			origin = excluded.origin,
			external_link = excluded.external_link,
			category = excluded.category,
			modified_at = excluded.modified_at,
			created_at = excluded.created_at
	`, doc.ID, doc.Title, doc.Content, doc.Origin, doc.ExternalLink,
		doc.Category, doc.ModifiedAt, doc.CreatedAt)

	if err != nil {
		return fmt.Errorf("%w: saving document: %w", domain.ErrStorage, err)
	}
	return nil
}

// SavePassages stores the passages of a document in one transaction.
func (s *documentStore) SavePassages(ctx context.Context, passages []domain.Passage) error {
	if len(passages) == 0 {
		return nil
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %w", domain.ErrStorage, err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO passages (id, document_id, text, ordinal, total, length, category)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			document_id = excluded.document_id,
			text = excluded.text,
			ordinal = excluded.ordinal,
			total = excluded.total,
			length = excluded.length,
			category = excluded.category
	`)
	if err != nil {
		return fmt.Errorf("%w: preparing statement: %w", domain.ErrStorage, err)
	}
	defer stmt.Close()

	for _, p := range passages {
		if _, err := stmt.ExecContext(ctx, p.ID, p.DocumentID, p.Text,
			p.Ordinal, p.Total, p.Length, p.Category); err != nil {
			return fmt.Errorf("%w: saving passage: %w", domain.ErrStorage, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing transaction: %w", domain.ErrStorage, err)
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *documentStore) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, title, content, origin, external_link, category, modified_at, created_at
		FROM documents WHERE id = ?
	`, id)

	var doc domain.Document
	var origin, externalLink, category sql.NullString
	var modifiedAt, createdAt sql.NullTime
	if err := row.Scan(&doc.ID, &doc.Title, &doc.Content, &origin,
		&externalLink, &category, &modifiedAt, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning document: %w", domain.ErrStorage, err)
	}

	doc.Origin = origin.String
	doc.ExternalLink = externalLink.String
	doc.Category = category.String
	if modifiedAt.Valid {
		doc.ModifiedAt = modifiedAt.Time
	}
	if createdAt.Valid {
		doc.CreatedAt = createdAt.Time
	}

	return &doc, nil
}

// GetPassages retrieves a document's passages ordered by ordinal.
func (s *documentStore) GetPassages(ctx context.Context, documentID string) ([]domain.Passage, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, document_id, text, ordinal, total, length, category
		FROM passages WHERE document_id = ?
		ORDER BY ordinal
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying passages: %w", domain.ErrStorage, err)
	}
	defer rows.Close()

	var passages []domain.Passage //nolint:prealloc // size unknown from query
	for rows.Next() {
		var p domain.Passage
		var category sql.NullString
		if err := rows.Scan(&p.ID, &p.DocumentID, &p.Text,
			&p.Ordinal, &p.Total, &p.Length, &category); err != nil {
			return nil, fmt.Errorf("%w: scanning passage: %w", domain.ErrStorage, err)
		}
		p.Category = category.String
		passages = append(passages, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating passages: %w", domain.ErrStorage, err)
	}

	return passages, nil
}

// DeleteDocument removes a document; its passages go with it via the
// foreign key cascade.
func (s *documentStore) DeleteDocument(ctx context.Context, id string) error {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("%w: deleting document: %w", domain.ErrStorage, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: checking delete result: %w", domain.ErrStorage, err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListDocuments returns all stored documents.
func (s *documentStore) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, title, content, origin, external_link, category, modified_at, created_at
		FROM documents ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying documents: %w", domain.ErrStorage, err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		var doc domain.Document
		var origin, externalLink, category sql.NullString
		var modifiedAt, createdAt sql.NullTime
		if err := rows.Scan(&doc.ID, &doc.Title, &doc.Content, &origin,
			&externalLink, &category, &modifiedAt, &createdAt); err != nil {
			return nil, fmt.Errorf("%w: scanning document: %w", domain.ErrStorage, err)
		}
		doc.Origin = origin.String
		doc.ExternalLink = externalLink.String
		doc.Category = category.String
		if modifiedAt.Valid {
			doc.ModifiedAt = modifiedAt.Time
		}
		if createdAt.Valid {
			doc.CreatedAt = createdAt.Time
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating documents: %w", domain.ErrStorage, err)
	}

	return docs, nil
}

// Clear removes all documents and passages.
func (s *documentStore) Clear(ctx context.Context) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM documents"); err != nil {
		return fmt.Errorf("%w: clearing documents: %w", domain.ErrStorage, err)
	}
	return nil
}

// Counts returns the number of stored documents and passages.
func (s *documentStore) Counts(ctx context.Context) (int, int, error) {
	var docs, passages int
	if err := s.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM documents").Scan(&docs); err != nil {
		return 0, 0, fmt.Errorf("%w: counting documents: %w", domain.ErrStorage, err)
	}
	if err := s.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM passages").Scan(&passages); err != nil {
		return 0, 0, fmt.Errorf("%w: counting passages: %w", domain.ErrStorage, err)
	}
	return docs, passages, nil
}

// ==================== Vector Index ====================

// vectorIndex implements driven.VectorIndex. Embeddings are stored as
// little-endian float32 blobs; similarity scoring happens in Go over a
// full table scan, same as the in-memory index.
type vectorIndex struct {
	store *Store
}

var _ driven.VectorIndex = (*vectorIndex)(nil)

// Upsert stores an entry, replacing any entry with the same passage ID.
func (x *vectorIndex) Upsert(ctx context.Context, entry domain.VectorEntry) error {
	return x.UpsertBatch(ctx, []domain.VectorEntry{entry})
}

// UpsertBatch stores multiple entries in one transaction.
func (x *vectorIndex) UpsertBatch(ctx context.Context, entries []domain.VectorEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := x.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %w", domain.ErrStorage, err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO vectors (passage_id, document_id, embedding, text, category, ordinal, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(passage_id) DO UPDATE SET
			document_id = excluded.document_id,
			embedding = excluded.embedding,
			text = excluded.text,
			category = excluded.category,
			ordinal = excluded.ordinal,
			created_at = excluded.created_at
	`)
	if err != nil {
		return fmt.Errorf("%w: preparing statement: %w", domain.ErrStorage, err)
	}
	defer stmt.Close()

	for _, entry := range entries {
		blob := float32SliceToBytes(entry.Embedding)
		if _, err := stmt.ExecContext(ctx, entry.PassageID, entry.DocumentID,
			blob, entry.Text, entry.Category, entry.Ordinal, entry.CreatedAt); err != nil {
			return fmt.Errorf("%w: saving vector: %w", domain.ErrStorage, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing transaction: %w", domain.ErrStorage, err)
	}
	return nil
}

// Search scores every stored vector against the query with cosine
// similarity, keeps scores >= minSimilarity, and returns at most topK
// results sorted by descending score. Ties keep insertion order, which
// rowid preserves.
func (x *vectorIndex) Search(
	ctx context.Context, query []float32, topK int, minSimilarity float64,
) ([]domain.RetrievedPassage, error) {
	if topK <= 0 {
		topK = domain.DefaultTopK
	}

	rows, err := x.store.db.QueryContext(ctx, `
		SELECT passage_id, document_id, embedding, text, category, ordinal, created_at
		FROM vectors ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying vectors: %w", domain.ErrStorage, err)
	}
	defer rows.Close()

	var results []domain.RetrievedPassage
	for rows.Next() {
		var entry domain.VectorEntry
		var blob []byte
		var category sql.NullString
		var createdAt sql.NullTime
		if err := rows.Scan(&entry.PassageID, &entry.DocumentID, &blob,
			&entry.Text, &category, &entry.Ordinal, &createdAt); err != nil {
			return nil, fmt.Errorf("%w: scanning vector: %w", domain.ErrStorage, err)
		}
		entry.Embedding = bytesToFloat32Slice(blob)
		entry.Category = category.String
		if createdAt.Valid {
			entry.CreatedAt = createdAt.Time
		}

		score := domain.CosineSimilarity(query, entry.Embedding)
		if score < minSimilarity {
			continue
		}
		results = append(results, domain.RetrievedPassage{
			Entry:      entry,
			Similarity: score,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating vectors: %w", domain.ErrStorage, err)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// DeleteDocument removes all entries belonging to a document.
func (x *vectorIndex) DeleteDocument(ctx context.Context, documentID string) error {
	if _, err := x.store.db.ExecContext(ctx,
		"DELETE FROM vectors WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("%w: deleting vectors: %w", domain.ErrStorage, err)
	}
	return nil
}

// Clear removes all entries.
func (x *vectorIndex) Clear(ctx context.Context) error {
	if _, err := x.store.db.ExecContext(ctx, "DELETE FROM vectors"); err != nil {
		return fmt.Errorf("%w: clearing vectors: %w", domain.ErrStorage, err)
	}
	return nil
}

// Count returns the number of stored entries.
func (x *vectorIndex) Count(ctx context.Context) (int, error) {
	var count int
	if err := x.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM vectors").Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: counting vectors: %w", domain.ErrStorage, err)
	}
	return count, nil
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
