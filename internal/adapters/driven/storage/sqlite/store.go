package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
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

	"github.com/custodia-labs/coursemate/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/coursemate/internal/core/domain"
	"github.com/custodia-labs/coursemate/internal/core/ports/driven"
)

// Store owns the database handle. CourseStore and SessionStore are views on
// it sharing the connection.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens dataDir/catalog.db and applies pending migrations. An empty
// dataDir means ~/.coursemate/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".coursemate", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "catalog.db")

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
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

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) CourseStore() driven.CourseStore {
	return &courseStore{store: s}
}

func (s *Store) SessionStore() driven.SessionStore {
	return &sessionStore{store: s}
}

// migrate runs all pending migrations and records each applied version.
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
		// "001_initial.up.sql" -> 1
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

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning migration %s: %w", name, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %s: %w", name, err)
		}
	}

	return nil
}

// SchemaVersion returns the highest applied migration version.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	err := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&v)
	return v, err
}

// Course catalog.

type courseStore struct {
	store *Store
}

var _ driven.CourseStore = (*courseStore)(nil)

// SaveCourse upserts by title.
func (s *courseStore) SaveCourse(ctx context.Context, entry *domain.CatalogEntry) error {
	if entry == nil || entry.Title == "" {
		return domain.ErrInvalidInput
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	lessons := entry.LessonsJSON
	if lessons == "" {
		lessons = "[]"
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO courses (title, instructor, course_link, lessons_json, source_uri, embedding, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(title) DO UPDATE SET
			instructor = excluded.instructor,
			course_link = excluded.course_link,
			lessons_json = excluded.lessons_json,
			source_uri = excluded.source_uri,
			embedding = excluded.embedding
	`, entry.Title, entry.Instructor, entry.CourseLink, lessons, entry.SourceURI,
		float32SliceToBytes(entry.Embedding), entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("saving course: %w", err)
	}
	return nil
}

// GetCourse matches the exact title.
func (s *courseStore) GetCourse(ctx context.Context, title string) (*domain.CatalogEntry, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT title, instructor, course_link, lessons_json, source_uri, embedding, created_at
		FROM courses WHERE title = ?
	`, title)

	entry, err := scanCourse(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return entry, err
}

// ListCourses returns every catalog entry ordered by title.
func (s *courseStore) ListCourses(ctx context.Context) ([]*domain.CatalogEntry, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT title, instructor, course_link, lessons_json, source_uri, embedding, created_at
		FROM courses ORDER BY title
	`)
	if err != nil {
		return nil, fmt.Errorf("querying courses: %w", err)
	}
	defer rows.Close()

	var entries []*domain.CatalogEntry //nolint:prealloc // size unknown from query
	for rows.Next() {
		entry, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating courses: %w", err)
	}
	return entries, nil
}

func (s *courseStore) CountCourses(ctx context.Context) (int, error) {
	var n int
	if err := s.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM courses").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting courses: %w", err)
	}
	return n, nil
}

// SaveChunks stores or replaces chunks in one transaction.
func (s *courseStore) SaveChunks(ctx context.Context, chunks []domain.CourseChunk) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, course_title, lesson_number, chunk_index, content, embedding)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			course_title = excluded.course_title,
			lesson_number = excluded.lesson_number,
			chunk_index = excluded.chunk_index,
			content = excluded.content,
			embedding = excluded.embedding
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		if chunk.ID == "" {
			return domain.ErrInvalidInput
		}
		if _, err := stmt.ExecContext(ctx, chunk.ID, chunk.CourseTitle, nullInt(chunk.LessonNumber),
			chunk.ChunkIndex, chunk.Content, float32SliceToBytes(chunk.Embedding)); err != nil {
			return fmt.Errorf("saving chunk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetChunks retrieves chunks by ID in the order requested. Unknown IDs are skipped.
func (s *courseStore) GetChunks(ctx context.Context, ids []string) ([]domain.CourseChunk, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	//nolint:gosec // G202: placeholders only, values are bound.
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, course_title, lesson_number, chunk_index, content, embedding
		FROM chunks WHERE id IN (`+placeholders+`)
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]domain.CourseChunk, len(ids))
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		byID[chunk.ID] = *chunk
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	result := make([]domain.CourseChunk, 0, len(byID))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			result = append(result, c)
		}
	}
	return result, nil
}

// ListChunks returns every chunk in the order it was first saved. Rebuilt
// keyword indexes break score ties by this order.
func (s *courseStore) ListChunks(ctx context.Context) ([]domain.CourseChunk, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, course_title, lesson_number, chunk_index, content, embedding
		FROM chunks ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.CourseChunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, *chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return chunks, nil
}

// DeleteCourse removes a course; its chunks cascade.
func (s *courseStore) DeleteCourse(ctx context.Context, title string) error {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM courses WHERE title = ?", title)
	if err != nil {
		return fmt.Errorf("deleting course: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Clear removes every course and chunk.
func (s *courseStore) Clear(ctx context.Context) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, stmt := range []string{"DELETE FROM chunks", "DELETE FROM courses"} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clearing catalog: %w", err)
		}
	}
	return tx.Commit()
}

// Sessions.

type sessionStore struct {
	store *Store
}

var _ driven.SessionStore = (*sessionStore)(nil)

type exchangeRecord struct {
	Query  string `json:"query"`
	Answer string `json:"answer"`
}

// GetSession returns domain.ErrNotFound for unknown IDs.
func (s *sessionStore) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, exchanges, created_at, updated_at FROM sessions WHERE id = ?
	`, id)

	var session domain.Session
	var exchangesJSON string
	if err := row.Scan(&session.ID, &exchangesJSON, &session.CreatedAt, &session.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning session: %w", err)
	}

	var records []exchangeRecord
	if err := json.Unmarshal([]byte(exchangesJSON), &records); err != nil {
		return nil, fmt.Errorf("unmarshaling exchanges: %w", err)
	}
	for _, r := range records {
		session.Exchanges = append(session.Exchanges, domain.Exchange{Query: r.Query, Answer: r.Answer})
	}
	return &session, nil
}

func (s *sessionStore) SaveSession(ctx context.Context, session *domain.Session) error {
	if session == nil || session.ID == "" {
		return domain.ErrInvalidInput
	}

	records := make([]exchangeRecord, len(session.Exchanges))
	for i, e := range session.Exchanges {
		records[i] = exchangeRecord{Query: e.Query, Answer: e.Answer}
	}
	exchangesJSON, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshalling exchanges: %w", err)
	}

	now := time.Now().UTC()
	createdAt, updatedAt := session.CreatedAt, session.UpdatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	if updatedAt.IsZero() {
		updatedAt = now
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO sessions (id, exchanges, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			exchanges = excluded.exchanges,
			updated_at = excluded.updated_at
	`, session.ID, string(exchangesJSON), createdAt, updatedAt)
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

func (s *sessionStore) DeleteSession(ctx context.Context, id string) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCourse(row scanner) (*domain.CatalogEntry, error) {
	var entry domain.CatalogEntry
	var embeddingBlob []byte
	if err := row.Scan(&entry.Title, &entry.Instructor, &entry.CourseLink, &entry.LessonsJSON,
		&entry.SourceURI, &embeddingBlob, &entry.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning course: %w", err)
	}
	entry.Embedding = bytesToFloat32Slice(embeddingBlob)
	return &entry, nil
}

func scanChunk(row scanner) (*domain.CourseChunk, error) {
	var chunk domain.CourseChunk
	var lesson sql.NullInt64
	var embeddingBlob []byte
	if err := row.Scan(&chunk.ID, &chunk.CourseTitle, &lesson, &chunk.ChunkIndex,
		&chunk.Content, &embeddingBlob); err != nil {
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}
	if lesson.Valid {
		n := int(lesson.Int64)
		chunk.LessonNumber = &n
	}
	chunk.Embedding = bytesToFloat32Slice(embeddingBlob)
	return &chunk, nil
}

func nullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}

// float32SliceToBytes encodes little-endian IEEE 754, four bytes per value.
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
