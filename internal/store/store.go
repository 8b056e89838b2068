// Package store persists chunks, file metadata, and embeddings, and
// exposes keyword and brute-force cosine vector search over them, per
// §4.7. It is single-writer, single-reader per process: the caller that
// opens a Store owns it exclusively and must not share it across
// concurrent goroutines.
package store

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // pure-Go SQLite driver, no CGo

	argerrors "github.com/argus-dev/argus/internal/errors"
	"github.com/argus-dev/argus/internal/lang"
	"github.com/argus-dev/argus/internal/model"
)

const dimensionsKey = "embedding_dimensions"

// Store is a process-local handle onto a single on-disk index file.
type Store struct {
	db *sql.DB
}

// Open creates or opens the on-disk store at path (typically
// `<repo>/.argus/index.db`), enabling WAL mode for resilience against a
// crash mid-write. A single connection is used: the schema is
// single-writer by design (§5).
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, argerrors.IO(fmt.Sprintf("failed to create directory for %q", path), err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, argerrors.Database(fmt.Sprintf("failed to open store %q", path), err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, argerrors.Database("failed to configure store", err)
		}
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS metadata (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS files (
		path        TEXT PRIMARY KEY,
		content_hash TEXT NOT NULL,
		indexed_at  INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS chunks (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		file_path      TEXT NOT NULL,
		content_hash   TEXT NOT NULL UNIQUE,
		start_line     INTEGER NOT NULL,
		end_line       INTEGER NOT NULL,
		entity_name    TEXT NOT NULL,
		entity_type    TEXT NOT NULL,
		language       TEXT NOT NULL,
		content        TEXT NOT NULL,
		context_header TEXT NOT NULL,
		embedding      BLOB
	);
	CREATE INDEX IF NOT EXISTS idx_chunks_file_path ON chunks(file_path);

	CREATE VIRTUAL TABLE IF NOT EXISTS chunks_fts USING fts5(
		entity_name, content, context_header,
		content='chunks', content_rowid='id', tokenize='unicode61'
	);

	CREATE TRIGGER IF NOT EXISTS chunks_ai AFTER INSERT ON chunks BEGIN
		INSERT INTO chunks_fts(rowid, entity_name, content, context_header)
		VALUES (new.id, new.entity_name, new.content, new.context_header);
	END;
	CREATE TRIGGER IF NOT EXISTS chunks_ad AFTER DELETE ON chunks BEGIN
		INSERT INTO chunks_fts(chunks_fts, rowid, entity_name, content, context_header)
		VALUES ('delete', old.id, old.entity_name, old.content, old.context_header);
	END;
	CREATE TRIGGER IF NOT EXISTS chunks_au AFTER UPDATE ON chunks BEGIN
		INSERT INTO chunks_fts(chunks_fts, rowid, entity_name, content, context_header)
		VALUES ('delete', old.id, old.entity_name, old.content, old.context_header);
		INSERT INTO chunks_fts(rowid, entity_name, content, context_header)
		VALUES (new.id, new.entity_name, new.content, new.context_header);
	END;
	`
	if _, err := s.db.Exec(schema); err != nil {
		return argerrors.Database("failed to initialize store schema", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// SetDimensions records the fixed embedding width d for this index. If
// no dimension is yet recorded, it is written. If one is recorded and
// equal, this is a no-op. If one is recorded and different, it fails
// with a message naming both values and advising a reindex, per §4.7.
func (s *Store) SetDimensions(d int) error {
	existing, ok, err := s.getMetadata(dimensionsKey)
	if err != nil {
		return err
	}
	if !ok {
		return s.setMetadata(dimensionsKey, fmt.Sprintf("%d", d))
	}
	var old int
	_, _ = fmt.Sscanf(existing, "%d", &old)
	if old == d {
		return nil
	}
	return argerrors.Database(
		fmt.Sprintf("embedding dimension mismatch: store has %d, requested %d", old, d),
		nil,
	).WithSuggestion("run re-index to rebuild")
}

// Dimensions returns the recorded embedding width, or (0, false) if
// this index has never stored one.
func (s *Store) Dimensions() (int, bool, error) {
	existing, ok, err := s.getMetadata(dimensionsKey)
	if err != nil || !ok {
		return 0, ok, err
	}
	var d int
	_, _ = fmt.Sscanf(existing, "%d", &d)
	return d, true, nil
}

func (s *Store) getMetadata(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, argerrors.Database("failed to read metadata", err)
	}
	return value, true, nil
}

func (s *Store) setMetadata(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO metadata(key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return argerrors.Database("failed to write metadata", err)
	}
	return nil
}

// InsertChunk persists chunk with its embedding, replacing any row
// already sharing its content_hash (the last write wins on collision).
// A nil embedding is stored as a null BLOB.
func (s *Store) InsertChunk(chunk model.CodeChunk, embedding []float32) error {
	var blob []byte
	if embedding != nil {
		blob = floatsToBytes(embedding)
	}
	_, err := s.db.Exec(
		`INSERT INTO chunks(file_path, content_hash, start_line, end_line, entity_name, entity_type, language, content, context_header, embedding)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(content_hash) DO UPDATE SET
		   file_path = excluded.file_path,
		   start_line = excluded.start_line,
		   end_line = excluded.end_line,
		   entity_name = excluded.entity_name,
		   entity_type = excluded.entity_type,
		   language = excluded.language,
		   content = excluded.content,
		   context_header = excluded.context_header,
		   embedding = excluded.embedding`,
		chunk.FilePath, chunk.ContentHash, chunk.StartLine, chunk.EndLine,
		chunk.EntityName, string(chunk.EntityType), string(chunk.Language),
		chunk.Content, chunk.ContextHeader, blob,
	)
	if err != nil {
		return argerrors.Database(fmt.Sprintf("failed to insert chunk %q", chunk.ContentHash), err)
	}
	return nil
}

// RecordFile upserts the file-level bookkeeping row used by incremental
// reindex to detect content changes.
func (s *Store) RecordFile(path, contentHash string) error {
	_, err := s.db.Exec(
		`INSERT INTO files(path, content_hash, indexed_at) VALUES (?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET content_hash = excluded.content_hash, indexed_at = excluded.indexed_at`,
		path, contentHash, time.Now().Unix(),
	)
	if err != nil {
		return argerrors.Database(fmt.Sprintf("failed to record file %q", path), err)
	}
	return nil
}

// RemoveFile deletes path's bookkeeping row and cascades to every chunk
// whose file_path matches it.
func (s *Store) RemoveFile(path string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return argerrors.Database("failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM chunks WHERE file_path = ?`, path); err != nil {
		return argerrors.Database(fmt.Sprintf("failed to delete chunks for %q", path), err)
	}
	if _, err := tx.Exec(`DELETE FROM files WHERE path = ?`, path); err != nil {
		return argerrors.Database(fmt.Sprintf("failed to delete file record %q", path), err)
	}
	if err := tx.Commit(); err != nil {
		return argerrors.Database("failed to commit file removal", err)
	}
	return nil
}

// FileHash returns the recorded content hash for path, or
// argerrors.NotFound if the file has no recorded hash.
func (s *Store) FileHash(path string) (string, error) {
	var hash string
	err := s.db.QueryRow(`SELECT content_hash FROM files WHERE path = ?`, path).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", argerrors.NotFound(fmt.Sprintf("no recorded hash for %q", path), nil)
	}
	if err != nil {
		return "", argerrors.Database("failed to read file hash", err)
	}
	return hash, nil
}

// IndexedFiles returns every path currently recorded in the files
// table.
func (s *Store) IndexedFiles() ([]string, error) {
	rows, err := s.db.Query(`SELECT path FROM files`)
	if err != nil {
		return nil, argerrors.Database("failed to list indexed files", err)
	}
	defer func() { _ = rows.Close() }()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, argerrors.Database("failed to scan file path", err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// Stats derives IndexStats from the current store contents.
func (s *Store) Stats() (model.IndexStats, error) {
	var chunks, files int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM chunks`).Scan(&chunks); err != nil {
		return model.IndexStats{}, argerrors.Database("failed to count chunks", err)
	}
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM files`).Scan(&files); err != nil {
		return model.IndexStats{}, argerrors.Database("failed to count files", err)
	}
	size := int64(0)
	if s.db != nil {
		var pageCount, pageSize int64
		_ = s.db.QueryRow(`PRAGMA page_count`).Scan(&pageCount)
		_ = s.db.QueryRow(`PRAGMA page_size`).Scan(&pageSize)
		size = pageCount * pageSize
	}
	return model.IndexStats{TotalChunks: chunks, TotalFiles: files, IndexSizeBytes: size}, nil
}

// VectorSearch loads every row with a non-null embedding, scores it by
// cosine similarity against query, sorts descending, and truncates to
// limit. Mismatched length or zero norm yields a score of 0.
func (s *Store) VectorSearch(query []float32, limit int) ([]model.SearchHit, error) {
	rows, err := s.db.Query(`
		SELECT file_path, content_hash, start_line, end_line, entity_name, entity_type, language, content, context_header, embedding
		FROM chunks WHERE embedding IS NOT NULL`)
	if err != nil {
		return nil, argerrors.Database("failed to load embeddings", err)
	}
	defer func() { _ = rows.Close() }()

	type scored struct {
		hit   model.SearchHit
		score float64
	}
	var all []scored

	for rows.Next() {
		var chunk model.CodeChunk
		var entityType, language string
		var blob []byte
		if err := rows.Scan(&chunk.FilePath, &chunk.ContentHash, &chunk.StartLine, &chunk.EndLine,
			&chunk.EntityName, &entityType, &language, &chunk.Content, &chunk.ContextHeader, &blob); err != nil {
			return nil, argerrors.Database("failed to scan chunk row", err)
		}
		chunk.EntityType = model.EntityType(entityType)
		chunk.Language = lang.Language(language)

		vec := bytesToFloats(blob)
		score := cosineSimilarity(query, vec)
		all = append(all, scored{hit: model.SearchHit{Chunk: chunk, Score: score, Source: model.SourceVector}, score: score})
	}
	if err := rows.Err(); err != nil {
		return nil, argerrors.Database("failed while iterating embeddings", err)
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].score > all[j].score })
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}

	out := make([]model.SearchHit, len(all))
	for i, r := range all {
		out[i] = r.hit
	}
	return out, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		da, db := float64(a[i]), float64(b[i])
		dot += da * db
		normA += da * da
		normB += db * db
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

var tokenPattern = regexp.MustCompile(`[A-Za-z0-9_]+`)

// sanitizeKeywordQuery tokenizes query on whitespace, keeps only the
// alphanumeric and underscore characters of each token, and discards
// tokens left empty.
func sanitizeKeywordQuery(query string) []string {
	var out []string
	for _, field := range strings.Fields(query) {
		if tok := strings.Join(tokenPattern.FindAllString(field, -1), ""); tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// KeywordSearch tokenizes query, forms a disjunction of quoted tokens,
// and executes it against the FTS5 keyword view. The view's native
// "lower is better" rank is negated and clamped to zero so higher is
// better, matching VectorSearch's score direction. An empty sanitized
// query returns empty results.
func (s *Store) KeywordSearch(query string, limit int) ([]model.SearchHit, error) {
	tokens := sanitizeKeywordQuery(query)
	if len(tokens) == 0 {
		return nil, nil
	}

	quoted := make([]string, len(tokens))
	for i, t := range tokens {
		quoted[i] = fmt.Sprintf(`"%s"`, strings.ReplaceAll(t, `"`, `""`))
	}
	matchQuery := strings.Join(quoted, " OR ")

	rows, err := s.db.Query(`
		SELECT c.file_path, c.content_hash, c.start_line, c.end_line, c.entity_name, c.entity_type, c.language, c.content, c.context_header, bm25(chunks_fts) AS rank
		FROM chunks_fts
		JOIN chunks c ON c.id = chunks_fts.rowid
		WHERE chunks_fts MATCH ?
		ORDER BY rank
		LIMIT ?`, matchQuery, limit)
	if err != nil {
		return nil, argerrors.Database("keyword search failed", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.SearchHit
	for rows.Next() {
		var chunk model.CodeChunk
		var entityType, language string
		var rank float64
		if err := rows.Scan(&chunk.FilePath, &chunk.ContentHash, &chunk.StartLine, &chunk.EndLine,
			&chunk.EntityName, &entityType, &language, &chunk.Content, &chunk.ContextHeader, &rank); err != nil {
			return nil, argerrors.Database("failed to scan keyword hit", err)
		}
		chunk.EntityType = model.EntityType(entityType)
		chunk.Language = lang.Language(language)

		score := -rank
		if score < 0 {
			score = 0
		}
		out = append(out, model.SearchHit{Chunk: chunk, Score: score, Source: model.SourceKeyword})
	}
	return out, rows.Err()
}

// floatsToBytes packs a f32 slice into a little-endian byte blob.
func floatsToBytes(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloats unpacks a little-endian byte blob into a f32 slice. The
// inverse of floatsToBytes.
func bytesToFloats(b []byte) []float32 {
	n := len(b) / 4
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return out
}
