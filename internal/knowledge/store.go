// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package knowledge persists extracted page chunks and answers similarity
// queries over them. See docs/ARCHITECTURE.md § Retrieval Store.
package knowledge

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/pdiddy/techreport/pkg/types"
)

// Embedder turns texts into vectors. The production implementation is the
// Gemini client; tests supply a deterministic fake.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Store is a SQLite-backed chunk store with embedding similarity search.
// Chunks belong to a named collection; a run rebuilds its collection from
// empty before ingesting.
type Store struct {
	db         *sql.DB
	embedder   Embedder
	collection string
	log        *zap.SugaredLogger
}

// Open opens or creates the store database and ensures the schema exists.
func Open(cfg types.StoreConfig, embedder Embedder, log *zap.SugaredLogger) (*Store, error) {
	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening store database: %w", err)
	}
	// The pipeline is sequential; one connection sidesteps SQLITE_BUSY and
	// keeps in-memory databases coherent.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, embedder: embedder, collection: cfg.Collection, log: log}
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
		`CREATE TABLE IF NOT EXISTS chunks (
			collection TEXT NOT NULL,
			id TEXT NOT NULL,
			source_url TEXT NOT NULL,
			chunk_index INTEGER NOT NULL,
			technologies TEXT NOT NULL,
			content TEXT NOT NULL,
			embedding BLOB NOT NULL,
			PRIMARY KEY (collection, id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chunks_source_url ON chunks(collection, source_url)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Reset drops every chunk in the store's collection. Called once at run
// start so a run never retrieves the previous run's content.
func (s *Store) Reset(ctx context.Context) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM chunks WHERE collection = ?`, s.collection)
	if err != nil {
		return fmt.Errorf("resetting collection %s: %w", s.collection, err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		s.log.Infow("dropped previous collection", "collection", s.collection, "chunks", n)
	}
	return nil
}

// Add embeds and inserts chunks. Chunk IDs derive from (source URL, index),
// so re-adding a page replaces its chunks instead of colliding silently.
func (s *Store) Add(ctx context.Context, chunks []types.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding %d chunks: %w", len(chunks), err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO chunks (collection, id, source_url, chunk_index, technologies, content, embedding)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, c := range chunks {
		techsJSON, _ := json.Marshal(c.Technologies)
		if _, err := stmt.ExecContext(ctx, s.collection, c.ID(), c.SourceURL, c.Index,
			string(techsJSON), c.Content, encodeVector(vectors[i])); err != nil {
			return fmt.Errorf("inserting chunk %s: %w", c.ID(), err)
		}
	}
	return tx.Commit()
}

// Query embeds the query text and returns the k most similar chunks by
// cosine similarity, best first.
func (s *Store) Query(ctx context.Context, text string, k int) ([]types.Chunk, error) {
	vectors, err := s.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	queryVec := vectors[0]

	rows, err := s.db.QueryContext(ctx,
		`SELECT source_url, chunk_index, technologies, content, embedding
		 FROM chunks WHERE collection = ?`, s.collection)
	if err != nil {
		return nil, fmt.Errorf("reading collection: %w", err)
	}
	defer rows.Close()

	type scoredChunk struct {
		chunk types.Chunk
		score float64
	}
	var scored []scoredChunk
	for rows.Next() {
		chunk, embedding, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		scored = append(scored, scoredChunk{chunk: chunk, score: cosine(queryVec, embedding)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })
	if len(scored) > k {
		scored = scored[:k]
	}

	result := make([]types.Chunk, len(scored))
	for i, sc := range scored {
		result[i] = sc.chunk
	}
	return result, nil
}

// ByURLs returns every chunk whose source URL is in urls, in insertion order.
func (s *Store) ByURLs(ctx context.Context, urls []string) ([]types.Chunk, error) {
	if len(urls) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(urls)), ",")
	args := make([]any, 0, len(urls)+1)
	args = append(args, s.collection)
	for _, u := range urls {
		args = append(args, u)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT source_url, chunk_index, technologies, content, embedding
		 FROM chunks WHERE collection = ? AND source_url IN (`+placeholders+`)
		 ORDER BY source_url, chunk_index`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying by URL: %w", err)
	}
	defer rows.Close()

	var chunks []types.Chunk
	for rows.Next() {
		chunk, _, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}
	return chunks, rows.Err()
}

func scanChunk(rows *sql.Rows) (types.Chunk, []float32, error) {
	var (
		chunk     types.Chunk
		techsJSON string
		blob      []byte
	)
	if err := rows.Scan(&chunk.SourceURL, &chunk.Index, &techsJSON, &chunk.Content, &blob); err != nil {
		return types.Chunk{}, nil, fmt.Errorf("scanning chunk: %w", err)
	}
	if err := json.Unmarshal([]byte(techsJSON), &chunk.Technologies); err != nil {
		return types.Chunk{}, nil, fmt.Errorf("decoding technologies: %w", err)
	}
	return chunk, decodeVector(blob), nil
}

// encodeVector packs a vector as little-endian float32 bytes.
func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(b []byte) []float32 {
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return v
}

// cosine returns the cosine similarity of two vectors, 0 when either is a
// zero vector or lengths differ.
func cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
