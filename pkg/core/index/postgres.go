package index

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"insurance_intel/pkg/core/ingest"
)

// Embedder turns text into vectors for similarity search. Document and query
// embeddings use different task types, hence two methods.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// embeddingDim matches text-embedding-004 output.
const embeddingDim = 768

// PostgresIndex stores chunks and their embeddings in a pgvector table. It
// is the local alternative to the Discovery Engine datastore: same import
// semantics, cosine-similarity search instead of managed retrieval.
type PostgresIndex struct {
	pool     *pgxpool.Pool
	embedder Embedder
}

// NewPostgresIndex wraps an existing connection pool. The pool is owned by
// the caller; Close it there.
func NewPostgresIndex(pool *pgxpool.Pool, embedder Embedder) *PostgresIndex {
	return &PostgresIndex{pool: pool, embedder: embedder}
}

// Connect opens a pool from a DSN and pings it.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// Init creates the vector extension, the chunks table and its ANN index.
func (p *PostgresIndex) Init(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS chunks (
			id TEXT PRIMARY KEY,
			content TEXT NOT NULL,
			metadata JSONB NOT NULL,
			embedding vector(%d)
		)`, embeddingDim),
		`CREATE INDEX IF NOT EXISTS chunks_embedding_idx
			ON chunks USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100)`,
		`CREATE INDEX IF NOT EXISTS chunks_ticker_idx
			ON chunks ((metadata->>'ticker'), (metadata->>'quarter'))`,
	}
	for _, stmt := range stmts {
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// ImportBatch embeds and upserts a batch. Conflicting IDs are overwritten,
// matching the incremental reconciliation the production datastore does.
func (p *PostgresIndex) ImportBatch(ctx context.Context, chunks []ingest.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	vectors, err := p.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed batch: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embed batch: got %d vectors for %d chunks", len(vectors), len(chunks))
	}

	for i, c := range chunks {
		meta, err := json.Marshal(c.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata for %s: %w", c.ID, err)
		}
		_, err = p.pool.Exec(ctx,
			`INSERT INTO chunks (id, content, metadata, embedding)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (id) DO UPDATE
			 SET content = EXCLUDED.content,
			     metadata = EXCLUDED.metadata,
			     embedding = EXCLUDED.embedding`,
			c.ID, c.Content, meta, pgvector.NewVector(vectors[i]))
		if err != nil {
			return fmt.Errorf("upsert %s: %w", c.ID, err)
		}
	}
	return nil
}

// Purge removes every chunk and reports how many were deleted.
func (p *PostgresIndex) Purge(ctx context.Context) (int64, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM chunks`)
	if err != nil {
		return 0, fmt.Errorf("purge chunks: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Search embeds the query and returns the closest chunks by cosine distance.
func (p *PostgresIndex) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 10
	}
	vec, err := p.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	rows, err := p.pool.Query(ctx,
		`SELECT id, content, metadata, 1 - (embedding <=> $1) AS score
		 FROM chunks
		 ORDER BY embedding <=> $1
		 LIMIT $2`,
		pgvector.NewVector(vec), limit)
	if err != nil {
		return nil, fmt.Errorf("search chunks: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var meta []byte
		if err := rows.Scan(&r.ID, &r.Content, &meta, &r.Score); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		if err := json.Unmarshal(meta, &r.Meta); err != nil {
			return nil, fmt.Errorf("decode metadata for %s: %w", r.ID, err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
