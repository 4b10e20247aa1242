// Package index provides the document-index backends the ingestion driver
// imports into and the analysis agents search against.
//
// Three implementations:
// - DiscoveryIndex: Google Discovery Engine datastore (production)
// - PostgresIndex: pgvector-backed Postgres (local development)
// - MemoryIndex: in-process fake for tests and dry runs
package index

import (
	"context"

	"insurance_intel/pkg/core/ingest"
)

// Store is the full backend contract: batched incremental import plus the
// destructive purge used when rebuilding a datastore from scratch.
type Store interface {
	ImportBatch(ctx context.Context, chunks []ingest.Chunk) error
	Purge(ctx context.Context) (int64, error)
}

// Result is one search hit.
type Result struct {
	ID      string
	Content string
	Meta    ingest.ChunkMeta
	Score   float64
}

// Searcher is implemented by backends that answer queries directly. The
// Discovery Engine path is searched through the LLM retrieval tool instead,
// so it does not implement this.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]Result, error)
}
