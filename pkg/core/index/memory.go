package index

import (
	"context"
	"sort"
	"strings"
	"sync"

	"insurance_intel/pkg/core/ingest"
)

// MemoryIndex is an in-process store with naive keyword search. Used by
// tests and by the driver's dry-run backend where nothing should leave the
// machine.
type MemoryIndex struct {
	mu     sync.RWMutex
	chunks map[string]ingest.Chunk
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{chunks: make(map[string]ingest.Chunk)}
}

func (m *MemoryIndex) ImportBatch(ctx context.Context, chunks []ingest.Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range chunks {
		m.chunks[c.ID] = c
	}
	return nil
}

func (m *MemoryIndex) Purge(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := int64(len(m.chunks))
	m.chunks = make(map[string]ingest.Chunk)
	return n, nil
}

// Len reports the number of stored chunks.
func (m *MemoryIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.chunks)
}

// Get returns a stored chunk by ID.
func (m *MemoryIndex) Get(id string) (ingest.Chunk, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.chunks[id]
	return c, ok
}

// Search scores chunks by the fraction of query terms they contain.
func (m *MemoryIndex) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 10
	}
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return nil, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var results []Result
	for _, c := range m.chunks {
		haystack := strings.ToLower(c.Content + " " + c.Metadata.Description)
		hits := 0
		for _, term := range terms {
			if strings.Contains(haystack, term) {
				hits++
			}
		}
		if hits == 0 {
			continue
		}
		results = append(results, Result{
			ID:      c.ID,
			Content: c.Content,
			Meta:    c.Metadata,
			Score:   float64(hits) / float64(len(terms)),
		})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}
