package index

import (
	"context"
	"fmt"
	"testing"

	"insurance_intel/pkg/core/ingest"
)

func chunkFixture(id, content string) ingest.Chunk {
	return ingest.Chunk{
		ID:      id,
		Content: content,
		Metadata: ingest.ChunkMeta{
			Title:    id,
			Ticker:   "HIG",
			Quarter:  "Q3",
			Year:     2025,
			DocType:  ingest.DocTypeFiling,
			Industry: ingest.Industry,
		},
	}
}

func TestMemoryIndexImportUpserts(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex()

	if err := idx.ImportBatch(ctx, []ingest.Chunk{chunkFixture("a", "first version")}); err != nil {
		t.Fatal(err)
	}
	if err := idx.ImportBatch(ctx, []ingest.Chunk{chunkFixture("a", "second version")}); err != nil {
		t.Fatal(err)
	}
	if idx.Len() != 1 {
		t.Fatalf("len = %d, want 1 after re-import of same ID", idx.Len())
	}
	c, ok := idx.Get("a")
	if !ok || c.Content != "second version" {
		t.Errorf("upsert did not replace content: %+v", c)
	}
}

func TestMemoryIndexPurge(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex()
	var chunks []ingest.Chunk
	for i := 0; i < 5; i++ {
		chunks = append(chunks, chunkFixture(fmt.Sprintf("c%d", i), "content"))
	}
	if err := idx.ImportBatch(ctx, chunks); err != nil {
		t.Fatal(err)
	}
	n, err := idx.Purge(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 5 {
		t.Errorf("purged %d, want 5", n)
	}
	if idx.Len() != 0 {
		t.Errorf("len = %d after purge", idx.Len())
	}
}

func TestMemoryIndexSearch(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex()
	err := idx.ImportBatch(ctx, []ingest.Chunk{
		chunkFixture("ratios", "The combined ratio improved to 94.2 percent this quarter."),
		chunkFixture("reserves", "Prior year reserve development was favorable across casualty lines."),
		chunkFixture("noise", "Forward looking statements disclaimer text."),
	})
	if err != nil {
		t.Fatal(err)
	}

	results, err := idx.Search(ctx, "combined ratio quarter", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) == 0 {
		t.Fatal("no results")
	}
	if results[0].ID != "ratios" {
		t.Errorf("top result = %q, want ratios", results[0].ID)
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("results not sorted by score at %d", i)
		}
	}
}
