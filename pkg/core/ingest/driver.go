package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultBatchSize is the largest batch the document index accepts per
// inline import request.
const DefaultBatchSize = 100

// Importer receives batches of chunks for incremental indexing. A failed
// batch returns an error; the driver logs it and moves on.
type Importer interface {
	ImportBatch(ctx context.Context, chunks []Chunk) error
}

// DriverConfig carries the knobs for one ingestion run.
type DriverConfig struct {
	InputDir      string
	SnapshotDir   string
	BatchSize     int
	MaxTokens     int
	OverlapTokens int
}

// RunSummary is the final tally printed after a run.
type RunSummary struct {
	RunID            string `json:"run_id"`
	FilesProcessed   int    `json:"files_processed"`
	FilesFailed      int    `json:"files_failed"`
	ChunksBuilt      int    `json:"chunks_built"`
	BatchesSucceeded int    `json:"batches_succeeded"`
	BatchesFailed    int    `json:"batches_failed"`
	DocsImported     int    `json:"docs_imported"`
	SnapshotPath     string `json:"snapshot_path,omitempty"`
}

// Driver walks a corpus directory, chunks every recognised document, writes
// a JSON snapshot of the chunks, and imports them in isolated batches.
type Driver struct {
	cfg       DriverConfig
	importer  Importer
	assembler *Assembler
}

func NewDriver(cfg DriverConfig, importer Importer) *Driver {
	if cfg.BatchSize <= 0 || cfg.BatchSize > DefaultBatchSize {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1800
	}
	if cfg.OverlapTokens < 0 {
		cfg.OverlapTokens = 0
	}
	chunker := NewChunker(cfg.MaxTokens, cfg.OverlapTokens)
	return &Driver{cfg: cfg, importer: importer, assembler: NewAssembler(chunker)}
}

// Run executes one ingestion pass. Per-file and per-batch failures are
// logged and skipped; only setup problems (unreadable input dir, no
// ingestible files at all, snapshot write failure) abort the run.
func (d *Driver) Run(ctx context.Context) (*RunSummary, error) {
	summary := &RunSummary{RunID: uuid.NewString()}

	entries, err := os.ReadDir(d.cfg.InputDir)
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}

	var chunks []Chunk
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		path := filepath.Join(d.cfg.InputDir, name)

		var fileChunks []Chunk
		var ferr error
		switch strings.ToLower(filepath.Ext(name)) {
		case ".html", ".htm":
			fileChunks, ferr = d.chunkFiling(path, name)
		case ".txt":
			fileChunks, ferr = d.chunkTranscript(path, name)
		default:
			continue
		}
		if ferr != nil {
			fmt.Printf("  ! %s: %v\n", name, ferr)
			summary.FilesFailed++
			continue
		}
		fmt.Printf("  - %s: %d chunks\n", name, len(fileChunks))
		summary.FilesProcessed++
		chunks = append(chunks, fileChunks...)
	}
	summary.ChunksBuilt = len(chunks)

	if summary.FilesProcessed == 0 && summary.FilesFailed == 0 {
		return nil, fmt.Errorf("no ingestible documents in %s", d.cfg.InputDir)
	}

	if d.cfg.SnapshotDir != "" && len(chunks) > 0 {
		path, err := d.writeSnapshot(summary.RunID, chunks)
		if err != nil {
			return nil, err
		}
		summary.SnapshotPath = path
		fmt.Printf("Snapshot written to %s\n", path)
	}

	for start := 0; start < len(chunks); start += d.cfg.BatchSize {
		end := start + d.cfg.BatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]
		if err := d.importer.ImportBatch(ctx, batch); err != nil {
			fmt.Printf("  ! batch %d-%d failed: %v\n", start, end, err)
			summary.BatchesFailed++
			continue
		}
		summary.BatchesSucceeded++
		summary.DocsImported += len(batch)
	}
	return summary, nil
}

func (d *Driver) chunkFiling(path, name string) ([]Chunk, error) {
	// A malformed filename is not fatal for the file: ParseFilingFilename
	// returns sentinel metadata (UNKNOWN ticker, N/A quarter) and the
	// content is still worth indexing.
	meta, err := ParseFilingFilename(name)
	if err != nil {
		fmt.Printf("  ! %s: %v (using default metadata)\n", name, err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read filing: %w", err)
	}
	seg := NewFilingSegmenter()
	fallback := strings.TrimSpace(collapseSpaces(fmt.Sprintf("%s %s %s", meta.Ticker, meta.FormType, QuarterDisplay(meta.Quarter))))
	segments, err := seg.Segment(string(raw), fallback)
	if err != nil {
		return nil, err
	}
	return d.assembler.Assemble(name, meta, segments), nil
}

func (d *Driver) chunkTranscript(path, name string) ([]Chunk, error) {
	meta, err := ParseTranscriptFilename(name)
	if err != nil {
		fmt.Printf("  ! %s: %v (using default metadata)\n", name, err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}
	segments := SegmentTranscript(string(raw))
	return d.assembler.Assemble(name, meta, segments), nil
}

func (d *Driver) writeSnapshot(runID string, chunks []Chunk) (string, error) {
	if err := os.MkdirAll(d.cfg.SnapshotDir, 0o755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}
	name := fmt.Sprintf("chunks_%s_%s.json", runID, time.Now().Format("20060102_150405"))
	path := filepath.Join(d.cfg.SnapshotDir, name)
	data, err := json.MarshalIndent(chunks, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}

// PrintSummary writes the final tally in the usual run-report shape.
func PrintSummary(s *RunSummary) {
	fmt.Println("==================================================")
	fmt.Printf("Ingestion run %s\n", s.RunID)
	fmt.Printf("  Files processed:  %d (%d failed)\n", s.FilesProcessed, s.FilesFailed)
	fmt.Printf("  Chunks built:     %d\n", s.ChunksBuilt)
	fmt.Printf("  Batches:          %d succeeded, %d failed\n", s.BatchesSucceeded, s.BatchesFailed)
	fmt.Printf("  Docs imported:    ~%d\n", s.DocsImported)
	if s.SnapshotPath != "" {
		fmt.Printf("  Snapshot:         %s\n", s.SnapshotPath)
	}
	fmt.Println("==================================================")
}
