// Package ingest turns raw SEC filings and earnings-call transcripts into
// index-ready document chunks. The pipeline is:
//
//	filename metadata -> structural segmentation -> table formatting ->
//	token-bounded chunking -> chunk assembly -> batched import
//
// External dependencies:
// - github.com/PuerkitoBio/goquery: HTML traversal for segmentation and tables
// - github.com/pkoukk/tiktoken-go: token counting for the chunker
// - github.com/google/uuid: ingestion run identifiers
package ingest

// DocumentType distinguishes the two corpus sources.
type DocumentType string

const (
	DocTypeFiling     DocumentType = "sec_filing"
	DocTypeTranscript DocumentType = "earnings_call"
)

// Industry tag applied to every chunk. The corpus covers the commercial
// insurance peer set only.
const Industry = "commercial_insurance"

// QuarterAnnual is the quarter sentinel for annual reports (10-K).
const QuarterAnnual = "N/A"

// Metadata is everything derivable from a source filename.
type Metadata struct {
	Ticker     string       `json:"ticker"`
	FormType   string       `json:"form_type"`
	FilingDate string       `json:"filing_date"` // YYYY-MM-DD
	Year       int          `json:"year"`
	Quarter    string       `json:"quarter"` // "Q1".."Q4" or QuarterAnnual
	DocType    DocumentType `json:"document_type"`
}

// Segment is a contiguous region of a document under one structural label:
// an "Item 1A" section of a filing, or one speaker turn of a transcript.
type Segment struct {
	Label string // section header or speaker name
	Text  string
}

// Chunk is the unit shipped to the document index.
type Chunk struct {
	ID       string    `json:"id"`
	Content  string    `json:"content"`
	Metadata ChunkMeta `json:"struct_data"`
	// TokenEstimated is set when the chunk was sized by the character
	// fallback rather than a real tokenizer.
	TokenEstimated bool `json:"token_estimated,omitempty"`
	// Oversize marks an atomic unit that could not be split below the
	// token budget and was emitted whole.
	Oversize bool `json:"oversize,omitempty"`
}

// ChunkMeta is the structured metadata attached to each indexed chunk.
// Field names match the search datastore schema.
type ChunkMeta struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	SourceFile  string       `json:"source_file"`
	Ticker      string       `json:"ticker"`
	FormType    string       `json:"form_type,omitempty"`
	FilingDate  string       `json:"filing_date,omitempty"`
	Year        int          `json:"year"`
	Quarter     string       `json:"quarter"`
	DocType     DocumentType `json:"document_type"`
	Industry    string       `json:"industry"`
	Section     string       `json:"section"`
	ChunkIndex  int          `json:"chunk_index"`
	TotalChunks int          `json:"total_chunks"`
	URL         string       `json:"url,omitempty"`
}
