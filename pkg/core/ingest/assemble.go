package ingest

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	idInvalid    = regexp.MustCompile(`[^A-Za-z0-9_-]`)
	idUnderscore = regexp.MustCompile(`_+`)
)

// SanitizeID maps an arbitrary string onto the identifier alphabet accepted
// by the document index: [A-Za-z0-9_-], with underscore runs collapsed and
// edges trimmed. Idempotent, so already-clean IDs pass through unchanged.
func SanitizeID(raw string) string {
	id := idInvalid.ReplaceAllString(raw, "_")
	id = idUnderscore.ReplaceAllString(id, "_")
	return strings.Trim(id, "_")
}

const (
	summaryTarget = 200
	summaryMax    = 250
)

// summarize builds a short description from the first substantive lines of a
// chunk: headings and fragments of 20 chars or fewer are skipped, lines
// accumulate until the summary passes 200 chars, and the result is cut at
// 250.
func summarize(title, content string) string {
	var parts []string
	total := 0
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "|") || len(line) <= 20 {
			continue
		}
		parts = append(parts, line)
		total += len(line)
		if total > summaryTarget {
			break
		}
	}
	summary := fmt.Sprintf("%s: %s", title, strings.Join(parts, " "))
	if len(summary) > summaryMax {
		// Cut on a rune boundary so a multi-byte char is never split.
		summary = summary[:alignRune(summary, summaryMax)]
	}
	return summary
}

// Assembler turns segments into index-ready chunks for one source document.
type Assembler struct {
	chunker *Chunker
}

func NewAssembler(chunker *Chunker) *Assembler {
	return &Assembler{chunker: chunker}
}

// Assemble chunks each segment and attaches IDs and metadata. Filing chunk
// IDs look like "{file}_{section}_part_{n}", transcript IDs use "_chunk_{n}";
// both are stable across runs so re-ingestion upserts instead of duplicating.
func (a *Assembler) Assemble(sourceFile string, meta Metadata, segments []Segment) []Chunk {
	base := strings.TrimSuffix(sourceFile, extOf(sourceFile))
	suffix := "part"
	if meta.DocType == DocTypeTranscript {
		suffix = "chunk"
	}

	var chunks []Chunk
	n := 0
	for _, seg := range segments {
		pieces := a.chunker.Split(seg.Text)
		for _, piece := range pieces {
			n++
			title := seg.Label
			desc := summarize(title, piece.Text)
			if meta.DocType == DocTypeTranscript {
				desc = summarizeTurn(meta, seg.Label, piece.Text)
			}
			chunks = append(chunks, Chunk{
				ID:             SanitizeID(fmt.Sprintf("%s_%s_%s_%d", base, seg.Label, suffix, n)),
				Content:        strings.TrimSpace(piece.Text),
				TokenEstimated: piece.Estimated,
				Oversize:       piece.Oversize,
				Metadata: ChunkMeta{
					Title:       title,
					Description: desc,
					SourceFile:  sourceFile,
					Ticker:      meta.Ticker,
					FormType:    meta.FormType,
					FilingDate:  meta.FilingDate,
					Year:        meta.Year,
					Quarter:     meta.Quarter,
					DocType:     meta.DocType,
					Industry:    Industry,
					Section:     seg.Label,
					ChunkIndex:  n,
				},
			})
		}
	}
	for i := range chunks {
		chunks[i].Metadata.TotalChunks = len(chunks)
	}
	return chunks
}

// summarizeTurn is the transcript flavour of summarize: quarter, year and
// speaker up front, then the opening of the turn.
func summarizeTurn(meta Metadata, speaker, content string) string {
	lead := strings.TrimSpace(content)
	if len(lead) > summaryMax {
		lead = lead[:alignRune(lead, summaryMax)] + "..."
	}
	return fmt.Sprintf("Earnings call %s %d - %s: %s", QuarterDisplay(meta.Quarter), meta.Year, speaker, lead)
}

func extOf(name string) string {
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		return name[idx:]
	}
	return ""
}
