package ingest

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	multiSpace    = regexp.MustCompile(` +`)
	excessBlank   = regexp.MustCompile(`\n{4,}`)
	nbsp          = strings.NewReplacer(" ", " ")
	sectionHeader = regexp.MustCompile(`(?i)^(item\s*\d{1,2}[a-z]?\b\.?|part\s+[ivx]+\b\.?)`)
)

// collapseSpaces normalises runs of spaces and non-breaking spaces without
// touching newlines.
func collapseSpaces(text string) string {
	return multiSpace.ReplaceAllString(nbsp.Replace(text), " ")
}

// cleanText tidies extracted document text: nbsp to space, space runs
// collapsed per line, runs of four or more newlines cut to a paragraph break.
func cleanText(text string) string {
	text = collapseSpaces(text)
	text = excessBlank.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// FilingSegmenter locates "Item N" / "Part N" section boundaries in SEC
// filing HTML and returns one Segment per section. Tables are routed through
// the provided formatter so their markdown lands inside the right section.
type FilingSegmenter struct {
	tables *TableFormatter
}

func NewFilingSegmenter() *FilingSegmenter {
	return &FilingSegmenter{tables: NewTableFormatter()}
}

// Tables exposes the formatter, mainly so callers can report table counts.
func (fs *FilingSegmenter) Tables() *TableFormatter {
	return fs.tables
}

// Segment parses filing HTML and splits it into labelled sections. When no
// section headers are found the whole document becomes a single segment
// labelled fallbackLabel. Every non-noise character of the document lands in
// exactly one segment.
func (fs *FilingSegmenter) Segment(html string, fallbackLabel string) ([]Segment, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse filing HTML: %w", err)
	}

	doc.Find("script, style").Remove()
	fs.tables.ExtractTables(doc)

	headers := fs.findSectionHeaders(doc)
	fullText := fs.tables.RestoreTables(extractText(doc))
	fullText = cleanText(fullText)

	if len(headers) == 0 || fullText == "" {
		if fullText == "" {
			return nil, nil
		}
		return []Segment{{Label: fallbackLabel, Text: fullText}}, nil
	}

	return splitByHeaders(fullText, headers, fallbackLabel), nil
}

// findSectionHeaders scans header-bearing elements for section titles, in
// document order, deduplicated by normalised text.
func (fs *FilingSegmenter) findSectionHeaders(doc *goquery.Document) []string {
	var headers []string
	seen := make(map[string]bool)

	doc.Find("b, strong, h1, h2, h3, h4, h5, h6, p, div, span, td").Each(func(_ int, sel *goquery.Selection) {
		text := collapseSpaces(strings.TrimSpace(sel.Text()))
		if len(text) < 4 || len(text) > 250 {
			return
		}
		if !sectionHeader.MatchString(text) {
			return
		}
		key := strings.ToLower(text)
		if seen[key] {
			return
		}
		seen[key] = true
		headers = append(headers, text)
	})
	return headers
}

// splitByHeaders cuts fullText at the first occurrence of each header, in
// order. Text before the first header becomes a leading segment under
// fallbackLabel so nothing is dropped.
func splitByHeaders(fullText string, headers []string, fallbackLabel string) []Segment {
	type cut struct {
		label string
		pos   int
	}
	var cuts []cut
	searchFrom := 0
	for _, h := range headers {
		pos := strings.Index(fullText[searchFrom:], h)
		if pos < 0 {
			continue
		}
		abs := searchFrom + pos
		cuts = append(cuts, cut{label: h, pos: abs})
		searchFrom = abs + len(h)
	}
	if len(cuts) == 0 {
		return []Segment{{Label: fallbackLabel, Text: fullText}}
	}

	var segments []Segment
	if lead := strings.TrimSpace(fullText[:cuts[0].pos]); lead != "" {
		segments = append(segments, Segment{Label: fallbackLabel, Text: lead})
	}
	for i, c := range cuts {
		end := len(fullText)
		if i+1 < len(cuts) {
			end = cuts[i+1].pos
		}
		body := strings.TrimSpace(fullText[c.pos:end])
		if body == "" {
			continue
		}
		segments = append(segments, Segment{Label: c.label, Text: body})
	}
	return segments
}

// extractText renders a parsed document to plain text with paragraph-ish
// line breaks, since goquery's Text() concatenates block elements.
func extractText(doc *goquery.Document) string {
	var sb strings.Builder
	doc.Find("h1, h2, h3, h4, h5, h6, p, div, li, td, br").Each(func(_ int, sel *goquery.Selection) {
		// Only leaf-level blocks contribute, otherwise text duplicates
		if sel.Children().Filter("h1, h2, h3, h4, h5, h6, p, div, li").Length() > 0 {
			return
		}
		text := strings.TrimSpace(sel.Text())
		if text == "" {
			return
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	})
	if sb.Len() > 0 {
		return sb.String()
	}
	return doc.Text()
}
