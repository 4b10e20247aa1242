package ingest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// TableFormatter lifts <table> elements out of a filing document, renders
// them as Markdown, and splices the rendered blocks back at placeholder
// positions. Keeping tables out of the main text while sections are located
// prevents header heuristics from firing on cell contents.
type TableFormatter struct {
	// rendered maps placeholder token to the finished markdown block
	rendered   map[string]string
	tableCount int
}

func NewTableFormatter() *TableFormatter {
	return &TableFormatter{rendered: make(map[string]string)}
}

// ExtractTables replaces every table in doc with a {{TABLE_N}} placeholder
// and renders the table to a titled markdown block for later restoration.
// Title precedence: <caption> child, then the nearest preceding short
// heading-like element, then "Table N".
func (tf *TableFormatter) ExtractTables(doc *goquery.Document) {
	doc.Find("table").Each(func(i int, sel *goquery.Selection) {
		// Nested tables ride along with their outermost ancestor; giving
		// them their own placeholder would leave it stranded in the
		// detached subtree.
		if sel.ParentsFiltered("table").Length() > 0 {
			return
		}
		tableHTML, err := goquery.OuterHtml(sel)
		if err != nil {
			return
		}

		tf.tableCount++
		title := tf.tableTitle(sel, tf.tableCount)
		placeholder := fmt.Sprintf("{{TABLE_%d}}", tf.tableCount)

		md := renderTableMarkdown(tableHTML)
		if md == "" {
			// Unparseable table, drop the placeholder entirely
			sel.Remove()
			tf.tableCount--
			return
		}
		tf.rendered[placeholder] = fmt.Sprintf("\n\n### %s\n%s\n", title, md)
		sel.ReplaceWithHtml(fmt.Sprintf("\n<p>%s</p>\n", placeholder))
	})
}

// RestoreTables splices rendered table blocks back into extracted text.
func (tf *TableFormatter) RestoreTables(text string) string {
	for placeholder, block := range tf.rendered {
		text = strings.Replace(text, placeholder, block, 1)
	}
	return text
}

// Count returns the number of tables extracted so far.
func (tf *TableFormatter) Count() int {
	return tf.tableCount
}

// tableTitle resolves the display title for the n-th table.
func (tf *TableFormatter) tableTitle(table *goquery.Selection, n int) string {
	if caption := strings.TrimSpace(table.Find("caption").First().Text()); caption != "" {
		return collapseSpaces(caption)
	}
	if heading := precedingHeading(table); heading != "" {
		return heading
	}
	return fmt.Sprintf("Table %d", n)
}

// precedingHeading walks backwards through the document for the closest
// heading-like element with short text. Candidates longer than 200 chars are
// treated as body prose, not captions.
func precedingHeading(table *goquery.Selection) string {
	const headingTags = "h1, h2, h3, h4, h5, h6, p, b, strong"

	for node := table; node.Length() > 0; node = node.Parent() {
		prev := node.PrevAll()
		for i := 0; i < prev.Length(); i++ {
			sib := prev.Eq(i) // PrevAll orders nearest-first
			candidate := sib
			if !sib.Is(headingTags) {
				inner := sib.Find(headingTags)
				if inner.Length() == 0 {
					continue
				}
				candidate = inner.Last()
			}
			text := collapseSpaces(strings.TrimSpace(candidate.Text()))
			if text != "" && len(text) < 200 {
				return text
			}
		}
	}
	return ""
}

// renderTableMarkdown converts one HTML table to a pipe table using a
// virtual grid so colspan/rowspan cells land in the right columns.
func renderTableMarkdown(tableHTML string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(tableHTML))
	if err != nil {
		return ""
	}
	rows := doc.Find("tr")
	rowCount := rows.Length()
	if rowCount == 0 {
		return ""
	}

	maxCols := 0
	rows.Each(func(_ int, tr *goquery.Selection) {
		cols := 0
		tr.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
			cols += spanAttr(cell, "colspan")
		})
		if cols > maxCols {
			maxCols = cols
		}
	})
	if maxCols == 0 {
		return ""
	}

	grid := make([][]string, rowCount)
	for i := range grid {
		grid[i] = make([]string, maxCols)
	}

	rowIdx := 0
	rows.Each(func(_ int, tr *goquery.Selection) {
		colIdx := 0
		for colIdx < maxCols && grid[rowIdx][colIdx] != "" {
			colIdx++
		}
		tr.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
			colspan := spanAttr(cell, "colspan")
			rowspan := spanAttr(cell, "rowspan")
			text := cleanCellText(cell.Text())

			for r := 0; r < rowspan; r++ {
				for c := 0; c < colspan; c++ {
					rr, cc := rowIdx+r, colIdx+c
					if rr >= rowCount || cc >= maxCols {
						continue
					}
					if r == 0 && c == 0 {
						grid[rr][cc] = text
					} else {
						// Markdown has no spans; pad so columns stay aligned
						grid[rr][cc] = " "
					}
				}
			}
			colIdx += colspan
			for colIdx < maxCols && grid[rowIdx][colIdx] != "" {
				colIdx++
			}
		})
		rowIdx++
	})

	var sb strings.Builder
	sb.WriteString("\n")
	for i, row := range grid {
		sb.WriteString("|")
		for _, cell := range row {
			if cell == "" {
				cell = " "
			}
			sb.WriteString(" " + cell + " |")
		}
		sb.WriteString("\n")
		if i == 0 {
			sb.WriteString("|")
			for range row {
				sb.WriteString(" --- |")
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func spanAttr(cell *goquery.Selection, name string) int {
	n, _ := strconv.Atoi(cell.AttrOr(name, "1"))
	if n < 1 {
		n = 1
	}
	return n
}

func cleanCellText(text string) string {
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, "\n", " ")
	text = strings.ReplaceAll(text, "|", "&#124;")
	text = normalizeNumber(collapseSpaces(text))
	if text == "" {
		return " "
	}
	return text
}

// normalizeNumber rewrites accounting-format numbers as plain signed values:
// parenthesised values become negative, currency symbols and thousand
// separators are stripped. Non-numeric strings pass through untouched.
func normalizeNumber(text string) string {
	original := text

	hasDigit := false
	for _, r := range text {
		if r >= '0' && r <= '9' {
			hasDigit = true
			break
		}
	}
	if !hasDigit {
		return original
	}

	negative := false
	if strings.HasPrefix(text, "(") && strings.HasSuffix(text, ")") {
		negative = true
		text = text[1 : len(text)-1]
	}
	for _, sym := range []string{"$", "€", "£", "¥", ","} {
		text = strings.ReplaceAll(text, sym, "")
	}
	text = strings.TrimSpace(text)

	for _, r := range text {
		if !(r >= '0' && r <= '9') && r != '.' && r != '-' && r != '%' {
			return original
		}
	}
	if negative && !strings.HasPrefix(text, "-") {
		text = "-" + text
	}
	return text
}
