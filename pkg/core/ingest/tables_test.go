package ingest

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func TestNormalizeNumber(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"accounting negative", "(1,234)", "-1234"},
		{"dollar amount", "$2,500.75", "2500.75"},
		{"negative dollar", "($1,234.56)", "-1234.56"},
		{"plain number", "42", "42"},
		{"percentage", "96.5%", "96.5%"},
		{"text passes through", "Combined Ratio", "Combined Ratio"},
		{"dash placeholder", "—", "—"},
		{"mixed text and digits", "Q3 2025", "Q3 2025"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeNumber(tt.in); got != tt.want {
				t.Errorf("normalizeNumber(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRenderTableMarkdown(t *testing.T) {
	html := `<table>
		<tr><th>Segment</th><th>Premiums</th><th>Ratio</th></tr>
		<tr><td>Business Insurance</td><td>$5,400</td><td>94.2%</td></tr>
		<tr><td>Personal Lines</td><td>(320)</td><td>101.7%</td></tr>
	</table>`
	md := renderTableMarkdown(html)
	for _, want := range []string{
		"| Segment | Premiums | Ratio |",
		"| --- | --- | --- |",
		"| Business Insurance | 5400 | 94.2% |",
		"| Personal Lines | -320 | 101.7% |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestRenderTableMarkdownColspan(t *testing.T) {
	html := `<table>
		<tr><th colspan="2">Nine Months Ended</th></tr>
		<tr><td>2025</td><td>2024</td></tr>
	</table>`
	md := renderTableMarkdown(html)
	lines := strings.Split(strings.TrimSpace(md), "\n")
	if len(lines) < 3 {
		t.Fatalf("got %d lines:\n%s", len(lines), md)
	}
	// Both rows must render the same column count
	if strings.Count(lines[0], "|") != strings.Count(lines[2], "|") {
		t.Errorf("column counts differ between header and body:\n%s", md)
	}
}

func TestTableTitlePrecedence(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			"caption tag wins",
			`<html><body><b>Ignored Heading</b><table><caption>Loss Reserves</caption><tr><td>1</td></tr></table></body></html>`,
			"Loss Reserves",
		},
		{
			"preceding bold heading",
			`<html><body><p><b>Segment Results</b></p><table><tr><td>1</td></tr></table></body></html>`,
			"Segment Results",
		},
		{
			"numbered fallback",
			`<html><body><table><tr><td>1</td></tr></table></body></html>`,
			"Table 1",
		},
		{
			"long prose is not a caption",
			`<html><body><p>` + strings.Repeat("x", 220) + `</p><table><tr><td>1</td></tr></table></body></html>`,
			"Table 1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := goquery.NewDocumentFromReader(strings.NewReader(tt.html))
			if err != nil {
				t.Fatal(err)
			}
			tf := NewTableFormatter()
			tf.ExtractTables(doc)
			if tf.Count() != 1 {
				t.Fatalf("extracted %d tables, want 1", tf.Count())
			}
			restored := tf.RestoreTables("{{TABLE_1}}")
			if !strings.Contains(restored, "### "+tt.want) {
				t.Errorf("restored block missing title %q:\n%s", tt.want, restored)
			}
		})
	}
}

func TestExtractTablesSkipsNested(t *testing.T) {
	html := `<html><body>
		<p>Segment detail follows.</p>
		<table>
			<tr><td>Outer label</td><td><table><tr><td>Inner cell</td></tr></table></td></tr>
		</table>
		</body></html>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatal(err)
	}

	tf := NewTableFormatter()
	tf.ExtractTables(doc)
	if tf.Count() != 1 {
		t.Fatalf("table count = %d, want 1 (nested table must ride along with its parent)", tf.Count())
	}

	restored := tf.RestoreTables(doc.Text())
	if strings.Contains(restored, "{{TABLE_") {
		t.Errorf("unrestored placeholder left in text: %q", restored)
	}
	if !strings.Contains(restored, "Outer label") || !strings.Contains(restored, "Inner cell") {
		t.Errorf("restored text missing table content: %q", restored)
	}
}

func TestTableRoundTripThroughSegmenter(t *testing.T) {
	html := `<html><body>
		<p><b>Item 1. Business</b></p>
		<p>The company writes commercial property and casualty insurance across North America.</p>
		<p><b>Segment Results</b></p>
		<table>
			<tr><th>Segment</th><th>Net Premiums</th></tr>
			<tr><td>Commercial</td><td>$5,400</td></tr>
		</table>
		</body></html>`
	fs := NewFilingSegmenter()
	segments, err := fs.Segment(html, "whole document")
	if err != nil {
		t.Fatal(err)
	}
	if len(segments) == 0 {
		t.Fatal("no segments")
	}
	all := ""
	for _, s := range segments {
		all += s.Text + "\n"
	}
	if !strings.Contains(all, "### Segment Results") {
		t.Errorf("table title lost:\n%s", all)
	}
	if !strings.Contains(all, "| Commercial | 5400 |") {
		t.Errorf("table row lost:\n%s", all)
	}
	if strings.Contains(all, "{{TABLE_") {
		t.Errorf("placeholder survived restoration:\n%s", all)
	}
}
