// Package report assembles agent results for a quarter into the competitive
// intelligence markdown report.
package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"insurance_intel/pkg/core/agents"
	"insurance_intel/pkg/core/ingest"
	"insurance_intel/pkg/core/utils"
)

// sectionOrder maps dimensions to report headings, in report order.
var sectionOrder = []struct {
	dim   string
	title string
}{
	{agents.DimFinancialMetrics, "Financial Metrics"},
	{agents.DimCompetitivePos, "Competitive Positioning"},
	{agents.DimStrategicMoves, "Strategic Initiatives"},
	{agents.DimRiskOutlook, "Risk and Outlook"},
}

// Builder renders reports. When a provider is set the executive summary is
// model-written from the section contents; otherwise a deterministic summary
// lists coverage and notable failures.
type Builder struct {
	cfg      *agents.Config
	provider agents.Provider
}

func NewBuilder(cfg *agents.Config) *Builder {
	return &Builder{cfg: cfg}
}

// WithProvider enables the model-written executive summary.
func (b *Builder) WithProvider(p agents.Provider) *Builder {
	b.provider = p
	return b
}

// Build renders the full report and validates that it parses as markdown.
func (b *Builder) Build(ctx context.Context, year int, quarter string, results map[string][]agents.CompanyResult) (string, error) {
	var sb strings.Builder
	period := fmt.Sprintf("%s %d", ingest.QuarterDisplay(quarter), year)

	fmt.Fprintf(&sb, "# Commercial Insurance Competitive Intelligence Report - %s\n\n", period)
	fmt.Fprintf(&sb, "Subject company: %s. Peer set: %s.\n\n", b.cfg.SubjectTicker, b.rosterLine())

	body := b.renderSections(results)

	summary, err := b.executiveSummary(ctx, period, body)
	if err != nil {
		return "", err
	}
	sb.WriteString("## Executive Summary\n\n")
	sb.WriteString(summary)
	sb.WriteString("\n\n")
	sb.WriteString(body)

	out := utils.CleanMarkdown(sb.String())
	if !utils.ValidateMarkdown(out) {
		return "", fmt.Errorf("generated report failed markdown validation")
	}
	return out, nil
}

func (b *Builder) rosterLine() string {
	tickers := make([]string, 0, len(b.cfg.Companies))
	for _, c := range b.cfg.Companies {
		if c.Ticker != b.cfg.SubjectTicker {
			tickers = append(tickers, c.Ticker)
		}
	}
	return strings.Join(tickers, ", ")
}

func (b *Builder) renderSections(results map[string][]agents.CompanyResult) string {
	var sb strings.Builder
	for _, section := range sectionOrder {
		rs, ok := results[section.dim]
		if !ok {
			continue
		}
		fmt.Fprintf(&sb, "## %s\n\n", section.title)
		for _, r := range orderedByTicker(rs) {
			fmt.Fprintf(&sb, "### %s\n\n", r.Ticker)
			switch {
			case r.Err != nil:
				fmt.Fprintf(&sb, "Analysis unavailable: %v\n\n", r.Err)
			case r.Failure != nil:
				fmt.Fprintf(&sb, "Extraction failed at the %s stage; raw response preview:\n\n> %s\n\n",
					r.Failure.Stage, r.Failure.RawPreview)
			default:
				sb.WriteString(renderData(r.Data))
				sb.WriteString("\n")
			}
		}
	}
	return sb.String()
}

// renderData flattens one agent JSON object into a definition-style list,
// keys sorted so output is stable.
func renderData(data map[string]interface{}) string {
	keys := make([]string, 0, len(data))
	for k := range data {
		if k == "ticker" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "- **%s**: %s\n", strings.ReplaceAll(k, "_", " "), renderValue(data[k]))
	}
	return sb.String()
}

func renderValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "not reported"
	case string:
		return val
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%.2f", val)
	case bool:
		return fmt.Sprintf("%t", val)
	case []interface{}:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, renderValue(item))
		}
		return strings.Join(parts, "; ")
	case map[string]interface{}:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s: %s", strings.ReplaceAll(k, "_", " "), renderValue(val[k])))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprintf("%v", val)
	}
}

func (b *Builder) executiveSummary(ctx context.Context, period, body string) (string, error) {
	if b.provider == nil {
		return fmt.Sprintf(
			"This report covers the %s commercial insurance peer set for %s, focused on %s. Sections below carry per-company findings; entries marked unavailable reflect extraction failures, not absent filings.",
			ingest.Industry, period, b.cfg.SubjectTicker), nil
	}
	prompt := fmt.Sprintf(
		"Write a three-paragraph executive summary of this %s competitive intelligence report, focused on %s relative to its peers. Plain markdown, no headings.\n\n%s",
		period, b.cfg.SubjectTicker, body)
	raw, err := b.provider.GenerateResponse(ctx, prompt,
		"You are a commercial-insurance analyst writing for company leadership.", agents.GenerateOptions{})
	if err != nil {
		return "", fmt.Errorf("executive summary generation: %w", err)
	}
	return utils.CleanMarkdown(raw), nil
}

// Save writes the report under dir with the canonical name and returns the
// path.
func Save(dir string, year int, quarter string, content string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	q := strings.ReplaceAll(ingest.QuarterDisplay(quarter), "/", "")
	name := fmt.Sprintf("ci_report_%s_%d.md", q, year)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

func orderedByTicker(rs []agents.CompanyResult) []agents.CompanyResult {
	out := make([]agents.CompanyResult, len(rs))
	copy(out, rs)
	sort.Slice(out, func(i, j int) bool { return out[i].Ticker < out[j].Ticker })
	return out
}
