package agents

import (
	"fmt"
	"strings"

	"insurance_intel/pkg/core/index"
)

// Quality buckets for a scored result set.
const (
	QualityHigh   = "high"
	QualityMedium = "medium"
	QualityLow    = "low"
)

// metricKeywords are the terms a useful financial extract tends to contain.
var metricKeywords = []string{
	"combined ratio", "loss ratio", "expense ratio",
	"net written premium", "net premiums written", "gross written premium",
	"underwriting income", "underwriting gain", "underwriting loss",
	"reserve development", "catastrophe losses",
}

// ScoreResult rates one search hit for a company/quarter extraction query.
// Additive signals, clamped to [0,1]:
//
//	+0.3 right year, +0.2 right form type, up to +0.2 segment keywords,
//	+0.2 two or more metric keywords, -0.1 wrong segment, -0.1 wrong year
func ScoreResult(r index.Result, company Company, year int, formType string) float64 {
	score := 0.0
	content := strings.ToLower(r.Content + " " + r.Meta.Description)

	if r.Meta.Year == year {
		score += 0.3
	} else if r.Meta.Year != 0 {
		score -= 0.1
	}

	if formType != "" && r.Meta.FormType == formType {
		score += 0.2
	}

	if len(company.SegmentKeywords) > 0 {
		hits := 0
		for _, kw := range company.SegmentKeywords {
			if strings.Contains(content, strings.ToLower(kw)) {
				hits++
			}
		}
		score += 0.2 * float64(hits) / float64(len(company.SegmentKeywords))
	}

	metricHits := 0
	for _, kw := range metricKeywords {
		if strings.Contains(content, kw) {
			metricHits++
		}
	}
	if metricHits >= 2 {
		score += 0.2
	}

	for _, excluded := range company.ExcludeSegments {
		if strings.Contains(content, strings.ToLower(excluded)) {
			score -= 0.1
			break
		}
	}

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// ScoreResults averages the top hits and buckets the outcome.
func ScoreResults(results []index.Result, company Company, year int, formType string) (float64, string) {
	if len(results) == 0 {
		return 0, QualityLow
	}
	total := 0.0
	for _, r := range results {
		total += ScoreResult(r, company, year, formType)
	}
	avg := total / float64(len(results))
	switch {
	case avg >= 0.7:
		return avg, QualityHigh
	case avg >= 0.4:
		return avg, QualityMedium
	default:
		return avg, QualityLow
	}
}

// RefineQuery tightens a query after a low-scoring iteration. Iteration 1
// pins the segment name, iteration 2 pins the period, anything later adds
// metric vocabulary. Deterministic so retries are reproducible.
func RefineQuery(query string, company Company, year int, quarter string, iteration int) string {
	switch iteration {
	case 1:
		if len(company.SegmentKeywords) > 0 && !strings.Contains(query, company.SegmentKeywords[0]) {
			return fmt.Sprintf("%s %q segment results", query, company.SegmentKeywords[0])
		}
		return query + " segment results"
	case 2:
		return fmt.Sprintf("%s %s %d filing", query, quarter, year)
	default:
		return query + " combined ratio net written premiums underwriting income"
	}
}
