package agents

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"insurance_intel/pkg/core/index"
	"insurance_intel/pkg/core/ingest"
)

// AgentSpec defines one analysis dimension: how to query the index and how
// to prompt the model for that dimension's JSON answer.
type AgentSpec struct {
	Dimension    string
	SystemPrompt string
	BuildQuery   func(company Company, year int, quarter string) string
	BuildPrompt  func(company Company, year int, quarter string, evidence string) string
}

// CompanyResult is the outcome of one agent run against one company.
// Exactly one of Data, Failure, or Err is meaningful.
type CompanyResult struct {
	Ticker    string                 `json:"ticker"`
	Dimension string                 `json:"dimension"`
	Data      map[string]interface{} `json:"data,omitempty"`

	Query      string  `json:"query"`
	Iterations int     `json:"iterations"`
	Score      float64 `json:"search_score"`
	Quality    string  `json:"search_quality"`

	Failure *ExtractionFailure `json:"failure,omitempty"`
	Err     error              `json:"-"`
}

// Runner executes agent specs. When a Searcher is configured the query is
// validated and refined against it before the model call; otherwise the
// model's own retrieval grounding does the searching.
type Runner struct {
	provider      Provider
	searcher      index.Searcher
	cfg           *Config
	datastorePath string
}

func NewRunner(provider Provider, cfg *Config) *Runner {
	return &Runner{provider: provider, cfg: cfg}
}

// WithSearcher enables local search validation.
func (r *Runner) WithSearcher(s index.Searcher) *Runner {
	r.searcher = s
	return r
}

// WithDatastore enables Vertex AI Search grounding on model calls.
func (r *Runner) WithDatastore(path string) *Runner {
	r.datastorePath = path
	return r
}

const searchLimit = 10

// RunCompany executes one spec for one company. Model and parse failures
// land in the result, not in a returned error; the fan-out treats every
// company independently.
func (r *Runner) RunCompany(ctx context.Context, spec AgentSpec, company Company, year int, quarter string) CompanyResult {
	result := CompanyResult{Ticker: company.Ticker, Dimension: spec.Dimension}

	query := spec.BuildQuery(company, year, quarter)
	evidence := ""

	if r.searcher != nil {
		query, evidence, result.Score, result.Quality, result.Iterations = r.validateQuery(ctx, spec, company, year, quarter, query)
	}
	result.Query = query

	prompt := spec.BuildPrompt(company, year, quarter, evidence)
	raw, err := r.provider.GenerateResponse(ctx, prompt, spec.SystemPrompt, GenerateOptions{
		JSONOutput:    true,
		DatastorePath: r.datastorePath,
	})
	if err != nil {
		result.Err = fmt.Errorf("%s agent for %s: %w", spec.Dimension, company.Ticker, err)
		return result
	}

	data, perr := ParseResponse(raw)
	if perr != nil {
		var failure *ExtractionFailure
		if errors.As(perr, &failure) {
			result.Failure = failure
		} else {
			result.Err = perr
		}
		return result
	}
	result.Data = data
	return result
}

// validateQuery searches, scores, and refines up to MaxQueryIterations
// times, returning the best query with its evidence block.
func (r *Runner) validateQuery(ctx context.Context, spec AgentSpec, company Company, year int, quarter string, query string) (string, string, float64, string, int) {
	formType := "10-Q"
	if quarter == ingest.QuarterAnnual {
		formType = "10-K"
	}

	bestQuery, bestScore, bestQuality := query, 0.0, QualityLow
	var bestResults []index.Result

	iterations := 0
	for i := 0; i < r.cfg.MaxQueryIterations; i++ {
		iterations++
		results, err := r.searcher.Search(ctx, query, searchLimit)
		if err != nil {
			fmt.Printf("  search error for %s (iteration %d): %v\n", company.Ticker, iterations, err)
			break
		}
		score, quality := ScoreResults(results, company, year, formType)
		if score > bestScore || bestResults == nil {
			bestQuery, bestScore, bestQuality, bestResults = query, score, quality, results
		}
		if score >= r.cfg.MinQualityScore {
			break
		}
		query = RefineQuery(query, company, year, quarter, i+1)
	}

	var sb strings.Builder
	for i, res := range bestResults {
		if i >= 5 {
			break
		}
		fmt.Fprintf(&sb, "[%s | %s]\n%s\n\n", res.Meta.SourceFile, res.Meta.Section, res.Content)
	}
	return bestQuery, sb.String(), bestScore, bestQuality, iterations
}
