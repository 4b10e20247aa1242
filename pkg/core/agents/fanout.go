package agents

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// RunDimension executes one spec across the whole roster. Companies run in
// batches of MaxConcurrent with a pause between batches to stay inside API
// rate limits. Each company gets its own timeout; a slow or failing company
// yields an error result and never blocks the rest.
func (r *Runner) RunDimension(ctx context.Context, spec AgentSpec, year int, quarter string) []CompanyResult {
	companies := r.cfg.Companies
	results := make([]CompanyResult, len(companies))

	for start := 0; start < len(companies); start += r.cfg.MaxConcurrent {
		end := start + r.cfg.MaxConcurrent
		if end > len(companies) {
			end = len(companies)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i] = r.runWithTimeout(ctx, spec, companies[i], year, quarter)
			}(i)
		}
		wg.Wait()

		if end < len(companies) {
			select {
			case <-ctx.Done():
				for i := end; i < len(companies); i++ {
					results[i] = CompanyResult{
						Ticker:    companies[i].Ticker,
						Dimension: spec.Dimension,
						Err:       ctx.Err(),
					}
				}
				return results
			case <-time.After(time.Duration(r.cfg.BatchPauseSeconds) * time.Second):
			}
		}
	}
	return results
}

func (r *Runner) runWithTimeout(ctx context.Context, spec AgentSpec, company Company, year int, quarter string) CompanyResult {
	timeout := time.Duration(r.cfg.CompanyTimeoutSecs) * time.Second
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan CompanyResult, 1)
	go func() {
		done <- r.RunCompany(cctx, spec, company, year, quarter)
	}()

	select {
	case res := <-done:
		return res
	case <-cctx.Done():
		return CompanyResult{
			Ticker:    company.Ticker,
			Dimension: spec.Dimension,
			Err:       fmt.Errorf("analysis for %s timed out after %s", company.Ticker, timeout),
		}
	}
}

// RunAll executes every spec for the quarter and groups results by
// dimension, in spec order.
func (r *Runner) RunAll(ctx context.Context, year int, quarter string) map[string][]CompanyResult {
	out := make(map[string][]CompanyResult)
	for _, spec := range AllSpecs() {
		fmt.Printf("Running %s agent across %d companies...\n", spec.Dimension, len(r.cfg.Companies))
		out[spec.Dimension] = r.RunDimension(ctx, spec, year, quarter)
	}
	return out
}
