package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"insurance_intel/pkg/core/agents"
	"insurance_intel/pkg/core/index"
	"insurance_intel/pkg/core/ingest"
	"insurance_intel/pkg/core/report"
)

var (
	reportYear    int
	reportQuarter string
	reportBackend string
	reportOut     string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Run the extraction agents and build the quarterly report",
	Long: `Runs every extraction dimension against every roster company for the
given period, grounding queries in the chosen index backend, then renders
the findings into a markdown competitive-intelligence report.`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().IntVar(&reportYear, "year", 0, "fiscal year (required)")
	reportCmd.Flags().StringVar(&reportQuarter, "quarter", "", "Q1-Q4, or 'annual' for 10-K data (required)")
	reportCmd.Flags().StringVar(&reportBackend, "backend", "discovery", "index backend: discovery, postgres or memory")
	reportCmd.Flags().StringVar(&reportOut, "out", "generated_reports", "output directory for the report")
	_ = reportCmd.MarkFlagRequired("year")
	_ = reportCmd.MarkFlagRequired("quarter")
	rootCmd.AddCommand(reportCmd)
}

func parseQuarter(s string) (string, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "Q1", "Q2", "Q3", "Q4":
		return strings.ToUpper(strings.TrimSpace(s)), nil
	case "ANNUAL":
		return ingest.QuarterAnnual, nil
	default:
		return "", fmt.Errorf("invalid quarter %q (want Q1-Q4 or annual)", s)
	}
}

func runReport(cmd *cobra.Command, args []string) error {
	quarter, err := parseQuarter(reportQuarter)
	if err != nil {
		return err
	}
	cfg, err := agents.LoadConfig(configPath)
	if err != nil {
		return err
	}
	apiKey, err := requireEnv("GEMINI_API_KEY")
	if err != nil {
		return err
	}
	provider, err := agents.NewGeminiProvider(apiKey, cfg.Model)
	if err != nil {
		return err
	}

	ctx := context.Background()
	runner := agents.NewRunner(provider, cfg)

	// Discovery grounds queries through the model's retrieval tool; the
	// other backends are searched directly for validation evidence.
	if reportBackend == "discovery" {
		dcfg, err := discoveryConfigFromEnv()
		if err != nil {
			return err
		}
		runner = runner.WithDatastore(dcfg.DatastorePath())
	} else {
		store, cleanup, err := buildStore(ctx, reportBackend)
		if err != nil {
			return err
		}
		defer cleanup()
		searcher, ok := store.(index.Searcher)
		if !ok {
			return fmt.Errorf("backend %s does not support search", reportBackend)
		}
		runner = runner.WithSearcher(searcher)
	}

	fmt.Printf("Running agents for %s %d across %d companies...\n",
		ingest.QuarterDisplay(quarter), reportYear, len(cfg.Companies))
	results := runner.RunAll(ctx, reportYear, quarter)

	builder := report.NewBuilder(cfg).WithProvider(provider)
	content, err := builder.Build(ctx, reportYear, quarter, results)
	if err != nil {
		return err
	}
	path, err := report.Save(reportOut, reportYear, quarter, content)
	if err != nil {
		return err
	}
	fmt.Printf("Report written to %s\n", path)
	return nil
}
