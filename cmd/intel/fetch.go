package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"insurance_intel/pkg/core/agents"
	"insurance_intel/pkg/core/fetch"
)

var (
	fetchDir         string
	fetchYear        int
	fetchQuarter     int
	fetchFilings     bool
	fetchTranscripts bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download filings and transcripts for the peer group",
	Long: `Downloads the latest 10-Q and 10-K of every roster company from EDGAR,
and the given quarter's earnings-call transcript when TRANSCRIPT_API_KEY is
set. Files land in the corpus directory under their canonical names, ready
for ingest.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().StringVar(&fetchDir, "dir", "data", "output directory for downloaded documents")
	fetchCmd.Flags().IntVar(&fetchYear, "year", 0, "transcript fiscal year (required with --transcripts)")
	fetchCmd.Flags().IntVar(&fetchQuarter, "quarter", 0, "transcript quarter 1-4 (required with --transcripts)")
	fetchCmd.Flags().BoolVar(&fetchFilings, "filings", true, "download EDGAR filings")
	fetchCmd.Flags().BoolVar(&fetchTranscripts, "transcripts", false, "download earnings-call transcripts")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := agents.LoadConfig(configPath)
	if err != nil {
		return err
	}

	var transcripts *fetch.TranscriptClient
	if fetchTranscripts {
		if fetchYear == 0 || fetchQuarter < 1 || fetchQuarter > 4 {
			return fmt.Errorf("--transcripts needs --year and --quarter 1-4")
		}
		apiKey, err := requireEnv("TRANSCRIPT_API_KEY")
		if err != nil {
			return err
		}
		transcripts, err = fetch.NewTranscriptClient(apiKey)
		if err != nil {
			return err
		}
	}

	ctx := context.Background()
	edgar := fetch.NewEDGARClient()
	var failed int

	for _, company := range cfg.Companies {
		fmt.Printf("=== %s (%s) ===\n", company.Name, company.Ticker)

		if fetchFilings {
			filings, err := edgar.LatestFilings(company.Ticker, "10-Q", "10-K")
			if err != nil {
				fmt.Printf("  ! filings: %v\n", err)
				failed++
			}
			for _, filing := range filings {
				path, err := edgar.Download(filing, fetchDir)
				if err != nil {
					fmt.Printf("  ! %s: %v\n", filing.Filename(), err)
					failed++
					continue
				}
				fmt.Printf("  - %s\n", path)
				// keep well under the SEC's 10 req/s ceiling
				time.Sleep(500 * time.Millisecond)
			}
		}

		if transcripts != nil {
			content, date, err := transcripts.Fetch(ctx, company.Ticker, fetchYear, fetchQuarter)
			if err != nil {
				fmt.Printf("  ! transcript: %v\n", err)
				failed++
			} else {
				path, err := transcripts.Save(fetchDir, company.Ticker, fetchYear, fetchQuarter, date, content)
				if err != nil {
					fmt.Printf("  ! transcript: %v\n", err)
					failed++
				} else {
					fmt.Printf("  - %s\n", path)
				}
			}
		}
	}

	if failed > 0 {
		fmt.Fprintf(os.Stderr, "%d download(s) failed\n", failed)
	}
	fmt.Printf("Done. Corpus directory: %s\n", fetchDir)
	return nil
}
