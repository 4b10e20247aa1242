package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"insurance_intel/pkg/core/embed"
	"insurance_intel/pkg/core/index"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "intel",
	Short: "Commercial insurance filings pipeline",
	Long: `Fetches SEC filings and earnings-call transcripts for the commercial
insurance peer group, chunks them into a searchable document index, and runs
search-grounded extraction agents to build a quarterly competitive report.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if err := godotenv.Load(); err != nil {
			log.Println("Warning: .env file not found, using environment variables")
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config/companies.yaml", "roster and agent configuration file")
}

func requireEnv(name string) (string, error) {
	v := os.Getenv(name)
	if v == "" {
		return "", fmt.Errorf("%s is not set", name)
	}
	return v, nil
}

// discoveryConfigFromEnv reads the datastore coordinates. Location defaults
// to global, which is where inline-import datastores usually live.
func discoveryConfigFromEnv() (index.DiscoveryConfig, error) {
	project, err := requireEnv("GCP_PROJECT_ID")
	if err != nil {
		return index.DiscoveryConfig{}, err
	}
	datastore, err := requireEnv("DISCOVERY_DATASTORE_ID")
	if err != nil {
		return index.DiscoveryConfig{}, err
	}
	location := os.Getenv("DISCOVERY_LOCATION")
	if location == "" {
		location = "global"
	}
	return index.DiscoveryConfig{ProjectID: project, Location: location, DataStoreID: datastore}, nil
}

// buildStore wires the requested index backend. The returned cleanup is
// always safe to call.
func buildStore(ctx context.Context, backend string) (index.Store, func(), error) {
	switch backend {
	case "memory":
		return index.NewMemoryIndex(), func() {}, nil
	case "postgres":
		dsn, err := requireEnv("DATABASE_URL")
		if err != nil {
			return nil, nil, err
		}
		apiKey, err := requireEnv("GEMINI_API_KEY")
		if err != nil {
			return nil, nil, err
		}
		embedder, err := embed.NewClient(ctx, apiKey)
		if err != nil {
			return nil, nil, err
		}
		pool, err := index.Connect(ctx, dsn)
		if err != nil {
			embedder.Close()
			return nil, nil, err
		}
		store := index.NewPostgresIndex(pool, embedder)
		if err := store.Init(ctx); err != nil {
			pool.Close()
			embedder.Close()
			return nil, nil, err
		}
		cleanup := func() {
			pool.Close()
			embedder.Close()
		}
		return store, cleanup, nil
	case "discovery":
		cfg, err := discoveryConfigFromEnv()
		if err != nil {
			return nil, nil, err
		}
		store, err := index.NewDiscoveryIndex(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend %q (want discovery, postgres or memory)", backend)
	}
}
