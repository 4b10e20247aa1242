package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	purgeBackend string
	purgeYes     bool
)

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete every document from the index",
	Long: `Removes all documents from the chosen index backend. Destructive and
unscoped, so it asks for typed confirmation unless --yes is passed.`,
	RunE: runPurge,
}

func init() {
	purgeCmd.Flags().StringVar(&purgeBackend, "backend", "discovery", "index backend: discovery, postgres or memory")
	purgeCmd.Flags().BoolVar(&purgeYes, "yes", false, "skip the confirmation prompt")
	rootCmd.AddCommand(purgeCmd)
}

func runPurge(cmd *cobra.Command, args []string) error {
	if !purgeYes {
		fmt.Printf("This deletes ALL documents from the %s backend. Type 'yes' to continue: ", purgeBackend)
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return fmt.Errorf("read confirmation: %w", err)
		}
		if strings.TrimSpace(line) != "yes" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	ctx := context.Background()
	store, cleanup, err := buildStore(ctx, purgeBackend)
	if err != nil {
		return err
	}
	defer cleanup()

	count, err := store.Purge(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Purged %d document(s).\n", count)
	return nil
}
