package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var collectStdout bool

// collectCmd represents the collect command
var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Run one collection pass across the configured resource kinds",
	Long: `Collect extracts attribute records for every configured resource kind,
persists a snapshot per kind and ships reports to the configured
statistics endpoint.

A kind whose resource manager cannot be resolved or whose list call
fails is skipped for this pass; the remaining kinds still run.`,
	Example: `  oswatch collect                        # Collect using ./oswatch.yaml
  oswatch collect -c /etc/oswatch.yaml   # Explicit config path
  oswatch collect --stdout               # Also print reports as JSON lines`,
	RunE: runCollect,
}

func init() {
	rootCmd.AddCommand(collectCmd)

	collectCmd.Flags().BoolVar(&collectStdout, "stdout", false, "Emit reports as JSON lines on stdout")
}

func runCollect(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	run, err := newCollectionRun(ctx, collectStdout)
	if err != nil {
		return err
	}
	defer run.close(ctx)

	results, err := run.runOnce(ctx)

	for _, res := range results {
		if res.Err != nil {
			fmt.Printf("%-8s FAILED: %v\n", res.Kind, res.Err)
			continue
		}
		fmt.Printf("%-8s %4d records (revision %d)\n", res.Kind, res.Records, res.Revision)
	}

	return err
}
