package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pzaremba/oswatch/config"
	"github.com/pzaremba/oswatch/storage"
	"github.com/pzaremba/oswatch/types"
)

var reportHistory int

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show stored snapshot state per resource kind",
	Example: `  oswatch report                # Latest snapshot per kind
  oswatch report --history 5    # Last 5 snapshots per kind`,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().IntVar(&reportHistory, "history", 0, "Show the last N snapshots per kind")
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}

	store, err := storage.NewSnapshotStore(cfg.Storage.Dir)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	stats := store.Stats()
	if len(stats) == 0 {
		fmt.Println("No snapshots collected yet")
		return nil
	}

	for _, state := range stats {
		if reportHistory > 0 {
			if err := printHistory(store, state.Kind); err != nil {
				return err
			}
			continue
		}

		snap, err := store.Latest(state.Kind)
		if err != nil {
			return err
		}
		fmt.Printf("%-8s %4d records (revision %d, taken %s, %d snapshots kept)\n",
			state.Kind, len(snap.Records), snap.Revision,
			snap.TakenAt.Format("2006-01-02 15:04:05"), state.Snapshots)
	}
	return nil
}

func printHistory(store *storage.SnapshotStore, kind types.Kind) error {
	snaps, err := store.History(kind, reportHistory)
	if err != nil {
		return err
	}
	for _, snap := range snaps {
		fmt.Printf("%-8s %4d records (revision %d, taken %s)\n",
			kind, len(snap.Records), snap.Revision,
			snap.TakenAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}
