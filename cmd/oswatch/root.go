package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version    = "0.1.0"
	configPath string

	rootCmd = &cobra.Command{
		Use:   "oswatch",
		Short: "OpenStack usage statistics collector",
		Long: `oswatch - OpenStack usage statistics collector

oswatch walks the OpenStack APIs of a deployed cloud and extracts flat
attribute records for servers, flavors, tenants, images and volumes.
Snapshots are persisted locally and optionally shipped to an upstream
statistics endpoint.`,
		Version: version,
	}
)

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "oswatch.yaml", "Path to config file")
	rootCmd.SetVersionTemplate(`oswatch {{.Version}} - OpenStack usage statistics collector
`)
}
