package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pzaremba/oswatch/schema"
)

// kindsCmd represents the kinds command
var kindsCmd = &cobra.Command{
	Use:   "kinds",
	Short: "List the tracked resource kinds and their schemas",
	RunE:  runKinds,
}

func init() {
	rootCmd.AddCommand(kindsCmd)
}

func runKinds(cmd *cobra.Command, args []string) error {
	for _, kind := range schema.Kinds() {
		s, err := schema.Lookup(kind)
		if err != nil {
			return err
		}

		paths := make([]string, 0, len(s.ManagerPaths))
		for _, p := range s.ManagerPaths {
			paths = append(paths, strings.Join(p, "."))
		}
		fmt.Printf("%s (manager: %s)\n", kind, strings.Join(paths, ", "))

		attrs := make([]string, 0, len(s.Attrs))
		for name := range s.Attrs {
			attrs = append(attrs, name)
		}
		sort.Strings(attrs)
		for _, name := range attrs {
			fmt.Printf("  %-20s <- %s\n", name, strings.Join(s.Attrs[name], "."))
		}
	}
	return nil
}
