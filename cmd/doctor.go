package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/parley/internal/diag"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the pieces a feedback session needs are present",
	RunE: func(cmd *cobra.Command, args []string) error {
		checks := diag.Probe(GetConfig())

		names := make([]string, 0, len(checks))
		for name := range checks {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			fmt.Printf("  %-16s %s\n", name, checks[name])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
