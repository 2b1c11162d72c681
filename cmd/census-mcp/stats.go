package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show dataset statistics",
	Long: `Show statistics about the loaded ACS dataset: the number of geographic
areas, boundaries, metric definitions and observations, plus the database
location and the configured query timeout.`,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Output as JSON")
}

func runStats(cmd *cobra.Command, args []string) error {
	engine, _, err := newEngine(os.Stderr)
	if err != nil {
		return fail(err)
	}
	defer engine.Close()

	st, err := engine.GetStatus(context.Background())
	if err != nil {
		return fail(err)
	}

	if statsJSON {
		out, err := json.MarshalIndent(st, "", "  ")
		if err != nil {
			return fail(err)
		}
		fmt.Println(string(out))
		return nil
	}

	fmt.Printf("Database:      %s\n", st.DatabasePath)
	fmt.Printf("Areas:         %d\n", st.Areas)
	fmt.Printf("Boundaries:    %d\n", st.Boundaries)
	fmt.Printf("Metrics:       %d\n", st.Metrics)
	fmt.Printf("Observations:  %d\n", st.Observations)
	fmt.Printf("Query timeout: %dms\n", st.TimeoutMs)
	return nil
}
