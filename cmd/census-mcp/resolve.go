package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var resolveLevel string

var resolveCmd = &cobra.Command{
	Use:   "resolve <location>",
	Short: "Resolve a location to its geographic area",
	Long: `Resolve a place name, 5-digit ZIP code, or raw geographic key to a single
canonical geographic area. Useful for checking what the MCP tools will see
for a given input.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	resolveCmd.Flags().StringVar(&resolveLevel, "level", "",
		"Summary level hint (e.g. county, state, tract, or a code like 050)")
}

func runResolve(cmd *cobra.Command, args []string) error {
	engine, _, err := newEngine(os.Stderr)
	if err != nil {
		return fail(err)
	}
	defer engine.Close()

	input := strings.Join(args, " ")
	loc, err := engine.ResolveLocation(context.Background(), input, resolveLevel)
	if err != nil {
		return fail(err)
	}
	if loc == nil {
		fmt.Printf("No area matched %q\n", input)
		return nil
	}

	out, err := json.MarshalIndent(loc, "", "  ")
	if err != nil {
		return fail(err)
	}
	fmt.Println(string(out))
	return nil
}
