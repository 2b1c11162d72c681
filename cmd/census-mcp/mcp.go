package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/bfs/census-acs-mcp/internal/mcp"
	"github.com/bfs/census-acs-mcp/internal/version"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol (MCP) server.

The server communicates over stdio using newline-delimited JSON-RPC 2.0
and exposes these tools:
  - resolveLocation: resolve a place name, ZIP, or geographic key
  - searchLocations: search areas by name
  - listGeographies: list areas at one summary level
  - lookupCoordinates: find the area containing a point
  - rankAreasByMetric: rank areas by a metric, sum, or rate
  - searchMetrics: search the metric catalog
  - getStatus: dataset statistics

This command is typically invoked by MCP clients and not directly by users.`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	// Logs go to stderr since stdout carries the MCP protocol
	engine, logger, err := newEngine(os.Stderr)
	if err != nil {
		return fail(err)
	}
	defer engine.Close()

	logger.Info("Starting MCP server", "version", version.Version)

	server := mcp.NewServer(version.Version, engine, logger)
	if err := server.Start(); err != nil {
		logger.Error("MCP server error", "error", err.Error())
		return err
	}
	return nil
}
