package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/bfs/census-acs-mcp/internal/config"
	"github.com/bfs/census-acs-mcp/internal/logging"
	"github.com/bfs/census-acs-mcp/internal/query"
	"github.com/bfs/census-acs-mcp/internal/storage"
	"github.com/bfs/census-acs-mcp/internal/version"
)

var (
	// configDirFlag is the CLI --config flag value
	configDirFlag string
	// dbPathFlag overrides the configured database path
	dbPathFlag string
)

var rootCmd = &cobra.Command{
	Use:   "census-mcp",
	Short: "census-mcp - statistical geographic data over MCP",
	Long: `census-mcp serves American Community Survey statistics from an embedded
analytical store over the Model Context Protocol. It resolves place names,
ZIP codes and coordinates to geographic areas, and ranks areas by metrics,
sums of metrics, or rates between metric groups.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("census-mcp version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&configDirFlag, "config", "",
		"Directory containing census-mcp.yaml (default: working directory)")
	rootCmd.PersistentFlags().StringVar(&dbPathFlag, "db", "",
		"Path to the ACS database (overrides the configured path)")
}

// loadConfig loads the configuration and applies CLI overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configDirFlag)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if dbPathFlag != "" {
		cfg.DatabasePath = dbPathFlag
	}
	return cfg, nil
}

// newEngine opens the store and builds the query engine. Logs go to w; the
// MCP command passes stderr so protocol output on stdout stays clean.
func newEngine(w io.Writer) (*query.Engine, *slog.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	logger := logging.NewLogger(cfg.Logging, w)

	db, err := storage.Open(cfg.DatabasePath, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	return query.NewEngine(db, logger, cfg), logger, nil
}

// fail prints an error to stderr and returns it for cobra's exit handling.
func fail(err error) error {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return err
}
