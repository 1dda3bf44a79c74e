// Package cmd holds the nba-predictions command line.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"nba-predictions-go/catalog"
	"nba-predictions-go/config"
	"nba-predictions-go/database"
	"nba-predictions-go/logging"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "nba-predictions",
	Short:         "NBA game prediction tracker",
	Long:          "Record predictions on NBA games and rank teams by how often bets on them come true.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
		logging.Configure(cfg.ToLoggingConfig())
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(teamsCmd)
	rootCmd.AddCommand(seedCmd)
}

// loadCatalog reads TEAM_CATALOG_FILE, or the embedded catalog when unset
func loadCatalog() (*catalog.Catalog, error) {
	if cfg.App.TeamCatalogFile == "" {
		return catalog.Default(), nil
	}
	teams, err := catalog.Load(cfg.App.TeamCatalogFile)
	if err != nil {
		return nil, fmt.Errorf("load team catalog: %w", err)
	}
	return teams, nil
}

// openStores connects to the configured backend
func openStores(ctx context.Context) (*database.Stores, error) {
	stores, err := database.Open(ctx, cfg.ToDatabaseConfig())
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return stores, nil
}
