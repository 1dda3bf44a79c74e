package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"nba-predictions-go/services"
)

var seedPerUser int

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create demo accounts and random graded predictions",
	Args:  cobra.NoArgs,
	RunE:  runSeed,
}

func init() {
	seedCmd.Flags().IntVar(&seedPerUser, "per-user", 0, "predictions per demo user (default SEED_PREDICTIONS_PER_USER)")
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	teams, err := loadCatalog()
	if err != nil {
		return err
	}
	stores, err := openStores(ctx)
	if err != nil {
		return err
	}
	defer stores.Close()

	perUser := seedPerUser
	if perUser <= 0 {
		perUser = cfg.App.SeedPerUser
	}

	seeder := services.NewSeeder(stores.Users, stores.Predictions, teams, uint64(time.Now().UnixNano()))
	if err := seedDemoData(ctx, seeder, perUser); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Demo accounts use password %q\n", services.DemoPassword)
	return nil
}

// seedDemoData creates the demo accounts and their predictions
func seedDemoData(ctx context.Context, seeder *services.Seeder, perUser int) error {
	users, err := seeder.SeedUsers(ctx)
	if err != nil {
		return fmt.Errorf("seed users: %w", err)
	}
	if _, err := seeder.SeedPredictions(ctx, users, perUser); err != nil {
		return fmt.Errorf("seed predictions: %w", err)
	}
	return nil
}
