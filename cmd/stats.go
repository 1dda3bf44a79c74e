package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"nba-predictions-go/interfaces"
	"nba-predictions-go/models"
	"nba-predictions-go/services"
)

var statsUser string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print the team ranking, or one user's per-team record",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsUser, "user", "", "username for user-scope stats")
}

func runStats(cmd *cobra.Command, args []string) error {
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

	scope := models.ScopeGlobal
	if statsUser != "" {
		user, err := stores.Users.GetUserByUsername(ctx, statsUser)
		if err != nil {
			return fmt.Errorf("find user %s: %w", statsUser, err)
		}
		ctx = services.ContextWithUser(ctx, user)
		scope = models.ScopeUser
	}

	svc := services.NewStatsService(interfaces.Collaborators{
		Session: services.ContextSession{},
		Store:   stores.Predictions,
		Catalog: teams,
	})
	stats, err := svc.TeamStats(ctx, scope)
	if err != nil {
		return err
	}
	return printStatsTable(cmd.OutOrStdout(), services.RankedStats(stats, teams.Teams()))
}
