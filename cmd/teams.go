package cmd

import (
	"github.com/spf13/cobra"
)

var (
	teamsQuery  string
	teamsFilter string
)

var teamsCmd = &cobra.Command{
	Use:   "teams",
	Short: "List the team catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		teams, err := loadCatalog()
		if err != nil {
			return err
		}
		return printTeamsTable(cmd.OutOrStdout(), teams.Filter(teamsQuery, teamsFilter))
	},
}

func init() {
	teamsCmd.Flags().StringVarP(&teamsQuery, "query", "q", "", "substring of the team name")
	teamsCmd.Flags().StringVar(&teamsFilter, "filter", "all", "all, east or west")
}
