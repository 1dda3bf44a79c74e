package cmd

import (
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"nba-predictions-go/models"
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

// printStatsTable prints stats in the given order. Rank shows "-" when unranked.
func printStatsTable(w io.Writer, stats []models.TeamStats) error {
	table := newTable(w)
	table.Header("RANK", "TEAM", "W", "L", "WIN%")
	for _, s := range stats {
		rank := "-"
		if s.Rank > 0 {
			rank = strconv.Itoa(s.Rank)
		}
		if err := table.Append(rank, s.TeamName, strconv.Itoa(s.Wins), strconv.Itoa(s.Losses), s.WinRate); err != nil {
			return err
		}
	}
	return table.Render()
}

// printTeamsTable prints the catalog in order
func printTeamsTable(w io.Writer, teams []models.Team) error {
	table := newTable(w)
	table.Header("#", "TEAM", "SHORT", "CONFERENCE", "DIVISION")
	for i, t := range teams {
		if err := table.Append(strconv.Itoa(i+1), t.Name, t.ShortName(), t.Conference, t.Division); err != nil {
			return err
		}
	}
	return table.Render()
}
