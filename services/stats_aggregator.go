package services

import (
	"math"
	"sort"

	"nba-predictions-go/models"
)

// ComputeStats aggregates graded predictions into per-team stats for every
// catalog team. User scope keeps only userID's records and is empty when
// userID is empty. Only global scope is ranked.
func ComputeStats(records []models.Prediction, scope models.Scope, userID string, teams []models.Team) map[string]models.TeamStats {
	if scope == models.ScopeUser && userID == "" {
		return map[string]models.TeamStats{}
	}

	type tally struct{ wins, losses int }
	counts := make(map[string]*tally, len(teams))
	for _, t := range teams {
		counts[t.Name] = &tally{}
	}

	for i := range records {
		r := &records[i]
		if scope == models.ScopeUser && r.UserID != userID {
			continue
		}
		c, ok := counts[r.TeamName]
		if !ok || r.Outcome == nil {
			continue
		}
		if *r.Outcome {
			c.wins++
		} else {
			c.losses++
		}
	}

	ordered := make([]models.TeamStats, 0, len(teams))
	for _, t := range teams {
		c := counts[t.Name]
		s := models.TeamStats{TeamName: t.Name, Wins: c.wins, Losses: c.losses}
		if s.Total() == 0 {
			s.WinRate = models.FormatWinRate(0)
			if scope == models.ScopeUser {
				s.WinRate = models.NoDataRate
			}
		} else {
			s.Percent = roundPercent(c.wins, s.Total())
			s.WinRate = models.FormatWinRate(s.Percent)
		}
		ordered = append(ordered, s)
	}

	if scope == models.ScopeGlobal {
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].Percent > ordered[j].Percent
		})
		for i := range ordered {
			ordered[i].Rank = i + 1
		}
	}

	stats := make(map[string]models.TeamStats, len(ordered))
	for _, s := range ordered {
		stats[s.TeamName] = s
	}
	return stats
}

// ComputeBreakdown splits graded predictions on team by bet side
func ComputeBreakdown(records []models.Prediction, team string) models.TeamBreakdown {
	b := models.TeamBreakdown{TeamName: team}
	for i := range records {
		r := &records[i]
		if r.TeamName != team || r.Outcome == nil {
			continue
		}
		switch {
		case *r.Outcome && r.BetType == models.BetFor:
			b.WinsFor++
		case *r.Outcome && r.BetType == models.BetAgainst:
			b.WinsAgainst++
		case !*r.Outcome && r.BetType == models.BetFor:
			b.LossesFor++
		case !*r.Outcome && r.BetType == models.BetAgainst:
			b.LossesAgainst++
		}
	}
	b.TotalWins = b.WinsFor + b.WinsAgainst
	b.TotalLosses = b.LossesFor + b.LossesAgainst

	total := b.TotalWins + b.TotalLosses
	if total == 0 {
		b.WinRate = models.NoDataRate
	} else {
		b.WinRate = models.FormatWinRate(roundPercent(b.TotalWins, total))
	}
	return b
}

// SummarizeUser counts correct predictions over all of records.
// Ungraded predictions count toward the total but not as correct.
func SummarizeUser(records []models.Prediction) models.UserSummary {
	var s models.UserSummary
	for i := range records {
		s.Total++
		if records[i].IsCorrect() {
			s.Correct++
		}
	}
	if s.Total > 0 {
		s.WinRate = math.Round(float64(s.Correct)/float64(s.Total)*10000) / 100
	}
	return s
}

// RankedStats returns the stats ordered by rank, or catalog order when unranked
func RankedStats(stats map[string]models.TeamStats, teams []models.Team) []models.TeamStats {
	out := make([]models.TeamStats, 0, len(stats))
	for _, t := range teams {
		if s, ok := stats[t.Name]; ok {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Rank == 0 || out[j].Rank == 0 {
			return false
		}
		return out[i].Rank < out[j].Rank
	})
	return out
}

func roundPercent(part, total int) int {
	return int(math.Round(float64(part) / float64(total) * 100))
}
