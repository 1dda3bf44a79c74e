package models

import (
	"fmt"
	"strings"
)

// Scope selects whose predictions feed a statistics view
type Scope string

const (
	ScopeGlobal Scope = "global"
	ScopeUser   Scope = "user"
)

// ParseScope converts a query parameter into a Scope, defaulting to global
func ParseScope(s string) (Scope, error) {
	switch Scope(strings.ToLower(strings.TrimSpace(s))) {
	case "", ScopeGlobal:
		return ScopeGlobal, nil
	case ScopeUser:
		return ScopeUser, nil
	}
	return "", fmt.Errorf("invalid scope %q", s)
}

// NoDataRate is shown for user stats with no graded predictions
const NoDataRate = "N/A"

// TeamStats summarises graded predictions on one team
type TeamStats struct {
	TeamName string `json:"team_name"`
	Wins     int    `json:"wins"`
	Losses   int    `json:"losses"`
	WinRate  string `json:"win_rate"`
	Rank     int    `json:"rank,omitempty"`

	// Percent is the rounded win rate used for ranking
	Percent int `json:"-"`
}

// Total returns the number of graded predictions counted
func (s TeamStats) Total() int {
	return s.Wins + s.Losses
}

// TeamBreakdown splits a team's predictions by bet side and result
type TeamBreakdown struct {
	TeamName      string `json:"team_name"`
	WinsFor       int    `json:"wins_for"`
	WinsAgainst   int    `json:"wins_against"`
	LossesFor     int    `json:"losses_for"`
	LossesAgainst int    `json:"losses_against"`
	TotalWins     int    `json:"total_wins"`
	TotalLosses   int    `json:"total_losses"`
	WinRate       string `json:"win_rate"`
}

// UserSummary is the header record of one user's predictions
type UserSummary struct {
	Correct int     `json:"correct"`
	Total   int     `json:"total"`
	WinRate float64 `json:"win_rate"`
}

// FormatWinRate renders a rounded percentage like "67%"
func FormatWinRate(percent int) string {
	return fmt.Sprintf("%d%%", percent)
}
