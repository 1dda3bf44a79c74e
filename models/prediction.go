package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// BetType is the side a user bet on for the subject team
type BetType string

const (
	BetFor     BetType = "for"
	BetAgainst BetType = "against"
)

// ParseBetType normalizes user input into a BetType
func ParseBetType(s string) (BetType, error) {
	switch BetType(strings.ToLower(strings.TrimSpace(s))) {
	case BetFor:
		return BetFor, nil
	case BetAgainst:
		return BetAgainst, nil
	}
	return "", fmt.Errorf("invalid bet type %q", s)
}

// Valid reports whether the bet type is one of the known values
func (b BetType) Valid() bool {
	return b == BetFor || b == BetAgainst
}

// Label returns the upper-case label shown on history cards
func (b BetType) Label() string {
	return strings.ToUpper(string(b))
}

// Prediction is one recorded bet on a game.
// Outcome is nil while the prediction is ungraded.
type Prediction struct {
	ID            string    `bson:"_id" json:"id"`
	UserID        string    `bson:"user_id" json:"user_id,omitempty"`
	Username      string    `bson:"username" json:"username,omitempty"`
	TeamName      string    `bson:"team_name" json:"team_name"`
	Opponent      string    `bson:"opponent" json:"opponent"`
	BetType       BetType   `bson:"bet_type" json:"bet_type"`
	ActualOutcome bool      `bson:"actual_outcome" json:"actual_outcome"`
	Outcome       *bool     `bson:"outcome" json:"outcome"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
}

// BetCorrect reports whether a bet was right given whether the subject team won
func BetCorrect(actualOutcome bool, betType BetType) bool {
	return (actualOutcome && betType == BetFor) || (!actualOutcome && betType == BetAgainst)
}

// NewPrediction builds a graded prediction with its correctness derived from the inputs
func NewPrediction(userID, username, teamName, opponent string, actualOutcome bool, betType BetType) *Prediction {
	correct := BetCorrect(actualOutcome, betType)
	return &Prediction{
		UserID:        userID,
		Username:      username,
		TeamName:      teamName,
		Opponent:      opponent,
		BetType:       betType,
		ActualOutcome: actualOutcome,
		Outcome:       &correct,
	}
}

// IsGraded returns true once the prediction has a correctness flag
func (p *Prediction) IsGraded() bool {
	return p.Outcome != nil
}

// IsCorrect returns true only for graded, correct predictions
func (p *Prediction) IsCorrect() bool {
	return p.Outcome != nil && *p.Outcome
}

// ResultLabel returns "Correct", "Incorrect" or "Pending"
func (p *Prediction) ResultLabel() string {
	switch {
	case !p.IsGraded():
		return "Pending"
	case *p.Outcome:
		return "Correct"
	default:
		return "Incorrect"
	}
}

// Validate checks the structural invariants of a prediction before it is stored
func (p *Prediction) Validate() error {
	if p.TeamName == "" {
		return errors.New("team name is required")
	}
	if p.Opponent == "" {
		return errors.New("opponent is required")
	}
	if p.Opponent == p.TeamName {
		return fmt.Errorf("%s cannot play itself", p.TeamName)
	}
	if !p.BetType.Valid() {
		return fmt.Errorf("invalid bet type %q", p.BetType)
	}
	if p.Outcome != nil && *p.Outcome != BetCorrect(p.ActualOutcome, p.BetType) {
		return errors.New("outcome does not match actual outcome and bet type")
	}
	return nil
}
