package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBetCorrect(t *testing.T) {
	cases := []struct {
		won  bool
		bet  BetType
		want bool
	}{
		{true, BetFor, true},
		{true, BetAgainst, false},
		{false, BetFor, false},
		{false, BetAgainst, true},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, BetCorrect(c.won, c.bet), "won=%t bet=%s", c.won, c.bet)
	}
}

func TestNewPredictionDerivesOutcome(t *testing.T) {
	p := NewPrediction("u1", "ray", "Los Angeles Lakers", "Boston Celtics", false, BetAgainst)
	require.True(t, p.IsGraded())
	assert.True(t, p.IsCorrect())
	assert.Equal(t, "Correct", p.ResultLabel())
	assert.NoError(t, p.Validate())
}

func TestPredictionValidate(t *testing.T) {
	p := NewPrediction("u1", "ray", "Los Angeles Lakers", "Los Angeles Lakers", true, BetFor)
	assert.Error(t, p.Validate(), "self-play must be rejected")

	p = NewPrediction("u1", "ray", "Los Angeles Lakers", "Boston Celtics", true, BetType("maybe"))
	assert.Error(t, p.Validate())

	wrong := false
	p = NewPrediction("u1", "ray", "Los Angeles Lakers", "Boston Celtics", true, BetFor)
	p.Outcome = &wrong
	assert.Error(t, p.Validate(), "outcome must agree with the bet")

	p.Outcome = nil
	assert.NoError(t, p.Validate())
	assert.Equal(t, "Pending", p.ResultLabel())
}

func TestParseBetType(t *testing.T) {
	bt, err := ParseBetType(" FOR ")
	require.NoError(t, err)
	assert.Equal(t, BetFor, bt)

	_, err = ParseBetType("over")
	assert.Error(t, err)
}

func TestTeamShortName(t *testing.T) {
	assert.Equal(t, "Lakers", Team{Name: "Los Angeles Lakers"}.ShortName())
	assert.Equal(t, "76ers", Team{Name: "Philadelphia 76ers"}.ShortName())
	assert.Equal(t, "/logos/default.png", Team{Name: "X"}.LogoPath())
}
