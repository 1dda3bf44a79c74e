package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nba-predictions-go/models"
)

func newWizard(t *testing.T, user *models.User, store *fakeStore, onSubmitted func(*models.Prediction)) *PredictionWizard {
	t.Helper()
	w, err := NewPredictionWizard("Lakers", collaborators(t, user, store), onSubmitted)
	require.NoError(t, err)
	return w
}

func fillWizard(t *testing.T, w *PredictionWizard, won bool, opponent string, bet models.BetType) {
	t.Helper()
	require.NoError(t, w.AnswerOutcome(won))
	require.NoError(t, w.ChooseOpponent(opponent))
	require.NoError(t, w.ChooseBetType(bet))
}

func TestWizardSubmitRecordsCorrectPrediction(t *testing.T) {
	store := &fakeStore{}
	var refreshed []*models.Prediction
	w := newWizard(t, alice, store, func(p *models.Prediction) { refreshed = append(refreshed, p) })

	fillWizard(t, w, true, "Celtics", models.BetFor)
	assert.Equal(t, StepReady, w.State().Step)

	stored, err := w.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Lakers", stored.TeamName)
	assert.Equal(t, "Celtics", stored.Opponent)
	assert.Equal(t, models.BetFor, stored.BetType)
	assert.True(t, stored.ActualOutcome)
	require.NotNil(t, stored.Outcome)
	assert.True(t, *stored.Outcome)
	assert.Equal(t, "u-alice", stored.UserID)
	assert.Equal(t, "alice", stored.Username)

	inserts, _ := store.counts()
	assert.Equal(t, 1, inserts, "exactly one record, no mirrored bet")
	require.Len(t, refreshed, 1)

	assert.True(t, w.Closed())
	state := w.State()
	assert.Equal(t, StepAwaitingOutcome, state.Step)
	assert.Nil(t, state.ActualOutcome)
	assert.Empty(t, state.Opponent)
}

func TestWizardBetAgainstLoserIsCorrect(t *testing.T) {
	store := &fakeStore{}
	w := newWizard(t, alice, store, nil)
	fillWizard(t, w, false, "Heat", models.BetAgainst)

	stored, err := w.Submit(context.Background())
	require.NoError(t, err)
	require.NotNil(t, stored.Outcome)
	assert.True(t, *stored.Outcome)
	assert.False(t, stored.ActualOutcome)
}

func TestWizardSubmitIncompleteMakesNoStoreCall(t *testing.T) {
	store := &fakeStore{}
	w := newWizard(t, alice, store, nil)
	require.NoError(t, w.AnswerOutcome(true))

	_, err := w.Submit(context.Background())
	assert.ErrorIs(t, err, ErrWizardIncomplete)
	assert.ErrorIs(t, w.LastError(), ErrWizardIncomplete)

	inserts, _ := store.counts()
	assert.Zero(t, inserts)
	assert.False(t, w.Closed())
}

func TestWizardSubmitRequiresSession(t *testing.T) {
	store := &fakeStore{}
	w := newWizard(t, nil, store, nil)
	fillWizard(t, w, true, "Celtics", models.BetFor)

	_, err := w.Submit(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	inserts, _ := store.counts()
	assert.Zero(t, inserts)
}

func TestWizardRejectsSelfAndUnknownOpponents(t *testing.T) {
	w := newWizard(t, alice, &fakeStore{}, nil)
	require.NoError(t, w.AnswerOutcome(true))

	assert.ErrorIs(t, w.ChooseOpponent("Lakers"), ErrInvalidOpponent)
	assert.ErrorIs(t, w.ChooseOpponent("Knicks"), ErrInvalidOpponent)
	assert.Equal(t, StepAwaitingOpponent, w.State().Step)

	for _, team := range w.Opponents() {
		assert.NotEqual(t, "Lakers", team.Name)
	}
	assert.Len(t, w.Opponents(), len(testTeams)-1)
}

func TestWizardStepOrderAndBack(t *testing.T) {
	w := newWizard(t, alice, &fakeStore{}, nil)

	assert.ErrorIs(t, w.ChooseOpponent("Celtics"), ErrWrongStep)
	assert.ErrorIs(t, w.ChooseBetType(models.BetFor), ErrWrongStep)
	assert.ErrorIs(t, w.Back(), ErrWrongStep)

	fillWizard(t, w, true, "Celtics", models.BetFor)

	require.NoError(t, w.Back())
	s := w.State()
	assert.Equal(t, StepAwaitingBetType, s.Step)
	assert.Empty(t, s.BetType)
	assert.Equal(t, "Celtics", s.Opponent)

	require.NoError(t, w.Back())
	s = w.State()
	assert.Equal(t, StepAwaitingOpponent, s.Step)
	assert.Empty(t, s.Opponent)
	require.NotNil(t, s.ActualOutcome)

	require.NoError(t, w.Back())
	s = w.State()
	assert.Equal(t, StepAwaitingOutcome, s.Step)
	assert.Nil(t, s.ActualOutcome)
}

func TestWizardFailureKeepsStateForRetry(t *testing.T) {
	store := &fakeStore{err: errors.New("duplicate key")}
	w := newWizard(t, alice, store, nil)
	fillWizard(t, w, true, "Celtics", models.BetAgainst)

	_, err := w.Submit(context.Background())
	require.Error(t, err)
	assert.EqualError(t, w.LastError(), "duplicate key")
	assert.False(t, w.Closed())
	assert.Equal(t, StepReady, w.State().Step)
	assert.Equal(t, "Celtics", w.State().Opponent)

	store.setErr(nil)
	stored, err := w.Submit(context.Background())
	require.NoError(t, err)
	require.NotNil(t, stored.Outcome)
	assert.False(t, *stored.Outcome)
	assert.Nil(t, w.LastError())

	inserts, _ := store.counts()
	assert.Equal(t, 2, inserts)
}

func TestWizardConcurrentSubmitRejected(t *testing.T) {
	store := &fakeStore{started: make(chan struct{}, 1), release: make(chan struct{})}
	w := newWizard(t, alice, store, nil)
	fillWizard(t, w, true, "Celtics", models.BetFor)

	done := make(chan error, 1)
	go func() {
		_, err := w.Submit(context.Background())
		done <- err
	}()
	<-store.started

	_, err := w.Submit(context.Background())
	assert.ErrorIs(t, err, ErrSubmitInProgress)
	assert.ErrorIs(t, w.Back(), ErrSubmitInProgress)

	close(store.release)
	require.NoError(t, <-done)
}

func TestWizardCloseCancelsInFlightSubmit(t *testing.T) {
	store := &fakeStore{started: make(chan struct{}, 1), release: make(chan struct{})}
	called := false
	w := newWizard(t, alice, store, func(*models.Prediction) { called = true })
	fillWizard(t, w, true, "Celtics", models.BetFor)

	done := make(chan error, 1)
	go func() {
		_, err := w.Submit(context.Background())
		done <- err
	}()
	<-store.started
	w.Close()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("submit was not cancelled by Close")
	}

	assert.False(t, called)
	assert.Nil(t, w.LastError(), "a dismissed wizard keeps no error")
	assert.Equal(t, StepReady, w.State().Step)

	_, err := w.Submit(context.Background())
	assert.ErrorIs(t, err, ErrWizardClosed)
}

func TestWizardStateOutcome(t *testing.T) {
	won := false
	s := WizardState{SelectedTeam: "Lakers", ActualOutcome: &won, Opponent: "Heat"}
	assert.Nil(t, s.Outcome())

	s.BetType = models.BetAgainst
	require.NotNil(t, s.Outcome())
	assert.True(t, *s.Outcome())

	text, err := StepAwaitingBetType.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "awaiting_bet_type", string(text))
}

func TestNewWizardRejectsUnknownTeam(t *testing.T) {
	_, err := NewPredictionWizard("Knicks", collaborators(t, alice, &fakeStore{}), nil)
	assert.ErrorIs(t, err, ErrUnknownTeam)
}

func TestWizardStepText(t *testing.T) {
	for step := StepAwaitingOutcome; step <= StepReady; step++ {
		text, err := step.MarshalText()
		require.NoError(t, err)

		var back WizardStep
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, step, back)
	}

	var s WizardStep
	assert.Error(t, s.UnmarshalText([]byte("done")))
}
