package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"nba-predictions-go/interfaces"
	"nba-predictions-go/logging"
	"nba-predictions-go/models"
)

var (
	ErrWizardIncomplete = errors.New("prediction is incomplete")
	ErrSubmitInProgress = errors.New("a submission is already in progress")
	ErrWizardClosed     = errors.New("prediction wizard is closed")
	ErrWrongStep        = errors.New("action not allowed at this step")
	ErrInvalidOpponent  = errors.New("invalid opponent")
)

// WizardStep is the position in the prediction flow
type WizardStep int

const (
	StepAwaitingOutcome WizardStep = iota
	StepAwaitingOpponent
	StepAwaitingBetType
	StepReady
)

var stepNames = [...]string{"awaiting_outcome", "awaiting_opponent", "awaiting_bet_type", "ready"}

func (s WizardStep) String() string {
	if s < 0 || int(s) >= len(stepNames) {
		return fmt.Sprintf("WizardStep(%d)", int(s))
	}
	return stepNames[s]
}

// MarshalText renders the step name in JSON
func (s WizardStep) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText
func (s *WizardStep) UnmarshalText(text []byte) error {
	for i, name := range stepNames {
		if name == string(text) {
			*s = WizardStep(i)
			return nil
		}
	}
	return fmt.Errorf("unknown wizard step %q", text)
}

// WizardState holds the facts collected so far
type WizardState struct {
	Step          WizardStep     `json:"step"`
	SelectedTeam  string         `json:"selected_team"`
	ActualOutcome *bool          `json:"actual_outcome"`
	Opponent      string         `json:"opponent,omitempty"`
	BetType       models.BetType `json:"bet_type,omitempty"`
}

// Complete reports whether all four facts are set
func (s WizardState) Complete() bool {
	return s.SelectedTeam != "" && s.ActualOutcome != nil && s.Opponent != "" && s.BetType != ""
}

// Outcome is the correctness the submitted record will carry; nil until complete
func (s WizardState) Outcome() *bool {
	if !s.Complete() {
		return nil
	}
	v := models.BetCorrect(*s.ActualOutcome, s.BetType)
	return &v
}

// PredictionWizard collects one prediction for a team and records it.
// An instance belongs to one open view; reopening creates a new one.
type PredictionWizard struct {
	collab      interfaces.Collaborators
	onSubmitted func(*models.Prediction)
	logger      *logging.Logger

	// lifetime is cancelled by Close and aborts an in-flight submit
	lifetime context.Context
	cancel   context.CancelFunc

	mu         sync.Mutex
	state      WizardState
	lastErr    error
	submitting bool
	closed     bool
}

// NewPredictionWizard starts a wizard for team. onSubmitted, if set, runs
// after each successful insert.
func NewPredictionWizard(team string, collab interfaces.Collaborators, onSubmitted func(*models.Prediction)) (*PredictionWizard, error) {
	if !collab.Catalog.Contains(team) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTeam, team)
	}
	lifetime, cancel := context.WithCancel(context.Background())
	return &PredictionWizard{
		collab:      collab,
		onSubmitted: onSubmitted,
		logger:      logging.WithPrefix("Wizard"),
		lifetime:    lifetime,
		cancel:      cancel,
		state:       WizardState{Step: StepAwaitingOutcome, SelectedTeam: team},
	}, nil
}

// State returns a copy of the current state
func (w *PredictionWizard) State() WizardState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// LastError is the error of the most recent failed submit, if any
func (w *PredictionWizard) LastError() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastErr
}

// Closed reports whether the wizard was closed or completed
func (w *PredictionWizard) Closed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

// Submitting reports whether a submit is in flight
func (w *PredictionWizard) Submitting() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.submitting
}

// Opponents lists the selectable opponents: the catalog minus the subject team
func (w *PredictionWizard) Opponents() []models.Team {
	return w.collab.Catalog.Opponents(w.State().SelectedTeam)
}

// edit runs fn on the state when the wizard is open, idle and at step
func (w *PredictionWizard) edit(step WizardStep, fn func(*WizardState) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch {
	case w.closed:
		return ErrWizardClosed
	case w.submitting:
		return ErrSubmitInProgress
	case w.state.Step != step:
		return fmt.Errorf("%w: at %s", ErrWrongStep, w.state.Step)
	}
	return fn(&w.state)
}

// AnswerOutcome records whether the subject team won
func (w *PredictionWizard) AnswerOutcome(won bool) error {
	return w.edit(StepAwaitingOutcome, func(s *WizardState) error {
		s.ActualOutcome = &won
		s.Step = StepAwaitingOpponent
		return nil
	})
}

// ChooseOpponent records the opponent; the subject team and unknown teams are rejected
func (w *PredictionWizard) ChooseOpponent(name string) error {
	return w.edit(StepAwaitingOpponent, func(s *WizardState) error {
		if name == s.SelectedTeam {
			return fmt.Errorf("%w: %s cannot play itself", ErrInvalidOpponent, name)
		}
		if !w.collab.Catalog.Contains(name) {
			return fmt.Errorf("%w: %s", ErrInvalidOpponent, name)
		}
		s.Opponent = name
		s.Step = StepAwaitingBetType
		return nil
	})
}

// ChooseBetType records the bet side
func (w *PredictionWizard) ChooseBetType(bt models.BetType) error {
	return w.edit(StepAwaitingBetType, func(s *WizardState) error {
		if !bt.Valid() {
			return fmt.Errorf("invalid bet type %q", bt)
		}
		s.BetType = bt
		s.Step = StepReady
		return nil
	})
}

// Back steps to the previous question, clearing the answer being changed
func (w *PredictionWizard) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWizardClosed
	}
	if w.submitting {
		return ErrSubmitInProgress
	}

	switch w.state.Step {
	case StepAwaitingOpponent:
		w.state.ActualOutcome = nil
		w.state.Step = StepAwaitingOutcome
	case StepAwaitingBetType:
		w.state.Opponent = ""
		w.state.Step = StepAwaitingOpponent
	case StepReady:
		w.state.BetType = ""
		w.state.Step = StepAwaitingBetType
	default:
		return fmt.Errorf("%w: at %s", ErrWrongStep, w.state.Step)
	}
	return nil
}

// Submit inserts exactly one prediction built from the collected facts.
// On failure the state is kept so the caller can retry.
func (w *PredictionWizard) Submit(ctx context.Context) (*models.Prediction, error) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil, ErrWizardClosed
	}
	if w.submitting {
		w.mu.Unlock()
		return nil, ErrSubmitInProgress
	}
	state := w.state
	if !state.Complete() {
		w.lastErr = ErrWizardIncomplete
		w.mu.Unlock()
		return nil, ErrWizardIncomplete
	}
	user := w.collab.Session.CurrentUser(ctx)
	if user == nil {
		w.lastErr = ErrNotAuthenticated
		w.mu.Unlock()
		return nil, ErrNotAuthenticated
	}
	record := models.NewPrediction(user.ID, user.DisplayName(),
		state.SelectedTeam, state.Opponent, *state.ActualOutcome, state.BetType)
	if err := record.Validate(); err != nil {
		w.lastErr = err
		w.mu.Unlock()
		return nil, err
	}
	w.submitting = true
	w.mu.Unlock()

	submitCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(w.lifetime, cancel)
	stored, err := w.collab.Store.Insert(submitCtx, record)
	stop()
	cancel()

	w.mu.Lock()
	w.submitting = false
	if err != nil {
		if !w.closed {
			w.lastErr = err
		}
		w.mu.Unlock()
		w.logger.Warnf("Recording %s vs %s failed: %v", state.SelectedTeam, state.Opponent, err)
		return nil, fmt.Errorf("record prediction: %w", err)
	}
	if !w.closed {
		w.state = WizardState{Step: StepAwaitingOutcome, SelectedTeam: state.SelectedTeam}
		w.lastErr = nil
		w.closed = true
		w.cancel()
	}
	w.mu.Unlock()

	w.logger.Infof("%s recorded %s %s vs %s (%s)", user.DisplayName(),
		stored.BetType.Label(), stored.TeamName, stored.Opponent, stored.ResultLabel())
	if w.onSubmitted != nil {
		w.onSubmitted(stored)
	}
	return stored, nil
}

// Close dismisses the wizard and cancels any in-flight submit
func (w *PredictionWizard) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.closed = true
	w.cancel()
}
