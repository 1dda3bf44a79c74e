package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"nba-predictions-go/interfaces"
	"nba-predictions-go/models"
)

var (
	ErrNoActiveWizard = errors.New("no prediction wizard is open")
	ErrUnknownView    = errors.New("unknown view")
)

// ViewKind names a View variant
type ViewKind string

const (
	KindNone            ViewKind = "none"
	KindPrediction      ViewKind = "prediction"
	KindTeamStats       ViewKind = "team-stats"
	KindAccountSettings ViewKind = "account"
	KindAuth            ViewKind = "auth"
	KindTerms           ViewKind = "terms"
)

// AuthMode selects the sign-in or sign-up form
type AuthMode string

const (
	AuthSignIn AuthMode = "signin"
	AuthSignUp AuthMode = "signup"
)

// ParseAuthMode defaults to sign-in
func ParseAuthMode(s string) (AuthMode, error) {
	switch AuthMode(s) {
	case "", AuthSignIn:
		return AuthSignIn, nil
	case AuthSignUp:
		return AuthSignUp, nil
	}
	return "", fmt.Errorf("invalid auth mode %q", s)
}

// View is the one overlay currently shown. Exactly one variant is active.
type View interface {
	Kind() ViewKind
	isView()
}

type NoView struct{}

type PredictionWizardView struct {
	Team   models.Team
	Wizard *PredictionWizard
}

type TeamStatsView struct {
	Team  models.Team
	Scope models.Scope
}

type AccountSettingsView struct{}

type AuthView struct {
	Mode AuthMode
}

type TermsView struct{}

func (NoView) Kind() ViewKind               { return KindNone }
func (PredictionWizardView) Kind() ViewKind { return KindPrediction }
func (TeamStatsView) Kind() ViewKind        { return KindTeamStats }
func (AccountSettingsView) Kind() ViewKind  { return KindAccountSettings }
func (AuthView) Kind() ViewKind             { return KindAuth }
func (TermsView) Kind() ViewKind            { return KindTerms }

func (NoView) isView()               {}
func (PredictionWizardView) isView() {}
func (TeamStatsView) isView()        {}
func (AccountSettingsView) isView()  {}
func (AuthView) isView()             {}
func (TermsView) isView()            {}

// WizardSnapshot is the JSON form of an open wizard
type WizardSnapshot struct {
	State      WizardState   `json:"state"`
	Outcome    *bool         `json:"outcome"`
	Opponents  []models.Team `json:"opponents,omitempty"`
	LastError  string        `json:"last_error,omitempty"`
	Submitting bool          `json:"submitting"`
}

// ViewSnapshot is the JSON form of a View
type ViewSnapshot struct {
	Kind   ViewKind        `json:"kind"`
	Team   *models.Team    `json:"team,omitempty"`
	Scope  models.Scope    `json:"scope,omitempty"`
	Mode   AuthMode        `json:"mode,omitempty"`
	Wizard *WizardSnapshot `json:"wizard,omitempty"`
}

// Describe converts a view into its JSON snapshot
func Describe(v View) ViewSnapshot {
	snap := ViewSnapshot{Kind: v.Kind()}
	switch v := v.(type) {
	case PredictionWizardView:
		team := v.Team
		snap.Team = &team
		state := v.Wizard.State()
		ws := &WizardSnapshot{
			State:      state,
			Outcome:    state.Outcome(),
			Submitting: v.Wizard.Submitting(),
		}
		if state.Step == StepAwaitingOpponent {
			ws.Opponents = v.Wizard.Opponents()
		}
		if err := v.Wizard.LastError(); err != nil {
			ws.LastError = err.Error()
		}
		snap.Wizard = ws
	case TeamStatsView:
		team := v.Team
		snap.Team = &team
		snap.Scope = v.Scope
	case AuthView:
		snap.Mode = v.Mode
	}
	return snap
}

// ViewSession holds the current view of one browser session
type ViewSession struct {
	collab      interfaces.Collaborators
	onSubmitted func(*models.Prediction)

	mu       sync.Mutex
	current  View
	lastSeen time.Time
}

// NewViewSession starts with no view open
func NewViewSession(collab interfaces.Collaborators, onSubmitted func(*models.Prediction)) *ViewSession {
	return &ViewSession{
		collab:      collab,
		onSubmitted: onSubmitted,
		current:     NoView{},
		lastSeen:    time.Now(),
	}
}

// Current returns the open view
func (s *ViewSession) Current() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// replace swaps the view, closing a wizard being replaced. Caller holds mu.
func (s *ViewSession) replace(v View) {
	if wv, ok := s.current.(PredictionWizardView); ok {
		wv.Wizard.Close()
	}
	s.current = v
}

func (s *ViewSession) lookupTeam(name string) (models.Team, error) {
	team, ok := s.collab.Catalog.Lookup(name)
	if !ok {
		return models.Team{}, fmt.Errorf("%w: %s", ErrUnknownTeam, name)
	}
	return team, nil
}

// OpenPrediction opens a fresh wizard on team. Requires a signed-in user.
func (s *ViewSession) OpenPrediction(ctx context.Context, teamName string) (PredictionWizardView, error) {
	if s.collab.Session.CurrentUser(ctx) == nil {
		return PredictionWizardView{}, ErrNotAuthenticated
	}
	team, err := s.lookupTeam(teamName)
	if err != nil {
		return PredictionWizardView{}, err
	}
	wizard, err := NewPredictionWizard(team.Name, s.collab, s.onSubmitted)
	if err != nil {
		return PredictionWizardView{}, err
	}

	view := PredictionWizardView{Team: team, Wizard: wizard}
	s.mu.Lock()
	s.replace(view)
	s.mu.Unlock()
	return view, nil
}

// OpenTeamStats opens the stats view of one team. Requires a signed-in user.
func (s *ViewSession) OpenTeamStats(ctx context.Context, teamName string, scope models.Scope) (TeamStatsView, error) {
	if s.collab.Session.CurrentUser(ctx) == nil {
		return TeamStatsView{}, ErrNotAuthenticated
	}
	team, err := s.lookupTeam(teamName)
	if err != nil {
		return TeamStatsView{}, err
	}

	view := TeamStatsView{Team: team, Scope: scope}
	s.mu.Lock()
	s.replace(view)
	s.mu.Unlock()
	return view, nil
}

// OpenAccountSettings requires a signed-in user
func (s *ViewSession) OpenAccountSettings(ctx context.Context) error {
	if s.collab.Session.CurrentUser(ctx) == nil {
		return ErrNotAuthenticated
	}
	s.mu.Lock()
	s.replace(AccountSettingsView{})
	s.mu.Unlock()
	return nil
}

// OpenAuth shows the sign-in or sign-up form
func (s *ViewSession) OpenAuth(mode AuthMode) {
	s.mu.Lock()
	s.replace(AuthView{Mode: mode})
	s.mu.Unlock()
}

// OpenTerms shows the terms of use
func (s *ViewSession) OpenTerms() {
	s.mu.Lock()
	s.replace(TermsView{})
	s.mu.Unlock()
}

// Close returns to no view
func (s *ViewSession) Close() {
	s.mu.Lock()
	s.replace(NoView{})
	s.mu.Unlock()
}

// Wizard returns the open wizard
func (s *ViewSession) Wizard() (*PredictionWizard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if wv, ok := s.current.(PredictionWizardView); ok {
		return wv.Wizard, nil
	}
	return nil, ErrNoActiveWizard
}

// SubmitPrediction submits the open wizard and, on success, closes its view
func (s *ViewSession) SubmitPrediction(ctx context.Context) (*models.Prediction, error) {
	wizard, err := s.Wizard()
	if err != nil {
		return nil, err
	}
	stored, err := wizard.Submit(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if wv, ok := s.current.(PredictionWizardView); ok && wv.Wizard == wizard {
		s.current = NoView{}
	}
	s.mu.Unlock()
	return stored, nil
}

func (s *ViewSession) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *ViewSession) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// ViewSessions maps session keys (user id or anonymous cookie) to view sessions
type ViewSessions struct {
	collab      interfaces.Collaborators
	onSubmitted func(*models.Prediction)
	now         func() time.Time

	mu       sync.Mutex
	sessions map[string]*ViewSession
}

// NewViewSessions creates an empty registry
func NewViewSessions(collab interfaces.Collaborators, onSubmitted func(*models.Prediction)) *ViewSessions {
	return &ViewSessions{
		collab:      collab,
		onSubmitted: onSubmitted,
		now:         time.Now,
		sessions:    make(map[string]*ViewSession),
	}
}

// Get returns the session for key, creating it on first use
func (r *ViewSessions) Get(key string) *ViewSession {
	r.mu.Lock()
	s, ok := r.sessions[key]
	if !ok {
		s = NewViewSession(r.collab, r.onSubmitted)
		r.sessions[key] = s
	}
	r.mu.Unlock()

	s.touch(r.now())
	return s
}

// Drop closes and forgets the session for key
func (r *ViewSessions) Drop(key string) {
	r.mu.Lock()
	s, ok := r.sessions[key]
	delete(r.sessions, key)
	r.mu.Unlock()

	if ok {
		s.Close()
	}
}

// Len returns the number of live sessions
func (r *ViewSessions) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep drops sessions idle for longer than maxIdle and returns how many
func (r *ViewSessions) Sweep(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle)

	r.mu.Lock()
	var stale []*ViewSession
	for key, s := range r.sessions {
		if s.idleSince().Before(cutoff) {
			stale = append(stale, s)
			delete(r.sessions, key)
		}
	}
	r.mu.Unlock()

	for _, s := range stale {
		s.Close()
	}
	return len(stale)
}
