package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"nba-predictions-go/middleware"
	"nba-predictions-go/models"
	"nba-predictions-go/services"
)

// ViewHandler drives the per-session view state and the prediction wizard
type ViewHandler struct {
	sessions *services.ViewSessions
}

// NewViewHandler creates a new view handler
func NewViewHandler(sessions *services.ViewSessions) *ViewHandler {
	return &ViewHandler{sessions: sessions}
}

func (h *ViewHandler) session(r *http.Request) *services.ViewSession {
	return h.sessions.Get(middleware.SessionKey(r))
}

func (h *ViewHandler) writeView(w http.ResponseWriter, s *services.ViewSession) {
	writeJSON(w, http.StatusOK, services.Describe(s.Current()))
}

// Current returns the open view
func (h *ViewHandler) Current(w http.ResponseWriter, r *http.Request) {
	h.writeView(w, h.session(r))
}

// Open switches to the view named by {kind}. Query: team, scope, mode.
func (h *ViewHandler) Open(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	q := r.URL.Query()

	var err error
	switch services.ViewKind(mux.Vars(r)["kind"]) {
	case services.KindPrediction:
		_, err = s.OpenPrediction(r.Context(), q.Get("team"))
	case services.KindTeamStats:
		scope, perr := models.ParseScope(q.Get("scope"))
		if perr != nil {
			badRequest(w, perr.Error())
			return
		}
		_, err = s.OpenTeamStats(r.Context(), q.Get("team"), scope)
	case services.KindAccountSettings:
		err = s.OpenAccountSettings(r.Context())
	case services.KindAuth:
		mode, perr := services.ParseAuthMode(q.Get("mode"))
		if perr != nil {
			badRequest(w, perr.Error())
			return
		}
		s.OpenAuth(mode)
	case services.KindTerms:
		s.OpenTerms()
	default:
		err = services.ErrUnknownView
	}
	if err != nil {
		writeError(w, err)
		return
	}
	h.writeView(w, s)
}

// Close returns the session to no view
func (h *ViewHandler) Close(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	s.Close()
	h.writeView(w, s)
}

// wizardAction is the body of a wizard step. Only the field for the action is read.
type wizardAction struct {
	Won      *bool  `json:"won"`
	Opponent string `json:"opponent"`
	BetType  string `json:"bet_type"`
}

type submitResponse struct {
	Prediction *models.Prediction    `json:"prediction"`
	View       services.ViewSnapshot `json:"view"`
}

// Wizard applies {action} (outcome, opponent, bet, back, submit) to the open wizard
func (h *ViewHandler) Wizard(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	action := mux.Vars(r)["action"]

	if action == "submit" {
		stored, err := s.SubmitPrediction(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, submitResponse{Prediction: stored, View: services.Describe(s.Current())})
		return
	}

	wizard, err := s.Wizard()
	if err != nil {
		writeError(w, err)
		return
	}

	var body wizardAction
	if action != "back" && !decodeJSON(w, r, &body) {
		return
	}

	switch action {
	case "outcome":
		if body.Won == nil {
			badRequest(w, "won is required")
			return
		}
		err = wizard.AnswerOutcome(*body.Won)
	case "opponent":
		err = wizard.ChooseOpponent(body.Opponent)
	case "bet":
		bt, perr := models.ParseBetType(body.BetType)
		if perr != nil {
			badRequest(w, perr.Error())
			return
		}
		err = wizard.ChooseBetType(bt)
	case "back":
		err = wizard.Back()
	default:
		badRequest(w, "unknown wizard action "+action)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	h.writeView(w, s)
}
