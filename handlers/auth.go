package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"nba-predictions-go/logging"
	"nba-predictions-go/middleware"
	"nba-predictions-go/models"
	"nba-predictions-go/services"
)

// AuthHandler handles sign-up, sign-in and account settings
type AuthHandler struct {
	authService   *services.AuthService
	availability  *services.AvailabilityChecker
	secureCookies bool
	logger        *logging.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, availability *services.AvailabilityChecker, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		availability:  availability,
		secureCookies: secureCookies,
		logger:        logging.WithPrefix("AuthHandler"),
	}
}

// SignUp creates an account and signs the new user in
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req models.SignUpRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.authService.SignUp(r.Context(), req)
	if err != nil {
		h.logger.Debugf("Sign-up rejected for %s: %v", req.Username, err)
		writeError(w, err)
		return
	}

	h.setAuthCookie(w, resp.Token)
	h.logger.Infof("User %s signed up", resp.User.Username)
	writeJSON(w, http.StatusCreated, resp)
}

// SignIn accepts a username or email plus password
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req models.SignInRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Identifier) == "" || req.Password == "" {
		badRequest(w, "username or email and password are required")
		return
	}

	resp, err := h.authService.SignIn(r.Context(), req)
	if err != nil {
		h.logger.Debugf("Sign-in failed for %s: %v", req.Identifier, err)
		writeError(w, err)
		return
	}

	h.setAuthCookie(w, resp.Token)
	h.logger.Infof("User %s signed in", resp.User.Username)
	writeJSON(w, http.StatusOK, resp)
}

// SignOut clears the auth cookie
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AuthCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the current user's information
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)
	if user == nil {
		writeError(w, services.ErrNotAuthenticated)
		return
	}
	writeJSON(w, http.StatusOK, user.ToSafeUser())
}

// availabilityResponse answers a username or email check.
// Superseded is set when a newer check from the same session replaced this one.
type availabilityResponse struct {
	Field      string `json:"field"`
	Value      string `json:"value"`
	Available  bool   `json:"available"`
	Superseded bool   `json:"superseded,omitempty"`
}

// Availability runs a debounced username or email check.
// Query: field=username|email&value=...
func (h *AuthHandler) Availability(w http.ResponseWriter, r *http.Request) {
	field := r.URL.Query().Get("field")
	value := r.URL.Query().Get("value")
	if field != "username" && field != "email" {
		badRequest(w, "field must be username or email")
		return
	}
	resp := availabilityResponse{Field: field, Value: value}
	if strings.TrimSpace(value) == "" {
		writeJSON(w, http.StatusOK, resp)
		return
	}

	key := middleware.SessionKey(r) + ":" + field
	available, err := h.availability.Check(r.Context(), key, field, value)
	switch {
	case errors.Is(err, services.ErrCheckSuperseded):
		resp.Superseded = true
	case r.Context().Err() != nil:
		// client went away
		return
	case err != nil:
		writeError(w, err)
		return
	default:
		resp.Available = available
	}
	writeJSON(w, http.StatusOK, resp)
}

// UpdateAccount changes the signed-in user's username or email
func (h *AuthHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)
	if user == nil {
		writeError(w, services.ErrNotAuthenticated)
		return
	}

	var req models.UpdateAccountRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	updated, err := h.authService.UpdateAccount(r.Context(), user.ID, req)
	if err != nil {
		writeError(w, err)
		return
	}

	// the token carries the username, so reissue it
	token, err := h.authService.GenerateToken(updated)
	if err != nil {
		writeError(w, err)
		return
	}
	h.setAuthCookie(w, token)
	writeJSON(w, http.StatusOK, models.AuthResponse{User: *updated, Token: token})
}

// setAuthCookie sets the authentication cookie for the token lifetime
func (h *AuthHandler) setAuthCookie(w http.ResponseWriter, token string) {
	ttl := h.authService.TokenTTL()
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AuthCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}
