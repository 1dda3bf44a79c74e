package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"nba-predictions-go/logging"
	"nba-predictions-go/services"
)

// maxBodyBytes bounds every JSON request body
const maxBodyBytes = 1 << 20

// errorResponse is the JSON body of every failed request
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON encodes v with the given status
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.WithPrefix("HTTP").Warnf("Failed to encode response: %v", err)
	}
}

// writeError maps err onto a status code and writes it as JSON
func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logging.WithPrefix("HTTP").Errorf("Request failed: %v", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// badRequest writes a 400 with the given message
func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

// decodeJSON reads a bounded JSON body into v, writing a 400 on failure
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		badRequest(w, "invalid JSON body")
		return false
	}
	return true
}

// statusFor maps service errors onto HTTP status codes. Errors the services do
// not name come from a collaborator and surface as 502.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNotAuthenticated),
		errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrUsernameTaken),
		errors.Is(err, services.ErrSubmitInProgress):
		return http.StatusConflict
	case errors.Is(err, services.ErrInvalidEmail),
		errors.Is(err, services.ErrEmailDomain),
		errors.Is(err, services.ErrInvalidUsername),
		errors.Is(err, services.ErrWeakPassword),
		errors.Is(err, services.ErrWizardIncomplete),
		errors.Is(err, services.ErrWrongStep),
		errors.Is(err, services.ErrInvalidOpponent),
		errors.Is(err, services.ErrUnknownTeam),
		errors.Is(err, services.ErrUnknownView):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNoActiveWizard),
		errors.Is(err, services.ErrWizardClosed):
		return http.StatusNotFound
	case errors.Is(err, services.ErrStatsUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}
