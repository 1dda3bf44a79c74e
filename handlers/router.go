package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"nba-predictions-go/middleware"
)

// Routes bundles the handlers mounted by NewRouter
type Routes struct {
	Auth          *AuthHandler
	Stats         *StatsHandler
	View          *ViewHandler
	Events        *SSEHandler
	AuthMW        *middleware.AuthMiddleware
	BehindProxy   bool
	SecureCookies bool
}

// NewRouter wires the JSON API and the event stream
func NewRouter(rt Routes) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.RequestLogger)
	r.Use(middleware.SecurityHeaders(rt.BehindProxy))
	r.Use(rt.AuthMW.OptionalAuth)
	r.Use(middleware.ViewSession(rt.SecureCookies))

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/signup", rt.Auth.SignUp).Methods(http.MethodPost)
	auth.HandleFunc("/signin", rt.Auth.SignIn).Methods(http.MethodPost)
	auth.HandleFunc("/signout", rt.Auth.SignOut).Methods(http.MethodPost)
	auth.HandleFunc("/me", rt.Auth.Me).Methods(http.MethodGet)
	auth.HandleFunc("/availability", rt.Auth.Availability).Methods(http.MethodGet)

	api.Handle("/account", rt.AuthMW.RequireAuth(http.HandlerFunc(rt.Auth.UpdateAccount))).Methods(http.MethodPut)

	api.HandleFunc("/teams", rt.Stats.Teams).Methods(http.MethodGet)
	api.HandleFunc("/dashboard", rt.Stats.Dashboard).Methods(http.MethodGet)
	api.HandleFunc("/stats", rt.Stats.Stats).Methods(http.MethodGet)
	api.HandleFunc("/teams/{team}/stats", rt.Stats.TeamStats).Methods(http.MethodGet)
	api.HandleFunc("/predictions", rt.Stats.History).Methods(http.MethodGet)
	api.HandleFunc("/summary", rt.Stats.Summary).Methods(http.MethodGet)

	api.HandleFunc("/view", rt.View.Current).Methods(http.MethodGet)
	api.HandleFunc("/view/close", rt.View.Close).Methods(http.MethodPost)
	api.HandleFunc("/view/prediction/{action}", rt.View.Wizard).Methods(http.MethodPost)
	api.HandleFunc("/view/{kind}", rt.View.Open).Methods(http.MethodPost)

	r.HandleFunc("/events", rt.Events.Handle).Methods(http.MethodGet)

	return r
}
