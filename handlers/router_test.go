package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nba-predictions-go/catalog"
	"nba-predictions-go/database"
	"nba-predictions-go/interfaces"
	"nba-predictions-go/middleware"
	"nba-predictions-go/models"
	"nba-predictions-go/services"
)

type testServer struct {
	*httptest.Server
	client      *http.Client
	broadcaster *services.EventBroadcaster
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	stores := database.NewMemoryStores()
	teams := catalog.Default()
	collab := interfaces.Collaborators{
		Session: services.ContextSession{},
		Store:   stores.Predictions,
		Catalog: teams,
	}

	authService := services.NewAuthService(stores.Users, services.AuthConfig{
		JWTSecret:           "test-secret",
		AllowedEmailDomains: []string{"gmail.com"},
	})
	broadcaster := services.NewEventBroadcaster(0)
	sessions := services.NewViewSessions(collab, broadcaster.PredictionRecorded)
	events := NewSSEHandler(broadcaster)

	router := NewRouter(Routes{
		Auth:   NewAuthHandler(authService, services.NewAvailabilityChecker(authService.IsAvailable, 0), false),
		Stats:  NewStatsHandler(services.NewStatsService(collab), teams),
		View:   NewViewHandler(sessions),
		Events: events,
		AuthMW: middleware.NewAuthMiddleware(authService),
	})

	srv := httptest.NewServer(router)
	t.Cleanup(func() {
		events.Shutdown()
		srv.Close()
		broadcaster.Stop()
	})

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testServer{Server: srv, client: &http.Client{Jar: jar}, broadcaster: broadcaster}
}

func (s *testServer) do(t *testing.T, method, path string, body any, out any) int {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, s.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestPredictionFlow(t *testing.T) {
	s := newTestServer(t)
	lakers := url.QueryEscape("Los Angeles Lakers")

	var view services.ViewSnapshot
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/view", nil, &view))
	assert.Equal(t, services.KindNone, view.Kind)

	var errResp errorResponse
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodPost, "/api/view/prediction?team="+lakers, nil, &errResp))

	var auth models.AuthResponse
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/auth/signup",
		models.SignUpRequest{Email: "alice@gmail.com", Username: "alice", Password: "secret1"}, &auth))
	assert.Equal(t, "alice", auth.User.Username)
	assert.NotEmpty(t, auth.Token)

	var avail availabilityResponse
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/auth/availability?field=username&value=alice", nil, &avail))
	assert.False(t, avail.Available)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/auth/availability?field=username&value=bob", nil, &avail))
	assert.True(t, avail.Available)

	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/view/prediction?team="+lakers, nil, &view))
	require.Equal(t, services.KindPrediction, view.Kind)
	require.NotNil(t, view.Wizard)
	assert.Equal(t, services.StepAwaitingOutcome, view.Wizard.State.Step)

	assert.Equal(t, http.StatusBadRequest,
		s.do(t, http.MethodPost, "/api/view/prediction/opponent", wizardAction{Opponent: "Miami Heat"}, &errResp))

	won := true
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/view/prediction/outcome", wizardAction{Won: &won}, &view))
	assert.NotEmpty(t, view.Wizard.Opponents)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/view/prediction/opponent", wizardAction{Opponent: "Miami Heat"}, &view))
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/view/prediction/bet", wizardAction{BetType: "for"}, &view))
	assert.Equal(t, services.StepReady, view.Wizard.State.Step)
	require.NotNil(t, view.Wizard.Outcome)
	assert.True(t, *view.Wizard.Outcome)

	events := s.broadcaster.AddClient("")

	var submitted submitResponse
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/view/prediction/submit", nil, &submitted))
	assert.Equal(t, services.KindNone, submitted.View.Kind)
	require.NotNil(t, submitted.Prediction.Outcome)
	assert.True(t, *submitted.Prediction.Outcome)
	assert.Equal(t, "alice", submitted.Prediction.Username)
	assert.Contains(t, <-events.Channel, "event: stats-updated")

	var stats statsResponse
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/stats", nil, &stats))
	lal := stats.Stats["Los Angeles Lakers"]
	assert.Equal(t, 1, lal.Wins)
	assert.Equal(t, "100%", lal.WinRate)
	assert.Equal(t, 1, lal.Rank)
	require.NotEmpty(t, stats.Ranked)
	assert.Equal(t, "Los Angeles Lakers", stats.Ranked[0].TeamName)

	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/stats?scope=user", nil, &stats))
	assert.Equal(t, 1, stats.Stats["Los Angeles Lakers"].Wins)
	assert.Equal(t, models.NoDataRate, stats.Stats["Miami Heat"].WinRate)
	assert.Empty(t, stats.Ranked)

	var history []models.Prediction
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/predictions", nil, &history))
	assert.Len(t, history, 1)

	var detail services.TeamDetail
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/teams/"+url.PathEscape("Los Angeles Lakers")+"/stats", nil, &detail))
	assert.Equal(t, 1, detail.Breakdown.WinsFor)

	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodPost, "/api/auth/signout", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/auth/me", nil, &errResp))
}

func TestAnonymousRequests(t *testing.T) {
	s := newTestServer(t)

	var errResp errorResponse
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/predictions", nil, &errResp))
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodPut, "/api/account", models.UpdateAccountRequest{Username: "x"}, &errResp))
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/stats?scope=league", nil, &errResp))
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/view/bogus", nil, &errResp))
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPost, "/api/view/prediction/back", nil, &errResp))

	var stats statsResponse
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/stats?scope=user", nil, &stats))
	assert.Empty(t, stats.Stats)

	var view services.ViewSnapshot
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/view/auth?mode=signup", nil, &view))
	assert.Equal(t, services.AuthSignUp, view.Mode)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/view", nil, &view))
	assert.Equal(t, services.KindAuth, view.Kind)

	var teams teamsResponse
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/teams?filter=east", nil, &teams))
	assert.Len(t, teams.Filters, len(catalog.FilterOptions))
	for _, team := range teams.Teams {
		assert.Equal(t, "east", team.Conference)
	}

	var dash services.Dashboard
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/dashboard?q=lakers", nil, &dash))
	require.Len(t, dash.Cards, 1)
	assert.Nil(t, dash.Cards[0].User)
	assert.Nil(t, dash.Summary)
}

func TestSecurityHeadersAndHealth(t *testing.T) {
	s := newTestServer(t)

	resp, err := s.client.Get(s.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Contains(t, resp.Header.Get("Set-Cookie"), middleware.ViewCookieName)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusConflict, statusFor(services.ErrUsernameTaken))
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(services.ErrStatsUnavailable))
	assert.Equal(t, http.StatusBadGateway, statusFor(io.ErrUnexpectedEOF))
}
