package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"nba-predictions-go/models"
)

type tokenMap map[string]*models.User

func (m tokenMap) GetUserFromToken(_ context.Context, token string) (*models.User, error) {
	if u, ok := m[token]; ok {
		return u, nil
	}
	return nil, errors.New("invalid token")
}

func echoUser(w http.ResponseWriter, r *http.Request) {
	if u := GetUserFromContext(r); u != nil {
		w.Write([]byte(u.Username))
	}
}

func TestAuthMiddleware(t *testing.T) {
	m := NewAuthMiddleware(tokenMap{"good": {ID: "u1", Username: "alice"}})

	cases := []struct {
		name   string
		setup  func(*http.Request)
		status int
		body   string
	}{
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer good") }, http.StatusOK, "alice"},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: AuthCookieName, Value: "good"}) }, http.StatusOK, "alice"},
		{"bad token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized, ""},
		{"none", func(*http.Request) {}, http.StatusUnauthorized, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tc.setup(req)

			rec := httptest.NewRecorder()
			m.RequireAuth(http.HandlerFunc(echoUser)).ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
			if tc.status == http.StatusOK {
				assert.Equal(t, tc.body, rec.Body.String())
			}

			rec = httptest.NewRecorder()
			m.OptionalAuth(http.HandlerFunc(echoUser)).ServeHTTP(rec, req)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tc.body, rec.Body.String())
		})
	}
}

func TestViewSessionKey(t *testing.T) {
	var key string
	h := ViewSession(false)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		key = SessionKey(r)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, strings.HasPrefix(key, "anon:"))
	cookies := rec.Result().Cookies()
	if assert.Len(t, cookies, 1) {
		assert.Equal(t, "anon:"+cookies[0].Value, key)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: ViewCookieName, Value: "abc"})
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "anon:abc", key)

	authed := NewAuthMiddleware(tokenMap{"good": {ID: "u1"}}).OptionalAuth(h)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	authed.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "user:u1", key)
}

func TestSecurityHeadersBehindProxy(t *testing.T) {
	noop := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})

	rec := httptest.NewRecorder()
	SecurityHeaders(true)(noop).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	rec = httptest.NewRecorder()
	SecurityHeaders(true)(noop).ServeHTTP(rec, req)
	assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestRequestLoggerKeepsStatusAndFlush(t *testing.T) {
	h := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, ok := w.(http.Flusher)
		assert.True(t, ok)
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
