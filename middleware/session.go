package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// ViewCookieName identifies anonymous browser sessions
const ViewCookieName = "view_session"

type sessionKeyContextKey struct{}

// ViewSession assigns every request a view-session key: the user id when
// signed in, otherwise an anonymous id kept in a cookie. Run it after OptionalAuth.
func ViewSession(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var key string
			if user := GetUserFromContext(r); user != nil {
				key = "user:" + user.ID
			} else if cookie, err := r.Cookie(ViewCookieName); err == nil && cookie.Value != "" {
				key = "anon:" + cookie.Value
			} else {
				id := uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     ViewCookieName,
					Value:    id,
					Path:     "/",
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
				key = "anon:" + id
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKeyContextKey{}, key)))
		})
	}
}

// SessionKey returns the key assigned by ViewSession
func SessionKey(r *http.Request) string {
	key, _ := r.Context().Value(sessionKeyContextKey{}).(string)
	return key
}
