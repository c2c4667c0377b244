package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const (
	// ClientCookie identifies the browser; it scopes the durable history.
	ClientCookie = "vw_client"
	// SessionCookie identifies the browsing session; it scopes the last result.
	SessionCookie = "vw_session"

	clientCookieMaxAge = 365 * 24 * 60 * 60
)

type contextKey int

const (
	clientKey contextKey = iota
	sessionKey
)

// Session makes sure every request carries a client id and a session id,
// issuing cookies for whichever is missing or invalid. The session cookie has
// no expiry so the browser drops it when the session ends.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID, ok := cookieID(r, ClientCookie)
		if !ok {
			http.SetCookie(w, &http.Cookie{
				Name:     ClientCookie,
				Value:    clientID,
				Path:     "/",
				MaxAge:   clientCookieMaxAge,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		sessionID, ok := cookieID(r, SessionCookie)
		if !ok {
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    sessionID,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := context.WithValue(r.Context(), clientKey, clientID)
		ctx = context.WithValue(ctx, sessionKey, sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// cookieID returns the id stored in the named cookie, or a fresh one with
// ok == false when the cookie is missing or not a valid id.
func cookieID(r *http.Request, name string) (string, bool) {
	if cookie, err := r.Cookie(name); err == nil {
		if id, err := uuid.Parse(cookie.Value); err == nil {
			return id.String(), true
		}
	}
	return uuid.NewString(), false
}

// ClientID returns the client id set by Session.
func ClientID(ctx context.Context) string {
	id, _ := ctx.Value(clientKey).(string)
	return id
}

// SessionID returns the session id set by Session.
func SessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey).(string)
	return id
}
