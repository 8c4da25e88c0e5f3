package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type sessionKey struct{}

// SessionMaxAge is how long the browser keeps the session cookie.
const SessionMaxAge = 365 * 24 * time.Hour

// Sessions reads and issues the session cookie. Session ids are random UUIDs;
// anything else in the cookie is ignored.
type Sessions struct {
	CookieName string
	Secure     bool
}

// NewSessions creates the cookie manager.
func NewSessions(cookieName string, secure bool) *Sessions {
	return &Sessions{CookieName: cookieName, Secure: secure}
}

// Middleware stores a valid cookie session id in the request context.
func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := s.read(r); id != "" {
			r = r.WithContext(WithSessionID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

// Ensure returns the request's session id, issuing a new cookie if there is none.
func (s *Sessions) Ensure(w http.ResponseWriter, r *http.Request) string {
	if id := SessionID(r.Context()); id != "" {
		return id
	}
	if id := s.read(r); id != "" {
		return id
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     s.CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(SessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func (s *Sessions) read(r *http.Request) string {
	c, err := r.Cookie(s.CookieName)
	if err != nil {
		return ""
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		return ""
	}
	return c.Value
}

// WithSessionID returns ctx carrying id.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionKey{}, id)
}

// SessionID returns the session id stored by Middleware, or "".
func SessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}
