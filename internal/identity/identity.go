// Package identity assigns every client an opaque conversation session key.
package identity

import (
	"context"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	SessionCookieName = "quote_session"
	SessionHeaderName = "X-Session-ID"
	SessionQueryParam = "session_id"
	sessionCookieAge  = 30 * 24 * time.Hour
)

type contextKey int

const sessionKeyKey contextKey = iota

var sessionKeyPattern = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,128}$`)

// SessionKeyFromContext returns the session key set by Middleware.
func SessionKeyFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(sessionKeyKey).(string); ok {
		return v
	}
	return ""
}

// WithSessionKey returns a context carrying key.
func WithSessionKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, sessionKeyKey, key)
}

// NewSessionKey mints a random session key.
func NewSessionKey() string {
	return uuid.NewString()
}

// ValidSessionKey reports whether key may be used as a session key.
func ValidSessionKey(key string) bool {
	return sessionKeyPattern.MatchString(key)
}

// sessionKeyFromRequest prefers an explicit header or query parameter over
// the cookie. Invalid values are ignored.
func sessionKeyFromRequest(r *http.Request) (string, bool) {
	for _, v := range []string{r.Header.Get(SessionHeaderName), r.URL.Query().Get(SessionQueryParam)} {
		if v = strings.TrimSpace(v); ValidSessionKey(v) {
			return v, true
		}
	}
	if c, err := r.Cookie(SessionCookieName); err == nil && ValidSessionKey(c.Value) {
		return c.Value, true
	}
	return "", false
}

func setSessionCookie(w http.ResponseWriter, key string, isDev bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    key,
		Path:     "/",
		MaxAge:   int(sessionCookieAge.Seconds()),
		Expires:  time.Now().Add(sessionCookieAge),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   !isDev,
	})
}

// Middleware resolves the session key for every request, minting one and
// setting the cookie when the client sent none. The key is echoed in the
// X-Session-ID response header.
func Middleware(isDev bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, ok := sessionKeyFromRequest(r)
			if !ok {
				key = NewSessionKey()
			}
			setSessionCookie(w, key, isDev)
			w.Header().Set(SessionHeaderName, key)
			next.ServeHTTP(w, r.WithContext(WithSessionKey(r.Context(), key)))
		})
	}
}

// IPFromRequest returns a normalized remote IP for optional request tracing.
func IPFromRequest(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
