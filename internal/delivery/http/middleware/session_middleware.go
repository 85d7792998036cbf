package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"storefront/internal/session"
	"storefront/pkg/logger"
)

const (
	SessionCookie = "sid"
	SessionHeader = "X-Session-ID"
	sessionMaxAge = 365 * 24 * time.Hour
)

// Session resolves the client session id from the cookie or header and
// issues a fresh one when it is missing or malformed.
func Session(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sid := r.Header.Get(SessionHeader)
			if c, err := r.Cookie(SessionCookie); err == nil && sid == "" {
				sid = c.Value
			}
			if _, err := uuid.Parse(sid); err != nil {
				sid = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookie,
					Value:    sid,
					Path:     "/",
					MaxAge:   int(sessionMaxAge / time.Second),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			w.Header().Set(SessionHeader, sid)

			ctx := session.WithID(r.Context(), sid)
			l := logger.WithSessionID(*logger.WithContext(ctx), sid)
			ctx = logger.NewContext(ctx, &l)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
