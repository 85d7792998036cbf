package middleware

import (
	"context"
	"net/http"
	"strings"

	"storefront/internal/auth"
	"storefront/internal/session"
	"storefront/pkg/logger"
	"storefront/pkg/utils"
)

// Auth attaches the caller identity to the request context. A bearer header
// wins over the token stored for the session; requests without either carry
// on as guests.
type Auth struct {
	verifier *auth.TokenVerifier
	tokens   *auth.SessionTokens
}

func NewAuth(verifier *auth.TokenVerifier, tokens *auth.SessionTokens) *Auth {
	return &Auth{verifier: verifier, tokens: tokens}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(h, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// Identify must run after the session middleware.
func (a *Auth) Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sid := session.IDFromContext(ctx)
		log := logger.WithContext(ctx)

		if token := bearerToken(r); token != "" {
			id, err := a.verifier.Verify(token)
			if err != nil {
				utils.WriteError(w, http.StatusUnauthorized, "Unauthorized: invalid token")
				return
			}
			next.ServeHTTP(w, r.WithContext(a.attach(r, id)))
			return
		}

		if sid != "" {
			token, err := a.tokens.Load(ctx, sid)
			if err != nil {
				log.Warn().Err(err).Msg("Failed to load session token")
			}
			if token != "" {
				id, err := a.verifier.Verify(token)
				if err == nil {
					next.ServeHTTP(w, r.WithContext(a.attach(r, id)))
					return
				}
				// Expired or revoked: forget it and continue as a guest.
				if err := a.tokens.Clear(ctx, sid); err != nil {
					log.Warn().Err(err).Msg("Failed to clear stale session token")
				}
			}
		}

		next.ServeHTTP(w, r)
	})
}

func (a *Auth) attach(r *http.Request, id *auth.Identity) context.Context {
	ctx := auth.NewContext(r.Context(), id)
	l := logger.WithUserID(*logger.WithContext(ctx), id.UserID)
	return logger.NewContext(ctx, &l)
}

// RequireAuth rejects guests. MUST be used AFTER Identify.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !auth.FromContext(r.Context()).IsAuthenticated() {
			utils.WriteError(w, http.StatusUnauthorized, "Unauthorized: please sign in")
			return
		}
		next.ServeHTTP(w, r)
	})
}
