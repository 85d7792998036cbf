package v1

import (
	"net/http"

	"storefront/internal/auth"
	"storefront/pkg/logger"
	"storefront/pkg/utils"
)

// AuthHandler binds backend-issued tokens to the client session. Sign-in
// itself happens against the backend.
type AuthHandler struct {
	verifier *auth.TokenVerifier
	tokens   *auth.SessionTokens
}

func NewAuthHandler(verifier *auth.TokenVerifier, tokens *auth.SessionTokens) *AuthHandler {
	return &AuthHandler{verifier: verifier, tokens: tokens}
}

// POST /api/v1/auth/session
func (h *AuthHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccessToken string `json:"accessToken"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeAppError(w, r, err)
		return
	}
	id, err := h.verifier.Verify(req.AccessToken)
	if err != nil {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized: invalid token")
		return
	}
	if err := h.tokens.Save(r.Context(), owner(r), req.AccessToken); err != nil {
		logger.WithContext(r.Context()).Error().Err(err).Msg("Failed to persist session token")
		utils.WriteError(w, http.StatusInternalServerError, "could not start session")
		return
	}

	logger.WithContext(r.Context()).Info().
		Str("user_id", id.UserID).
		Str("role", id.Role.String()).
		Msg("Session signed in")

	utils.WriteJSON(w, http.StatusOK, id)
}

// DELETE /api/v1/auth/session
func (h *AuthHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.tokens.Clear(r.Context(), owner(r)); err != nil {
		logger.WithContext(r.Context()).Error().Err(err).Msg("Failed to clear session token")
		utils.WriteError(w, http.StatusInternalServerError, "could not end session")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "signed_out"})
}

// GET /api/v1/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	id := auth.FromContext(r.Context())
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"authenticated": id.IsAuthenticated(),
		"userId":        id.UserID,
		"email":         id.Email,
		"role":          id.Role,
		"canCheckout":   id.Role.CanCheckout(),
		"canManageShop": id.Role.CanManageShop(),
	})
}
