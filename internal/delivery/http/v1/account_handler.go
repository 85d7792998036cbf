package v1

import (
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/usecase"
	"storefront/pkg/utils"
)

type AccountHandler struct {
	accountUC *usecase.AccountUsecase
}

func NewAccountHandler(uc *usecase.AccountUsecase) *AccountHandler {
	return &AccountHandler{accountUC: uc}
}

// POST /api/v1/user/addresses
func (h *AccountHandler) SaveAddress(w http.ResponseWriter, r *http.Request) {
	var addr domain.Address
	if err := decodeJSON(w, r, &addr); err != nil {
		writeAppError(w, r, err)
		return
	}
	saved, err := h.accountUC.SaveAddress(r.Context(), addr)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, saved)
}

// DELETE /api/v1/user/addresses/{id}
func (h *AccountHandler) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	if err := h.accountUC.DeleteAddress(r.Context(), r.PathValue("id")); err != nil {
		writeAppError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// POST /api/v1/products/{id}/reviews
func (h *AccountHandler) AddReview(w http.ResponseWriter, r *http.Request) {
	var review domain.Review
	if err := decodeJSON(w, r, &review); err != nil {
		writeAppError(w, r, err)
		return
	}
	review.ProductID = r.PathValue("id")
	created, err := h.accountUC.AddReview(r.Context(), review)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, created)
}

// POST /api/v1/support/tickets
func (h *AccountHandler) OpenTicket(w http.ResponseWriter, r *http.Request) {
	var ticket domain.Ticket
	if err := decodeJSON(w, r, &ticket); err != nil {
		writeAppError(w, r, err)
		return
	}
	created, err := h.accountUC.OpenTicket(r.Context(), ticket)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, created)
}
