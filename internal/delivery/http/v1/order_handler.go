package v1

import (
	"net/http"

	"storefront/internal/usecase"
	"storefront/pkg/utils"
)

type OrderHandler struct {
	checkoutUC *usecase.CheckoutUsecase
	accountUC  *usecase.AccountUsecase
}

func NewOrderHandler(checkoutUC *usecase.CheckoutUsecase, accountUC *usecase.AccountUsecase) *OrderHandler {
	return &OrderHandler{checkoutUC: checkoutUC, accountUC: accountUC}
}

// POST /api/v1/checkout
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req usecase.CheckoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAppError(w, r, err)
		return
	}
	order, err := h.checkoutUC.Checkout(r.Context(), owner(r), req)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, order)
}

// GET /api/v1/orders
func (h *OrderHandler) MyOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.accountUC.MyOrders(r.Context())
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, orders)
}
