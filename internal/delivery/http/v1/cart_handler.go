package v1

import (
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/usecase"
	"storefront/pkg/utils"
)

type CartHandler struct {
	cartUC *usecase.CartUsecase
}

func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{cartUC: uc}
}

type cartItemReq struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	Variants  domain.Variants `json:"variants"`
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, h.cartUC.GetCart(r.Context(), owner(r)))
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req cartItemReq
	if err := decodeJSON(w, r, &req); err != nil {
		writeAppError(w, r, err)
		return
	}
	snap, err := h.cartUC.AddToCart(r.Context(), owner(r), req.ProductID, req.Quantity, cleanVariants(req.Variants))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, snap)
}

// PUT /api/v1/cart/items
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req cartItemReq
	if err := decodeJSON(w, r, &req); err != nil {
		writeAppError(w, r, err)
		return
	}
	if req.ProductID == "" {
		utils.WriteError(w, http.StatusBadRequest, "product id is required")
		return
	}
	snap, err := h.cartUC.UpdateQuantity(r.Context(), owner(r), req.ProductID, req.Quantity, cleanVariants(req.Variants))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, snap)
}

// DELETE /api/v1/cart/items/{productId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	snap := h.cartUC.RemoveFromCart(r.Context(), owner(r), r.PathValue("productId"), variantsFromQuery(r.URL.Query()))
	utils.WriteJSON(w, http.StatusOK, snap)
}

// DELETE /api/v1/cart
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, h.cartUC.ClearCart(r.Context(), owner(r)))
}

// POST /api/v1/cart/coupon
func (h *CartHandler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeAppError(w, r, err)
		return
	}
	quote, err := h.cartUC.PreviewCoupon(r.Context(), owner(r), req.Code)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, quote)
}
