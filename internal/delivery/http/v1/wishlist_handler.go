package v1

import (
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/usecase"
	"storefront/pkg/utils"
)

type WishlistHandler struct {
	wishlistUC *usecase.WishlistUsecase
}

func NewWishlistHandler(uc *usecase.WishlistUsecase) *WishlistHandler {
	return &WishlistHandler{wishlistUC: uc}
}

// GET /api/v1/wishlist
func (h *WishlistHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, h.wishlistUC.GetWishlist(r.Context(), owner(r)))
}

// POST /api/v1/wishlist/items
func (h *WishlistHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID string          `json:"productId"`
		Variants  domain.Variants `json:"variants"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeAppError(w, r, err)
		return
	}
	snap, err := h.wishlistUC.AddToWishlist(r.Context(), owner(r), req.ProductID, cleanVariants(req.Variants))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, snap)
}

// DELETE /api/v1/wishlist/items/{productId}
func (h *WishlistHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	snap := h.wishlistUC.RemoveFromWishlist(r.Context(), owner(r), r.PathValue("productId"), variantsFromQuery(r.URL.Query()))
	utils.WriteJSON(w, http.StatusOK, snap)
}

// POST /api/v1/wishlist/items/{productId}/move
func (h *WishlistHandler) MoveToCart(w http.ResponseWriter, r *http.Request) {
	cart, wishlist, err := h.wishlistUC.MoveToCart(r.Context(), owner(r), r.PathValue("productId"), variantsFromQuery(r.URL.Query()))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]domain.AggregateSnapshot{
		"cart":     cart,
		"wishlist": wishlist,
	})
}

// GET /api/v1/wishlist/contains/{productId}
func (h *WishlistHandler) Contains(w http.ResponseWriter, r *http.Request) {
	in := h.wishlistUC.IsInWishlist(r.Context(), owner(r), r.PathValue("productId"), variantsFromQuery(r.URL.Query()))
	utils.WriteJSON(w, http.StatusOK, map[string]bool{"inWishlist": in})
}
