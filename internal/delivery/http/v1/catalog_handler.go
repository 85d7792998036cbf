package v1

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/usecase"
	"storefront/pkg/utils"
)

const (
	listingProducts = "products"
	listingShops    = "shops"
)

type CatalogHandler struct {
	listingUC *usecase.ListingUsecase
	catalogUC *usecase.CatalogUsecase
}

func NewCatalogHandler(listingUC *usecase.ListingUsecase, catalogUC *usecase.CatalogUsecase) *CatalogHandler {
	return &CatalogHandler{listingUC: listingUC, catalogUC: catalogUC}
}

// GET /api/v1/listings/{kind}
func (h *CatalogHandler) ApplyFilter(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r.URL.Query())
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	switch r.PathValue("kind") {
	case listingProducts:
		snap, err := h.listingUC.Products(r.Context(), owner(r), filter)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		utils.WriteJSON(w, http.StatusOK, snap)
	case listingShops:
		snap, err := h.listingUC.Shops(r.Context(), owner(r), filter)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		utils.WriteJSON(w, http.StatusOK, snap)
	default:
		utils.WriteError(w, http.StatusNotFound, "unknown listing")
	}
}

// POST /api/v1/listings/{kind}/next
func (h *CatalogHandler) LoadNext(w http.ResponseWriter, r *http.Request) {
	switch r.PathValue("kind") {
	case listingProducts:
		utils.WriteJSON(w, http.StatusOK, h.listingUC.NextProducts(r.Context(), owner(r)))
	case listingShops:
		utils.WriteJSON(w, http.StatusOK, h.listingUC.NextShops(r.Context(), owner(r)))
	default:
		utils.WriteError(w, http.StatusNotFound, "unknown listing")
	}
}

// POST /api/v1/listings/{kind}/retry
func (h *CatalogHandler) Retry(w http.ResponseWriter, r *http.Request) {
	switch r.PathValue("kind") {
	case listingProducts:
		utils.WriteJSON(w, http.StatusOK, h.listingUC.RetryProducts(r.Context(), owner(r)))
	case listingShops:
		utils.WriteJSON(w, http.StatusOK, h.listingUC.RetryShops(r.Context(), owner(r)))
	default:
		utils.WriteError(w, http.StatusNotFound, "unknown listing")
	}
}

// GET /api/v1/products/{id}
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalogUC.GetProduct(r.Context(), r.PathValue("id"))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, product)
}

// GET /api/v1/promotions
func (h *CatalogHandler) Promotions(w http.ResponseWriter, r *http.Request) {
	promos, err := h.catalogUC.ActivePromotions(r.Context())
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=60")
	utils.WriteJSON(w, http.StatusOK, promos)
}

func filterFromQuery(q url.Values) (domain.ListingFilter, error) {
	f := domain.ListingFilter{
		Limit:       utils.ParseInt(q.Get("limit"), 0),
		Category:    strings.TrimSpace(q.Get("category")),
		ShopID:      strings.TrimSpace(q.Get("shopId")),
		SearchQuery: strings.TrimSpace(q.Get("q")),
		SortBy:      q.Get("sortBy"),
		SortOrder:   strings.ToLower(q.Get("sortOrder")),
		InStockOnly: utils.ParseBool(q.Get("inStock")),
	}

	var err error
	if f.MinPrice, err = priceParam(q, "minPrice"); err != nil {
		return f, err
	}
	if f.MaxPrice, err = priceParam(q, "maxPrice"); err != nil {
		return f, err
	}
	return f, nil
}

func priceParam(q url.Values, name string) (*decimal.Decimal, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, domain.InvalidInput(name + " must be a number")
	}
	return &d, nil
}
