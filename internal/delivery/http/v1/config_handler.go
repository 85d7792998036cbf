package v1

import (
	"net/http"
	"time"

	"storefront/internal/auth"
	"storefront/internal/domain"
	"storefront/pkg/cache"
	"storefront/pkg/utils"
)

type ConfigHandler struct {
	cache    cache.CacheService
	currency string
	pageSize int
}

func NewConfigHandler(c cache.CacheService, currency string, pageSize int) *ConfigHandler {
	return &ConfigHandler{cache: c, currency: currency, pageSize: pageSize}
}

// GET /api/v1/config/enums
func (h *ConfigHandler) GetEnums(w http.ResponseWriter, r *http.Request) {
	enums, _ := cache.GetOrLoad(h.cache, "system:config:enums", time.Hour, func() (map[string]any, error) {
		return map[string]any{
			"paymentMethods":    domain.PaymentMethods,
			"sortKeys":          domain.SortKeys,
			"variantAttributes": []string{domain.AttrColor, domain.AttrSize, domain.AttrMaterial},
			"roles":             auth.Roles,
			"currency":          h.currency,
			"pageSize":          h.pageSize,
		}, nil
	})

	w.Header().Set("Cache-Control", "public, max-age=3600")
	utils.WriteJSON(w, http.StatusOK, enums)
}
