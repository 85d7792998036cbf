package usecase

import (
	"context"
	"fmt"
	"time"

	"storefront/config"
	"storefront/internal/domain"
	"storefront/pkg/cache"
)

// CatalogUsecase serves read-only catalog lookups through a short-lived cache.
// Cart validation goes to the catalog directly so stock is never stale there.
type CatalogUsecase struct {
	catalog domain.Catalog
	cache   cache.CacheService
	cfg     *config.Config
	now     func() time.Time
}

func NewCatalogUsecase(catalog domain.Catalog, c cache.CacheService, cfg *config.Config) *CatalogUsecase {
	return &CatalogUsecase{
		catalog: catalog,
		cache:   c,
		cfg:     cfg,
		now:     time.Now,
	}
}

func (u *CatalogUsecase) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	if id == "" {
		return nil, domain.InvalidInput("product id is required")
	}
	key := fmt.Sprintf("product:id:%s", id)
	return cache.GetOrLoad(u.cache, key, u.cfg.CacheProductTTL, func() (*domain.Product, error) {
		product, err := u.catalog.GetProduct(ctx, id)
		if err != nil {
			return nil, backendErr("catalog.GetProduct", err)
		}
		return product, nil
	})
}

// PromotionView is a promotion with its countdown resolved at read time.
type PromotionView struct {
	domain.Promotion
	EndsInSeconds *int64 `json:"endsInSeconds,omitempty"`
}

// ActivePromotions returns promotions running now. The raw list is cached;
// schedules are evaluated on every call.
func (u *CatalogUsecase) ActivePromotions(ctx context.Context) ([]PromotionView, error) {
	promos, err := cache.GetOrLoad(u.cache, "promotions:all", u.cfg.CachePromotionTTL, func() ([]domain.Promotion, error) {
		promos, err := u.catalog.ListPromotions(ctx)
		if err != nil {
			return nil, backendErr("catalog.ListPromotions", err)
		}
		return promos, nil
	})
	if err != nil {
		return nil, err
	}

	now := u.now()
	active := make([]PromotionView, 0, len(promos))
	for _, p := range promos {
		if !p.IsCurrentlyActive(now) {
			continue
		}
		view := PromotionView{Promotion: p}
		if d, ok := p.Remaining(now); ok {
			secs := int64(d / time.Second)
			view.EndsInSeconds = &secs
		}
		active = append(active, view)
	}
	return active, nil
}
