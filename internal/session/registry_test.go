package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
	memcache "storefront/internal/infrastructure/cache"
	"storefront/internal/infrastructure/snapshot"
)

type emptyCatalog struct{}

func (emptyCatalog) ListProducts(context.Context, domain.ListingFilter) (domain.Page[domain.Product], error) {
	return domain.Page[domain.Product]{}, nil
}
func (emptyCatalog) ListShops(context.Context, domain.ListingFilter) (domain.Page[domain.Shop], error) {
	return domain.Page[domain.Shop]{}, nil
}
func (emptyCatalog) GetProduct(context.Context, string) (*domain.Product, error) {
	return nil, domain.NotFound("product")
}
func (emptyCatalog) ListPromotions(context.Context) ([]domain.Promotion, error) { return nil, nil }

func newRegistry(snaps domain.SnapshotStore) *Registry {
	return NewRegistry(memcache.NewMemoryCache(time.Minute, time.Minute), snaps, emptyCatalog{}, 10, time.Minute)
}

func TestRegistry_SameInstancePerOwner(t *testing.T) {
	r := newRegistry(snapshot.NewMemoryStore())
	ctx := context.Background()

	var wg sync.WaitGroup
	got := make([]*Session, 16)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = r.Get(ctx, "sid-1")
		}(i)
	}
	wg.Wait()

	for _, s := range got {
		assert.Same(t, got[0], s)
	}
	assert.NotSame(t, got[0], r.Get(ctx, "sid-2"))
}

func TestRegistry_ReopensFromSnapshotsAfterForget(t *testing.T) {
	snaps := snapshot.NewMemoryStore()
	r := newRegistry(snaps)
	ctx := context.Background()

	s := r.Get(ctx, "sid-1")
	s.Cart.Add(ctx, domain.Product{ID: "p1", Name: "Mug", Price: decimal.NewFromInt(8)}, 2, nil)
	s.Wishlist.Add(ctx, domain.Product{ID: "p2", Name: "Cap", Price: decimal.NewFromInt(5)}, 1, nil)

	r.Forget("sid-1")
	reopened := r.Get(ctx, "sid-1")

	require.NotSame(t, s, reopened)
	assert.Equal(t, 2, reopened.Cart.Count())
	assert.True(t, reopened.Cart.Total().Equal(decimal.NewFromInt(16)))
	assert.True(t, reopened.Wishlist.Contains("p2", nil))
}
