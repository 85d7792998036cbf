// Package session holds the per-owner stores the HTTP layer operates on.
package session

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"storefront/internal/cart"
	"storefront/internal/domain"
	"storefront/internal/infrastructure/metrics"
	"storefront/internal/listing"
	"storefront/pkg/cache"
	"storefront/pkg/logger"
)

// Session is the client state of one owner (a browser profile).
type Session struct {
	Owner    string
	Cart     *cart.Store
	Wishlist *cart.Store
	Products *listing.Orchestrator[domain.Product]
	Shops    *listing.Orchestrator[domain.Shop]
}

// Registry constructs each owner's session once and keeps it while in use.
// Idle sessions are evicted; their stores are already persisted.
type Registry struct {
	sessions  cache.CacheService
	group     singleflight.Group
	snapshots domain.SnapshotStore
	catalog   domain.Catalog
	pageSize  int
	idleTTL   time.Duration
}

func NewRegistry(sessions cache.CacheService, snapshots domain.SnapshotStore, catalog domain.Catalog, pageSize int, idleTTL time.Duration) *Registry {
	sessions.OnEvicted(func(owner string, _ any) {
		metrics.ActiveSessions.Set(float64(sessions.Len()))
		logger.Debug().Str("owner", owner).Msg("Session evicted")
	})
	return &Registry{
		sessions:  sessions,
		snapshots: snapshots,
		catalog:   catalog,
		pageSize:  pageSize,
		idleTTL:   idleTTL,
	}
}

// Get returns the owner's session, opening it from snapshots on first use.
func (r *Registry) Get(ctx context.Context, owner string) *Session {
	if s, ok := r.lookup(owner); ok {
		return s
	}

	v, _, _ := r.group.Do(owner, func() (interface{}, error) {
		if s, ok := r.lookup(owner); ok {
			return s, nil
		}
		s := r.open(context.WithoutCancel(ctx), owner)
		r.sessions.Set(owner, s, r.idleTTL)
		metrics.ActiveSessions.Set(float64(r.sessions.Len()))
		return s, nil
	})
	return v.(*Session)
}

// Forget drops the in-memory session; persisted snapshots are kept.
func (r *Registry) Forget(owner string) {
	r.sessions.Delete(owner)
}

func (r *Registry) lookup(owner string) (*Session, bool) {
	s, ok := cache.Lookup[*Session](r.sessions, owner)
	if !ok {
		return nil, false
	}
	// Refresh the idle deadline.
	r.sessions.Set(owner, s, r.idleTTL)
	return s, true
}

func (r *Registry) open(ctx context.Context, owner string) *Session {
	log := logger.WithContext(ctx).With().Str("owner", owner).Logger()
	log.Debug().Msg("Opening session")

	return &Session{
		Owner:    owner,
		Cart:     cart.Open(ctx, domain.KindCart, "cart:"+owner, r.snapshots, log),
		Wishlist: cart.Open(ctx, domain.KindWishlist, "wishlist:"+owner, r.snapshots, log),
		Products: listing.New[domain.Product]("products", r.pageSize, r.catalog.ListProducts, log),
		Shops:    listing.New[domain.Shop]("shops", r.pageSize, r.catalog.ListShops, log),
	}
}
