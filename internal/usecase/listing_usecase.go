package usecase

import (
	"context"
	"slices"

	"storefront/internal/domain"
	"storefront/internal/listing"
	"storefront/internal/session"
)

const maxPageSize = 100

// ListingUsecase drives the owner's product and shop listings. Fetches are
// detached from the request so a dropped connection cannot abort a page the
// orchestrator is waiting on.
type ListingUsecase struct {
	sessions *session.Registry
}

func NewListingUsecase(sessions *session.Registry) *ListingUsecase {
	return &ListingUsecase{sessions: sessions}
}

func (u *ListingUsecase) Products(ctx context.Context, owner string, filter domain.ListingFilter) (listing.Snapshot[domain.Product], error) {
	if err := ValidateFilter(filter); err != nil {
		return listing.Snapshot[domain.Product]{}, err
	}
	return u.sessions.Get(ctx, owner).Products.ApplyFilter(context.WithoutCancel(ctx), filter), nil
}

func (u *ListingUsecase) NextProducts(ctx context.Context, owner string) listing.Snapshot[domain.Product] {
	return u.sessions.Get(ctx, owner).Products.LoadNext(context.WithoutCancel(ctx))
}

func (u *ListingUsecase) RetryProducts(ctx context.Context, owner string) listing.Snapshot[domain.Product] {
	return u.sessions.Get(ctx, owner).Products.Retry(context.WithoutCancel(ctx))
}

func (u *ListingUsecase) Shops(ctx context.Context, owner string, filter domain.ListingFilter) (listing.Snapshot[domain.Shop], error) {
	if err := ValidateFilter(filter); err != nil {
		return listing.Snapshot[domain.Shop]{}, err
	}
	return u.sessions.Get(ctx, owner).Shops.ApplyFilter(context.WithoutCancel(ctx), filter), nil
}

func (u *ListingUsecase) NextShops(ctx context.Context, owner string) listing.Snapshot[domain.Shop] {
	return u.sessions.Get(ctx, owner).Shops.LoadNext(context.WithoutCancel(ctx))
}

func (u *ListingUsecase) RetryShops(ctx context.Context, owner string) listing.Snapshot[domain.Shop] {
	return u.sessions.Get(ctx, owner).Shops.Retry(context.WithoutCancel(ctx))
}

// ValidateFilter rejects filters neither backend can serve.
func ValidateFilter(f domain.ListingFilter) error {
	if f.SortBy != "" && !slices.Contains(domain.SortKeys, f.SortBy) {
		return domain.InvalidInput("unsupported sort key: " + f.SortBy)
	}
	if f.SortOrder != "" && f.SortOrder != "asc" && f.SortOrder != "desc" {
		return domain.InvalidInput("sort order must be asc or desc")
	}
	if f.Limit < 0 || f.Limit > maxPageSize {
		return domain.InvalidInput("limit must be between 1 and 100")
	}
	if f.MinPrice != nil && f.MinPrice.IsNegative() {
		return domain.InvalidInput("minimum price cannot be negative")
	}
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		return domain.InvalidInput("minimum price exceeds maximum price")
	}
	return nil
}
