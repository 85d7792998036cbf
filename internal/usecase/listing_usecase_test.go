package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
	"storefront/internal/listing"
)

func TestListingUsecase_ProductsPaginate(t *testing.T) {
	backend := newFakeBackend()
	for i := range 25 {
		p := mug()
		p.ID = fmt.Sprintf("mug-%02d", i)
		backend.addProduct(p)
	}
	uc := NewListingUsecase(newTestRegistry(backend))
	ctx := context.Background()

	snap, err := uc.Products(ctx, "sid-1", domain.ListingFilter{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, listing.StateLoaded, snap.State)
	assert.Len(t, snap.Items, 10)
	assert.Equal(t, 3, snap.TotalPages)
	assert.True(t, snap.HasMore())

	snap = uc.NextProducts(ctx, "sid-1")
	assert.Equal(t, 2, snap.CurrentPage)
	assert.Len(t, snap.Items, 20)

	// Nothing to retry outside the errored state.
	snap = uc.RetryProducts(ctx, "sid-1")
	assert.Equal(t, 2, snap.CurrentPage)
}

func TestListingUsecase_ShopsEmptyIsExhausted(t *testing.T) {
	uc := NewListingUsecase(newTestRegistry(newFakeBackend()))

	snap, err := uc.Shops(context.Background(), "sid-1", domain.ListingFilter{})
	require.NoError(t, err)
	assert.True(t, snap.NoResults())

	snap = uc.NextShops(context.Background(), "sid-1")
	assert.Equal(t, listing.StateExhausted, snap.State)
}

func TestListingUsecase_RejectsInvalidFilter(t *testing.T) {
	uc := NewListingUsecase(newTestRegistry(newFakeBackend()))

	_, err := uc.Products(context.Background(), "sid-1", domain.ListingFilter{SortBy: "DROP TABLE"})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	snap := uc.RetryShops(context.Background(), "sid-1")
	assert.Equal(t, listing.StateIdle, snap.State)
}

func TestValidateFilter(t *testing.T) {
	lo, hi := decimal.NewFromInt(50), decimal.NewFromInt(10)
	neg := decimal.NewFromInt(-1)

	tests := []struct {
		name    string
		filter  domain.ListingFilter
		wantErr bool
	}{
		{"zero value", domain.ListingFilter{}, false},
		{"known sort", domain.ListingFilter{SortBy: domain.SortPrice, SortOrder: "asc"}, false},
		{"unknown sort", domain.ListingFilter{SortBy: "popularity"}, true},
		{"bad order", domain.ListingFilter{SortOrder: "sideways"}, true},
		{"limit too large", domain.ListingFilter{Limit: 500}, true},
		{"negative min", domain.ListingFilter{MinPrice: &neg}, true},
		{"inverted range", domain.ListingFilter{MinPrice: &lo, MaxPrice: &hi}, true},
		{"valid range", domain.ListingFilter{MinPrice: &hi, MaxPrice: &lo}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFilter(tt.filter)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
