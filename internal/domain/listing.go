package domain

import (
	"github.com/shopspring/decimal"
)

// ListingFilter is the query behind a paginated listing. Nil bounds are unset.
type ListingFilter struct {
	Page        int              `json:"page"`
	Limit       int              `json:"limit"`
	Category    string           `json:"category,omitempty"`
	ShopID      string           `json:"shopId,omitempty"`
	SearchQuery string           `json:"searchQuery,omitempty"`
	MinPrice    *decimal.Decimal `json:"minPrice,omitempty"`
	MaxPrice    *decimal.Decimal `json:"maxPrice,omitempty"`
	SortBy      string           `json:"sortBy,omitempty"`
	SortOrder   string           `json:"sortOrder,omitempty"`
	InStockOnly bool             `json:"inStockOnly,omitempty"`
}

// SameQuery reports whether both filters select the same result set, ignoring the page.
func (f ListingFilter) SameQuery(o ListingFilter) bool {
	return f.Limit == o.Limit &&
		f.Category == o.Category &&
		f.ShopID == o.ShopID &&
		f.SearchQuery == o.SearchQuery &&
		equalBound(f.MinPrice, o.MinPrice) &&
		equalBound(f.MaxPrice, o.MaxPrice) &&
		f.SortBy == o.SortBy &&
		f.SortOrder == o.SortOrder &&
		f.InStockOnly == o.InStockOnly
}

func (f ListingFilter) WithPage(page int) ListingFilter {
	f.Page = page
	return f
}

// Offset is the zero-based row offset of the filter's page.
func (f ListingFilter) Offset() int {
	if f.Page < 1 || f.Limit < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

// Descending reports whether results are sorted high to low. Default is descending.
func (f ListingFilter) Descending() bool {
	return f.SortOrder != "asc"
}

func equalBound(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// Page is one page of a remote listing.
type Page[T any] struct {
	Items       []T   `json:"items"`
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalCount  int64 `json:"totalCount"`
}

// NewPage builds a page from a total row count.
func NewPage[T any](items []T, page, limit int, total int64) Page[T] {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:       items,
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalCount:  total,
	}
}

// MutationResult is the envelope every remote mutation answers with.
type MutationResult[T any] struct {
	Success bool   `json:"success"`
	Data    *T     `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func Succeeded[T any](data T) MutationResult[T] {
	return MutationResult[T]{Success: true, Data: &data}
}

func Failed[T any](msg string) MutationResult[T] {
	return MutationResult[T]{Success: false, Error: msg}
}
