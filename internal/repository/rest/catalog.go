package rest

import (
	"context"
	"net/url"
	"strconv"

	"storefront/internal/domain"
)

func (c *Client) ListProducts(ctx context.Context, f domain.ListingFilter) (domain.Page[domain.Product], error) {
	var page domain.Page[domain.Product]
	if err := c.query(ctx, "rest.ListProducts", "/products", filterQuery(f), &page); err != nil {
		return domain.Page[domain.Product]{}, err
	}
	return page, nil
}

func (c *Client) ListShops(ctx context.Context, f domain.ListingFilter) (domain.Page[domain.Shop], error) {
	var page domain.Page[domain.Shop]
	if err := c.query(ctx, "rest.ListShops", "/shops", filterQuery(f), &page); err != nil {
		return domain.Page[domain.Shop]{}, err
	}
	return page, nil
}

func (c *Client) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	if err := c.query(ctx, "rest.GetProduct", "/products/"+url.PathEscape(id), nil, &p); err != nil {
		if IsNotFound(err) {
			return nil, domain.NotFound("product")
		}
		return nil, err
	}
	return &p, nil
}

func (c *Client) ListPromotions(ctx context.Context) ([]domain.Promotion, error) {
	var promos []domain.Promotion
	if err := c.query(ctx, "rest.ListPromotions", "/promotions", nil, &promos); err != nil {
		return nil, err
	}
	return promos, nil
}

func filterQuery(f domain.ListingFilter) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(f.Page))
	q.Set("limit", strconv.Itoa(f.Limit))
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.ShopID != "" {
		q.Set("shopId", f.ShopID)
	}
	if f.SearchQuery != "" {
		q.Set("search", f.SearchQuery)
	}
	if f.MinPrice != nil {
		q.Set("minPrice", f.MinPrice.String())
	}
	if f.MaxPrice != nil {
		q.Set("maxPrice", f.MaxPrice.String())
	}
	if f.SortBy != "" {
		q.Set("sortBy", f.SortBy)
		if f.Descending() {
			q.Set("sortOrder", "desc")
		} else {
			q.Set("sortOrder", "asc")
		}
	}
	if f.InStockOnly {
		q.Set("inStock", "true")
	}
	return q
}
