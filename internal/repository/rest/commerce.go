package rest

import (
	"context"
	"net/http"
	"net/url"

	"storefront/internal/domain"
)

func (c *Client) CreateOrder(ctx context.Context, req domain.OrderRequest) (domain.MutationResult[domain.Order], error) {
	return mutate[domain.Order](ctx, c, "rest.CreateOrder", http.MethodPost, "/orders", req)
}

func (c *Client) ListOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	var orders []domain.Order
	q := url.Values{"userId": {userID}}
	if err := c.query(ctx, "rest.ListOrders", "/orders", q, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) ValidateCoupon(ctx context.Context, code string) (domain.MutationResult[domain.Coupon], error) {
	body := map[string]string{"code": code}
	return mutate[domain.Coupon](ctx, c, "rest.ValidateCoupon", http.MethodPost, "/coupons/validate", body)
}

func (c *Client) CreateReview(ctx context.Context, review domain.Review) (domain.MutationResult[domain.Review], error) {
	path := "/products/" + url.PathEscape(review.ProductID) + "/reviews"
	return mutate[domain.Review](ctx, c, "rest.CreateReview", http.MethodPost, path, review)
}

func (c *Client) SaveAddress(ctx context.Context, addr domain.Address) (domain.MutationResult[domain.Address], error) {
	if addr.ID == "" {
		return mutate[domain.Address](ctx, c, "rest.SaveAddress", http.MethodPost, "/addresses", addr)
	}
	return mutate[domain.Address](ctx, c, "rest.SaveAddress", http.MethodPut, "/addresses/"+url.PathEscape(addr.ID), addr)
}

func (c *Client) DeleteAddress(ctx context.Context, userID, id string) (domain.MutationResult[domain.Address], error) {
	return mutate[domain.Address](ctx, c, "rest.DeleteAddress", http.MethodDelete, "/addresses/"+url.PathEscape(id), nil)
}

func (c *Client) OpenTicket(ctx context.Context, ticket domain.Ticket) (domain.MutationResult[domain.Ticket], error) {
	return mutate[domain.Ticket](ctx, c, "rest.OpenTicket", http.MethodPost, "/tickets", ticket)
}

var _ domain.Backend = (*Client)(nil)
