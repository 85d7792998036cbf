package usecase

import (
	"context"
	"strings"

	"storefront/internal/auth"
	"storefront/internal/domain"
)

// AccountUsecase forwards signed-in account actions to the backend.
type AccountUsecase struct {
	backend domain.Backend
}

func NewAccountUsecase(backend domain.Backend) *AccountUsecase {
	return &AccountUsecase{backend: backend}
}

func requireUser(ctx context.Context) (*auth.Identity, error) {
	id := auth.FromContext(ctx)
	if !id.IsAuthenticated() {
		return nil, domain.Unauthorized("please sign in")
	}
	return id, nil
}

func (u *AccountUsecase) MyOrders(ctx context.Context) ([]domain.Order, error) {
	id, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	orders, err := u.backend.ListOrders(ctx, id.UserID)
	if err != nil {
		return nil, backendErr("orders.ListOrders", err)
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}

func (u *AccountUsecase) SaveAddress(ctx context.Context, addr domain.Address) (*domain.Address, error) {
	id, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	addr.UserID = id.UserID
	addr.Country = strings.ToUpper(strings.TrimSpace(addr.Country))
	if err := validateInput(addr); err != nil {
		return nil, err
	}
	res, err := u.backend.SaveAddress(ctx, addr)
	return unwrapResult("addresses.SaveAddress", res, err)
}

func (u *AccountUsecase) DeleteAddress(ctx context.Context, addressID string) error {
	id, err := requireUser(ctx)
	if err != nil {
		return err
	}
	if addressID == "" {
		return domain.InvalidInput("address id is required")
	}
	res, err := u.backend.DeleteAddress(ctx, id.UserID, addressID)
	if err != nil {
		return backendErr("addresses.DeleteAddress", err)
	}
	if !res.Success {
		return domain.Rejected(res.Error)
	}
	return nil
}

func (u *AccountUsecase) AddReview(ctx context.Context, review domain.Review) (*domain.Review, error) {
	id, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if review.ProductID == "" {
		return nil, domain.InvalidInput("product id is required")
	}
	review.UserID = id.UserID
	review.Comment = strings.TrimSpace(review.Comment)
	if err := validateInput(review); err != nil {
		return nil, err
	}
	res, err := u.backend.CreateReview(ctx, review)
	return unwrapResult("reviews.CreateReview", res, err)
}

func (u *AccountUsecase) OpenTicket(ctx context.Context, ticket domain.Ticket) (*domain.Ticket, error) {
	id, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	ticket.UserID = id.UserID
	ticket.Status = domain.TicketStatusOpen
	ticket.Subject = strings.TrimSpace(ticket.Subject)
	if err := validateInput(ticket); err != nil {
		return nil, err
	}
	res, err := u.backend.OpenTicket(ctx, ticket)
	return unwrapResult("tickets.OpenTicket", res, err)
}

// unwrapResult turns a mutation envelope into a value or an error.
func unwrapResult[T any](op string, res domain.MutationResult[T], err error) (*T, error) {
	if err != nil {
		return nil, backendErr(op, err)
	}
	if !res.Success {
		return nil, domain.Rejected(res.Error)
	}
	if res.Data == nil {
		return nil, domain.Remote(op, errEmptyResult)
	}
	return res.Data, nil
}
