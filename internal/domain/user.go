package domain

import (
	"context"
	"time"
)

type Address struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
	Label  string `json:"label" validate:"max=40"` // "Home", "Office"

	// Recipient
	FirstName string `json:"firstName" validate:"required,max=80"`
	LastName  string `json:"lastName" validate:"max=80"`
	Phone     string `json:"phone" validate:"required,max=32"`

	// Location
	AddressLine string `json:"addressLine" validate:"required,max=255"`
	City        string `json:"city" validate:"required,max=80"`
	Region      string `json:"region" validate:"max=80"`
	PostalCode  string `json:"postalCode" validate:"max=20"`
	Country     string `json:"country" validate:"omitempty,len=2"`

	IsDefault bool      `json:"isDefault"`
	CreatedAt time.Time `json:"createdAt"`
}

type Review struct {
	ID        string    `json:"id"`
	ProductID string    `json:"productId"`
	UserID    string    `json:"userId"`
	Rating    int       `json:"rating" validate:"required,min=1,max=5"`
	Comment   string    `json:"comment" validate:"max=2000"`
	CreatedAt time.Time `json:"createdAt"`
}

type Ticket struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Subject   string    `json:"subject" validate:"required,max=200"`
	Message   string    `json:"message" validate:"required,max=5000"`
	OrderID   string    `json:"orderId,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

type Reviews interface {
	CreateReview(ctx context.Context, review Review) (MutationResult[Review], error)
}

type Addresses interface {
	SaveAddress(ctx context.Context, addr Address) (MutationResult[Address], error)
	DeleteAddress(ctx context.Context, userID, id string) (MutationResult[Address], error)
}

type Tickets interface {
	OpenTicket(ctx context.Context, ticket Ticket) (MutationResult[Ticket], error)
}

// Backend bundles every remote port one backend adapter serves.
type Backend interface {
	Catalog
	Orders
	Coupons
	Reviews
	Addresses
	Tickets
}
