package usecase

import (
	"context"
	"errors"

	"storefront/internal/domain"
	"storefront/pkg/utils"
)

var errEmptyResult = errors.New("backend returned no data")

// backendErr keeps errors the adapters already classified and wraps the rest as remote failures.
func backendErr(op string, err error) error {
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return domain.Remote(op, err)
}

// validateInput runs struct tag validation and reports failures as invalid input.
func validateInput(v any) error {
	if err := utils.Validate(v); err != nil {
		return domain.InvalidInput(err.Error())
	}
	return nil
}

type noopTracker struct{}

func (noopTracker) TrackAddToCart(_ context.Context, _ string, _ domain.LineItem)     {}
func (noopTracker) TrackAddToWishlist(_ context.Context, _ string, _ domain.LineItem) {}
func (noopTracker) TrackPurchase(_ context.Context, _ string, _ *domain.Order)        {}

func trackerOrNoop(t domain.ConversionTracker) domain.ConversionTracker {
	if t == nil {
		return noopTracker{}
	}
	return t
}
