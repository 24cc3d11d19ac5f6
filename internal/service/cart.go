package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/robotics-league/internal/apperror"
	"github.com/sakif/robotics-league/internal/model"
	"github.com/sakif/robotics-league/internal/storage"
)

const maxLineQuantity = 99

// CartService keeps the storefront cart of a browser profile. The cart does
// not depend on being signed in.
type CartService struct {
	logger *slog.Logger
}

func NewCartService(logger *slog.Logger) *CartService {
	return &CartService{logger: logger}
}

// Get returns the cart; an absent cart is empty.
func (s *CartService) Get(ctx context.Context, local *storage.Local) ([]model.CartItem, error) {
	items, err := local.Cart(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/cart: reading cart: %w", err)
	}
	return items, nil
}

// Replace validates items and stores them as the whole cart.
// Lines with the same id are combined.
func (s *CartService) Replace(ctx context.Context, local *storage.Local, items []model.CartItem) ([]model.CartItem, error) {
	out := make([]model.CartItem, 0, len(items))
	index := make(map[int]int, len(items))

	for i, it := range items {
		field := fmt.Sprintf("items[%d]", i)
		switch {
		case it.ID <= 0:
			return nil, apperror.ValidationFailed(field, "item id must be positive")
		case it.Name == "":
			return nil, apperror.ValidationFailed(field, "item name is required")
		case it.Price < 0:
			return nil, apperror.ValidationFailed(field, "price must not be negative")
		case it.Quantity < 1:
			return nil, apperror.ValidationFailed(field, "quantity must be at least 1")
		case it.Quantity > maxLineQuantity:
			return nil, tooMany(it.Name)
		}

		j, ok := index[it.ID]
		if !ok {
			index[it.ID] = len(out)
			out = append(out, it)
			continue
		}
		// both operands are within 1..maxLineQuantity, so the sum cannot wrap
		if out[j].Quantity+it.Quantity > maxLineQuantity {
			return nil, tooMany(out[j].Name)
		}
		out[j].Quantity += it.Quantity
	}

	if err := local.SetCart(ctx, out); err != nil {
		return nil, fmt.Errorf("service/cart: saving cart: %w", err)
	}
	s.logger.Debug("cart saved", slog.String("profile_id", local.ProfileID()), slog.Int("lines", len(out)))
	return out, nil
}

func tooMany(name string) error {
	return apperror.ValidationFailed("quantity", fmt.Sprintf("at most %d of %s", maxLineQuantity, name))
}
