package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ktecheletronicos/loja/internal/domain"
	"github.com/ktecheletronicos/loja/internal/event"
	"github.com/ktecheletronicos/loja/internal/repository"
	apperrors "github.com/ktecheletronicos/loja/pkg/errors"
)

// ToggleAction reports what Toggle did with the product.
type ToggleAction string

const (
	ToggleAdded   ToggleAction = "added"
	ToggleRemoved ToggleAction = "removed"
)

// ProductFinder resolves a product slug to its current catalog entry.
// The catalog service satisfies it.
type ProductFinder interface {
	Get(slug string) (domain.Product, error)
}

// Service implements the cart business logic. Toggle semantics mirror the
// storefront's add/remove button: a product is either in the cart or not,
// and adding always starts at quantity 1 at the top of the list.
type Service struct {
	repo     repository.CartRepository
	products ProductFinder
	producer *event.Producer
	logger   *slog.Logger
	cartTTL  time.Duration
}

// NewService creates a new cart service.
func NewService(repo repository.CartRepository, products ProductFinder, producer *event.Producer, logger *slog.Logger, cartTTL time.Duration) *Service {
	return &Service{
		repo:     repo,
		products: products,
		producer: producer,
		logger:   logger,
		cartTTL:  cartTTL,
	}
}

// Get retrieves the cart for a session. A missing cart is an empty cart,
// never an error.
func (s *Service) Get(ctx context.Context, sessionID string) (*domain.Cart, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}

	cart, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return s.newEmptyCart(sessionID), nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}

	return cart, nil
}

// Toggle adds the product to the cart with quantity 1, or removes it when
// it is already there. New items are prepended so the most recent addition
// shows first.
func (s *Service) Toggle(ctx context.Context, sessionID, slug string) (*domain.Cart, ToggleAction, error) {
	if sessionID == "" {
		return nil, "", apperrors.InvalidInput("session id is required")
	}
	if slug == "" {
		return nil, "", apperrors.InvalidInput("product slug is required")
	}

	cart, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, "", err
	}

	var action ToggleAction
	if idx := cart.FindItemIndex(slug); idx >= 0 {
		cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
		action = ToggleRemoved
	} else {
		product, err := s.products.Get(slug)
		if err != nil {
			return nil, "", err
		}
		item := domain.CartItem{
			Slug:      product.Slug,
			Name:      product.Name,
			PhotoURL:  product.PhotoURL,
			UnitPrice: product.SalePrice,
			Quantity:  1,
		}
		cart.Items = append([]domain.CartItem{item}, cart.Items...)
		action = ToggleAdded
	}

	if err := s.save(ctx, cart); err != nil {
		return nil, "", err
	}

	s.publishUpdated(ctx, cart)
	return cart, action, nil
}

// ChangeQuantity adjusts the quantity of a cart line by delta. The quantity
// never drops below 1; removing a line goes through Toggle or Remove.
func (s *Service) ChangeQuantity(ctx context.Context, sessionID, slug string, delta int) (*domain.Cart, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}

	cart, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	idx := cart.FindItemIndex(slug)
	if idx < 0 {
		return nil, apperrors.NotFound("cart item", slug)
	}

	qty := cart.Items[idx].Quantity + delta
	if qty < 1 {
		qty = 1
	}
	cart.Items[idx].Quantity = qty

	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}

	s.publishUpdated(ctx, cart)
	return cart, nil
}

// Remove deletes a cart line.
func (s *Service) Remove(ctx context.Context, sessionID, slug string) (*domain.Cart, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}

	cart, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	idx := cart.FindItemIndex(slug)
	if idx < 0 {
		return nil, apperrors.NotFound("cart item", slug)
	}
	cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)

	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}

	s.publishUpdated(ctx, cart)
	return cart, nil
}

// Clear deletes the whole cart for a session.
func (s *Service) Clear(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return apperrors.InvalidInput("session id is required")
	}

	if err := s.repo.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}

	if s.producer != nil {
		if err := s.producer.PublishCartCleared(ctx, sessionID); err != nil {
			s.logger.WarnContext(ctx, "publish cart.cleared failed",
				slog.String("error", err.Error()),
			)
		}
	}
	return nil
}

func (s *Service) save(ctx context.Context, cart *domain.Cart) error {
	now := time.Now().UTC()
	cart.UpdatedAt = now
	cart.ExpiresAt = now.Add(s.cartTTL)

	if err := s.repo.Save(ctx, cart); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

// publishUpdated emits cart.updated. Event delivery never fails a cart
// operation.
func (s *Service) publishUpdated(ctx context.Context, cart *domain.Cart) {
	if s.producer == nil {
		return
	}
	if err := s.producer.PublishCartUpdated(ctx, cart); err != nil {
		s.logger.WarnContext(ctx, "publish cart.updated failed",
			slog.String("error", err.Error()),
		)
	}
}

func (s *Service) newEmptyCart(sessionID string) *domain.Cart {
	now := time.Now().UTC()
	return &domain.Cart{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Items:     []domain.CartItem{},
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(s.cartTTL),
	}
}
