// Package repository defines the persistence interfaces consumed by the
// services. Implementations live in subpackages named after their backend.
package repository

import (
	"context"

	"github.com/ktecheletronicos/loja/internal/domain"
)

// CartRepository persists visitor carts keyed by session ID.
type CartRepository interface {
	Get(ctx context.Context, sessionID string) (*domain.Cart, error)
	Save(ctx context.Context, cart *domain.Cart) error
	Delete(ctx context.Context, sessionID string) error
}
