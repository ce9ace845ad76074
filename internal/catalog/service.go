package catalog

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ktecheletronicos/loja/internal/domain"
	apperrors "github.com/ktecheletronicos/loja/pkg/errors"
	"github.com/ktecheletronicos/loja/pkg/pagination"
)

const cacheKey = "catalog:products"

// Config holds catalog refresh and caching settings.
type Config struct {
	// RefreshInterval is how often the feed is re-fetched.
	RefreshInterval time.Duration

	// CacheTTL bounds how long the Redis snapshot outlives a dead feed.
	CacheTTL time.Duration
}

// Service keeps an in-memory snapshot of the product catalog, refreshed
// from the feed on an interval and mirrored to Redis so a restart can
// serve products while the feed is down.
type Service struct {
	client *Client
	redis  *redis.Client
	logger *slog.Logger
	cfg    Config

	mu       sync.RWMutex
	products []domain.Product
	bySlug   map[string]domain.Product
	loadedAt time.Time
}

// NewService creates the catalog service. Call Run to start refreshing.
func NewService(client *Client, rdb *redis.Client, cfg Config, logger *slog.Logger) *Service {
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = 5 * time.Minute
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 30 * time.Hour
	}
	return &Service{
		client: client,
		redis:  rdb,
		logger: logger,
		cfg:    cfg,
		bySlug: map[string]domain.Product{},
	}
}

// Run loads the catalog and refreshes it until ctx is canceled. The initial
// load failure is not fatal: the service starts empty (or from the Redis
// snapshot) and keeps retrying on the refresh interval.
func (s *Service) Run(ctx context.Context) error {
	if err := s.Refresh(ctx); err != nil {
		s.logger.ErrorContext(ctx, "initial catalog load failed",
			slog.String("error", err.Error()),
		)
	}

	ticker := time.NewTicker(s.cfg.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.Refresh(ctx); err != nil {
				s.logger.ErrorContext(ctx, "catalog refresh failed",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

// Refresh fetches the feed and swaps the snapshot. When the feed fails and
// memory is still empty, the Redis snapshot is restored instead.
func (s *Service) Refresh(ctx context.Context) error {
	products, err := s.client.Fetch(ctx)
	if err != nil {
		if s.Count() == 0 {
			if cached, cacheErr := s.loadFromCache(ctx); cacheErr == nil && len(cached) > 0 {
				s.swap(cached)
				s.logger.WarnContext(ctx, "catalog served from cache snapshot",
					slog.Int("products", len(cached)),
				)
				return nil
			}
		}
		return err
	}

	s.swap(products)
	s.saveToCache(ctx, products)

	s.logger.InfoContext(ctx, "catalog refreshed",
		slog.Int("products", len(products)),
	)
	return nil
}

func (s *Service) swap(products []domain.Product) {
	bySlug := make(map[string]domain.Product, len(products))
	for _, p := range products {
		bySlug[p.Slug] = p
	}

	s.mu.Lock()
	s.products = products
	s.bySlug = bySlug
	s.loadedAt = time.Now().UTC()
	s.mu.Unlock()
}

func (s *Service) loadFromCache(ctx context.Context) ([]domain.Product, error) {
	data, err := s.redis.Get(ctx, cacheKey).Bytes()
	if err != nil {
		return nil, err
	}
	var products []domain.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *Service) saveToCache(ctx context.Context, products []domain.Product) {
	data, err := json.Marshal(products)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, cacheKey, data, s.cfg.CacheTTL).Err(); err != nil {
		s.logger.WarnContext(ctx, "catalog cache write failed",
			slog.String("error", err.Error()),
		)
	}
}

// All returns the current snapshot. Callers must not mutate it.
func (s *Service) All() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.products
}

// Count returns the number of products in the snapshot.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products)
}

// LoadedAt returns when the snapshot was last refreshed.
func (s *Service) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

// Get returns a product by slug.
func (s *Service) Get(slug string) (domain.Product, error) {
	s.mu.RLock()
	p, ok := s.bySlug[slug]
	s.mu.RUnlock()
	if !ok {
		return domain.Product{}, apperrors.NotFound("product", slug)
	}
	return p, nil
}

// List returns one page of the snapshot in feed order.
func (s *Service) List(params pagination.Params) pagination.Result[domain.Product] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start, end := params.Slice(len(s.products))
	page := make([]domain.Product, end-start)
	copy(page, s.products[start:end])

	return pagination.NewResult(page, len(s.products), params)
}
