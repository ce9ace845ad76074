package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ktecheletronicos/loja/internal/domain"
	apperrors "github.com/ktecheletronicos/loja/pkg/errors"
)

func setupTestRedis(t *testing.T) (*CartRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	repo := NewCartRepository(client, 30*time.Hour)
	return repo, mr
}

func sampleCart() *domain.Cart {
	now := time.Now().UTC().Truncate(time.Millisecond)
	unitPrice := 189.9
	return &domain.Cart{
		ID:        "cart-001",
		SessionID: "sess-001",
		Items: []domain.CartItem{
			{
				Slug:      "memoria-ram-ddr4-8gb",
				Name:      "Memória RAM DDR4 8GB",
				PhotoURL:  "https://cdn.example.com/ram.jpg",
				UnitPrice: &unitPrice,
				Quantity:  2,
			},
		},
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(30 * time.Hour),
	}
}

func TestCartRepository_Get_Success(t *testing.T) {
	repo, mr := setupTestRedis(t)

	cart := sampleCart()
	data, err := json.Marshal(cart)
	require.NoError(t, err)

	require.NoError(t, mr.Set("cart:"+cart.SessionID, string(data)))

	got, err := repo.Get(context.Background(), cart.SessionID)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, got.ID)
	assert.Equal(t, cart.SessionID, got.SessionID)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "memoria-ram-ddr4-8gb", got.Items[0].Slug)
	require.NotNil(t, got.Items[0].UnitPrice)
	assert.Equal(t, 189.9, *got.Items[0].UnitPrice)
	assert.Equal(t, 2, got.Items[0].Quantity)
}

func TestCartRepository_Get_NotFound(t *testing.T) {
	repo, _ := setupTestRedis(t)

	got, err := repo.Get(context.Background(), "nonexistent-session")
	assert.Nil(t, got)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCartRepository_Get_InvalidJSON(t *testing.T) {
	repo, mr := setupTestRedis(t)

	require.NoError(t, mr.Set("cart:sess-bad", "{{not-valid-json"))

	got, err := repo.Get(context.Background(), "sess-bad")
	assert.Nil(t, got)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal cart")
}

func TestCartRepository_Save_SetsTTL(t *testing.T) {
	repo, mr := setupTestRedis(t)

	cart := sampleCart()
	require.NoError(t, repo.Save(context.Background(), cart))

	key := "cart:" + cart.SessionID
	assert.True(t, mr.Exists(key))
	assert.Equal(t, 30*time.Hour, mr.TTL(key))

	raw, err := mr.Get(key)
	require.NoError(t, err)

	var stored domain.Cart
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	assert.Equal(t, cart.ID, stored.ID)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, cart.Items[0].Slug, stored.Items[0].Slug)
}

func TestCartRepository_Save_UnpricedItem(t *testing.T) {
	repo, mr := setupTestRedis(t)

	cart := sampleCart()
	cart.Items[0].UnitPrice = nil
	require.NoError(t, repo.Save(context.Background(), cart))

	raw, err := mr.Get("cart:" + cart.SessionID)
	require.NoError(t, err)

	var stored domain.Cart
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	assert.Nil(t, stored.Items[0].UnitPrice)
}

func TestCartRepository_Delete(t *testing.T) {
	repo, mr := setupTestRedis(t)

	cart := sampleCart()
	require.NoError(t, repo.Save(context.Background(), cart))
	require.NoError(t, repo.Delete(context.Background(), cart.SessionID))

	assert.False(t, mr.Exists("cart:"+cart.SessionID))
}

func TestCartRepository_Delete_MissingKeyIsNoError(t *testing.T) {
	repo, _ := setupTestRedis(t)

	assert.NoError(t, repo.Delete(context.Background(), "never-existed"))
}
