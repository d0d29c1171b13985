package bindings

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/bookhaven/storefront/internal/entities"
	"github.com/bookhaven/storefront/internal/kvstore"
	"github.com/bookhaven/storefront/internal/store"
)

func setupService(t *testing.T) (*store.Service, *kvstore.Memory) {
	t.Helper()
	kv := kvstore.NewMemory()
	svc := store.NewService(kv, nil)
	require.NoError(t, svc.Initialize(store.InitOptions{SeedCatalog: true}))
	return svc, kv
}

func setupCart(t *testing.T) (*Cart, *store.Service, *kvstore.Memory) {
	t.Helper()
	svc, kv := setupService(t)
	cart, err := NewCart(kv, svc.Books, svc, DefaultShippingFee)
	require.NoError(t, err)
	return cart, svc, kv
}

func catalogBook(t *testing.T, svc *store.Service, id string) entities.Book {
	t.Helper()
	book, found, err := svc.Books.Get(id)
	require.NoError(t, err)
	require.True(t, found)
	return book
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ptr[T any](v T) *T {
	return &v
}
