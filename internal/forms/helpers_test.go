package forms

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bookhaven/storefront/internal/kvstore"
	"github.com/bookhaven/storefront/internal/store"
)

func newSeededService(t *testing.T) *store.Service {
	t.Helper()
	svc := store.NewService(kvstore.NewMemory(), nil)
	require.NoError(t, svc.Initialize(store.InitOptions{SeedCatalog: true}))
	return svc
}
