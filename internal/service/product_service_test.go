package service

import (
	"context"
	"testing"

	"pos-terminal/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProductValidatesBeforeCalling(t *testing.T) {
	h := newHarness(t, true)
	products := NewProductService(h.backend, h.auth)

	tests := []models.ProductInput{
		{Name: "", Price: 10000, Image: "a.png"},
		{Name: "Trà", Price: 0, Image: "a.png"},
		{Name: "Trà", Price: 10000, Image: " "},
	}
	for _, input := range tests {
		_, err := products.Create(context.Background(), input)
		assert.ErrorIs(t, err, ErrValidation)
	}
	assert.Equal(t, 0, h.backend.total())
}

func TestProductMutationsNeedToken(t *testing.T) {
	h := newHarness(t, false)
	products := NewProductService(h.backend, h.auth)

	_, err := products.Create(context.Background(), models.ProductInput{Name: "Trà", Price: 10000, Image: "a.png"})
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = products.Delete(context.Background(), "A")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Equal(t, 0, h.backend.total())

	_, err = products.Fetch(context.Background())
	assert.NoError(t, err)
}

func TestProductCacheFollowsMutations(t *testing.T) {
	h := newHarness(t, true)
	h.backend.products = []models.Product{productA, productB}
	products := NewProductService(h.backend, h.auth)

	list, err := products.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 2)

	created, err := products.Create(context.Background(), models.ProductInput{Name: "Sinh tố bơ", Price: 35000, Image: "bo.png"})
	require.NoError(t, err)
	assert.Len(t, products.List(), 3)

	_, err = products.Update(context.Background(), "A", models.ProductInput{Name: "Trà sữa trân châu", Price: 12000, Image: "a.png"})
	require.NoError(t, err)
	updated, ok := products.Get("A")
	require.True(t, ok)
	assert.Equal(t, int64(12000), updated.Price)

	_, err = products.Delete(context.Background(), created.ID)
	require.NoError(t, err)
	_, ok = products.Get(created.ID)
	assert.False(t, ok)
	assert.Len(t, products.List(), 2)
}

func TestSearchIsCaseInsensitive(t *testing.T) {
	h := newHarness(t, true)
	h.backend.products = []models.Product{productA, productB, productC}
	products := NewProductService(h.backend, h.auth)
	_, err := products.Fetch(context.Background())
	require.NoError(t, err)

	found := products.Search("TRÀ")
	require.Len(t, found, 1)
	assert.Equal(t, "A", found[0].ID)
	assert.Len(t, products.Search("  "), 3)
	assert.Empty(t, products.Search("phở"))
}

func TestStaleFetchDoesNotOverwriteNewer(t *testing.T) {
	h := newHarness(t, true)
	products := NewProductService(h.backend, h.auth)

	started := make(chan struct{})
	release := make(chan struct{})
	first := true
	h.backend.listProducts = func(ctx context.Context) ([]models.Product, error) {
		if first {
			first = false
			close(started)
			<-release
			return []models.Product{productA}, nil
		}
		return []models.Product{productA, productB, productC}, nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = products.Fetch(context.Background())
	}()
	<-started

	list, err := products.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 3)

	close(release)
	<-done
	assert.Len(t, products.List(), 3)
}
