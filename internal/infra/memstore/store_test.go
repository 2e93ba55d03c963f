package memstore_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"catalog/internal/domain/model"
	"catalog/internal/infra/memstore"
	repo "catalog/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded(t *testing.T) *memstore.Store {
	t.Helper()
	s := memstore.New()
	for _, p := range model.SeedProducts() {
		_, err := s.Save(context.Background(), p)
		require.NoError(t, err)
	}
	return s
}

func TestStore_Save_AssignsIDs(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()

	a, err := s.Save(ctx, model.Product{Name: "A", Category: "X", Price: decimal.NewFromInt(1)})
	require.NoError(t, err)
	b, err := s.Save(ctx, model.Product{Name: "B", Category: "X"})
	require.NoError(t, err)

	assert.Equal(t, int64(1), a.ID)
	assert.Equal(t, int64(2), b.ID)
	assert.False(t, a.CreatedAt.IsZero())
}

func TestStore_Save_OverwritesByID(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	p, err := s.FindByID(ctx, 1)
	require.NoError(t, err)
	created := p.CreatedAt

	p.Stock = 99
	_, err = s.Save(ctx, p)
	require.NoError(t, err)

	got, err := s.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(99), got.Stock)
	assert.Equal(t, created, got.CreatedAt)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestStore_FindByID_NotFound(t *testing.T) {
	s := seeded(t)

	_, err := s.FindByID(context.Background(), 42)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestStore_FindByCategory_ExactMatch(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	got, err := s.FindByCategory(ctx, "Electronics")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Laptop", got[0].Name)
	assert.Equal(t, "SmartPhone", got[1].Name)

	got, err = s.FindByCategory(ctx, "electronics")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestStore_FindAll_OrderedByID(t *testing.T) {
	s := seeded(t)

	got, err := s.FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 4)
	for i, p := range got {
		assert.Equal(t, int64(i+1), p.ID)
	}
}

func TestStore_WithinTx_RollsBackOnError(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Products().FindByIDForUpdate(ctx, 1)
		if err != nil {
			return err
		}
		p.Stock = 0
		if _, err := r.Products().Save(ctx, p); err != nil {
			return err
		}
		if err := r.Inventory().CreateAdjustment(ctx, model.InventoryAdjustment{ProductID: 1}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	p, err := s.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(10), p.Stock)

	adjs, err := s.ListAdjustments(ctx, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, adjs)
}

func TestStore_ListAdjustments_NewestFirst(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		require.NoError(t, s.CreateAdjustment(ctx, model.InventoryAdjustment{ProductID: 1, Quantity: i}))
	}
	require.NoError(t, s.CreateAdjustment(ctx, model.InventoryAdjustment{ProductID: 2, Quantity: 7}))

	got, err := s.ListAdjustments(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(3), got[0].Quantity)
	assert.Equal(t, int64(2), got[1].Quantity)
}

func TestStore_WithinTx_Serialises(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.WithinTx(ctx, func(r repo.TxRepos) error {
				p, err := r.Products().FindByIDForUpdate(ctx, 1)
				if err != nil {
					return err
				}
				p.Stock++
				_, err = r.Products().Save(ctx, p)
				return err
			})
		}()
	}
	wg.Wait()

	p, err := s.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(60), p.Stock)
}
