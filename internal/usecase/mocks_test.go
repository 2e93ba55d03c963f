package usecase_test

import (
	"context"

	"catalog/internal/domain/model"
	"catalog/internal/events"
	repo "catalog/internal/repository"

	"github.com/stretchr/testify/mock"
)

// =====================
// Mocks
// =====================

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) FindAll(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

func (m *ProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) FindByIDForUpdate(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) FindByCategory(ctx context.Context, category string) ([]model.Product, error) {
	args := m.Called(ctx, category)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

func (m *ProductRepoMock) Save(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	saved, _ := args.Get(0).(model.Product)
	return saved, args.Error(1)
}

func (m *ProductRepoMock) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type InventoryRepoMock struct{ mock.Mock }

func (m *InventoryRepoMock) CreateAdjustment(ctx context.Context, adj model.InventoryAdjustment) error {
	args := m.Called(ctx, adj)
	return args.Error(0)
}

func (m *InventoryRepoMock) ListAdjustments(ctx context.Context, productID int64, limit int) ([]model.InventoryAdjustment, error) {
	args := m.Called(ctx, productID, limit)
	items, _ := args.Get(0).([]model.InventoryAdjustment)
	return items, args.Error(1)
}

// WithinTxはそのままfnを呼ぶ（Txの中でも同じmockを使う）
type TxManagerMock struct {
	products  *ProductRepoMock
	inventory *InventoryRepoMock
}

type txReposMock struct {
	products  *ProductRepoMock
	inventory *InventoryRepoMock
}

func (r *txReposMock) Products() repo.ProductRepository    { return r.products }
func (r *txReposMock) Inventory() repo.InventoryRepository { return r.inventory }

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return fn(&txReposMock{products: m.products, inventory: m.inventory})
}

type PublisherMock struct{ mock.Mock }

func (m *PublisherMock) PublishStockChanged(ctx context.Context, ev events.StockChanged) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

func (m *PublisherMock) Close() error { return nil }
