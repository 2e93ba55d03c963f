// Package memstore はプロセス内メモリに商品と在庫履歴を保持するストア。
// STORE_DRIVER=memory とテストで使う。
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"catalog/internal/domain/model"
	repo "catalog/internal/repository"
)

const (
	defaultAdjustmentLimit = 50
	maxAdjustmentLimit     = 200
)

type state struct {
	products         map[int64]model.Product
	adjustments      []model.InventoryAdjustment
	nextProductID    int64
	nextAdjustmentID int64
}

func (s state) clone() state {
	products := make(map[int64]model.Product, len(s.products))
	for id, p := range s.products {
		products[id] = p
	}
	adjustments := make([]model.InventoryAdjustment, len(s.adjustments))
	copy(adjustments, s.adjustments)

	return state{
		products:         products,
		adjustments:      adjustments,
		nextProductID:    s.nextProductID,
		nextAdjustmentID: s.nextAdjustmentID,
	}
}

// Store は ProductRepository / InventoryRepository / TransactionManager を兼ねる。
type Store struct {
	// 書き込みとTxを直列化する
	writeMu sync.Mutex

	mu  sync.RWMutex
	st  state
	now func() time.Time
}

func New() *Store {
	return &Store{
		st: state{
			products:         make(map[int64]model.Product),
			nextProductID:    1,
			nextAdjustmentID: 1,
		},
		now: time.Now,
	}
}

var (
	_ repo.ProductRepository   = (*Store)(nil)
	_ repo.InventoryRepository = (*Store)(nil)
	_ repo.TransactionManager  = (*Store)(nil)
)

func (s *Store) FindAll(ctx context.Context) ([]model.Product, error) {
	return s.filter(ctx, func(model.Product) bool { return true })
}

func (s *Store) FindByID(ctx context.Context, id int64) (model.Product, error) {
	if err := ctx.Err(); err != nil {
		return model.Product{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.st.products[id]
	if !ok {
		return model.Product{}, repo.ErrNotFound
	}
	return p, nil
}

// Tx中はwriteMuで直列化済みなのでFindByIDと同じ
func (s *Store) FindByIDForUpdate(ctx context.Context, id int64) (model.Product, error) {
	return s.FindByID(ctx, id)
}

func (s *Store) FindByCategory(ctx context.Context, category string) ([]model.Product, error) {
	return s.filter(ctx, func(p model.Product) bool { return p.Category == category })
}

func (s *Store) Save(ctx context.Context, p model.Product) (model.Product, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.save(ctx, p)
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.st.products)), nil
}

func (s *Store) CreateAdjustment(ctx context.Context, adj model.InventoryAdjustment) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.createAdjustment(ctx, adj)
}

func (s *Store) ListAdjustments(ctx context.Context, productID int64, limit int) ([]model.InventoryAdjustment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > maxAdjustmentLimit {
		limit = defaultAdjustmentLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []model.InventoryAdjustment{}
	for i := len(s.st.adjustments) - 1; i >= 0 && len(out) < limit; i-- {
		if s.st.adjustments[i].ProductID == productID {
			out = append(out, s.st.adjustments[i])
		}
	}
	return out, nil
}

// fnがエラーを返したらTx開始時点の状態に戻す
func (s *Store) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.RLock()
	snapshot := s.st.clone()
	s.mu.RUnlock()

	if err := fn(&txView{s: s}); err != nil {
		s.mu.Lock()
		s.st = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) filter(ctx context.Context, keep func(model.Product) bool) ([]model.Product, error) {
	if err := ctx.Err(); err != nil {
		return []model.Product{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []model.Product{}
	for _, p := range s.st.products {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// writeMuを持っている前提
func (s *Store) save(ctx context.Context, p model.Product) (model.Product, error) {
	if err := ctx.Err(); err != nil {
		return model.Product{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if p.ID == 0 {
		p.ID = s.st.nextProductID
	}
	if p.ID >= s.st.nextProductID {
		s.st.nextProductID = p.ID + 1
	}

	if prev, ok := s.st.products[p.ID]; ok {
		p.CreatedAt = prev.CreatedAt
	} else if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	s.st.products[p.ID] = p
	return p, nil
}

// writeMuを持っている前提
func (s *Store) createAdjustment(ctx context.Context, adj model.InventoryAdjustment) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	adj.ID = s.st.nextAdjustmentID
	s.st.nextAdjustmentID++
	if adj.CreatedAt.IsZero() {
		adj.CreatedAt = s.now()
	}
	s.st.adjustments = append(s.st.adjustments, adj)
	return nil
}

// Tx内で渡すrepo。writeMuを取り直さない。
type txView struct {
	s *Store
}

func (v *txView) Products() repo.ProductRepository    { return txProducts{v.s} }
func (v *txView) Inventory() repo.InventoryRepository { return txInventory{v.s} }

type txProducts struct{ s *Store }

func (t txProducts) FindAll(ctx context.Context) ([]model.Product, error) {
	return t.s.FindAll(ctx)
}

func (t txProducts) FindByID(ctx context.Context, id int64) (model.Product, error) {
	return t.s.FindByID(ctx, id)
}

func (t txProducts) FindByIDForUpdate(ctx context.Context, id int64) (model.Product, error) {
	return t.s.FindByID(ctx, id)
}

func (t txProducts) FindByCategory(ctx context.Context, category string) ([]model.Product, error) {
	return t.s.FindByCategory(ctx, category)
}

func (t txProducts) Save(ctx context.Context, p model.Product) (model.Product, error) {
	return t.s.save(ctx, p)
}

func (t txProducts) Count(ctx context.Context) (int64, error) {
	return t.s.Count(ctx)
}

type txInventory struct{ s *Store }

func (t txInventory) CreateAdjustment(ctx context.Context, adj model.InventoryAdjustment) error {
	return t.s.createAdjustment(ctx, adj)
}

func (t txInventory) ListAdjustments(ctx context.Context, productID int64, limit int) ([]model.InventoryAdjustment, error) {
	return t.s.ListAdjustments(ctx, productID, limit)
}
