package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"catalog/internal/domain/model"
	"catalog/internal/events"
	"catalog/internal/observability"
	repo "catalog/internal/repository"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type ProductUsecase struct {
	productRepo   repo.ProductRepository
	inventoryRepo repo.InventoryRepository
	txm           repo.TransactionManager
	publisher     events.Publisher
	metrics       *observability.Metrics
	logger        *zap.Logger
	tracer        trace.Tracer
	now           func() time.Time
}

// DI
func NewProductUsecase(
	productRepo repo.ProductRepository,
	inventoryRepo repo.InventoryRepository,
	txm repo.TransactionManager,
	publisher events.Publisher,
	metrics *observability.Metrics,
	logger *zap.Logger,
	tracer trace.Tracer,
) *ProductUsecase {
	return &ProductUsecase{
		productRepo:   productRepo,
		inventoryRepo: inventoryRepo,
		txm:           txm,
		publisher:     publisher,
		metrics:       metrics,
		logger:        logger,
		tracer:        tracer,
		now:           time.Now,
	}
}

// 全商品（id昇順）
func (u *ProductUsecase) ListProducts(ctx context.Context) ([]model.Product, error) {
	ctx, span := u.tracer.Start(ctx, "ProductUsecase.ListProducts")
	defer span.End()

	items, err := u.productRepo.FindAll(ctx)
	if err != nil {
		return nil, u.dbError(span, "list products", err)
	}

	span.SetAttributes(attribute.Int("catalog.result_count", len(items)))
	return items, nil
}

// categoryの完全一致。該当なしは空配列でエラーにしない。
func (u *ProductUsecase) ListProductsByCategory(ctx context.Context, category string) ([]model.Product, error) {
	ctx, span := u.tracer.Start(ctx, "ProductUsecase.ListProductsByCategory")
	defer span.End()
	span.SetAttributes(attribute.String("catalog.category", category))

	items, err := u.productRepo.FindByCategory(ctx, category)
	if err != nil {
		return nil, u.dbError(span, "list products by category", err)
	}
	if items == nil {
		items = []model.Product{}
	}

	span.SetAttributes(attribute.Int("catalog.result_count", len(items)))
	return items, nil
}

func (u *ProductUsecase) GetProduct(ctx context.Context, productID int64) (model.Product, error) {
	ctx, span := u.tracer.Start(ctx, "ProductUsecase.GetProduct")
	defer span.End()
	span.SetAttributes(attribute.Int64("product.id", productID))

	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		span.SetStatus(codes.Error, "product not found")
		return model.Product{}, errProductNotFound()
	}
	if err != nil {
		return model.Product{}, u.dbError(span, "get product", err)
	}
	return p, nil
}

type CreateProductInput struct {
	Name     string
	Category string
	Price    decimal.Decimal
	Stock    int64
}

func (u *ProductUsecase) CreateProduct(ctx context.Context, in CreateProductInput) (model.Product, error) {
	ctx, span := u.tracer.Start(ctx, "ProductUsecase.CreateProduct")
	defer span.End()

	if strings.TrimSpace(in.Name) == "" {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "name required")
	}
	if in.Price.IsNegative() {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "price must be >= 0")
	}
	if in.Stock < 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}

	p, err := u.productRepo.Save(ctx, model.Product{
		Name:     strings.TrimSpace(in.Name),
		Category: in.Category,
		Price:    in.Price,
		Stock:    in.Stock,
	})
	if err != nil {
		return model.Product{}, u.dbError(span, "create product", err)
	}

	span.SetAttributes(attribute.Int64("product.id", p.ID))
	u.logger.Info("product created", zap.Int64("product_id", p.ID), zap.String("category", p.Category))
	return p, nil
}

// 在庫を newStock で上書きする（加算しない）
func (u *ProductUsecase) SetStock(ctx context.Context, actorID string, productID int64, newStock int64) (model.Product, error) {
	return u.adjustStock(ctx, actorID, productID, model.AdjustmentKindSetStock, newStock, func(int64) int64 {
		return newStock
	})
}

// 入荷：現在の在庫に quantity を足す
func (u *ProductUsecase) ReceiveShipment(ctx context.Context, actorID string, productID int64, quantity int64) (model.Product, error) {
	return u.adjustStock(ctx, actorID, productID, model.AdjustmentKindReceiveShipment, quantity, func(current int64) int64 {
		return current + quantity
	})
}

// 商品ごとの在庫調整履歴（新しい順）
func (u *ProductUsecase) ListAdjustments(ctx context.Context, productID int64, limit int) ([]model.InventoryAdjustment, error) {
	ctx, span := u.tracer.Start(ctx, "ProductUsecase.ListAdjustments")
	defer span.End()
	span.SetAttributes(attribute.Int64("product.id", productID))

	if _, err := u.productRepo.FindByID(ctx, productID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errProductNotFound()
		}
		return nil, u.dbError(span, "find product", err)
	}

	items, err := u.inventoryRepo.ListAdjustments(ctx, productID, limit)
	if err != nil {
		return nil, u.dbError(span, "list adjustments", err)
	}
	return items, nil
}

// 空のときだけ初期データを入れる。入れた件数を返す。
func (u *ProductUsecase) Seed(ctx context.Context) (int, error) {
	ctx, span := u.tracer.Start(ctx, "ProductUsecase.Seed")
	defer span.End()

	n, err := u.productRepo.Count(ctx)
	if err != nil {
		return 0, u.dbError(span, "count products", err)
	}
	if n > 0 {
		u.logger.Info("seed skipped", zap.Int64("existing", n))
		return 0, nil
	}

	seeds := model.SeedProducts()
	err = u.txm.WithinTx(ctx, func(r repo.TxRepos) error {
		for _, p := range seeds {
			if _, err := r.Products().Save(ctx, p); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, u.dbError(span, "seed products", err)
	}

	u.logger.Info("seed products inserted", zap.Int("count", len(seeds)))
	return len(seeds), nil
}

// 在庫の読み取り→計算→保存→履歴作成を1Txで行う
func (u *ProductUsecase) adjustStock(
	ctx context.Context,
	actorID string,
	productID int64,
	kind model.AdjustmentKind,
	quantity int64,
	apply func(current int64) int64,
) (model.Product, error) {
	ctx, span := u.tracer.Start(ctx, "ProductUsecase."+spanName(kind))
	defer span.End()
	span.SetAttributes(
		attribute.Int64("product.id", productID),
		attribute.String("inventory.kind", string(kind)),
		attribute.Int64("inventory.quantity", quantity),
	)

	if strings.TrimSpace(actorID) == "" {
		actorID = model.AnonymousActor
	}

	var updated model.Product
	var adj model.InventoryAdjustment

	err := u.txm.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Products().FindByIDForUpdate(ctx, productID)
		if err != nil {
			return err
		}

		before := p.Stock
		p.Stock = apply(before)

		saved, err := r.Products().Save(ctx, p)
		if err != nil {
			return err
		}

		adj = model.InventoryAdjustment{
			ProductID:   productID,
			Kind:        kind,
			Quantity:    quantity,
			StockBefore: before,
			StockAfter:  saved.Stock,
			Delta:       saved.Stock - before,
			ActorID:     actorID,
			CreatedAt:   u.now(),
		}
		if err := r.Inventory().CreateAdjustment(ctx, adj); err != nil {
			return err
		}

		updated = saved
		return nil
	})
	if errors.Is(err, repo.ErrNotFound) {
		u.metrics.StockOperations.WithLabelValues(string(kind), "not_found").Inc()
		span.SetStatus(codes.Error, "product not found")
		return model.Product{}, errProductNotFound()
	}
	if err != nil {
		u.metrics.StockOperations.WithLabelValues(string(kind), "error").Inc()
		return model.Product{}, u.dbError(span, "adjust stock", err)
	}

	u.metrics.StockOperations.WithLabelValues(string(kind), "ok").Inc()
	if kind == model.AdjustmentKindReceiveShipment && quantity > 0 {
		u.metrics.ShipmentUnits.WithLabelValues(updated.Category).Add(float64(quantity))
	}
	span.SetAttributes(
		attribute.Int64("inventory.stock_before", adj.StockBefore),
		attribute.Int64("inventory.stock_after", adj.StockAfter),
	)
	span.SetStatus(codes.Ok, "")

	u.logger.Info("stock adjusted",
		zap.Int64("product_id", productID),
		zap.String("kind", string(kind)),
		zap.Int64("stock_before", adj.StockBefore),
		zap.Int64("stock_after", adj.StockAfter),
		zap.String("actor", actorID),
	)

	u.publishStockChanged(ctx, adj, updated.Category)
	return updated, nil
}

// commit後に流す。失敗しても呼び出し元には返さない。
func (u *ProductUsecase) publishStockChanged(ctx context.Context, adj model.InventoryAdjustment, category string) {
	ev := events.NewStockChanged(adj, category, u.now())
	if err := u.publisher.PublishStockChanged(ctx, ev); err != nil {
		u.metrics.EventFailures.Inc()
		u.logger.Warn("publish stock changed failed",
			zap.Int64("product_id", adj.ProductID),
			zap.String("event_id", ev.EventID),
			zap.Error(err),
		)
	}
}

func (u *ProductUsecase) dbError(span trace.Span, op string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, op)
	u.logger.Error(op+" failed", zap.Error(err))
	return wrapHTTPError(http.StatusInternalServerError, "db error", err)
}

func spanName(kind model.AdjustmentKind) string {
	switch kind {
	case model.AdjustmentKindSetStock:
		return "SetStock"
	case model.AdjustmentKindReceiveShipment:
		return "ReceiveShipment"
	default:
		return "AdjustStock"
	}
}
