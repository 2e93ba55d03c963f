package repository

import (
	"catalog/internal/domain/model"
	"context"
)

type InventoryRepository interface {
	// 調整履歴作成
	CreateAdjustment(ctx context.Context, adjustment model.InventoryAdjustment) error

	// 商品ごとの履歴（新しい順）
	ListAdjustments(ctx context.Context, productID int64, limit int) ([]model.InventoryAdjustment, error)
}
