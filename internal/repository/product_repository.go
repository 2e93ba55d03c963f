package repository

import (
	"catalog/internal/domain/model"
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	// id昇順で全件
	FindAll(ctx context.Context) ([]model.Product, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)
	// Tx内で行ロックを取って取得
	FindByIDForUpdate(ctx context.Context, id int64) (model.Product, error)
	// categoryの完全一致（大文字小文字を区別）
	FindByCategory(ctx context.Context, category string) ([]model.Product, error)

	// idが0なら採番して作成、それ以外は上書き
	Save(ctx context.Context, p model.Product) (model.Product, error)
	Count(ctx context.Context) (int64, error)
}
