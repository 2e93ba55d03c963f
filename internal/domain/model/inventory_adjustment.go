package model

import "time"

// 在庫操作の種類
type AdjustmentKind string

const (
	//在庫を指定値で上書き
	AdjustmentKindSetStock AdjustmentKind = "SET_STOCK"
	//入荷分を加算
	AdjustmentKindReceiveShipment AdjustmentKind = "RECEIVE_SHIPMENT"
)

//在庫調整の履歴

type InventoryAdjustment struct {
	ID          int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID   int64          `gorm:"not null;index" json:"product_id"`
	Kind        AdjustmentKind `gorm:"type:varchar(32);not null" json:"kind"`
	Quantity    int64          `gorm:"not null" json:"quantity"`
	StockBefore int64          `gorm:"not null" json:"stock_before"`
	StockAfter  int64          `gorm:"not null" json:"stock_after"`
	Delta       int64          `gorm:"not null" json:"delta"`
	ActorID     string         `gorm:"type:varchar(255);not null" json:"actor_id"`
	CreatedAt   time.Time      `gorm:"not null;autoCreateTime;index" json:"created_at"`
}
