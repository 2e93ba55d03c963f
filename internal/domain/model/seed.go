package model

import "github.com/shopspring/decimal"

// 初期投入する商品（4件）
func SeedProducts() []Product {
	price := decimal.RequireFromString("1200.00")
	return []Product{
		{Name: "Laptop", Category: "Electronics", Price: price, Stock: 10},
		{Name: "SmartPhone", Category: "Electronics", Price: price, Stock: 10},
		{Name: "Office Chair", Category: "Furniture", Price: price, Stock: 10},
		{Name: "Water Bottle", Category: "Accessories", Price: price, Stock: 10},
	}
}
