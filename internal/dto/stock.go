package dto

import "github.com/SscSPs/vault_ledger/internal/core/domain"

type CreateStockItemRequest struct {
	ProductID    string `json:"productID" binding:"required,max=100"`
	Name         string `json:"name" binding:"required,max=200"`
	OnHand       int64  `json:"onHand" binding:"min=0"`
	MinThreshold int64  `json:"minThreshold" binding:"min=0"`
}

type ValidateStockParams struct {
	Qty int64 `form:"qty"`
}

// StockItemResponse adds the derived availability figures.
type StockItemResponse struct {
	domain.StockItem
	Available int64 `json:"available"`
	LowStock  bool  `json:"lowStock"`
}

func ToStockItemResponse(item *domain.StockItem) StockItemResponse {
	return StockItemResponse{StockItem: *item, Available: item.Available(), LowStock: item.LowStock()}
}
