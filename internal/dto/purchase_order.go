package dto

import (
	"github.com/SscSPs/vault_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreatePurchaseOrderRequest records goods received from a distributor.
// ProductID is optional; when set the item is restocked.
type CreatePurchaseOrderRequest struct {
	DistributorID   string          `json:"distributorID"`
	DistributorName string          `json:"distributorName" binding:"required_without=DistributorID"`
	ProductID       string          `json:"productID"`
	Quantity        int64           `json:"quantity" binding:"required,min=1"`
	UnitCost        decimal.Decimal `json:"unitCost" binding:"amount" swaggertype:"string" example:"12.50"`
}

// PayDebtRequest pays a distributor from one account. Without a purchase
// order the amount is spread by Allocation (fifo by default).
type PayDebtRequest struct {
	SourceAccountID string                `json:"sourceAccountID" binding:"required"`
	Amount          decimal.Decimal       `json:"amount" binding:"amount" swaggertype:"string" example:"300.00"`
	PurchaseOrderID string                `json:"purchaseOrderID"`
	Allocation      domain.DebtAllocation `json:"allocation" binding:"omitempty,oneof=fifo proportional"`
	Concept         string                `json:"concept" binding:"max=500"`
}
