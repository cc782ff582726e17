package dto

import "github.com/shopspring/decimal"

// CreateSaleRequest registers a sale. Either ClientID or ClientName must be
// set; an unknown name creates the client.
type CreateSaleRequest struct {
	ClientID         string          `json:"clientID"`
	ClientName       string          `json:"clientName" binding:"required_without=ClientID"`
	ProductID        string          `json:"productID" binding:"required"`
	Quantity         int64           `json:"quantity" binding:"required,min=1"`
	UnitSalePrice    decimal.Decimal `json:"unitSalePrice" binding:"amount" swaggertype:"string" example:"30.00"`
	UnitCostPrice    decimal.Decimal `json:"unitCostPrice" binding:"nonneg" swaggertype:"string" example:"18.00"`
	UnitFreightPrice decimal.Decimal `json:"unitFreightPrice" binding:"nonneg" swaggertype:"string" example:"2.00"`
	InitialPayment   decimal.Decimal `json:"initialPayment" binding:"nonneg" swaggertype:"string" example:"100.00"`
}

// RegisterPaymentRequest adds a client payment to a sale.
type RegisterPaymentRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"amount" swaggertype:"string" example:"50.00"`
}

// CancelSaleRequest cancels an active sale.
type CancelSaleRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// PreviewDistributionRequest computes a split without writing anything.
type PreviewDistributionRequest struct {
	UnitSalePrice    decimal.Decimal `json:"unitSalePrice" binding:"amount" swaggertype:"string"`
	UnitCostPrice    decimal.Decimal `json:"unitCostPrice" binding:"nonneg" swaggertype:"string"`
	UnitFreightPrice decimal.Decimal `json:"unitFreightPrice" binding:"nonneg" swaggertype:"string"`
	Quantity         int64           `json:"quantity" binding:"required,min=1"`
	Paid             decimal.Decimal `json:"paid" binding:"nonneg" swaggertype:"string"`
}
