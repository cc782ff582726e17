package dto

import "github.com/shopspring/decimal"

type TransferRequest struct {
	SourceAccountID string          `json:"sourceAccountID" binding:"required"`
	DestAccountID   string          `json:"destAccountID" binding:"required"`
	Amount          decimal.Decimal `json:"amount" binding:"amount" swaggertype:"string" example:"250.00"`
	Concept         string          `json:"concept" binding:"max=500"`
}

// MovementRequest records an expense or an income on one account.
type MovementRequest struct {
	AccountID string          `json:"accountID" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"amount" swaggertype:"string" example:"75.00"`
	Concept   string          `json:"concept" binding:"required,max=500"`
}
