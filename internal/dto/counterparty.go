package dto

import (
	"time"

	"github.com/SscSPs/vault_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

type CreateCounterpartyRequest struct {
	Kind domain.CounterpartyKind `json:"kind" binding:"required,oneof=client distributor"`
	Name string                  `json:"name" binding:"required,max=200"`
}

type ListCounterpartiesParams struct {
	Kind domain.CounterpartyKind `form:"kind" binding:"omitempty,oneof=client distributor"`
}

// CounterpartyResponse includes the derived amount owed.
type CounterpartyResponse struct {
	CounterpartyID string                  `json:"counterpartyID"`
	Kind           domain.CounterpartyKind `json:"kind"`
	Name           string                  `json:"name"`
	TotalBilled    decimal.Decimal         `json:"totalBilled"`
	TotalPaid      decimal.Decimal         `json:"totalPaid"`
	TotalOwed      decimal.Decimal         `json:"totalOwed"`
	CreatedAt      time.Time               `json:"createdAt"`
	LastUpdatedAt  time.Time               `json:"lastUpdatedAt"`
}

func ToCounterpartyResponse(c *domain.Counterparty) CounterpartyResponse {
	return CounterpartyResponse{
		CounterpartyID: c.CounterpartyID,
		Kind:           c.Kind,
		Name:           c.Name,
		TotalBilled:    c.TotalBilled,
		TotalPaid:      c.TotalPaid,
		TotalOwed:      c.TotalOwed(),
		CreatedAt:      c.CreatedAt,
		LastUpdatedAt:  c.LastUpdatedAt,
	}
}

func ToCounterpartyResponses(cs []domain.Counterparty) []CounterpartyResponse {
	out := make([]CounterpartyResponse, len(cs))
	for i := range cs {
		out[i] = ToCounterpartyResponse(&cs[i])
	}
	return out
}
