package mapping

import (
	"github.com/SscSPs/vault_ledger/internal/core/domain"
	"github.com/SscSPs/vault_ledger/internal/models"
)

// ToModelSale flattens the two distributions into their column triples.
func ToModelSale(d domain.Sale) models.Sale {
	return models.Sale{
		SaleID:             d.SaleID,
		ClientID:           d.ClientID,
		ProductID:          d.ProductID,
		Quantity:           d.Quantity,
		UnitSalePrice:      d.UnitSalePrice,
		UnitCostPrice:      d.UnitCostPrice,
		UnitFreightPrice:   d.UnitFreightPrice,
		Total:              d.Total,
		AmountPaid:         d.AmountPaid,
		PaymentState:       string(d.PaymentState),
		Status:             string(d.Status),
		CurrencyCode:       d.CurrencyCode,
		DistCost:           d.Distribution.Cost,
		DistFreight:        d.Distribution.Freight,
		DistProfit:         d.Distribution.Profit,
		DistributedCost:    d.Distributed.Cost,
		DistributedFreight: d.Distributed.Freight,
		DistributedProfit:  d.Distributed.Profit,
		AuditFields:        ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainSale rebuilds the distributions. The full split totals the sale
// and the distributed part totals the amount paid.
func ToDomainSale(m models.Sale) domain.Sale {
	return domain.Sale{
		SaleID:           m.SaleID,
		ClientID:         m.ClientID,
		ProductID:        m.ProductID,
		Quantity:         m.Quantity,
		UnitSalePrice:    m.UnitSalePrice,
		UnitCostPrice:    m.UnitCostPrice,
		UnitFreightPrice: m.UnitFreightPrice,
		Total:            m.Total,
		AmountPaid:       m.AmountPaid,
		PaymentState:     domain.PaymentState(m.PaymentState),
		Status:           domain.SaleStatus(m.Status),
		CurrencyCode:     m.CurrencyCode,
		Distribution: domain.Distribution{
			Cost:    m.DistCost,
			Freight: m.DistFreight,
			Profit:  m.DistProfit,
			Total:   m.Total,
		},
		Distributed: domain.Distribution{
			Cost:    m.DistributedCost,
			Freight: m.DistributedFreight,
			Profit:  m.DistributedProfit,
			Total:   m.AmountPaid,
		},
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

func ToDomainSaleSlice(ms []models.Sale) []domain.Sale {
	return toDomainSlice(ms, ToDomainSale)
}
