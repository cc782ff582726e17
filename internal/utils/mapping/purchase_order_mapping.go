package mapping

import (
	"github.com/SscSPs/vault_ledger/internal/core/domain"
	"github.com/SscSPs/vault_ledger/internal/models"
)

func ToModelPurchaseOrder(d domain.PurchaseOrder) models.PurchaseOrder {
	var productID *string
	if d.ProductID != "" {
		productID = &d.ProductID
	}
	return models.PurchaseOrder{
		PurchaseOrderID: d.PurchaseOrderID,
		DistributorID:   d.DistributorID,
		ProductID:       productID,
		Quantity:        d.Quantity,
		UnitCost:        d.UnitCost,
		Total:           d.Total,
		AmountPaid:      d.AmountPaid,
		PaymentState:    string(d.PaymentState),
		CurrencyCode:    d.CurrencyCode,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

func ToDomainPurchaseOrder(m models.PurchaseOrder) domain.PurchaseOrder {
	d := domain.PurchaseOrder{
		PurchaseOrderID: m.PurchaseOrderID,
		DistributorID:   m.DistributorID,
		Quantity:        m.Quantity,
		UnitCost:        m.UnitCost,
		Total:           m.Total,
		AmountPaid:      m.AmountPaid,
		PaymentState:    domain.PaymentState(m.PaymentState),
		CurrencyCode:    m.CurrencyCode,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
	if m.ProductID != nil {
		d.ProductID = *m.ProductID
	}
	return d
}

func ToDomainPurchaseOrderSlice(ms []models.PurchaseOrder) []domain.PurchaseOrder {
	return toDomainSlice(ms, ToDomainPurchaseOrder)
}
