package mapping

import (
	"github.com/SscSPs/vault_ledger/internal/core/domain"
	"github.com/SscSPs/vault_ledger/internal/models"
)

func ToModelStockItem(d domain.StockItem) models.StockItem {
	return models.StockItem{
		ProductID:    d.ProductID,
		Name:         d.Name,
		OnHand:       d.OnHand,
		Reserved:     d.Reserved,
		MinThreshold: d.MinThreshold,
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}
}

func ToDomainStockItem(m models.StockItem) domain.StockItem {
	return domain.StockItem{
		ProductID:    m.ProductID,
		Name:         m.Name,
		OnHand:       m.OnHand,
		Reserved:     m.Reserved,
		MinThreshold: m.MinThreshold,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}
