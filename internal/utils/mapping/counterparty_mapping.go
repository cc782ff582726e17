package mapping

import (
	"github.com/SscSPs/vault_ledger/internal/core/domain"
	"github.com/SscSPs/vault_ledger/internal/models"
)

// ToModelCounterparty also fills the normalized name used for deduplication.
func ToModelCounterparty(d domain.Counterparty) models.Counterparty {
	return models.Counterparty{
		CounterpartyID: d.CounterpartyID,
		Kind:           string(d.Kind),
		Name:           d.Name,
		NormalizedName: domain.NormalizeName(d.Name),
		TotalBilled:    d.TotalBilled,
		TotalPaid:      d.TotalPaid,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

func ToDomainCounterparty(m models.Counterparty) domain.Counterparty {
	return domain.Counterparty{
		CounterpartyID: m.CounterpartyID,
		Kind:           domain.CounterpartyKind(m.Kind),
		Name:           m.Name,
		TotalBilled:    m.TotalBilled,
		TotalPaid:      m.TotalPaid,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

func ToDomainCounterpartySlice(ms []models.Counterparty) []domain.Counterparty {
	return toDomainSlice(ms, ToDomainCounterparty)
}
