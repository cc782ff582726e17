package mapping

import (
	"github.com/SscSPs/vault_ledger/internal/core/domain"
	"github.com/SscSPs/vault_ledger/internal/models"
)

// ToModelAccount converts a domain Account to a model Account
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:        d.AccountID,
		Name:             d.Name,
		CurrencyCode:     d.CurrencyCode,
		Balance:          d.Balance,
		LifetimeInflows:  d.LifetimeInflows,
		LifetimeOutflows: d.LifetimeOutflows,
		AuditFields:      ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAccount converts a model Account to a domain Account
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:        m.AccountID,
		Name:             m.Name,
		CurrencyCode:     m.CurrencyCode,
		Balance:          m.Balance,
		LifetimeInflows:  m.LifetimeInflows,
		LifetimeOutflows: m.LifetimeOutflows,
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainAccountSlice converts a slice of model Accounts to a slice of domain Accounts
func ToDomainAccountSlice(ms []models.Account) []domain.Account {
	return toDomainSlice(ms, ToDomainAccount)
}
