package mapping

import (
	"github.com/SscSPs/vault_ledger/internal/core/domain"
	"github.com/SscSPs/vault_ledger/internal/models"
)

func ToModelLedgerEntry(d domain.LedgerEntry) models.LedgerEntry {
	return models.LedgerEntry{
		EntryID:       d.EntryID,
		Sequence:      d.Sequence,
		AccountID:     d.AccountID,
		Kind:          string(d.Kind),
		Amount:        d.Amount,
		Concept:       d.Concept,
		ReferenceType: string(d.Reference.Type),
		ReferenceID:   d.Reference.ID,
		CreatedAt:     d.CreatedAt,
		CreatedBy:     d.CreatedBy,
		Checksum:      d.Checksum,
	}
}

func ToDomainLedgerEntry(m models.LedgerEntry) domain.LedgerEntry {
	return domain.LedgerEntry{
		EntryID:   m.EntryID,
		Sequence:  m.Sequence,
		AccountID: m.AccountID,
		Kind:      domain.EntryKind(m.Kind),
		Amount:    m.Amount,
		Concept:   m.Concept,
		Reference: domain.Reference{Type: domain.ReferenceType(m.ReferenceType), ID: m.ReferenceID},
		// timestamptz comes back in the session zone
		CreatedAt: m.CreatedAt.UTC(),
		CreatedBy: m.CreatedBy,
		Checksum:  m.Checksum,
	}
}

func ToDomainLedgerEntrySlice(ms []models.LedgerEntry) []domain.LedgerEntry {
	return toDomainSlice(ms, ToDomainLedgerEntry)
}
