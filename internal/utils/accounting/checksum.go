package accounting

import (
	"encoding/hex"
	"strings"
	"time"

	"github.com/SscSPs/vault_ledger/internal/core/domain"
	"golang.org/x/crypto/blake2b"
)

// EntryChecksum hashes an entry together with the checksum of the previous
// entry on the same account. The first entry of an account chains from "".
func EntryChecksum(prev string, e domain.LedgerEntry) string {
	var b strings.Builder
	for _, field := range []string{
		prev,
		e.EntryID,
		e.AccountID,
		string(e.Kind),
		e.Amount.String(),
		e.Concept,
		string(e.Reference.Type),
		e.Reference.ID,
		e.CreatedAt.UTC().Format(time.RFC3339Nano),
		e.CreatedBy,
	} {
		b.WriteString(field)
		b.WriteByte(0)
	}
	sum := blake2b.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// VerifyChain re-hashes entries (in insertion order) and returns the id of the
// first entry whose stored checksum does not match, or "" if the chain holds.
func VerifyChain(entries []domain.LedgerEntry) string {
	prev := ""
	for _, e := range entries {
		if EntryChecksum(prev, e) != e.Checksum {
			return e.EntryID
		}
		prev = e.Checksum
	}
	return ""
}
