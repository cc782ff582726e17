package dto

import (
	"time"

	"github.com/SscSPs/vault_ledger/internal/core/domain"
	"github.com/SscSPs/vault_ledger/internal/utils"
	"github.com/shopspring/decimal"
)

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID        string          `json:"accountID"`
	Name             string          `json:"name"`
	CurrencyCode     string          `json:"currencyCode"`
	Balance          decimal.Decimal `json:"balance"`
	LifetimeInflows  decimal.Decimal `json:"lifetimeInflows"`
	LifetimeOutflows decimal.Decimal `json:"lifetimeOutflows"`
	// Display is the balance formatted for the account currency.
	Display       string    `json:"display"`
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:        acc.AccountID,
		Name:             acc.Name,
		CurrencyCode:     acc.CurrencyCode,
		Balance:          acc.Balance,
		LifetimeInflows:  acc.LifetimeInflows,
		LifetimeOutflows: acc.LifetimeOutflows,
		Display:          utils.FormatMoney(acc.Balance, acc.CurrencyCode),
		CreatedAt:        acc.CreatedAt,
		CreatedBy:        acc.CreatedBy,
		LastUpdatedAt:    acc.LastUpdatedAt,
		LastUpdatedBy:    acc.LastUpdatedBy,
	}
}

func ToAccountResponses(accs []domain.Account) []AccountResponse {
	out := make([]AccountResponse, len(accs))
	for i := range accs {
		out[i] = ToAccountResponse(&accs[i])
	}
	return out
}

// ListEntriesParams are the query parameters of the entry listing.
type ListEntriesParams struct {
	Limit     int        `form:"limit" binding:"omitempty,min=1,max=500"`
	NextToken *string    `form:"nextToken"`
	From      *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To        *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
}

// DateRange converts the optional bounds; missing bounds stay open.
func (p ListEntriesParams) DateRange() domain.DateRange {
	return dateRange(p.From, p.To)
}

// SummaryParams bound an account summary.
type SummaryParams struct {
	From *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To   *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
}

func (p SummaryParams) DateRange() domain.DateRange {
	return dateRange(p.From, p.To)
}

func dateRange(from, to *time.Time) domain.DateRange {
	var r domain.DateRange
	if from != nil {
		r.From = from.UTC()
	}
	if to != nil {
		r.To = to.UTC()
	}
	return r
}

// ListEntriesResponse is one page of ledger entries.
type ListEntriesResponse struct {
	Entries   []domain.LedgerEntry `json:"entries"`
	NextToken *string              `json:"nextToken,omitempty"`
}

// AccountSummaryResponse aggregates an account's entries over a range.
type AccountSummaryResponse struct {
	AccountID string          `json:"accountID"`
	Inflows   decimal.Decimal `json:"inflows"`
	Outflows  decimal.Decimal `json:"outflows"`
	Net       decimal.Decimal `json:"net"`
	Count     int64           `json:"count"`
	From      *time.Time      `json:"from,omitempty"`
	To        *time.Time      `json:"to,omitempty"`
}

func ToAccountSummaryResponse(accountID string, sums domain.EntrySums, p SummaryParams) AccountSummaryResponse {
	return AccountSummaryResponse{
		AccountID: accountID,
		Inflows:   sums.Inflows,
		Outflows:  sums.Outflows,
		Net:       sums.Net(),
		Count:     sums.Count,
		From:      p.From,
		To:        p.To,
	}
}
