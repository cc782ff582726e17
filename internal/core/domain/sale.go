package domain

import "github.com/shopspring/decimal"

// SaleStatus is the lifecycle status of a sale, independent of payment.
type SaleStatus string

const (
	SaleActive    SaleStatus = "active"
	SaleCancelled SaleStatus = "cancelled"
)

// Sale is a registered sale to a client.
type Sale struct {
	SaleID           string          `json:"saleID"`
	ClientID         string          `json:"clientID"`
	ProductID        string          `json:"productID"`
	Quantity         int64           `json:"quantity"`
	UnitSalePrice    decimal.Decimal `json:"unitSalePrice"`
	UnitCostPrice    decimal.Decimal `json:"unitCostPrice"`
	UnitFreightPrice decimal.Decimal `json:"unitFreightPrice"`
	Total            decimal.Decimal `json:"total"`
	AmountPaid       decimal.Decimal `json:"amountPaid"`
	PaymentState     PaymentState    `json:"paymentState"`
	Status           SaleStatus      `json:"status"`
	CurrencyCode     string          `json:"currencyCode"`
	// Distribution is the full split, fixed at creation.
	Distribution Distribution `json:"distribution"`
	// Distributed is the part of Distribution already written to the ledger.
	Distributed Distribution `json:"distributed"`
	AuditFields
}

// Outstanding is the amount still owed by the client.
func (s Sale) Outstanding() decimal.Decimal {
	return s.Total.Sub(s.AmountPaid)
}

// PaidFraction is amount paid over total, in [0,1].
func (s Sale) PaidFraction() decimal.Decimal {
	if s.Total.IsZero() {
		return decimal.Zero
	}
	return s.AmountPaid.Div(s.Total)
}

// CreateSaleInput carries a sale registration request.
type CreateSaleInput struct {
	ClientID         string
	ClientName       string
	ProductID        string
	Quantity         int64
	UnitSalePrice    decimal.Decimal
	UnitCostPrice    decimal.Decimal
	UnitFreightPrice decimal.Decimal
	InitialPayment   decimal.Decimal
	Actor            string
}

// SaleStage is a step of the CreateSale state machine.
type SaleStage string

const (
	StageValidated           SaleStage = "validated"
	StageStockReserved       SaleStage = "stock_reserved"
	StageLedgerWritten       SaleStage = "ledger_written"
	StageBalancesUpdated     SaleStage = "balances_updated"
	StageCounterpartyUpdated SaleStage = "counterparty_updated"
	StageCommitted           SaleStage = "committed"
)

// SaleReceipt is the result of a committed CreateSale.
type SaleReceipt struct {
	Sale    Sale          `json:"sale"`
	Client  Counterparty  `json:"client"`
	Entries []LedgerEntry `json:"entries"`
	Margin  MarginCheck   `json:"margin"`
	// Drift is the rounding difference of the initial payment's split.
	Drift decimal.Decimal `json:"drift"`
}

// PaymentReceipt is the result of a registered sale payment.
type PaymentReceipt struct {
	Sale      Sale               `json:"sale"`
	Entries   []LedgerEntry      `json:"entries"`
	Increment ScaledDistribution `json:"increment"`
}

// DistributionPreview shows a sale's split and margin without writing anything.
type DistributionPreview struct {
	Distribution SaleDistribution   `json:"distribution"`
	Paid         ScaledDistribution `json:"paid"`
	Margin       MarginCheck        `json:"margin"`
}
