package domain

import "github.com/shopspring/decimal"

// PurchaseOrder is money owed to a distributor for goods received.
type PurchaseOrder struct {
	PurchaseOrderID string          `json:"purchaseOrderID"`
	DistributorID   string          `json:"distributorID"`
	ProductID       string          `json:"productID,omitempty"`
	Quantity        int64           `json:"quantity"`
	UnitCost        decimal.Decimal `json:"unitCost"`
	Total           decimal.Decimal `json:"total"`
	AmountPaid      decimal.Decimal `json:"amountPaid"`
	PaymentState    PaymentState    `json:"paymentState"`
	CurrencyCode    string          `json:"currencyCode"`
	AuditFields
}

// Outstanding is the amount still owed to the distributor.
func (p PurchaseOrder) Outstanding() decimal.Decimal {
	return p.Total.Sub(p.AmountPaid)
}

// CreatePurchaseOrderInput carries a purchase order registration request.
type CreatePurchaseOrderInput struct {
	DistributorID   string
	DistributorName string
	ProductID       string
	Quantity        int64
	UnitCost        decimal.Decimal
	Actor           string
}

// DebtAllocation selects how a payment without a target order is spread
// across a distributor's outstanding orders.
type DebtAllocation string

const (
	// AllocateFIFO settles the oldest orders first.
	AllocateFIFO DebtAllocation = "fifo"
	// AllocateProportional splits the payment by each order's outstanding amount.
	AllocateProportional DebtAllocation = "proportional"
)

// PayDebtInput carries an outgoing payment to a distributor.
type PayDebtInput struct {
	CounterpartyID  string
	SourceAccountID string
	Amount          decimal.Decimal
	PurchaseOrderID string
	Allocation      DebtAllocation
	Concept         string
	Actor           string
}

// DebtPayment is the result of paying a distributor.
type DebtPayment struct {
	PaymentID    string                     `json:"paymentID"`
	Counterparty Counterparty               `json:"counterparty"`
	Entry        LedgerEntry                `json:"entry"`
	Applied      map[string]decimal.Decimal `json:"applied"`
}
