package domain

import "time"

// EventType names an audit event emitted after commit.
type EventType string

const (
	EventSaleCreated          EventType = "sale.created"
	EventSalePayment          EventType = "sale.payment_registered"
	EventSaleCancelled        EventType = "sale.cancelled"
	EventTransferCompleted    EventType = "transfer.completed"
	EventExpenseRecorded      EventType = "expense.recorded"
	EventIncomeRecorded       EventType = "income.recorded"
	EventPurchaseOrderCreated EventType = "purchase_order.created"
	EventDebtPaid             EventType = "counterparty.debt_paid"
	EventDriftDetected        EventType = "integrity.drift_detected"
	EventAccountResynced      EventType = "integrity.account_resynced"
	EventCounterpartyResynced EventType = "integrity.counterparty_resynced"
)

// Event is a fire-and-forget audit record.
type Event struct {
	EventID    string            `json:"eventID"`
	Type       EventType         `json:"type"`
	OccurredAt time.Time         `json:"occurredAt"`
	Actor      string            `json:"actor"`
	Reference  Reference         `json:"reference"`
	Attributes map[string]string `json:"attributes,omitempty"`
}
