package amqp

import (
	"encoding/json"
	"time"
)

// Event kinds carried on the ledger exchange.
const (
	EventMemberRegistered = "member_registered"
	EventMemberUpdated    = "member_updated"
	EventMemberDeleted    = "member_deleted"
	EventDeposit          = "deposit"
	EventWithdrawal       = "withdrawal"
	EventLoanIssued       = "loan_issued"
	EventLoanPayment      = "loan_payment"
)

// LedgerEventMessage is a lightweight notification that something was written
// to the ledger. It carries identifiers and the amount, not full records; the
// report worker fetches whatever else it needs from the store.
type LedgerEventMessage struct {
	Kind          string    `json:"kind"`
	MemberID      string    `json:"member_id"`
	TransactionID string    `json:"transaction_id,omitempty"`
	LoanID        string    `json:"loan_id,omitempty"`
	AmountCents   int64     `json:"amount_cents,omitempty"`
	Date          time.Time `json:"date,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewLedgerEventMessage(kind, memberID string) *LedgerEventMessage {
	return &LedgerEventMessage{
		Kind:      kind,
		MemberID:  memberID,
		Timestamp: time.Now(),
	}
}

func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerEventMessageFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
