package amqp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLedgerEventMessageRoundTrip(t *testing.T) {
	msg := NewLedgerEventMessage(EventLoanIssued, "member-1")
	msg.LoanID = "loan-1"
	msg.TransactionID = "tx-1"
	msg.AmountCents = 970_000
	msg.Date = time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)

	body, err := msg.ToJSON()
	require.NoError(t, err)

	got, err := LedgerEventMessageFromJSON(body)
	require.NoError(t, err)
	require.Equal(t, EventLoanIssued, got.Kind)
	require.Equal(t, "member-1", got.MemberID)
	require.Equal(t, "loan-1", got.LoanID)
	require.Equal(t, int64(970_000), got.AmountCents)
	require.True(t, got.Date.Equal(msg.Date))
}

func TestLedgerEventMessageFromJSONRejectsGarbage(t *testing.T) {
	_, err := LedgerEventMessageFromJSON([]byte("not json"))
	require.Error(t, err)
}
