package core

import (
	"testing"
	"time"
)

func TestMonthlyFlows(t *testing.T) {
	s := Snapshot{Transactions: []Transaction{
		{MemberID: "m1", Type: Deposit, AmountCents: 50_000, Date: time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)},
		{MemberID: "m1", Type: LoanPayment, AmountCents: 20_000, Date: time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC)},
		{MemberID: "m1", Type: Withdrawal, AmountCents: -10_000, Date: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)},
		{MemberID: "m1", Type: LoanIssued, AmountCents: 97_000, Date: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)},
	}}

	var keys []string
	flows := map[string]MonthFlow{}
	for key, f := range MonthlyFlows(s) {
		keys = append(keys, key)
		flows[key] = f
	}

	if len(keys) != 2 || keys[0] != "2025-01" || keys[1] != "2025-03" {
		t.Fatalf("keys = %v, want [2025-01 2025-03] ascending", keys)
	}

	jan := flows["2025-01"]
	if jan.OutflowCents != 107_000 || jan.InflowCents != 0 {
		t.Fatalf("january = %+v, want outflow 107000", jan)
	}
	if jan.WithdrawalsCents != 10_000 {
		t.Fatalf("january withdrawals = %d, want 10000 (absolute)", jan.WithdrawalsCents)
	}

	mar := flows["2025-03"]
	if mar.InflowCents != 70_000 || mar.OutflowCents != 0 {
		t.Fatalf("march = %+v, want inflow 70000", mar)
	}
	if mar.DepositsCents != 50_000 || mar.LoanPaymentsCents != 20_000 {
		t.Fatalf("march split = %+v", mar)
	}
}

func TestMonthlyFlowsRestartable(t *testing.T) {
	s := Snapshot{Transactions: []Transaction{
		{MemberID: "m1", Type: Deposit, AmountCents: 100, Date: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)},
		{MemberID: "m1", Type: Deposit, AmountCents: 200, Date: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)},
	}}
	seq := MonthlyFlows(s)

	// Early break, then a full second pass over the same sequence value.
	for range seq {
		break
	}
	var count int
	for range seq {
		count++
	}
	if count != 2 {
		t.Fatalf("second pass yielded %d months, want 2", count)
	}
}

func TestMonthlyFlowsSkipsZeroDates(t *testing.T) {
	s := Snapshot{Transactions: []Transaction{
		{MemberID: "m1", Type: Deposit, AmountCents: 100},
	}}
	for key := range MonthlyFlows(s) {
		t.Fatalf("unexpected bucket %q for zero-dated transaction", key)
	}
}
